package catalog

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog(t *testing.T) {
	appID := uuid.New()

	c, err := NewCatalog(appID, "1234567890", " Summer ", "commerce", "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Summer", c.Name)
	assert.Equal(t, appID, c.AppID)

	_, err = NewCatalog(appID, "", "name", "", "")
	assert.ErrorIs(t, err, ErrMissingExternalID)

	_, err = NewCatalog(appID, strings.Repeat("9", MaxFacebookCatalogIDLength+1), "name", "", "")
	assert.Error(t, err)

	_, err = NewCatalog(appID, "123", "  ", "", "")
	assert.ErrorIs(t, err, ErrMissingName)
}

func TestProductFeed_SetStatus(t *testing.T) {
	f, err := NewProductFeed(uuid.New(), "feed-1", "spring", "")
	require.NoError(t, err)
	assert.Equal(t, FeedStatusPending, f.Status)

	require.NoError(t, f.SetStatus(FeedStatusSuccess))
	assert.Equal(t, FeedStatusSuccess, f.Status)

	assert.Error(t, f.SetStatus(FeedStatus("done")))
	assert.Equal(t, FeedStatusSuccess, f.Status)
}

func TestNewProduct(t *testing.T) {
	p, err := NewProduct(uuid.New(), "sku-1", "Shirt")
	require.NoError(t, err)
	assert.Equal(t, "sku-1", p.FacebookProductID)
	assert.True(t, p.Price.IsZero())

	_, err = NewProduct(uuid.New(), "sku-1", "")
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in       string
		amount   string
		currency string
		wantErr  bool
	}{
		{"19.90 BRL", "19.9", "BRL", false},
		{"5,50 usd", "5.5", "USD", false},
		{"7", "7", "", false},
		{"", "0", "", false},
		{"abc BRL", "", "", true},
		{"-1 BRL", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			amount, currency, err := ParsePrice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.amount, amount.String())
			assert.Equal(t, tt.currency, currency)
		})
	}
}

func TestProductRow_Product(t *testing.T) {
	catalogID, feedID := uuid.New(), uuid.New()
	row := ProductRow{ID: " sku-9 ", Title: "Mug", Price: "10.00 BRL", SalePrice: "8.00 BRL", Availability: "in stock"}

	p, err := row.Product(catalogID, feedID, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "sku-9", p.FacebookProductID)
	assert.Equal(t, "sku-9", p.ProductRetailerID)
	assert.Equal(t, feedID, *p.FeedID)
	assert.Equal(t, "BRL", p.Currency)
	assert.Equal(t, "8", p.SalePrice.String())

	_, err = ProductRow{Title: "No id"}.Product(catalogID, feedID, "")
	assert.ErrorIs(t, err, ErrMissingExternalID)
}
