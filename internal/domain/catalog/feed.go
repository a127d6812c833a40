package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductRow is one product parsed from a feed file. Field names follow the
// Facebook product feed columns.
type ProductRow struct {
	ID           string `json:"id" csv:"id"`
	Title        string `json:"title" csv:"title"`
	Description  string `json:"description,omitempty" csv:"description"`
	Availability string `json:"availability,omitempty" csv:"availability"`
	Condition    string `json:"condition,omitempty" csv:"condition"`
	Price        string `json:"price,omitempty" csv:"price"`
	SalePrice    string `json:"sale_price,omitempty" csv:"sale_price"`
	Link         string `json:"link,omitempty" csv:"link"`
	ImageLink    string `json:"image_link,omitempty" csv:"image_link"`
	Brand        string `json:"brand,omitempty" csv:"brand"`
}

// Product builds the catalog product for the row. The retailer id doubles
// as the Facebook product id, so re-ingesting the same row updates it.
func (r ProductRow) Product(catalogID, feedID uuid.UUID, createdBy string) (*Product, error) {
	p, err := NewProduct(catalogID, strings.TrimSpace(r.ID), strings.TrimSpace(r.Title))
	if err != nil {
		return nil, err
	}
	price, currency, err := ParsePrice(r.Price)
	if err != nil {
		return nil, err
	}
	salePrice, _, err := ParsePrice(r.SalePrice)
	if err != nil {
		return nil, err
	}

	p.FeedID = &feedID
	p.ProductRetailerID = strings.TrimSpace(r.ID)
	p.Description = r.Description
	p.Availability = r.Availability
	p.Condition = r.Condition
	p.Price = price
	p.SalePrice = salePrice
	p.Currency = currency
	p.Link = r.Link
	p.ImageLink = r.ImageLink
	p.Brand = r.Brand
	p.CreatedBy = createdBy
	return p, nil
}

// ParsePrice reads a feed price such as "19.90 BRL". An empty value is zero.
func ParsePrice(s string) (decimal.Decimal, string, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return decimal.Zero, "", nil
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(fields[0], ",", "."))
	if err != nil {
		return decimal.Zero, "", shared.NewValidationError("invalid price %q", s)
	}
	if amount.IsNegative() {
		return decimal.Zero, "", shared.NewValidationError("price must not be negative")
	}
	currency := ""
	if len(fields) > 1 {
		currency = strings.ToUpper(fields[1])
	}
	return amount, currency, nil
}
