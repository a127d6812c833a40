package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// CreateCatalogRequest creates a Facebook commerce catalog for a cloud App
type CreateCatalogRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
}

// CreateFeedRequest uploads a product feed file into a catalog
type CreateFeedRequest struct {
	Name string
	File *integration.FeedFile
}

// CatalogResponse is the API view of a catalog
type CatalogResponse struct {
	ID                uuid.UUID `json:"uuid"`
	AppID             uuid.UUID `json:"app_uuid"`
	FacebookCatalogID string    `json:"facebook_catalog_id"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_on"`
}

// ToCatalogResponse converts a catalog
func ToCatalogResponse(c *catalog.Catalog) CatalogResponse {
	return CatalogResponse{
		ID:                c.ID,
		AppID:             c.AppID,
		FacebookCatalogID: c.FacebookCatalogID,
		Name:              c.Name,
		Category:          c.Category,
		CreatedBy:         c.CreatedBy,
		CreatedAt:         c.CreatedAt,
	}
}

// FeedResponse is the API view of a product feed
type FeedResponse struct {
	ID             uuid.UUID `json:"uuid"`
	CatalogID      uuid.UUID `json:"catalog_uuid"`
	FacebookFeedID string    `json:"facebook_feed_id"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_on"`
}

// ToFeedResponse converts a product feed
func ToFeedResponse(f *catalog.ProductFeed) FeedResponse {
	return FeedResponse{
		ID:             f.ID,
		CatalogID:      f.CatalogID,
		FacebookFeedID: f.FacebookFeedID,
		Name:           f.Name,
		Status:         string(f.Status),
		CreatedBy:      f.CreatedBy,
		CreatedAt:      f.CreatedAt,
	}
}

// ProductResponse is the API view of a product
type ProductResponse struct {
	ID                uuid.UUID       `json:"uuid"`
	FacebookProductID string          `json:"facebook_product_id"`
	ProductRetailerID string          `json:"product_retailer_id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Availability      string          `json:"availability"`
	Condition         string          `json:"condition"`
	Price             decimal.Decimal `json:"price"`
	SalePrice         decimal.Decimal `json:"sale_price"`
	Currency          string          `json:"currency"`
	Link              string          `json:"link"`
	ImageLink         string          `json:"image_link"`
	Brand             string          `json:"brand"`
}

// ToProductResponses converts a list of products
func ToProductResponses(products []*catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ProductResponse{
			ID:                p.ID,
			FacebookProductID: p.FacebookProductID,
			ProductRetailerID: p.ProductRetailerID,
			Title:             p.Title,
			Description:       p.Description,
			Availability:      p.Availability,
			Condition:         p.Condition,
			Price:             p.Price,
			SalePrice:         p.SalePrice,
			Currency:          p.Currency,
			Link:              p.Link,
			ImageLink:         p.ImageLink,
			Brand:             p.Brand,
		})
	}
	return out
}

// ProductsByFeedArgs are the arguments of the product ingestion task
type ProductsByFeedArgs struct {
	ProductFeedUUID uuid.UUID            `json:"product_feed_uuid"`
	FileProducts    []catalog.ProductRow `json:"file_products"`
	UserEmail       string               `json:"user_email"`
}

// IngestionResult summarizes one product ingestion run
type IngestionResult struct {
	Total    int
	Upserted int
	Failed   int
}
