package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CatalogRepository defines persistence for catalogs
type CatalogRepository interface {
	Create(ctx context.Context, c *Catalog) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByID returns the catalog only when it belongs to appID
	FindByID(ctx context.Context, appID, id uuid.UUID) (*Catalog, error)
	FindByApp(ctx context.Context, appID uuid.UUID) ([]*Catalog, error)
}

// FeedRepository defines persistence for product feeds
type FeedRepository interface {
	Create(ctx context.Context, f *ProductFeed) error
	Update(ctx context.Context, f *ProductFeed) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByID looks the feed up directly, for background ingestion
	FindByID(ctx context.Context, id uuid.UUID) (*ProductFeed, error)
	// FindInCatalog returns the feed only when it belongs to catalogID
	FindInCatalog(ctx context.Context, catalogID, id uuid.UUID) (*ProductFeed, error)
	FindByCatalog(ctx context.Context, catalogID uuid.UUID) ([]*ProductFeed, error)
}

// ProductRepository defines persistence for products
type ProductRepository interface {
	// Upsert inserts the product or updates the row with the same facebook_product_id
	Upsert(ctx context.Context, p *Product) error
	FindByCatalog(ctx context.Context, catalogID uuid.UUID) ([]*Product, error)
	FindByFeed(ctx context.Context, catalogID, feedID uuid.UUID) ([]*Product, error)
}
