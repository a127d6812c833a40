// Package catalog holds commerce catalogs mirrored to the Facebook Commerce
// API: catalogs, their products and the product feeds that fill them.
package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxFacebookCatalogIDLength bounds the external catalog identifier
const MaxFacebookCatalogIDLength = 30

// Catalog is a commerce catalog owned by a cloud channel App
type Catalog struct {
	shared.BaseEntity
	AppID             uuid.UUID
	FacebookCatalogID string
	Name              string
	Category          string
	CreatedBy         string
}

// NewCatalog builds a catalog for an external identifier returned by Facebook
func NewCatalog(appID uuid.UUID, facebookCatalogID, name, category, createdBy string) (*Catalog, error) {
	facebookCatalogID = strings.TrimSpace(facebookCatalogID)
	if facebookCatalogID == "" {
		return nil, ErrMissingExternalID
	}
	if len(facebookCatalogID) > MaxFacebookCatalogIDLength {
		return nil, shared.NewValidationError("facebook_catalog_id must be at most %d characters", MaxFacebookCatalogIDLength)
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingName
	}
	return &Catalog{
		BaseEntity:        shared.NewBaseEntity(),
		AppID:             appID,
		FacebookCatalogID: facebookCatalogID,
		Name:              strings.TrimSpace(name),
		Category:          category,
		CreatedBy:         createdBy,
	}, nil
}

// FeedStatus tracks the ingestion of an uploaded product feed
type FeedStatus string

const (
	FeedStatusPending FeedStatus = "pending"
	FeedStatusError   FeedStatus = "error"
	FeedStatusSuccess FeedStatus = "success"
)

// IsValid reports whether s is a known feed status
func (s FeedStatus) IsValid() bool {
	switch s {
	case FeedStatusPending, FeedStatusError, FeedStatusSuccess:
		return true
	}
	return false
}

// ProductFeed is one file upload feeding products into a catalog
type ProductFeed struct {
	shared.BaseEntity
	CatalogID      uuid.UUID
	FacebookFeedID string
	Name           string
	Status         FeedStatus
	FileKey        string
	CreatedBy      string
}

// NewProductFeed creates a pending feed
func NewProductFeed(catalogID uuid.UUID, facebookFeedID, name, createdBy string) (*ProductFeed, error) {
	if strings.TrimSpace(facebookFeedID) == "" {
		return nil, ErrMissingExternalID
	}
	return &ProductFeed{
		BaseEntity:     shared.NewBaseEntity(),
		CatalogID:      catalogID,
		FacebookFeedID: facebookFeedID,
		Name:           name,
		Status:         FeedStatusPending,
		CreatedBy:      createdBy,
	}, nil
}

// SetStatus moves the feed to a new status
func (f *ProductFeed) SetStatus(status FeedStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("unknown feed status %q", status)
	}
	f.Status = status
	f.Touch()
	return nil
}

// Product is an item of a catalog, optionally created from a feed
type Product struct {
	shared.BaseEntity
	CatalogID         uuid.UUID
	FeedID            *uuid.UUID
	FacebookProductID string
	ProductRetailerID string
	Title             string
	Description       string
	Availability      string
	Condition         string
	Price             decimal.Decimal
	SalePrice         decimal.Decimal
	Currency          string
	Link              string
	ImageLink         string
	Brand             string
	CreatedBy         string
}

// NewProduct creates a product keyed by its Facebook identifier
func NewProduct(catalogID uuid.UUID, facebookProductID, title string) (*Product, error) {
	if strings.TrimSpace(facebookProductID) == "" {
		return nil, ErrMissingExternalID
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewValidationError("product title is required")
	}
	return &Product{
		BaseEntity:        shared.NewBaseEntity(),
		CatalogID:         catalogID,
		FacebookProductID: facebookProductID,
		Title:             title,
	}, nil
}

var (
	ErrCatalogNotFound   = shared.NewDomainError(shared.CodeNotFound, "Catalog not found")
	ErrFeedNotFound      = shared.NewDomainError(shared.CodeNotFound, "Product feed not found")
	ErrProductNotFound   = shared.NewDomainError(shared.CodeNotFound, "Product not found")
	ErrMissingExternalID = shared.NewDomainError(shared.CodeInvalidInput, "External identifier is required")
	ErrMissingName       = shared.NewDomainError(shared.CodeInvalidInput, "name is required")
	ErrCatalogExists     = shared.NewDomainError(shared.CodeAlreadyExists, "Catalog already exists")
)
