package models

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CatalogModel is the persistence model for a Facebook commerce catalog
type CatalogModel struct {
	BaseModel
	AppID             uuid.UUID `gorm:"type:uuid;not null;index"`
	FacebookCatalogID string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_catalogs_facebook_catalog_id"`
	Name              string    `gorm:"type:varchar(100);not null"`
	Category          string    `gorm:"type:varchar(50)"`
	CreatedBy         string    `gorm:"type:varchar(254)"`
}

// TableName returns the table name for GORM
func (CatalogModel) TableName() string {
	return "catalogs"
}

// ToDomain converts the persistence model to a domain Catalog
func (m *CatalogModel) ToDomain() *catalog.Catalog {
	return &catalog.Catalog{
		BaseEntity:        m.BaseModel.ToDomain(),
		AppID:             m.AppID,
		FacebookCatalogID: m.FacebookCatalogID,
		Name:              m.Name,
		Category:          m.Category,
		CreatedBy:         m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain Catalog
func (m *CatalogModel) FromDomain(c *catalog.Catalog) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.AppID = c.AppID
	m.FacebookCatalogID = c.FacebookCatalogID
	m.Name = c.Name
	m.Category = c.Category
	m.CreatedBy = c.CreatedBy
}

// ProductFeedModel is the persistence model for an uploaded product feed
type ProductFeedModel struct {
	BaseModel
	CatalogID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	FacebookFeedID string             `gorm:"type:varchar(30);not null"`
	Name           string             `gorm:"type:varchar(100)"`
	Status         catalog.FeedStatus `gorm:"type:varchar(10);not null;default:'pending'"`
	FileKey        string             `gorm:"type:varchar(512)"`
	CreatedBy      string             `gorm:"type:varchar(254)"`
}

// TableName returns the table name for GORM
func (ProductFeedModel) TableName() string {
	return "product_feeds"
}

// ToDomain converts the persistence model to a domain ProductFeed
func (m *ProductFeedModel) ToDomain() *catalog.ProductFeed {
	return &catalog.ProductFeed{
		BaseEntity:     m.BaseModel.ToDomain(),
		CatalogID:      m.CatalogID,
		FacebookFeedID: m.FacebookFeedID,
		Name:           m.Name,
		Status:         m.Status,
		FileKey:        m.FileKey,
		CreatedBy:      m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain ProductFeed
func (m *ProductFeedModel) FromDomain(f *catalog.ProductFeed) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.CatalogID = f.CatalogID
	m.FacebookFeedID = f.FacebookFeedID
	m.Name = f.Name
	m.Status = f.Status
	m.FileKey = f.FileKey
	m.CreatedBy = f.CreatedBy
}

// ProductModel is the persistence model for a catalog product. The feed
// item id is only unique inside its catalog, so products are keyed per catalog.
type ProductModel struct {
	BaseModel
	CatalogID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_catalog_external,priority:1"`
	FeedID            *uuid.UUID      `gorm:"type:uuid;index"`
	FacebookProductID string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_catalog_external,priority:2"`
	ProductRetailerID string          `gorm:"type:varchar(50)"`
	Title             string          `gorm:"type:varchar(200);not null"`
	Description       string          `gorm:"type:text"`
	Availability      string          `gorm:"type:varchar(20)"`
	Condition         string          `gorm:"column:product_condition;type:varchar(20)"`
	Price             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SalePrice         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Currency          string          `gorm:"type:varchar(3)"`
	Link              string          `gorm:"type:text"`
	ImageLink         string          `gorm:"type:text"`
	Brand             string          `gorm:"type:varchar(100)"`
	CreatedBy         string          `gorm:"type:varchar(254)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:        m.BaseModel.ToDomain(),
		CatalogID:         m.CatalogID,
		FeedID:            m.FeedID,
		FacebookProductID: m.FacebookProductID,
		ProductRetailerID: m.ProductRetailerID,
		Title:             m.Title,
		Description:       m.Description,
		Availability:      m.Availability,
		Condition:         m.Condition,
		Price:             m.Price,
		SalePrice:         m.SalePrice,
		Currency:          m.Currency,
		Link:              m.Link,
		ImageLink:         m.ImageLink,
		Brand:             m.Brand,
		CreatedBy:         m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.CatalogID = p.CatalogID
	m.FeedID = p.FeedID
	m.FacebookProductID = p.FacebookProductID
	m.ProductRetailerID = p.ProductRetailerID
	m.Title = p.Title
	m.Description = p.Description
	m.Availability = p.Availability
	m.Condition = p.Condition
	m.Price = p.Price
	m.SalePrice = p.SalePrice
	m.Currency = p.Currency
	m.Link = p.Link
	m.ImageLink = p.ImageLink
	m.Brand = p.Brand
	m.CreatedBy = p.CreatedBy
}
