package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCatalogRepository implements catalog.CatalogRepository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// Create inserts a catalog
func (r *GormCatalogRepository) Create(ctx context.Context, c *catalog.Catalog) error {
	var model models.CatalogModel
	model.FromDomain(c)
	err := r.db.WithContext(ctx).Create(&model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return catalog.ErrCatalogExists
	}
	return err
}

// Delete removes a catalog with its feeds and products
func (r *GormCatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("catalog_id = ?", id).Delete(&models.ProductModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("catalog_id = ?", id).Delete(&models.ProductFeedModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.CatalogModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return catalog.ErrCatalogNotFound
		}
		return nil
	})
}

// FindByID returns the catalog only when it belongs to appID
func (r *GormCatalogRepository) FindByID(ctx context.Context, appID, id uuid.UUID) (*catalog.Catalog, error) {
	var model models.CatalogModel
	if err := r.db.WithContext(ctx).
		Where("app_id = ? AND id = ?", appID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrCatalogNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByApp lists the catalogs of appID, oldest first
func (r *GormCatalogRepository) FindByApp(ctx context.Context, appID uuid.UUID) ([]*catalog.Catalog, error) {
	var rows []models.CatalogModel
	if err := r.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*catalog.Catalog, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}

// GormFeedRepository implements catalog.FeedRepository using GORM
type GormFeedRepository struct {
	db *gorm.DB
}

// NewGormFeedRepository creates a new GormFeedRepository
func NewGormFeedRepository(db *gorm.DB) *GormFeedRepository {
	return &GormFeedRepository{db: db}
}

// Create inserts a product feed
func (r *GormFeedRepository) Create(ctx context.Context, f *catalog.ProductFeed) error {
	var model models.ProductFeedModel
	model.FromDomain(f)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update saves the status and file key of a feed
func (r *GormFeedRepository) Update(ctx context.Context, f *catalog.ProductFeed) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductFeedModel{}).
		Where("id = ?", f.ID).
		Updates(map[string]any{
			"name":       f.Name,
			"status":     f.Status,
			"file_key":   f.FileKey,
			"updated_at": f.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrFeedNotFound
	}
	return nil
}

// Delete removes a feed and the products it introduced
func (r *GormFeedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feed_id = ?", id).Delete(&models.ProductModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProductFeedModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return catalog.ErrFeedNotFound
		}
		return nil
	})
}

// FindByID looks the feed up directly
func (r *GormFeedRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductFeed, error) {
	return r.first(ctx, "id = ?", id)
}

// FindInCatalog returns the feed only when it belongs to catalogID
func (r *GormFeedRepository) FindInCatalog(ctx context.Context, catalogID, id uuid.UUID) (*catalog.ProductFeed, error) {
	return r.first(ctx, "catalog_id = ? AND id = ?", catalogID, id)
}

// FindByCatalog lists the feeds of catalogID, oldest first
func (r *GormFeedRepository) FindByCatalog(ctx context.Context, catalogID uuid.UUID) ([]*catalog.ProductFeed, error) {
	var rows []models.ProductFeedModel
	if err := r.db.WithContext(ctx).
		Where("catalog_id = ?", catalogID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*catalog.ProductFeed, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}

func (r *GormFeedRepository) first(ctx context.Context, query string, args ...any) (*catalog.ProductFeed, error) {
	var model models.ProductFeedModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrFeedNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// productUpsertColumns are overwritten when a retailer id is ingested again
var productUpsertColumns = []string{
	"feed_id", "product_retailer_id", "title", "description", "availability",
	"product_condition", "price", "sale_price", "currency", "link", "image_link",
	"brand", "updated_at",
}

// Upsert inserts the product or updates the row with the same
// (catalog_id, facebook_product_id)
func (r *GormProductRepository) Upsert(ctx context.Context, p *catalog.Product) error {
	var model models.ProductModel
	model.FromDomain(p)
	model.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "catalog_id"}, {Name: "facebook_product_id"}},
		DoUpdates: clause.AssignmentColumns(productUpsertColumns),
	}).Create(&model).Error
}

// FindByCatalog lists the products of catalogID ordered by title
func (r *GormProductRepository) FindByCatalog(ctx context.Context, catalogID uuid.UUID) ([]*catalog.Product, error) {
	return r.find(ctx, "catalog_id = ?", catalogID)
}

// FindByFeed lists the products a feed introduced into catalogID
func (r *GormProductRepository) FindByFeed(ctx context.Context, catalogID, feedID uuid.UUID) ([]*catalog.Product, error) {
	return r.find(ctx, "catalog_id = ? AND feed_id = ?", catalogID, feedID)
}

func (r *GormProductRepository) find(ctx context.Context, query string, args ...any) ([]*catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where(query, args...).Order("title").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*catalog.Product, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}
