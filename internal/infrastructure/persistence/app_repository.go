package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAppRepository implements app.Repository using GORM
type GormAppRepository struct {
	db *gorm.DB
}

// NewGormAppRepository creates a new GormAppRepository
func NewGormAppRepository(db *gorm.DB) *GormAppRepository {
	return &GormAppRepository{db: db}
}

// Create inserts a new App
func (r *GormAppRepository) Create(ctx context.Context, a *app.App) error {
	return r.db.WithContext(ctx).Create(models.AppModelFromDomain(a)).Error
}

// Update saves code, config and flags of an existing App
func (r *GormAppRepository) Update(ctx context.Context, a *app.App) error {
	model := models.AppModelFromDomain(a)
	result := r.db.WithContext(ctx).
		Model(&models.AppModel{BaseModel: models.BaseModel{ID: a.ID}}).
		Select("code", "platform", "config", "flow_object_uuid", "configured", "modified_by", "updated_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return app.ErrAppNotFound
	}
	return nil
}

// Delete removes the App with its templates, catalogs, feeds and products in one transaction
func (r *GormAppRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		templates := tx.Model(&models.TemplateModel{}).Select("id").Where("app_id = ?", id)
		if err := deleteTemplates(tx, templates); err != nil {
			return err
		}

		catalogs := tx.Model(&models.CatalogModel{}).Select("id").Where("app_id = ?", id)
		if err := tx.Where("catalog_id IN (?)", catalogs).Delete(&models.ProductModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("catalog_id IN (?)", catalogs).Delete(&models.ProductFeedModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("app_id = ?", id).Delete(&models.CatalogModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.AppModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return app.ErrAppNotFound
		}
		return nil
	})
}

// FindByID returns the App or app.ErrAppNotFound
func (r *GormAppRepository) FindByID(ctx context.Context, id uuid.UUID) (*app.App, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByFlowObjectUUID returns the App paired with a remote channel
func (r *GormAppRepository) FindByFlowObjectUUID(ctx context.Context, flowObjectUUID uuid.UUID) (*app.App, error) {
	return r.first(ctx, "flow_object_uuid = ?", flowObjectUUID)
}

// FindAll lists Apps matching the filter, newest first
func (r *GormAppRepository) FindAll(ctx context.Context, filter app.Filter) ([]*app.App, error) {
	query := r.db.WithContext(ctx).Model(&models.AppModel{})
	if filter.ProjectUUID != uuid.Nil {
		query = query.Where("project_uuid = ?", filter.ProjectUUID)
	}
	if len(filter.Codes) > 0 {
		query = query.Where("code IN ?", filter.Codes)
	}

	var rows []models.AppModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	apps := make([]*app.App, len(rows))
	for i := range rows {
		apps[i] = rows[i].ToDomain()
	}
	return apps, nil
}

func (r *GormAppRepository) first(ctx context.Context, query string, args ...any) (*app.App, error) {
	var model models.AppModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app.ErrAppNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
