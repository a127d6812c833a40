package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/template"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTemplateRepository implements template.Repository using GORM
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// Create inserts a template without translations
func (r *GormTemplateRepository) Create(ctx context.Context, m *template.Message) error {
	var model models.TemplateModel
	model.FromDomain(m)
	return r.db.WithContext(ctx).Omit("Translations").Create(&model).Error
}

// Delete removes a template with its translations, headers and buttons
func (r *GormTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.TemplateModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return template.ErrTemplateNotFound
		}
		return deleteTemplates(tx, tx.Model(&models.TemplateModel{}).Select("id").Where("id = ?", id))
	})
}

// FindByID returns the template of appID with translations loaded
func (r *GormTemplateRepository) FindByID(ctx context.Context, appID, id uuid.UUID) (*template.Message, error) {
	var model models.TemplateModel
	if err := r.withTranslations(r.db.WithContext(ctx)).
		Where("app_id = ? AND id = ?", appID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, template.ErrTemplateNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByName reports whether appID already has a template called name
func (r *GormTemplateRepository) ExistsByName(ctx context.Context, appID uuid.UUID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TemplateModel{}).
		Where("app_id = ? AND name = ?", appID, name).
		Count(&count).Error
	return count > 0, err
}

// FindAll returns one page of templates ordered by creator
func (r *GormTemplateRepository) FindAll(ctx context.Context, filter template.Filter, page shared.PageRequest) ([]*template.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TemplateModel{}).Where("app_id = ?", filter.AppID)
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TemplateModel
	if err := r.withTranslations(query).
		Order("created_by").
		Order("created_at").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	result := make([]*template.Message, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, total, nil
}

// CreateTranslation inserts a translation with its header and buttons atomically
func (r *GormTemplateRepository) CreateTranslation(ctx context.Context, tr *template.Translation) error {
	model := models.TranslationModelFromDomain(tr)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Header", "Buttons").Create(model).Error; err != nil {
			return err
		}
		if model.Header != nil {
			if err := tx.Create(model.Header).Error; err != nil {
				return err
			}
		}
		if len(model.Buttons) > 0 {
			if err := tx.Create(&model.Buttons).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormTemplateRepository) withTranslations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Translations", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Preload("Translations.Header").
		Preload("Translations.Buttons", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") })
}

// deleteTemplates removes the templates selected by ids together with
// their translations, headers and buttons. It must run inside tx.
func deleteTemplates(tx *gorm.DB, ids *gorm.DB) error {
	translations := tx.Model(&models.TranslationModel{}).Select("id").Where("template_id IN (?)", ids)
	if err := tx.Where("translation_id IN (?)", translations).Delete(&models.TemplateButtonModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("translation_id IN (?)", translations).Delete(&models.TemplateHeaderModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("template_id IN (?)", ids).Delete(&models.TranslationModel{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN (?)", ids).Delete(&models.TemplateModel{}).Error
}
