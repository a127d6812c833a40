package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAuthorizationRepository implements identity.AuthorizationRepository using GORM
type GormAuthorizationRepository struct {
	db *gorm.DB
}

// NewGormAuthorizationRepository creates a new GormAuthorizationRepository
func NewGormAuthorizationRepository(db *gorm.DB) *GormAuthorizationRepository {
	return &GormAuthorizationRepository{db: db}
}

// FindByUserAndProject returns the authorization of email on projectUUID
func (r *GormAuthorizationRepository) FindByUserAndProject(ctx context.Context, email string, projectUUID uuid.UUID) (*identity.ProjectAuthorization, error) {
	var model models.ProjectAuthorizationModel
	if err := r.db.WithContext(ctx).
		Where("user_email = ? AND project_uuid = ?", identity.NormalizeEmail(email), projectUUID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrAuthorizationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByProject returns every authorization on projectUUID ordered by email
func (r *GormAuthorizationRepository) ListByProject(ctx context.Context, projectUUID uuid.UUID) ([]*identity.ProjectAuthorization, error) {
	var rows []models.ProjectAuthorizationModel
	if err := r.db.WithContext(ctx).
		Where("project_uuid = ?", projectUUID).
		Order("user_email").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*identity.ProjectAuthorization, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}

// Save upserts on (user_email, project_uuid) so a pair never has two records
func (r *GormAuthorizationRepository) Save(ctx context.Context, auth *identity.ProjectAuthorization) error {
	model := models.ProjectAuthorizationModelFromDomain(auth)
	model.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_email"}, {Name: "project_uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(model).Error
}

// Delete removes the authorization of email on projectUUID
func (r *GormAuthorizationRepository) Delete(ctx context.Context, email string, projectUUID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_email = ? AND project_uuid = ?", identity.NormalizeEmail(email), projectUUID).
		Delete(&models.ProjectAuthorizationModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return identity.ErrAuthorizationNotFound
	}
	return nil
}
