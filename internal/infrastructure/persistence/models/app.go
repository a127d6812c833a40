package models

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/app"
	"gorm.io/datatypes"
)

// AppModel is the persistence model for an installed App
type AppModel struct {
	BaseModel
	Code           string            `gorm:"type:varchar(25);not null;index"`
	ProjectUUID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Platform       app.Platform      `gorm:"type:varchar(15);not null"`
	Config         datatypes.JSONMap `gorm:"not null"`
	FlowObjectUUID *uuid.UUID        `gorm:"type:uuid;uniqueIndex"`
	Configured     bool              `gorm:"not null;default:false"`
	CreatedBy      string            `gorm:"type:varchar(254)"`
	ModifiedBy     string            `gorm:"type:varchar(254)"`
}

// TableName returns the table name for GORM
func (AppModel) TableName() string {
	return "apps"
}

// ToDomain converts the persistence model to a domain App
func (m *AppModel) ToDomain() *app.App {
	cfg := app.Config(m.Config)
	if cfg == nil {
		cfg = app.Config{}
	}
	return &app.App{
		BaseEntity:     m.BaseModel.ToDomain(),
		Code:           m.Code,
		ProjectUUID:    m.ProjectUUID,
		Platform:       m.Platform,
		Config:         cfg,
		FlowObjectUUID: m.FlowObjectUUID,
		Configured:     m.Configured,
		CreatedBy:      m.CreatedBy,
		ModifiedBy:     m.ModifiedBy,
	}
}

// FromDomain populates the persistence model from a domain App
func (m *AppModel) FromDomain(a *app.App) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Code = a.Code
	m.ProjectUUID = a.ProjectUUID
	m.Platform = a.Platform
	m.Config = datatypes.JSONMap(a.Config)
	if m.Config == nil {
		m.Config = datatypes.JSONMap{}
	}
	m.FlowObjectUUID = a.FlowObjectUUID
	m.Configured = a.Configured
	m.CreatedBy = a.CreatedBy
	m.ModifiedBy = a.ModifiedBy
}

// AppModelFromDomain creates a new persistence model from a domain App
func AppModelFromDomain(a *app.App) *AppModel {
	m := &AppModel{}
	m.FromDomain(a)
	return m
}
