package models

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/identity"
)

// ProjectAuthorizationModel is the persistence model for a user's role on a project
type ProjectAuthorizationModel struct {
	BaseModel
	UserEmail   string        `gorm:"type:varchar(254);not null;uniqueIndex:idx_authorization_user_project,priority:1"`
	ProjectUUID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_authorization_user_project,priority:2;index"`
	Role        identity.Role `gorm:"type:varchar(20);not null;default:'not_set'"`
}

// TableName returns the table name for GORM
func (ProjectAuthorizationModel) TableName() string {
	return "project_authorizations"
}

// ToDomain converts the persistence model to a domain ProjectAuthorization
func (m *ProjectAuthorizationModel) ToDomain() *identity.ProjectAuthorization {
	return &identity.ProjectAuthorization{
		BaseEntity:  m.BaseModel.ToDomain(),
		UserEmail:   m.UserEmail,
		ProjectUUID: m.ProjectUUID,
		Role:        m.Role,
	}
}

// FromDomain populates the persistence model from a domain ProjectAuthorization
func (m *ProjectAuthorizationModel) FromDomain(a *identity.ProjectAuthorization) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.UserEmail = a.UserEmail
	m.ProjectUUID = a.ProjectUUID
	m.Role = a.Role
}

// ProjectAuthorizationModelFromDomain creates a new persistence model from a domain entity
func ProjectAuthorizationModelFromDomain(a *identity.ProjectAuthorization) *ProjectAuthorizationModel {
	m := &ProjectAuthorizationModel{}
	m.FromDomain(a)
	return m
}
