// Package app holds the App aggregate: a channel or integration instance
// connected to one project.
package app

import (
	"strings"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// Platform is the external system an App is provisioned under
type Platform string

const (
	PlatformWeniFlows Platform = "weni-flows"
	PlatformVTEX      Platform = "vtex"
	PlatformOmie      Platform = "omie"
	PlatformWeni      Platform = "weni"
)

// IsValid reports whether p is a known platform
func (p Platform) IsValid() bool {
	switch p {
	case PlatformWeniFlows, PlatformVTEX, PlatformOmie, PlatformWeni:
		return true
	}
	return false
}

// App is an installed channel or integration. Code selects the app type and
// therefore the contract of Config; it is fixed at creation and only the
// channel synchronizer may rewrite it when a remote channel migrates type.
type App struct {
	shared.BaseEntity
	Code           string
	ProjectUUID    uuid.UUID
	Platform       Platform
	Config         Config
	FlowObjectUUID *uuid.UUID
	Configured     bool
	CreatedBy      string
	ModifiedBy     string
}

// NewApp creates an unconfigured App with an empty config
func NewApp(code string, projectUUID uuid.UUID, platform Platform, createdBy string) (*App, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMissingCode
	}
	if projectUUID == uuid.Nil {
		return nil, ErrMissingProject
	}
	if !platform.IsValid() {
		return nil, ErrInvalidPlatform
	}
	return &App{
		BaseEntity:  shared.NewBaseEntity(),
		Code:        code,
		ProjectUUID: projectUUID,
		Platform:    platform,
		Config:      Config{},
		CreatedBy:   createdBy,
	}, nil
}

// LinkFlowObject pairs the App with its resource in the orchestration backend
func (a *App) LinkFlowObject(id uuid.UUID) {
	a.FlowObjectUUID = &id
	a.Touch()
}

// HasFlowObject reports whether the App is paired with a remote channel
func (a *App) HasFlowObject() bool {
	return a.FlowObjectUUID != nil && *a.FlowObjectUUID != uuid.Nil
}

// ReplaceConfig swaps the whole config and records who changed it
func (a *App) ReplaceConfig(cfg Config, modifiedBy string) {
	if cfg == nil {
		cfg = Config{}
	}
	a.Config = cfg
	a.ModifiedBy = modifiedBy
	a.Touch()
}

// MarkConfigured flags the App as ready for use
func (a *App) MarkConfigured() {
	a.Configured = true
	a.Touch()
}

// MigrateCode rewrites the type code. It returns false when the code is
// already current.
func (a *App) MigrateCode(code string) bool {
	if a.Code == code {
		return false
	}
	a.Code = code
	a.Touch()
	return true
}

var (
	ErrAppNotFound     = shared.NewDomainError(shared.CodeNotFound, "App not found")
	ErrMissingCode     = shared.NewDomainError(shared.CodeInvalidInput, "App code is required")
	ErrMissingProject  = shared.NewDomainError(shared.CodeInvalidInput, "project_uuid is required")
	ErrInvalidPlatform = shared.NewDomainError(shared.CodeInvalidInput, "Unknown app platform")
	ErrCannotDelete    = shared.NewDomainError(shared.CodeForbidden, "This channel cannot be deleted")
)
