// Package app serves app types and installed Apps.
package app

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AppTypeService lists the registered app types
type AppTypeService struct {
	registry     *apptype.Registry
	channelTypes integration.ChannelTypeCatalog
	logger       *zap.Logger
}

// NewAppTypeService creates a new AppTypeService. channelTypes may be nil.
func NewAppTypeService(registry *apptype.Registry, channelTypes integration.ChannelTypeCatalog, logger *zap.Logger) *AppTypeService {
	return &AppTypeService{
		registry:     registry,
		channelTypes: channelTypes,
		logger:       logger,
	}
}

// List returns every app type
func (s *AppTypeService) List(ctx context.Context) []AppTypeResponse {
	types := s.registry.List()
	out := make([]AppTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, ToAppTypeResponse(t.Descriptor()))
	}
	return out
}

// Get returns one app type. Channel types are enriched with the attributes
// the orchestration backend publishes; a failed lookup only drops them.
func (s *AppTypeService) Get(ctx context.Context, code string) (*AppTypeResponse, error) {
	t, err := s.registry.Lookup(code)
	if err != nil {
		return nil, err
	}
	resp := ToAppTypeResponse(t.Descriptor())

	if s.channelTypes != nil && resp.ChannelType != "" {
		detail, err := s.channelTypes.DetailChannelType(ctx, resp.ChannelType)
		if err != nil {
			s.logger.Warn("Failed to load channel type detail",
				zap.String("code", code),
				zap.String("channel_type", resp.ChannelType),
				zap.Error(err))
		} else if detail != nil {
			resp.Attributes = detail.Attributes
		}
	}
	return &resp, nil
}

// ChannelTypes lists the channel types a generic App can be created for
func (s *AppTypeService) ChannelTypes(ctx context.Context) ([]ChannelTypeResponse, error) {
	if s.channelTypes == nil {
		return nil, ErrNoChannelTypeCatalog
	}
	types, err := s.channelTypes.ListChannelTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ChannelTypeResponse, 0, len(types))
	for _, ct := range types {
		out = append(out, ToChannelTypeResponse(ct))
	}
	return out, nil
}

// ChannelType returns one entry of the channel-type catalogue
func (s *AppTypeService) ChannelType(ctx context.Context, code string) (*ChannelTypeResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewValidationError("channel_code is a required parameter")
	}
	if s.channelTypes == nil {
		return nil, ErrNoChannelTypeCatalog
	}
	ct, err := s.channelTypes.DetailChannelType(ctx, code)
	if apiErr, ok := integration.AsExternalAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
		return nil, shared.NewNotFoundError("Channel type")
	}
	if err != nil {
		return nil, err
	}
	if ct == nil {
		return nil, shared.NewNotFoundError("Channel type")
	}
	resp := ToChannelTypeResponse(*ct)
	return &resp, nil
}

var ErrNoChannelTypeCatalog = shared.NewDomainError(shared.CodeInvalidState, "Channel type catalogue is not configured")

// AppService reads installed Apps
type AppService struct {
	registry *apptype.Registry
	appRepo  app.Repository
}

// NewAppService creates a new AppService
func NewAppService(registry *apptype.Registry, appRepo app.Repository) *AppService {
	return &AppService{
		registry: registry,
		appRepo:  appRepo,
	}
}

// ListByProject returns every App installed on a project
func (s *AppService) ListByProject(ctx context.Context, projectUUID uuid.UUID) ([]AppResponse, error) {
	if projectUUID == uuid.Nil {
		return nil, app.ErrMissingProject
	}
	apps, err := s.appRepo.FindAll(ctx, app.Filter{ProjectUUID: projectUUID})
	if err != nil {
		return nil, err
	}
	return ToAppResponses(apps), nil
}

// ListByType returns the Apps of one type on a project
func (s *AppService) ListByType(ctx context.Context, code string, projectUUID uuid.UUID) ([]AppResponse, error) {
	if _, err := s.registry.Lookup(code); err != nil {
		return nil, err
	}
	if projectUUID == uuid.Nil {
		return nil, app.ErrMissingProject
	}
	apps, err := s.appRepo.FindAll(ctx, app.Filter{ProjectUUID: projectUUID, Codes: []string{code}})
	if err != nil {
		return nil, err
	}
	return ToAppResponses(apps), nil
}

// Get returns an App of the given type
func (s *AppService) Get(ctx context.Context, code string, id uuid.UUID) (*AppResponse, error) {
	a, err := s.Find(ctx, code, id)
	if err != nil {
		return nil, err
	}
	resp := ToAppResponse(a)
	return &resp, nil
}

// Find loads an App and checks that it has the given type. An App of another
// type is reported as not found.
func (s *AppService) Find(ctx context.Context, code string, id uuid.UUID) (*app.App, error) {
	if _, err := s.registry.Lookup(code); err != nil {
		return nil, err
	}
	a, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Code != code {
		return nil, app.ErrAppNotFound
	}
	return a, nil
}

// FindByID loads an App of any type
func (s *AppService) FindByID(ctx context.Context, id uuid.UUID) (*app.App, error) {
	return s.appRepo.FindByID(ctx, id)
}
