// Package provisioning creates, configures and removes Apps together with
// the remote resources they are paired with.
package provisioning

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	appsvc "github.com/marketplace/backend/internal/application/app"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Dependencies are the collaborators of the provisioning Service
type Dependencies struct {
	Registry *apptype.Registry
	Apps     app.Repository
	Channels integration.ChannelManager
	Projects integration.ProjectServices
	WABAs    integration.WABAManager
	Store    integration.CommercePlatform
	Tasks    shared.TaskQueue
	Logger   *zap.Logger

	// ChannelTypes validates the channel code of generic Apps
	ChannelTypes integration.ChannelTypeCatalog

	// PIN generates the two-step verification PIN of new cloud numbers.
	// Defaults to a random 6-digit PIN.
	PIN func() (string, error)
}

// Service runs the create, configure and delete workflows of every app type
type Service struct {
	registry     *apptype.Registry
	apps         app.Repository
	channels     integration.ChannelManager
	channelTypes integration.ChannelTypeCatalog
	projects     integration.ProjectServices
	wabas        integration.WABAManager
	store        integration.CommercePlatform
	tasks        shared.TaskQueue
	pin          func() (string, error)
	logger       *zap.Logger
}

// NewService creates a new provisioning Service
func NewService(deps Dependencies) *Service {
	pin := deps.PIN
	if pin == nil {
		pin = func() (string, error) { return RandomPIN(6) }
	}
	return &Service{
		registry:     deps.Registry,
		apps:         deps.Apps,
		channels:     deps.Channels,
		channelTypes: deps.ChannelTypes,
		projects:     deps.Projects,
		wabas:        deps.WABAs,
		store:        deps.Store,
		tasks:        deps.Tasks,
		pin:          pin,
		logger:       deps.Logger,
	}
}

// Kind returns the creation workflow of an app type code
func (s *Service) Kind(code string) (apptype.ProvisionKind, error) {
	t, err := s.registry.Lookup(code)
	if err != nil {
		return 0, err
	}
	return t.Descriptor().Provision, nil
}

// CreateChannel creates a remote channel for a wwc, tg or wpp-demo App and
// pairs a new App with it
func (s *Service) CreateChannel(ctx context.Context, user, code string, req CreateChannelRequest) (*appsvc.AppResponse, error) {
	t, err := s.lookupKind(code, apptype.ProvisionChannel)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	cfg := app.Config(req.Config)
	if cfg == nil {
		cfg = app.Config{}
	}
	if _, err := apptype.ValidateConfig(t, cfg); err != nil {
		return nil, err
	}

	desc := t.Descriptor()
	return s.pairChannel(ctx, user, desc, req.ProjectUUID, desc.ChannelTypeCode, cfg.Clone(), cfg)
}

// CreateGenericChannel creates a remote channel of any type the
// orchestration backend offers and pairs a generic App with it. The channel
// code is checked against the channel-type catalogue first.
func (s *Service) CreateGenericChannel(ctx context.Context, user string, req CreateGenericChannelRequest) (*appsvc.AppResponse, error) {
	t, err := s.lookupKind(apptype.CodeGeneric.String(), apptype.ProvisionGenericChannel)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	channelCode := strings.ToUpper(strings.TrimSpace(req.ChannelCode))
	if channelCode == "" {
		return nil, shared.NewValidationError("channel_code is a required parameter")
	}
	if err := s.checkChannelType(ctx, channelCode); err != nil {
		return nil, err
	}

	data := app.Config(req.Config).Clone()
	cfg := data.Clone()
	cfg.Set("channel_code", channelCode)
	if _, err := apptype.ValidateConfig(t, cfg); err != nil {
		return nil, err
	}
	return s.pairChannel(ctx, user, t.Descriptor(), req.ProjectUUID, channelCode, data, cfg)
}

func (s *Service) checkChannelType(ctx context.Context, channelCode string) error {
	if s.channelTypes == nil {
		return ErrUnsupportedOperation
	}
	ct, err := s.channelTypes.DetailChannelType(ctx, channelCode)
	if apiErr, ok := integration.AsExternalAPIError(err); ok && apiErr.StatusCode < http.StatusInternalServerError {
		return ErrUnknownChannelType
	}
	if err != nil {
		return err
	}
	if ct == nil || (ct.Name == "" && len(ct.Attributes) == 0) {
		return ErrUnknownChannelType
	}
	return nil
}

// pairChannel creates the remote channel with data and saves a configured
// App holding cfg and the channel uuid
func (s *Service) pairChannel(ctx context.Context, user string, desc apptype.Descriptor, project uuid.UUID, channelTypeCode string, data, cfg app.Config) (*appsvc.AppResponse, error) {
	channel, err := s.channels.CreateChannel(ctx, integration.CreateChannelRequest{
		User:            user,
		ProjectUUID:     project.String(),
		Data:            data,
		ChannelTypeCode: channelTypeCode,
	})
	if err != nil {
		return nil, err
	}
	flowObject, err := parseChannelUUID(channel)
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(desc.Code.String(), project, desc.Platform, user)
	if err != nil {
		return nil, err
	}
	a.ReplaceConfig(cfg, user)
	a.LinkFlowObject(flowObject)
	a.MarkConfigured()

	if err := s.apps.Create(ctx, a); err != nil {
		s.logger.Error("Remote channel created but App could not be saved",
			zap.String("code", desc.Code.String()),
			zap.String("channel_type", channelTypeCode),
			zap.String("project_uuid", project.String()),
			zap.String("flow_object_uuid", flowObject.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Channel App created",
		zap.String("app_uuid", a.ID.String()),
		zap.String("code", a.Code),
		zap.String("channel_type", channelTypeCode),
		zap.String("project_uuid", a.ProjectUUID.String()))

	resp := appsvc.ToAppResponse(a)
	return &resp, nil
}

// CreateExternal creates an unconfigured external App such as Omie
func (s *Service) CreateExternal(ctx context.Context, user, code string, req CreateExternalRequest) (*appsvc.AppResponse, error) {
	t, err := s.lookupKind(code, apptype.ProvisionExternal)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	a, err := app.NewApp(code, req.ProjectUUID, t.Descriptor().Platform, user)
	if err != nil {
		return nil, err
	}
	if req.Config != nil {
		a.ReplaceConfig(app.Config(req.Config).Clone(), user)
	}
	if err := s.apps.Create(ctx, a); err != nil {
		return nil, err
	}

	resp := appsvc.ToAppResponse(a)
	return &resp, nil
}

// Configure validates the config of an external App, registers it with the
// orchestration backend and marks the App configured
func (s *Service) Configure(ctx context.Context, user string, a *app.App, req ConfigureRequest) (*appsvc.AppResponse, error) {
	t, err := s.lookupKind(a.Code, apptype.ProvisionExternal)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	merged := a.Config.Clone()
	for k, v := range req.Config {
		merged[k] = v
	}
	if _, err := apptype.ValidateConfig(t, merged); err != nil {
		return nil, err
	}

	serviceUUID, err := s.projects.CreateExternalService(ctx, user, a.ProjectUUID.String(), a.Code, req.Config)
	if err != nil {
		return nil, err
	}
	if id, err := uuid.Parse(serviceUUID); err == nil {
		a.LinkFlowObject(id)
	}

	a.ReplaceConfig(merged, user)
	a.MarkConfigured()
	if err := s.apps.Update(ctx, a); err != nil {
		s.logger.Error("External service registered but App could not be saved",
			zap.String("app_uuid", a.ID.String()),
			zap.String("external_service_uuid", serviceUUID),
			zap.Error(err))
		return nil, err
	}

	resp := appsvc.ToAppResponse(a)
	return &resp, nil
}

// CreateVTEX checks the store credentials, creates the App and configures
// it. A failed configuration removes the App again.
func (s *Service) CreateVTEX(ctx context.Context, user string, req CreateVTEXRequest) (*appsvc.AppResponse, error) {
	t, err := s.lookupKind(apptype.CodeVTEX.String(), apptype.ProvisionCommerce)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	creds := integration.StoreCredentials{Domain: req.Domain, AppKey: req.AppKey, AppToken: req.AppToken}
	if err := s.store.CheckCredentials(ctx, creds); err != nil {
		if apiErr, ok := integration.AsExternalAPIError(err); ok {
			return nil, shared.NewValidationError("The credentials provided are invalid: %d", apiErr.StatusCode)
		}
		return nil, err
	}

	a, err := app.NewApp(apptype.CodeVTEX.String(), req.ProjectUUID, t.Descriptor().Platform, user)
	if err != nil {
		return nil, err
	}
	if err := s.apps.Create(ctx, a); err != nil {
		return nil, err
	}

	if err := s.configureVTEX(ctx, user, a, req); err != nil {
		if delErr := s.apps.Delete(ctx, a.ID); delErr != nil {
			s.logger.Error("Failed to remove unconfigured VTEX App",
				zap.String("app_uuid", a.ID.String()),
				zap.Error(delErr))
		}
		return nil, shared.NewValidationError("%s", err.Error())
	}

	resp := appsvc.ToAppResponse(a)
	return &resp, nil
}

func (s *Service) configureVTEX(ctx context.Context, user string, a *app.App, req CreateVTEXRequest) error {
	cloud, err := s.apps.FindByID(ctx, req.WppCloudUUID)
	if err != nil {
		return err
	}
	if cloud.Code != apptype.CodeWhatsAppCloud.String() || cloud.ProjectUUID != a.ProjectUUID {
		return shared.NewValidationError("wpp_cloud_uuid must be a WhatsApp Cloud app of the same project")
	}

	cfg, err := app.ConfigFrom(apptype.VTEXConfig{
		Domain:       req.Domain,
		AppKey:       req.AppKey,
		AppToken:     req.AppToken,
		WppCloudUUID: req.WppCloudUUID.String(),
		StoreName:    req.StoreName,
	})
	if err != nil {
		return err
	}
	a.ReplaceConfig(cfg, user)
	a.MarkConfigured()
	return s.apps.Update(ctx, a)
}

// Delete removes an App. Channel Apps release their remote channel first;
// apps that cannot be deleted are refused.
func (s *Service) Delete(ctx context.Context, user string, a *app.App) error {
	t, err := s.registry.Lookup(a.Code)
	if err != nil {
		return err
	}
	desc := t.Descriptor()
	if !desc.Deletable {
		return app.ErrCannotDelete
	}

	if desc.Platform == app.PlatformWeniFlows && a.HasFlowObject() {
		if err := s.channels.ReleaseChannel(ctx, a.FlowObjectUUID.String(), user); err != nil {
			return err
		}
	}

	if err := s.apps.Delete(ctx, a.ID); err != nil {
		return err
	}
	s.logger.Info("App deleted",
		zap.String("app_uuid", a.ID.String()),
		zap.String("code", a.Code),
		zap.String("user_email", user))
	return nil
}

func (s *Service) lookupKind(code string, kind apptype.ProvisionKind) (apptype.Type, error) {
	t, err := s.registry.Lookup(code)
	if err != nil {
		return nil, err
	}
	if t.Descriptor().Provision != kind {
		return nil, ErrUnsupportedOperation
	}
	return t, nil
}

func parseChannelUUID(channel *integration.Channel) (uuid.UUID, error) {
	if channel == nil {
		return uuid.Nil, integration.ErrInvalidResponse
	}
	id, err := uuid.Parse(channel.UUID)
	if err != nil {
		return uuid.Nil, integration.ErrInvalidResponse
	}
	return id, nil
}

var (
	ErrUnsupportedOperation = shared.NewDomainError(shared.CodeInvalidState, "Operation not supported for this app type")
	ErrUnknownChannelType   = shared.NewDomainError(shared.CodeInvalidInput, "Unknown channel type")
)
