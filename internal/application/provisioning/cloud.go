package provisioning

import (
	"context"
	"strings"

	appsvc "github.com/marketplace/backend/internal/application/app"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CloudCurrency is the credit line currency of onboarded accounts
const CloudCurrency = "USD"

// CreateWhatsAppCloud onboards a WhatsApp Cloud number. The steps run in
// order and the first failure aborts; a failure after the remote channel
// exists leaves it in place.
func (s *Service) CreateWhatsAppCloud(ctx context.Context, user string, req CreateCloudRequest) (*CreateCloudResponse, error) {
	t, err := s.lookupKind(apptype.CodeWhatsAppCloud.String(), apptype.ProvisionWhatsAppCloud)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	waba, err := s.wabas.GetWABA(ctx, req.WABAID)
	if err != nil {
		return nil, err
	}
	if err := s.wabas.AssignSystemUser(ctx, req.WABAID); err != nil {
		return nil, err
	}
	allocationConfigID, err := s.wabas.ShareCreditLine(ctx, req.WABAID, CloudCurrency)
	if err != nil {
		return nil, err
	}
	if err := s.wabas.SubscribeApp(ctx, req.WABAID); err != nil {
		return nil, err
	}
	pin, err := s.pin()
	if err != nil {
		return nil, err
	}
	if err := s.wabas.RegisterPhoneNumber(ctx, req.PhoneNumberID, pin); err != nil {
		return nil, err
	}
	phone, err := s.wabas.GetPhoneNumber(ctx, req.InputToken, req.PhoneNumberID)
	if err != nil {
		return nil, err
	}

	cloud := apptype.WhatsAppCloudConfig{
		WANumber:                   phone.DisplayPhoneNumber,
		WAVerifiedName:             phone.VerifiedName,
		WAWabaID:                   req.WABAID,
		WACurrency:                 CloudCurrency,
		WABusinessID:               req.BusinessID,
		WAMessageTemplateNamespace: waba.MessageTemplateNamespace,
		WAPin:                      pin,
	}
	channelConfig, err := app.ConfigFrom(cloud)
	if err != nil {
		return nil, err
	}

	channel, err := s.channels.CreateWACChannel(ctx, integration.CreateWACChannelRequest{
		User:          user,
		ProjectUUID:   req.ProjectUUID.String(),
		Config:        channelConfig.Clone(),
		PhoneNumberID: req.PhoneNumberID,
	})
	if err != nil {
		return nil, err
	}
	flowObject, err := parseChannelUUID(channel)
	if err != nil {
		return nil, err
	}

	cloud.Title = cloud.WANumber
	cloud.WAAllocationConfigID = allocationConfigID
	cloud.WAPhoneNumberID = req.PhoneNumberID
	cfg, err := app.ConfigFrom(cloud)
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(apptype.CodeWhatsAppCloud.String(), req.ProjectUUID, t.Descriptor().Platform, user)
	if err != nil {
		return nil, err
	}
	a.ReplaceConfig(cfg, user)
	a.LinkFlowObject(flowObject)
	a.MarkConfigured()

	if err := s.apps.Create(ctx, a); err != nil {
		s.logger.Error("WhatsApp Cloud channel created but App could not be saved",
			zap.String("project_uuid", req.ProjectUUID.String()),
			zap.String("flow_object_uuid", flowObject.String()),
			zap.String("waba_id", req.WABAID),
			zap.String("phone_number_id", req.PhoneNumberID),
			zap.Error(err))
		return nil, err
	}

	s.enqueue(ctx, shared.TaskSyncCloudWABAs, a)
	s.enqueue(ctx, shared.TaskSyncCloudPhoneNumbers, a)

	s.logger.Info("WhatsApp Cloud App created",
		zap.String("app_uuid", a.ID.String()),
		zap.String("project_uuid", a.ProjectUUID.String()),
		zap.String("waba_id", req.WABAID))

	return &CreateCloudResponse{
		AppID:         a.ID,
		ProjectUUID:   req.ProjectUUID,
		WABAID:        req.WABAID,
		PhoneNumberID: req.PhoneNumberID,
		BusinessID:    req.BusinessID,
	}, nil
}

// enqueue schedules a refresh task; failures are only logged
func (s *Service) enqueue(ctx context.Context, name string, a *app.App) {
	task, err := shared.NewTask(name, map[string]string{"app_uuid": a.ID.String()})
	if err == nil {
		err = s.tasks.Enqueue(ctx, task)
	}
	if err != nil {
		s.logger.Warn("Failed to enqueue task",
			zap.String("task", name),
			zap.String("app_uuid", a.ID.String()),
			zap.Error(err))
	}
}

// DebugToken resolves the WhatsApp Business Account and business reached by
// a user token
func (s *Service) DebugToken(ctx context.Context, inputToken string) (*DebugTokenResponse, error) {
	if strings.TrimSpace(inputToken) == "" {
		return nil, shared.NewValidationError("input_token is a required parameter!")
	}
	info, err := s.wabas.DebugToken(ctx, inputToken)
	if err != nil {
		return nil, err
	}

	var wabaScope *integration.GranularScope
	for i := range info.GranularScopes {
		if info.GranularScopes[i].Scope == integration.ScopeWhatsAppBusinessManagement {
			wabaScope = &info.GranularScopes[i]
			break
		}
	}
	if wabaScope == nil {
		return nil, ErrInvalidTokenPermissions
	}
	if len(wabaScope.TargetIDs) == 0 {
		return nil, ErrMissingWABA
	}
	resp := &DebugTokenResponse{WABAID: wabaScope.TargetIDs[0]}

	if targets := info.Targets(integration.ScopeBusinessManagement); len(targets) > 0 {
		resp.BusinessID = targets[0]
		return resp, nil
	}

	waba, err := s.wabas.GetWABA(ctx, resp.WABAID)
	if err != nil {
		return nil, err
	}
	resp.BusinessID = waba.OwnerBusinessID
	return resp, nil
}

// PhoneNumbers lists the phone numbers of a WABA
func (s *Service) PhoneNumbers(ctx context.Context, wabaID string) ([]integration.PhoneNumber, error) {
	if strings.TrimSpace(wabaID) == "" {
		return nil, shared.NewValidationError("waba_id is a required parameter!")
	}
	numbers, err := s.wabas.ListPhoneNumbers(ctx, wabaID)
	if err != nil {
		if apiErr, ok := integration.AsExternalAPIError(err); ok {
			return nil, shared.NewValidationError("%s", apiErr.Body)
		}
		return nil, err
	}
	return numbers, nil
}

// UpdateWebhook sets the webhook on the remote channel config, then on the App
func (s *Service) UpdateWebhook(ctx context.Context, user string, a *app.App, req UpdateWebhookRequest) (*appsvc.AppResponse, error) {
	webhook, ok := req.Config["webhook"]
	if !ok {
		return nil, shared.NewValidationError("Missing key: 'webhook'")
	}
	if _, isObject := webhook.(map[string]any); !isObject {
		return nil, shared.NewValidationError("webhook must be an object")
	}
	if !a.HasFlowObject() {
		return nil, shared.NewValidationError("The app is not linked to a channel")
	}

	channel, err := s.channels.DetailChannel(ctx, a.FlowObjectUUID.String())
	if err != nil {
		return nil, err
	}
	remote := app.Config(channel.Config).Clone()
	remote.Set("webhook", webhook)
	if err := s.channels.UpdateChannelConfig(ctx, a.FlowObjectUUID.String(), remote); err != nil {
		return nil, err
	}

	cfg := a.Config.Clone()
	cfg.Set("webhook", webhook)
	a.ReplaceConfig(cfg, user)
	if err := s.apps.Update(ctx, a); err != nil {
		return nil, err
	}

	resp := appsvc.ToAppResponse(a)
	return &resp, nil
}

// ReportSentMessages forwards a report request and returns the upstream status
func (s *Service) ReportSentMessages(ctx context.Context, user string, req ReportRequest) (int, error) {
	if err := validateRequest(req); err != nil {
		return 0, err
	}
	return s.projects.ReportSentMessages(ctx, integration.SentMessagesReport{
		ProjectUUID: req.ProjectUUID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		User:        user,
	})
}

var (
	ErrInvalidTokenPermissions = shared.NewDomainError(shared.CodeInvalidInput, "Invalid token permissions")
	ErrMissingWABA             = shared.NewDomainError(shared.CodeInvalidInput, "Missing WhatsApp Business Account Id")
)
