package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	appsvc "github.com/marketplace/backend/internal/application/app"
	"github.com/marketplace/backend/internal/application/provisioning"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

// CloudOperations are the WhatsApp Cloud specific actions
type CloudOperations interface {
	DebugToken(ctx context.Context, inputToken string) (*provisioning.DebugTokenResponse, error)
	PhoneNumbers(ctx context.Context, wabaID string) ([]integration.PhoneNumber, error)
	UpdateWebhook(ctx context.Context, user string, a *app.App, req provisioning.UpdateWebhookRequest) (*appsvc.AppResponse, error)
	ReportSentMessages(ctx context.Context, user string, req provisioning.ReportRequest) (int, error)
}

// CloudHandler serves the actions under /apptypes/wpp-cloud/apps
type CloudHandler struct {
	BaseHandler
	apps  AppQueries
	cloud CloudOperations
	authz Authorizer
}

// NewCloudHandler creates a new CloudHandler
func NewCloudHandler(apps AppQueries, cloud CloudOperations, authz Authorizer) *CloudHandler {
	return &CloudHandler{
		apps:  apps,
		cloud: cloud,
		authz: authz,
	}
}

// RequireCloudType rejects the cloud actions for any other app type code
func RequireCloudType() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("code") != apptype.CodeWhatsAppCloud.String() {
			c.AbortWithStatusJSON(http.StatusNotFound,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, "Not found", getRequestID(c)))
			return
		}
		c.Next()
	}
}

// DebugToken handles GET /apptypes/wpp-cloud/apps/debug_token?input_token=
func (h *CloudHandler) DebugToken(c *gin.Context) {
	resp, err := h.cloud.DebugToken(c.Request.Context(), c.Query("input_token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PhoneNumbers handles GET /apptypes/wpp-cloud/apps/phone_numbers?waba_id=
func (h *CloudHandler) PhoneNumbers(c *gin.Context) {
	numbers, err := h.cloud.PhoneNumbers(c.Request.Context(), c.Query("waba_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if numbers == nil {
		numbers = []integration.PhoneNumber{}
	}
	h.Success(c, numbers)
}

func (h *CloudHandler) loadCloudApp(c *gin.Context) (*app.App, bool) {
	id, ok := h.uuidParam(c, "uuid")
	if !ok {
		return nil, false
	}
	a, err := h.apps.Find(c.Request.Context(), apptype.CodeWhatsAppCloud.String(), id)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	if !h.authorizeObject(c, h.authz, a.ProjectUUID) {
		return nil, false
	}
	return a, true
}

// UpdateWebhook handles PATCH /apptypes/wpp-cloud/apps/:uuid/update_webhook
func (h *CloudHandler) UpdateWebhook(c *gin.Context) {
	a, ok := h.loadCloudApp(c)
	if !ok {
		return
	}
	var req provisioning.UpdateWebhookRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.cloud.UpdateWebhook(c.Request.Context(), principal(c).Email, a, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReportSentMessages handles GET /apptypes/wpp-cloud/apps/:uuid/report_sent_messages.
// The response carries the status the orchestration backend answered with.
func (h *CloudHandler) ReportSentMessages(c *gin.Context) {
	if _, ok := h.loadCloudApp(c); !ok {
		return
	}
	var req provisioning.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.handleBindError(c, err)
		return
	}
	status, err := h.cloud.ReportSentMessages(c.Request.Context(), principal(c).Email, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(status)
}
