package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	appsvc "github.com/marketplace/backend/internal/application/app"
	"github.com/marketplace/backend/internal/application/provisioning"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/shared"
)

// AppTypeQueries lists the registered app types
type AppTypeQueries interface {
	List(ctx context.Context) []appsvc.AppTypeResponse
	Get(ctx context.Context, code string) (*appsvc.AppTypeResponse, error)
	ChannelTypes(ctx context.Context) ([]appsvc.ChannelTypeResponse, error)
	ChannelType(ctx context.Context, code string) (*appsvc.ChannelTypeResponse, error)
}

// AppQueries loads installed Apps
type AppQueries interface {
	ListByProject(ctx context.Context, projectUUID uuid.UUID) ([]appsvc.AppResponse, error)
	ListByType(ctx context.Context, code string, projectUUID uuid.UUID) ([]appsvc.AppResponse, error)
	Find(ctx context.Context, code string, id uuid.UUID) (*app.App, error)
	FindByID(ctx context.Context, id uuid.UUID) (*app.App, error)
}

// Provisioner runs the create, configure and delete workflows
type Provisioner interface {
	Kind(code string) (apptype.ProvisionKind, error)
	CreateChannel(ctx context.Context, user, code string, req provisioning.CreateChannelRequest) (*appsvc.AppResponse, error)
	CreateGenericChannel(ctx context.Context, user string, req provisioning.CreateGenericChannelRequest) (*appsvc.AppResponse, error)
	CreateWhatsAppCloud(ctx context.Context, user string, req provisioning.CreateCloudRequest) (*provisioning.CreateCloudResponse, error)
	CreateExternal(ctx context.Context, user, code string, req provisioning.CreateExternalRequest) (*appsvc.AppResponse, error)
	CreateVTEX(ctx context.Context, user string, req provisioning.CreateVTEXRequest) (*appsvc.AppResponse, error)
	Configure(ctx context.Context, user string, a *app.App, req provisioning.ConfigureRequest) (*appsvc.AppResponse, error)
	Delete(ctx context.Context, user string, a *app.App) error
}

// AppTypeHandler serves the app type catalog
type AppTypeHandler struct {
	BaseHandler
	types AppTypeQueries
}

// NewAppTypeHandler creates a new AppTypeHandler
func NewAppTypeHandler(types AppTypeQueries) *AppTypeHandler {
	return &AppTypeHandler{types: types}
}

// List handles GET /apptypes
func (h *AppTypeHandler) List(c *gin.Context) {
	h.Success(c, h.types.List(c.Request.Context()))
}

// Get handles GET /apptypes/:code
func (h *AppTypeHandler) Get(c *gin.Context) {
	resp, err := h.types.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChannelTypes handles GET /apptypes/generic/detail-channel
func (h *AppTypeHandler) ChannelTypes(c *gin.Context) {
	resp, err := h.types.ChannelTypes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChannelType handles GET /apptypes/generic/detail-channel/:channel_code
func (h *AppTypeHandler) ChannelType(c *gin.Context) {
	resp, err := h.types.ChannelType(c.Request.Context(), c.Param("channel_code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AppHandler serves installed Apps of every type
type AppHandler struct {
	BaseHandler
	apps      AppQueries
	provision Provisioner
	authz     Authorizer
}

// NewAppHandler creates a new AppHandler
func NewAppHandler(apps AppQueries, provision Provisioner, authz Authorizer) *AppHandler {
	return &AppHandler{
		apps:      apps,
		provision: provision,
		authz:     authz,
	}
}

// ListMine handles GET /my-apps?project_uuid=
func (h *AppHandler) ListMine(c *gin.Context) {
	projectUUID, ok := h.projectQuery(c)
	if !ok || !h.authorizeObject(c, h.authz, projectUUID) {
		return
	}
	apps, err := h.apps.ListByProject(c.Request.Context(), projectUUID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apps)
}

// List handles GET /apptypes/:code/apps?project_uuid=
func (h *AppHandler) List(c *gin.Context) {
	projectUUID, ok := h.projectQuery(c)
	if !ok || !h.authorizeObject(c, h.authz, projectUUID) {
		return
	}
	apps, err := h.apps.ListByType(c.Request.Context(), c.Param("code"), projectUUID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apps)
}

// projectField reads only the target project of a create request
type projectField struct {
	ProjectUUID uuid.UUID `json:"project_uuid"`
}

// Create handles POST /apptypes/:code/apps. The body shape depends on the
// creation workflow of the app type.
func (h *AppHandler) Create(c *gin.Context) {
	code := c.Param("code")
	kind, err := h.provision.Kind(code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var scope projectField
	if err := c.ShouldBindBodyWith(&scope, binding.JSON); err != nil {
		h.handleBindError(c, err)
		return
	}
	if !h.authorizeCreate(c, h.authz, scope.ProjectUUID) {
		return
	}

	ctx := c.Request.Context()
	user := principal(c).Email

	switch kind {
	case apptype.ProvisionChannel:
		var req provisioning.CreateChannelRequest
		if !h.bindCached(c, &req) {
			return
		}
		resp, err := h.provision.CreateChannel(ctx, user, code, req)
		h.respondCreated(c, resp, err)
	case apptype.ProvisionGenericChannel:
		var req provisioning.CreateGenericChannelRequest
		if !h.bindCached(c, &req) {
			return
		}
		resp, err := h.provision.CreateGenericChannel(ctx, user, req)
		h.respondCreated(c, resp, err)
	case apptype.ProvisionWhatsAppCloud:
		var req provisioning.CreateCloudRequest
		if !h.bindCached(c, &req) {
			return
		}
		resp, err := h.provision.CreateWhatsAppCloud(ctx, user, req)
		h.respondCreated(c, resp, err)
	case apptype.ProvisionExternal:
		var req provisioning.CreateExternalRequest
		if !h.bindCached(c, &req) {
			return
		}
		resp, err := h.provision.CreateExternal(ctx, user, code, req)
		h.respondCreated(c, resp, err)
	case apptype.ProvisionCommerce:
		var req provisioning.CreateVTEXRequest
		if !h.bindCached(c, &req) {
			return
		}
		resp, err := h.provision.CreateVTEX(ctx, user, req)
		h.respondCreated(c, resp, err)
	default:
		h.HandleError(c, shared.NewValidationError("Apps of type %s cannot be created", code))
	}
}

func (h *AppHandler) bindCached(c *gin.Context, out any) bool {
	if err := c.ShouldBindBodyWith(out, binding.JSON); err != nil {
		h.handleBindError(c, err)
		return false
	}
	return true
}

func (h *AppHandler) respondCreated(c *gin.Context, resp any, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// loadApp finds the App named by the path and checks object permission
func (h *AppHandler) loadApp(c *gin.Context) (*app.App, bool) {
	id, ok := h.uuidParam(c, "uuid")
	if !ok {
		return nil, false
	}
	a, err := h.apps.Find(c.Request.Context(), c.Param("code"), id)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	if !h.authorizeObject(c, h.authz, a.ProjectUUID) {
		return nil, false
	}
	return a, true
}

// Get handles GET /apptypes/:code/apps/:uuid
func (h *AppHandler) Get(c *gin.Context) {
	a, ok := h.loadApp(c)
	if !ok {
		return
	}
	h.Success(c, appsvc.ToAppResponse(a))
}

// Delete handles DELETE /apptypes/:code/apps/:uuid
func (h *AppHandler) Delete(c *gin.Context) {
	a, ok := h.loadApp(c)
	if !ok {
		return
	}
	if err := h.provision.Delete(c.Request.Context(), principal(c).Email, a); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Configure handles PATCH /apptypes/:code/apps/:uuid/configure
func (h *AppHandler) Configure(c *gin.Context) {
	a, ok := h.loadApp(c)
	if !ok {
		return
	}
	var req provisioning.ConfigureRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.provision.Configure(c.Request.Context(), principal(c).Email, a, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
