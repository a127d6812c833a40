package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	templateapp "github.com/marketplace/backend/internal/application/template"
	"github.com/marketplace/backend/internal/domain/shared"
)

// TemplateOperations manage the message templates of an App
type TemplateOperations interface {
	Create(ctx context.Context, user string, appID uuid.UUID, req templateapp.CreateTemplateRequest) (*templateapp.TemplateResponse, error)
	List(ctx context.Context, appID uuid.UUID, req templateapp.ListTemplatesRequest) (*shared.Paginated[templateapp.TemplateResponse], error)
	Get(ctx context.Context, appID, id uuid.UUID) (*templateapp.TemplateResponse, error)
	Destroy(ctx context.Context, appID, id uuid.UUID) error
	CreateTranslation(ctx context.Context, appID, templateID uuid.UUID, req templateapp.CreateTranslationRequest) (*templateapp.TranslationResponse, error)
	Languages() []templateapp.LanguageResponse
}

// TemplateHandler serves /apps/:app_uuid/templates
type TemplateHandler struct {
	BaseHandler
	apps      AppQueries
	templates TemplateOperations
	authz     Authorizer
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(apps AppQueries, templates TemplateOperations, authz Authorizer) *TemplateHandler {
	return &TemplateHandler{
		apps:      apps,
		templates: templates,
		authz:     authz,
	}
}

func (h *TemplateHandler) appScope(c *gin.Context) (uuid.UUID, bool) {
	appID, ok := h.uuidParam(c, "app_uuid")
	if !ok {
		return uuid.Nil, false
	}
	a, err := h.apps.FindByID(c.Request.Context(), appID)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	if !h.authorizeObject(c, h.authz, a.ProjectUUID) {
		return uuid.Nil, false
	}
	return appID, true
}

// List handles GET /apps/:app_uuid/templates
func (h *TemplateHandler) List(c *gin.Context) {
	appID, ok := h.appScope(c)
	if !ok {
		return
	}
	var req templateapp.ListTemplatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.handleBindError(c, err)
		return
	}
	page, err := h.templates.List(c.Request.Context(), appID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Create handles POST /apps/:app_uuid/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	appID, ok := h.appScope(c)
	if !ok {
		return
	}
	var req templateapp.CreateTemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.templates.Create(c.Request.Context(), principal(c).Email, appID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /apps/:app_uuid/templates/:uuid
func (h *TemplateHandler) Get(c *gin.Context) {
	appID, ok := h.appScope(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "uuid")
	if !ok {
		return
	}
	resp, err := h.templates.Get(c.Request.Context(), appID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Destroy handles DELETE /apps/:app_uuid/templates/:uuid
func (h *TemplateHandler) Destroy(c *gin.Context) {
	appID, ok := h.appScope(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "uuid")
	if !ok {
		return
	}
	if err := h.templates.Destroy(c.Request.Context(), appID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateTranslation handles POST /apps/:app_uuid/templates/:uuid/translations
func (h *TemplateHandler) CreateTranslation(c *gin.Context) {
	appID, ok := h.appScope(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "uuid")
	if !ok {
		return
	}
	var req templateapp.CreateTranslationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.templates.CreateTranslation(c.Request.Context(), appID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Languages handles GET /apps/:app_uuid/templates/languages
func (h *TemplateHandler) Languages(c *gin.Context) {
	h.Success(c, h.templates.Languages())
}
