package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/marketplace/backend/internal/application/identity"
)

// AuthorizationOperations manage the project roles of users
type AuthorizationOperations interface {
	GrantRole(ctx context.Context, req identityapp.GrantRoleRequest) (*identityapp.AuthorizationResponse, error)
	GetRole(ctx context.Context, email string, projectUUID uuid.UUID) (*identityapp.AuthorizationResponse, error)
	ListByProject(ctx context.Context, projectUUID uuid.UUID) ([]identityapp.AuthorizationResponse, error)
	RevokeRole(ctx context.Context, email string, projectUUID uuid.UUID) error
}

// AuthorizationHandler serves the internal project authorization endpoints.
// Routes are mounted behind RequireInternalOperator.
type AuthorizationHandler struct {
	BaseHandler
	auths AuthorizationOperations
}

// NewAuthorizationHandler creates a new AuthorizationHandler
func NewAuthorizationHandler(auths AuthorizationOperations) *AuthorizationHandler {
	return &AuthorizationHandler{auths: auths}
}

// List handles GET /internal/projects/:project_uuid/authorizations
func (h *AuthorizationHandler) List(c *gin.Context) {
	projectUUID, ok := h.uuidParam(c, "project_uuid")
	if !ok {
		return
	}
	list, err := h.auths.ListByProject(c.Request.Context(), projectUUID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Get handles GET /internal/projects/:project_uuid/authorizations/:email
func (h *AuthorizationHandler) Get(c *gin.Context) {
	projectUUID, ok := h.uuidParam(c, "project_uuid")
	if !ok {
		return
	}
	resp, err := h.auths.GetRole(c.Request.Context(), c.Param("email"), projectUUID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Put handles PUT /internal/projects/:project_uuid/authorizations. The
// project in the path wins over any project in the body.
func (h *AuthorizationHandler) Put(c *gin.Context) {
	projectUUID, ok := h.uuidParam(c, "project_uuid")
	if !ok {
		return
	}
	var req identityapp.GrantRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.ProjectUUID = projectUUID
	resp, err := h.auths.GrantRole(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /internal/projects/:project_uuid/authorizations/:email
func (h *AuthorizationHandler) Delete(c *gin.Context) {
	projectUUID, ok := h.uuidParam(c, "project_uuid")
	if !ok {
		return
	}
	if err := h.auths.RevokeRole(c.Request.Context(), c.Param("email"), projectUUID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
