package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Authorizer decides whether a principal may act on a project
type Authorizer interface {
	CanCreate(ctx context.Context, p identity.Principal, projectUUID uuid.UUID) bool
	CanAccessObject(ctx context.Context, p identity.Principal, method string, projectUUID uuid.UUID) bool
	IsInternalOperator(p identity.Principal) bool
}

// RequireInternalOperator allows only allow-listed CRM operators through
func RequireInternalOperator(authz Authorizer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if !authz.IsInternalOperator(p) {
			denyPermission(c, log, "not an internal operator")
			return
		}
		c.Next()
	}
}

// RequireProjectAccess checks the project named by the project_uuid query
// parameter against the request method. A missing or malformed project is a
// deny, as is a missing authorization.
func RequireProjectAccess(authz Authorizer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectUUID, err := uuid.Parse(c.Query("project_uuid"))
		if err != nil {
			denyPermission(c, log, "missing project_uuid")
			return
		}
		if !authz.CanAccessObject(c.Request.Context(), GetPrincipal(c), c.Request.Method, projectUUID) {
			denyPermission(c, log, "no authorization on project")
			return
		}
		c.Request = c.Request.WithContext(logger.WithProjectUUID(c.Request.Context(), projectUUID.String()))
		c.Next()
	}
}

func denyPermission(c *gin.Context, log *zap.Logger, reason string) {
	if log != nil {
		log.Warn("Permission denied",
			zap.String("user_email", GetPrincipal(c).Email),
			zap.String("reason", reason),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}
	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden,
			"You do not have permission to perform this action", c.GetString("request_id")))
}
