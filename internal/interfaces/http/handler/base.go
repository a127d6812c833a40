package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// principal returns the authenticated caller
func principal(c *gin.Context) identity.Principal {
	return middleware.GetPrincipal(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Forbidden sends a 403 forbidden response
func (h *BaseHandler) Forbidden(c *gin.Context) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, shared.ErrForbidden.Message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps service errors to HTTP responses. Upstream failures keep
// the partner's status and body; domain errors map through their code.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	if apiErr, ok := integration.AsExternalAPIError(err); ok {
		logger.L(c.Request.Context()).Warn("Upstream request failed",
			zap.String("service", apiErr.Service),
			zap.String("operation", apiErr.Operation),
			zap.Int("status_code", apiErr.StatusCode))
		c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse(
			shared.ErrExternalAPI.Message,
			requestID,
			dto.UpstreamError{
				Service:    apiErr.Service,
				Operation:  apiErr.Operation,
				StatusCode: apiErr.StatusCode,
				Body:       apiErr.Body,
			},
		))
		return
	}

	if errors.Is(err, integration.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeUpstreamUnavailable, "The partner platform is not configured", requestID))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	logger.L(c.Request.Context()).Error("Unhandled request error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}

// bindJSON binds the request body, writing a validation response on failure
func (h *BaseHandler) bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		h.handleBindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) handleBindError(c *gin.Context, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBodyTooLarge, "Request body exceeds maximum allowed size")
		return
	}
	middleware.HandleValidationError(c, err)
}

// uuidParam parses a UUID path parameter, writing a 400 on failure
func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// projectQuery parses the project_uuid query parameter
func (h *BaseHandler) projectQuery(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Query("project_uuid"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "project_uuid is a required parameter!")
		return uuid.Nil, false
	}
	return id, true
}

// Authorizer is the permission check used by object-level endpoints
type Authorizer = middleware.Authorizer

// authorizeObject checks the request method against the object's project and
// writes a 403 when denied
func (h *BaseHandler) authorizeObject(c *gin.Context, authz Authorizer, projectUUID uuid.UUID) bool {
	if !authz.CanAccessObject(c.Request.Context(), principal(c), c.Request.Method, projectUUID) {
		h.Forbidden(c)
		return false
	}
	c.Request = c.Request.WithContext(logger.WithProjectUUID(c.Request.Context(), projectUUID.String()))
	return true
}

// authorizeCreate checks that the caller may create resources in projectUUID
func (h *BaseHandler) authorizeCreate(c *gin.Context, authz Authorizer, projectUUID uuid.UUID) bool {
	if !authz.CanCreate(c.Request.Context(), principal(c), projectUUID) {
		h.Forbidden(c)
		return false
	}
	c.Request = c.Request.WithContext(logger.WithProjectUUID(c.Request.Context(), projectUUID.String()))
	return true
}
