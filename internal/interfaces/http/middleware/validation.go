package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/template"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

// Custom binding tags
const (
	TagProjectRole      = "project_role"
	TagTemplateCategory = "template_category"
)

// SetupValidator makes validation errors report JSON (or form) field names
// and registers the marketplace binding tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation(TagProjectRole, func(fl validator.FieldLevel) bool {
		_, err := identity.ParseRole(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation(TagTemplateCategory, func(fl validator.FieldLevel) bool {
		return template.Category(strings.ToUpper(strings.TrimSpace(fl.Field().String()))).IsValid()
	})
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, c.GetString("request_id")))
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "url":
		return "Invalid URL format"
	case TagProjectRole:
		return "Must be one of: " + roleNames()
	case TagTemplateCategory:
		return "Must be a WhatsApp template category such as MARKETING, UTILITY or AUTHENTICATION"
	default:
		return "Invalid value"
	}
}

func roleNames() string {
	names := make([]string, len(identity.AllRoles))
	for i, r := range identity.AllRoles {
		names[i] = r.String()
	}
	return strings.Join(names, " ")
}
