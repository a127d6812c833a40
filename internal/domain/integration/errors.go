package integration

import (
	"errors"
	"fmt"

	"github.com/marketplace/backend/internal/domain/shared"
)

var (
	ErrInvalidResponse = errors.New("integration: invalid platform response")
	ErrNotConfigured   = errors.New("integration: platform not configured")
)

// Service names used in ExternalAPIError
const (
	ServiceFlows    = "flows"
	ServiceFacebook = "facebook"
	ServiceVTEX     = "vtex"
)

// ExternalAPIError is returned when an upstream API answers with a
// non-success status. Body is the raw upstream response.
type ExternalAPIError struct {
	Service    string
	Operation  string
	StatusCode int
	Body       string
}

func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Service, e.Operation, e.StatusCode, e.Body)
}

// Is matches shared.ErrExternalAPI
func (e *ExternalAPIError) Is(target error) bool {
	t, ok := target.(*shared.DomainError)
	return ok && t.Code == shared.CodeExternalAPI
}

// DomainError converts the failure into the shared taxonomy
func (e *ExternalAPIError) DomainError() *shared.DomainError {
	return shared.NewDomainError(shared.CodeExternalAPI, e.Error())
}

// NewExternalAPIError creates an ExternalAPIError
func NewExternalAPIError(service, operation string, statusCode int, body string) *ExternalAPIError {
	return &ExternalAPIError{
		Service:    service,
		Operation:  operation,
		StatusCode: statusCode,
		Body:       body,
	}
}

// AsExternalAPIError unwraps err into an ExternalAPIError
func AsExternalAPIError(err error) (*ExternalAPIError, bool) {
	var apiErr *ExternalAPIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
