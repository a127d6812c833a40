package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/identity"
)

// GrantRoleRequest sets the role of a user on a project
type GrantRoleRequest struct {
	UserEmail   string    `json:"user_email" binding:"required,email"`
	ProjectUUID uuid.UUID `json:"project_uuid"`
	Role        string    `json:"role" binding:"required,project_role"`
}

// AuthorizationResponse is the API view of a project authorization
type AuthorizationResponse struct {
	ID          uuid.UUID `json:"uuid"`
	UserEmail   string    `json:"user"`
	ProjectUUID uuid.UUID `json:"project_uuid"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_on"`
	UpdatedAt   time.Time `json:"modified_on"`
}

// ToAuthorizationResponse converts a domain authorization to its response
func ToAuthorizationResponse(a *identity.ProjectAuthorization) AuthorizationResponse {
	return AuthorizationResponse{
		ID:          a.ID,
		UserEmail:   a.UserEmail,
		ProjectUUID: a.ProjectUUID,
		Role:        a.Role.String(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
