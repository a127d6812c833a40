package identity

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// Role is the level of access a user holds on a project
type Role string

const (
	RoleNotSet      Role = "not_set"
	RoleViewer      Role = "viewer"
	RoleContributor Role = "contributor"
	RoleAdmin       Role = "admin"
)

// AllRoles lists every role in ascending order of privilege
var AllRoles = []Role{RoleNotSet, RoleViewer, RoleContributor, RoleAdmin}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleNotSet, RoleViewer, RoleContributor, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a string into a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Action is the coarse verb a request performs on a project resource
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionModify Action = "modify"
)

// ActionForMethod maps an HTTP method to an Action. POST creates, DELETE,
// PATCH and PUT modify, safe methods read.
func ActionForMethod(method string) (Action, bool) {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return ActionWrite, true
	case http.MethodDelete, http.MethodPatch, http.MethodPut:
		return ActionModify, true
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead, true
	}
	return "", false
}

// Principal is the authenticated identity behind a request
type Principal struct {
	Email string
}

// Anonymous returns a principal with no identity
func Anonymous() Principal {
	return Principal{}
}

// IsAnonymous reports whether the principal carries no identity
func (p Principal) IsAnonymous() bool {
	return strings.TrimSpace(p.Email) == ""
}

// ProjectAuthorization grants one user a role on one project.
// There is at most one record per (user, project) pair.
type ProjectAuthorization struct {
	shared.BaseEntity
	UserEmail   string
	ProjectUUID uuid.UUID
	Role        Role
}

// NewProjectAuthorization creates an authorization record
func NewProjectAuthorization(email string, projectUUID uuid.UUID, role Role) (*ProjectAuthorization, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if projectUUID == uuid.Nil {
		return nil, ErrMissingProject
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	return &ProjectAuthorization{
		BaseEntity:  shared.NewBaseEntity(),
		UserEmail:   email,
		ProjectUUID: projectUUID,
		Role:        role,
	}, nil
}

// SetRole replaces the granted role
func (a *ProjectAuthorization) SetRole(role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	a.Role = role
	a.Touch()
	return nil
}

// RolePolicy decides whether a role allows an action
type RolePolicy interface {
	Allows(role Role, action Action) bool
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// NormalizeEmail lowercases and trims an email for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	ErrInvalidRole           = shared.NewDomainError(shared.CodeInvalidInput, "Role must be one of not_set, viewer, contributor, admin")
	ErrInvalidEmail          = shared.NewDomainError(shared.CodeInvalidInput, "A valid user email is required")
	ErrMissingProject        = shared.NewDomainError(shared.CodeInvalidInput, "project_uuid is required")
	ErrAuthorizationNotFound = shared.NewDomainError(shared.CodeNotFound, "Authorization not found")
)
