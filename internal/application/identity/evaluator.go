package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// OperatorConfig grants internal CRM operators access to support endpoints
type OperatorConfig struct {
	AllowCRMAccess bool
	CRMEmails      []string
}

// PermissionEvaluator decides whether a principal may act on a project.
// Every lookup failure is a deny; nothing here returns an error.
type PermissionEvaluator struct {
	authRepo  identity.AuthorizationRepository
	policy    identity.RolePolicy
	operators OperatorConfig
	logger    *zap.Logger
}

// NewPermissionEvaluator creates a new PermissionEvaluator
func NewPermissionEvaluator(
	authRepo identity.AuthorizationRepository,
	policy identity.RolePolicy,
	operators OperatorConfig,
	logger *zap.Logger,
) *PermissionEvaluator {
	return &PermissionEvaluator{
		authRepo:  authRepo,
		policy:    policy,
		operators: operators,
		logger:    logger,
	}
}

// CanCreate reports whether p may create resources in projectUUID
func (e *PermissionEvaluator) CanCreate(ctx context.Context, p identity.Principal, projectUUID uuid.UUID) bool {
	return e.Allowed(ctx, p, identity.ActionWrite, projectUUID)
}

// CanAccessObject reports whether p may perform method on an object that
// belongs to projectUUID
func (e *PermissionEvaluator) CanAccessObject(ctx context.Context, p identity.Principal, method string, projectUUID uuid.UUID) bool {
	action, ok := identity.ActionForMethod(method)
	if !ok {
		return false
	}
	return e.Allowed(ctx, p, action, projectUUID)
}

// Allowed reports whether the role p holds on projectUUID permits action
func (e *PermissionEvaluator) Allowed(ctx context.Context, p identity.Principal, action identity.Action, projectUUID uuid.UUID) bool {
	if p.IsAnonymous() || projectUUID == uuid.Nil {
		return false
	}

	auth, err := e.authRepo.FindByUserAndProject(ctx, identity.NormalizeEmail(p.Email), projectUUID)
	if err != nil {
		if !errors.Is(err, identity.ErrAuthorizationNotFound) {
			e.logger.Error("Failed to load project authorization",
				zap.String("user_email", p.Email),
				zap.String("project_uuid", projectUUID.String()),
				zap.Error(err))
		}
		return false
	}

	return e.policy.Allows(auth.Role, action)
}

// IsInternalOperator reports whether p is an allow-listed CRM operator
func (e *PermissionEvaluator) IsInternalOperator(p identity.Principal) bool {
	if !e.operators.AllowCRMAccess || p.IsAnonymous() {
		return false
	}
	for _, email := range e.operators.CRMEmails {
		if strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(p.Email)) {
			return true
		}
	}
	return false
}
