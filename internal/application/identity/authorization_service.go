package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// AuthorizationService manages project role grants
type AuthorizationService struct {
	authRepo identity.AuthorizationRepository
	logger   *zap.Logger
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(authRepo identity.AuthorizationRepository, logger *zap.Logger) *AuthorizationService {
	return &AuthorizationService{
		authRepo: authRepo,
		logger:   logger,
	}
}

// GrantRole creates the authorization for the pair or updates its role
func (s *AuthorizationService) GrantRole(ctx context.Context, req GrantRoleRequest) (*AuthorizationResponse, error) {
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	auth, err := s.authRepo.FindByUserAndProject(ctx, identity.NormalizeEmail(req.UserEmail), req.ProjectUUID)
	switch {
	case errors.Is(err, identity.ErrAuthorizationNotFound):
		auth, err = identity.NewProjectAuthorization(req.UserEmail, req.ProjectUUID, role)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := auth.SetRole(role); err != nil {
			return nil, err
		}
	}

	if err := s.authRepo.Save(ctx, auth); err != nil {
		return nil, err
	}

	s.logger.Info("Project role granted",
		zap.String("user_email", auth.UserEmail),
		zap.String("project_uuid", auth.ProjectUUID.String()),
		zap.String("role", auth.Role.String()))

	resp := ToAuthorizationResponse(auth)
	return &resp, nil
}

// GetRole returns the authorization of one user on a project
func (s *AuthorizationService) GetRole(ctx context.Context, email string, projectUUID uuid.UUID) (*AuthorizationResponse, error) {
	auth, err := s.authRepo.FindByUserAndProject(ctx, identity.NormalizeEmail(email), projectUUID)
	if err != nil {
		return nil, err
	}
	resp := ToAuthorizationResponse(auth)
	return &resp, nil
}

// ListByProject returns every authorization of a project
func (s *AuthorizationService) ListByProject(ctx context.Context, projectUUID uuid.UUID) ([]AuthorizationResponse, error) {
	auths, err := s.authRepo.ListByProject(ctx, projectUUID)
	if err != nil {
		return nil, err
	}
	out := make([]AuthorizationResponse, 0, len(auths))
	for _, a := range auths {
		out = append(out, ToAuthorizationResponse(a))
	}
	return out, nil
}

// RevokeRole deletes the authorization of one user on a project
func (s *AuthorizationService) RevokeRole(ctx context.Context, email string, projectUUID uuid.UUID) error {
	email = identity.NormalizeEmail(email)
	if _, err := s.authRepo.FindByUserAndProject(ctx, email, projectUUID); err != nil {
		return err
	}
	if err := s.authRepo.Delete(ctx, email, projectUUID); err != nil {
		return err
	}
	s.logger.Info("Project role revoked",
		zap.String("user_email", email),
		zap.String("project_uuid", projectUUID.String()))
	return nil
}
