package identity

import (
	"context"

	"github.com/google/uuid"
)

// AuthorizationRepository defines the interface for project authorization persistence
type AuthorizationRepository interface {
	// FindByUserAndProject returns the authorization for the pair or ErrAuthorizationNotFound
	FindByUserAndProject(ctx context.Context, email string, projectUUID uuid.UUID) (*ProjectAuthorization, error)

	// ListByProject returns every authorization granted on a project
	ListByProject(ctx context.Context, projectUUID uuid.UUID) ([]*ProjectAuthorization, error)

	// Save inserts or updates the single record for (user, project)
	Save(ctx context.Context, auth *ProjectAuthorization) error

	// Delete removes the record for (user, project)
	Delete(ctx context.Context, email string, projectUUID uuid.UUID) error
}
