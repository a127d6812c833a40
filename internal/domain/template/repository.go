package template

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// Filter narrows template listings of one App
type Filter struct {
	AppID    uuid.UUID
	Name     string
	Category Category
}

// Repository defines persistence for templates and their translations
type Repository interface {
	// Create inserts a template without translations
	Create(ctx context.Context, m *Message) error

	// Delete removes a template with its translations, headers and buttons
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID returns the template of appID with translations loaded
	FindByID(ctx context.Context, appID, id uuid.UUID) (*Message, error)

	// ExistsByName reports whether appID already has a template called name
	ExistsByName(ctx context.Context, appID uuid.UUID, name string) (bool, error)

	// FindAll returns one page of templates ordered by creator
	FindAll(ctx context.Context, filter Filter, page shared.PageRequest) ([]*Message, int64, error)

	// CreateTranslation inserts a translation with its header and buttons atomically
	CreateTranslation(ctx context.Context, tr *Translation) error
}
