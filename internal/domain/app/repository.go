package app

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows App listings. Empty fields do not filter.
type Filter struct {
	ProjectUUID uuid.UUID
	Codes       []string
}

// Repository defines the interface for App persistence operations
type Repository interface {
	// Create inserts a new App
	Create(ctx context.Context, app *App) error

	// Update saves code, config and flags of an existing App
	Update(ctx context.Context, app *App) error

	// Delete removes an App together with its catalogs, products, feeds and templates
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID returns the App or ErrAppNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*App, error)

	// FindByFlowObjectUUID returns the App paired with a remote channel or ErrAppNotFound
	FindByFlowObjectUUID(ctx context.Context, flowObjectUUID uuid.UUID) (*App, error)

	// FindAll lists Apps matching the filter, newest first
	FindAll(ctx context.Context, filter Filter) ([]*App, error)
}
