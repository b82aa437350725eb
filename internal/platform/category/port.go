package category

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for category data access.
type Repository interface {
	// Create creates a new category
	Create(ctx context.Context, c *Category) error

	// GetByID retrieves a category by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// ListByAccount retrieves all categories for an account
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Category, error)

	// Update updates an existing category
	Update(ctx context.Context, c *Category) error

	// Delete deletes a category by ID
	Delete(ctx context.Context, id uuid.UUID) error
}
