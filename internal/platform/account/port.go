package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for account data access.
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, a *Account) error

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// ListByUser retrieves all accounts owned by a user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Account, error)

	// Update updates an existing account
	Update(ctx context.Context, a *Account) error

	// Delete deletes an account by ID
	Delete(ctx context.Context, id uuid.UUID) error
}
