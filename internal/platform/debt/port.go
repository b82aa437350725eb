package debt

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for debt data access.
type Repository interface {
	// Create creates a new debt
	Create(ctx context.Context, d *Debt) error

	// GetByID retrieves a debt by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Debt, error)

	// ListByAccount retrieves all debts for an account
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Debt, error)

	// Update updates an existing debt
	Update(ctx context.Context, d *Debt) error

	// Delete deletes a debt by ID
	Delete(ctx context.Context, id uuid.UUID) error
}
