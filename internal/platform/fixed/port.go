package fixed

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/transaction"
)

// Repository defines the interface for fixed cashflow data access.
type Repository interface {
	// Create creates a new template
	Create(ctx context.Context, f *FixedCashflow) error

	// GetByID retrieves a template by ID
	GetByID(ctx context.Context, id uuid.UUID) (*FixedCashflow, error)

	// ListByAccount retrieves all templates for an account
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*FixedCashflow, error)

	// Update updates an existing template
	Update(ctx context.Context, f *FixedCashflow) error

	// Delete deletes a template by ID
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionStore is the slice of the transaction boundary the
// materializer needs: reading a group's exception rows and promoting
// occurrences into persisted rows. Satisfied by transaction.Repository.
type TransactionStore interface {
	ListExceptions(ctx context.Context, recurrenceGroupID uuid.UUID) ([]*transaction.Transaction, error)
	CreateBatch(ctx context.Context, ts []*transaction.Transaction) error
}
