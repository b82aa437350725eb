package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows account transaction listings.
type ListFilter struct {
	StartDate    *time.Time
	EndDate      *time.Time
	CreditCardID *uuid.UUID
	Limit        int
}

// Repository defines the interface for transaction data access.
type Repository interface {
	// Create creates a single transaction
	Create(ctx context.Context, t *Transaction) error

	// CreateBatch creates a set of transactions atomically (installment
	// expansion, occurrence processing)
	CreateBatch(ctx context.Context, ts []*Transaction) error

	// GetByID retrieves a transaction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// ListByAccount retrieves transactions for an account, date-ascending
	ListByAccount(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]*Transaction, error)

	// ListByInstallmentsGroup retrieves every member of an installment group
	ListByInstallmentsGroup(ctx context.Context, groupID uuid.UUID) ([]*Transaction, error)

	// ListExceptions retrieves the exception rows of a recurrence group
	ListExceptions(ctx context.Context, recurrenceGroupID uuid.UUID) ([]*Transaction, error)

	// Update updates an existing transaction
	Update(ctx context.Context, t *Transaction) error

	// Delete deletes a transaction by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateByGroup applies field changes to every member of an installment
	// group, optionally restricted to installments >= minInstallment.
	// Returns the number of rows changed.
	UpdateByGroup(ctx context.Context, groupID uuid.UUID, minInstallment *int, fields FieldChange) (int64, error)

	// ApplyPlan executes an edit-scope plan inside one database transaction,
	// so a concurrent read never observes a partially-updated group.
	ApplyPlan(ctx context.Context, plan *Plan) error
}

// CardConfig exposes the card-module collaborations this service needs:
// closing-day lookup for installment expansion, and invoice-cache
// invalidation when card rows change. Implemented by the card module.
type CardConfig interface {
	ClosingDay(ctx context.Context, cardID uuid.UUID) (int, error)
	InvalidateCard(ctx context.Context, cardID uuid.UUID)
}
