package card

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexfin/nexfin/pkg/period"
)

// Repository defines the interface for credit card data access.
type Repository interface {
	// Create creates a new credit card
	Create(ctx context.Context, c *CreditCard) error

	// GetByID retrieves a credit card by ID
	GetByID(ctx context.Context, id uuid.UUID) (*CreditCard, error)

	// ListByAccount retrieves all credit cards for an account
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*CreditCard, error)

	// Update updates an existing credit card
	Update(ctx context.Context, c *CreditCard) error

	// Delete deletes a credit card by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// CreatePayment records an invoice payment
	CreatePayment(ctx context.Context, p *InvoicePayment) error

	// ListPayments retrieves the card's invoice payments within a month range
	ListPayments(ctx context.Context, cardID uuid.UUID, from, to period.MonthKey) ([]*InvoicePayment, error)
}
