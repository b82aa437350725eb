package card

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/billing"
	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/pkg/money"
	"github.com/nexfin/nexfin/pkg/period"
)

// TransactionStore is the slice of the transaction boundary the aggregator
// needs. Satisfied by transaction.Repository.
type TransactionStore interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

// InvoiceCache caches computed invoices per (card, month). Implementations
// must treat failures as misses; a cold cache only costs recomputation.
type InvoiceCache interface {
	Get(ctx context.Context, cardID uuid.UUID, month period.MonthKey) (*Invoice, bool)
	Set(ctx context.Context, inv *Invoice)
	InvalidateCard(ctx context.Context, cardID uuid.UUID)
}

// Service provides business logic for credit card operations.
type Service struct {
	repo  Repository
	txs   TransactionStore
	cache InvoiceCache
}

// NewService creates a new card service. Cache may be nil.
func NewService(repo Repository, txs TransactionStore, cache InvoiceCache) *Service {
	return &Service{repo: repo, txs: txs, cache: cache}
}

// Create creates a new credit card.
func (s *Service) Create(ctx context.Context, c *CreditCard) (*CreditCard, error) {
	if err := c.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	c.ID = uuid.New()
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create credit card: %w", err)
	}
	return c, nil
}

// GetByID retrieves a credit card by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*CreditCard, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all credit cards for an account.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*CreditCard, error) {
	cards, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit cards: %w", err)
	}
	return cards, nil
}

// Update updates a credit card. Changing the closing day changes which
// invoice future reads resolve existing rows into, so cached invoices for
// the card are dropped.
func (s *Service) Update(ctx context.Context, c *CreditCard) (*CreditCard, error) {
	if err := c.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.AccountID = existing.AccountID

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update credit card: %w", err)
	}
	s.invalidate(ctx, c.ID)
	return c, nil
}

// Delete deletes a credit card.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete credit card: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// ClosingDay implements transaction.CardConfig for the installment expander.
func (s *Service) ClosingDay(ctx context.Context, cardID uuid.UUID) (int, error) {
	c, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return 0, err
	}
	return c.ClosingDay, nil
}

// Invoice derives a single card's invoice for a month, consulting the cache
// first.
func (s *Service) Invoice(ctx context.Context, cardID uuid.UUID, month period.MonthKey) (*Invoice, error) {
	if s.cache != nil {
		if inv, ok := s.cache.Get(ctx, cardID, month); ok {
			return inv, nil
		}
	}

	c, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoicesFor(ctx, c, MonthRange{From: month, To: month})
	if err != nil {
		return nil, err
	}

	inv := invoices[0]
	if s.cache != nil {
		s.cache.Set(ctx, inv)
	}
	return inv, nil
}

// Invoices derives a card's invoices across a month range.
func (s *Service) Invoices(ctx context.Context, cardID uuid.UUID, r MonthRange) ([]*Invoice, error) {
	c, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return s.invoicesFor(ctx, c, r)
}

// AccountInvoices derives the month's invoice for every card of an account.
func (s *Service) AccountInvoices(ctx context.Context, accountID uuid.UUID, month period.MonthKey) ([]*Invoice, error) {
	cards, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit cards: %w", err)
	}

	invoices := make([]*Invoice, 0, len(cards))
	for _, c := range cards {
		inv, err := s.Invoice(ctx, c.ID, month)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// PayInvoice records an invoice settlement for the month.
func (s *Service) PayInvoice(ctx context.Context, cardID uuid.UUID, month period.MonthKey, amount money.Cents, paidAt time.Time) (*InvoicePayment, error) {
	if amount <= 0 {
		return nil, ErrInvalidPayment
	}

	if _, err := s.repo.GetByID(ctx, cardID); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListPayments(ctx, cardID, month, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrDuplicatePayment
	}

	p := &InvoicePayment{
		ID:           uuid.New(),
		CreditCardID: cardID,
		Month:        month,
		Amount:       amount,
		PaidAt:       paidAt,
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	s.invalidate(ctx, cardID)
	return p, nil
}

// InvalidateCard drops the card's cached invoices. Called by transaction
// writes that touch card-linked rows.
func (s *Service) InvalidateCard(ctx context.Context, cardID uuid.UUID) {
	s.invalidate(ctx, cardID)
}

func (s *Service) invalidate(ctx context.Context, cardID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateCard(ctx, cardID)
	}
}

func (s *Service) invoicesFor(ctx context.Context, c *CreditCard, r MonthRange) ([]*Invoice, error) {
	if r.To.Before(r.From) {
		return nil, ErrInvalidRange
	}

	// Fetch rows across the full cycle span so late-closer lag months are
	// covered.
	start, _, err := billing.CyclePeriod(c.ClosingDay, r.From.Add(-1))
	if err != nil {
		return nil, err
	}
	_, end, err := billing.CyclePeriod(c.ClosingDay, r.To.Add(1))
	if err != nil {
		return nil, err
	}

	txs, err := s.txs.ListByAccount(ctx, c.AccountID, transaction.ListFilter{
		StartDate:    &start,
		EndDate:      &end,
		CreditCardID: &c.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list card transactions: %w", err)
	}

	payments, err := s.repo.ListPayments(ctx, c.ID, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return AggregateInvoices(c, txs, payments, r, time.Now().UTC())
}
