package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service provides business logic for transaction operations.
type Service struct {
	repo  Repository
	cards CardConfig
}

// NewService creates a new transaction service
func NewService(repo Repository, cards CardConfig) *Service {
	return &Service{repo: repo, cards: cards}
}

// Create persists a new transaction. A card-linked draft with installments
// greater than one is expanded into the full installment group; the returned
// slice holds every row created.
func (s *Service) Create(ctx context.Context, draft *Transaction, installments int) ([]*Transaction, error) {
	if installments < 1 {
		return nil, ErrInvalidInstallmentCount
	}

	normalizeAmount(draft)

	if draft.CreditCardID != nil && installments > 1 {
		closingDay, err := s.cards.ClosingDay(ctx, *draft.CreditCardID)
		if err != nil {
			return nil, fmt.Errorf("failed to load card configuration: %w", err)
		}

		drafts, err := ExpandInstallments(InstallmentPlan{
			AccountID:    draft.AccountID,
			CreditCardID: *draft.CreditCardID,
			ClosingDay:   closingDay,
			Kind:         draft.Kind,
			Total:        draft.Amount,
			Installments: installments,
			FirstDate:    draft.Date,
			Description:  draft.Description,
			CategoryID:   draft.CategoryID,
		})
		if err != nil {
			return nil, err
		}

		for _, d := range drafts {
			d.ID = uuid.New()
			d.Paid = draft.Paid
			if err := d.ValidateCreate(); err != nil {
				return nil, fmt.Errorf("validation failed: %w", err)
			}
		}

		if err := s.repo.CreateBatch(ctx, drafts); err != nil {
			return nil, fmt.Errorf("failed to create installment group: %w", err)
		}
		s.cards.InvalidateCard(ctx, *draft.CreditCardID)
		return drafts, nil
	}

	if err := draft.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	draft.ID = uuid.New()
	if err := s.repo.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	if draft.CreditCardID != nil {
		s.cards.InvalidateCard(ctx, *draft.CreditCardID)
	}
	return []*Transaction{draft}, nil
}

// GetByID retrieves a transaction by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves transactions for an account.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	txs, err := s.repo.ListByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// Update applies a scoped mutation to a transaction. Group members resolve
// through the edit-scope planner and the resulting plan is applied
// atomically; standalone transactions mutate directly regardless of scope.
func (s *Service) Update(ctx context.Context, id uuid.UUID, scope EditScope, change FieldChange) error {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	group, err := s.loadGroup(ctx, target)
	if err != nil {
		return err
	}

	plan, err := ResolveEdit(target, scope, group, change)
	if err != nil {
		return err
	}

	if err := s.repo.ApplyPlan(ctx, plan); err != nil {
		return fmt.Errorf("failed to apply edit plan: %w", err)
	}
	if target.CreditCardID != nil {
		s.cards.InvalidateCard(ctx, *target.CreditCardID)
	}
	return nil
}

// Delete applies a scoped deletion to a transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, scope EditScope) error {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	group, err := s.loadGroup(ctx, target)
	if err != nil {
		return err
	}

	plan, err := ResolveDelete(target, scope, group)
	if err != nil {
		return err
	}

	if err := s.repo.ApplyPlan(ctx, plan); err != nil {
		return fmt.Errorf("failed to apply delete plan: %w", err)
	}
	if target.CreditCardID != nil {
		s.cards.InvalidateCard(ctx, *target.CreditCardID)
	}
	return nil
}

func (s *Service) loadGroup(ctx context.Context, target *Transaction) ([]*Transaction, error) {
	switch target.Variant() {
	case VariantInstallmentMember:
		group, err := s.repo.ListByInstallmentsGroup(ctx, *target.InstallmentsGroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to load installment group: %w", err)
		}
		return group, nil
	case VariantRecurrenceException:
		group, err := s.repo.ListExceptions(ctx, *target.RecurrenceGroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to load recurrence exceptions: %w", err)
		}
		return group, nil
	default:
		return nil, nil
	}
}

// normalizeAmount keeps card credits negative so invoice totals net
// correctly even when the client sends the magnitude.
func normalizeAmount(t *Transaction) {
	if t.Kind == KindCredit && t.Amount > 0 {
		t.Amount = -t.Amount
	}
}
