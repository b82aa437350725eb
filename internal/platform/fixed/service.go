package fixed

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/pkg/period"
)

// Service provides business logic for fixed cashflow operations.
type Service struct {
	repo Repository
	txs  TransactionStore
}

// NewService creates a new fixed cashflow service
func NewService(repo Repository, txs TransactionStore) *Service {
	return &Service{repo: repo, txs: txs}
}

// Create creates a new template for an account.
func (s *Service) Create(ctx context.Context, f *FixedCashflow) (*FixedCashflow, error) {
	if err := f.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	f.ID = uuid.New()
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create fixed cashflow: %w", err)
	}
	return f, nil
}

// GetByID retrieves a template by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*FixedCashflow, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all templates for an account.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*FixedCashflow, error) {
	defs, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed cashflows: %w", err)
	}
	return defs, nil
}

// Update updates an existing template.
func (s *Service) Update(ctx context.Context, f *FixedCashflow) (*FixedCashflow, error) {
	if err := f.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.repo.GetByID(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	f.AccountID = existing.AccountID

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to update fixed cashflow: %w", err)
	}
	return f, nil
}

// Delete deletes a template.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete fixed cashflow: %w", err)
	}
	return nil
}

// MaterializeMonth expands every active template of an account into its
// occurrence for the given month, merging persisted exceptions, sorted
// ascending by date. Virtual projections carry a zero ID; persisted
// exception rows keep theirs.
func (s *Service) MaterializeMonth(ctx context.Context, accountID uuid.UUID, month period.MonthKey) ([]Occurrence, error) {
	return s.materialize(ctx, accountID, Window{Start: month.Start(), End: month.End()})
}

// MaterializeWindow expands every active template of an account across an
// arbitrary inclusive date window.
func (s *Service) MaterializeWindow(ctx context.Context, accountID uuid.UUID, window Window) ([]Occurrence, error) {
	return s.materialize(ctx, accountID, window)
}

func (s *Service) materialize(ctx context.Context, accountID uuid.UUID, window Window) ([]Occurrence, error) {
	defs, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed cashflows: %w", err)
	}

	var all []Occurrence
	for _, def := range defs {
		exceptions, err := s.txs.ListExceptions(ctx, def.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list exceptions: %w", err)
		}

		seq, err := Materialize(def, window, exceptions)
		if err != nil {
			return nil, err
		}
		for occ := range seq {
			all = append(all, occ)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.Before(all[j].Date)
	})
	return all, nil
}

// ProcessMonth promotes the month's template projections into persisted
// exception rows, which marks them as settled. Occurrences already backed
// by a row are left alone, so processing the same month twice is a no-op.
func (s *Service) ProcessMonth(ctx context.Context, accountID uuid.UUID, month period.MonthKey) (int, error) {
	occurrences, err := s.MaterializeMonth(ctx, accountID, month)
	if err != nil {
		return 0, err
	}

	rows := make([]*transaction.Transaction, 0, len(occurrences))
	for i := range occurrences {
		if occurrences[i].FromException {
			continue
		}
		row := occurrences[i].Transaction
		row.ID = uuid.New()
		row.Paid = true
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.txs.CreateBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to persist occurrences: %w", err)
	}
	return len(rows), nil
}
