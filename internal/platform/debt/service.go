package debt

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service provides business logic for debt operations.
type Service struct {
	repo Repository
}

// NewService creates a new debt service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new debt.
func (s *Service) Create(ctx context.Context, d *Debt) (*Debt, error) {
	if err := d.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	d.ID = uuid.New()
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create debt: %w", err)
	}
	return d, nil
}

// GetByID retrieves a debt by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Debt, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all debts for an account.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*Debt, error) {
	debts, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	return debts, nil
}

// Update updates a debt.
func (s *Service) Update(ctx context.Context, d *Debt) (*Debt, error) {
	if err := d.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.repo.GetByID(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.AccountID = existing.AccountID

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update debt: %w", err)
	}
	return d, nil
}

// Delete deletes a debt.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	return nil
}
