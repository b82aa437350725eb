package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service provides business logic for account operations.
type Service struct {
	repo Repository
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new account for a user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name string) (*Account, error) {
	a := &Account{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	}
	if err := a.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return a, nil
}

// GetByID retrieves an account by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// GetOwned retrieves an account and verifies the user owns it.
func (s *Service) GetOwned(ctx context.Context, id, userID uuid.UUID) (*Account, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrNotOwner
	}
	return a, nil
}

// List retrieves all accounts owned by a user.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Account, error) {
	accounts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Rename renames an account owned by the user.
func (s *Service) Rename(ctx context.Context, id, userID uuid.UUID, name string) (*Account, error) {
	a, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if name == "" {
		return nil, ErrMissingName
	}
	a.Name = name

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return a, nil
}

// Delete deletes an account owned by the user.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.GetOwned(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
