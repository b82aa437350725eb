package category

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service provides business logic for category operations.
type Service struct {
	repo Repository
}

// NewService creates a new category service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new category, rejecting duplicate names within the
// account (case-insensitive).
func (s *Service) Create(ctx context.Context, c *Category) (*Category, error) {
	if err := c.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.repo.ListByAccount(ctx, c.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	for _, other := range existing {
		if strings.EqualFold(other.Name, c.Name) {
			return nil, ErrDuplicateName
		}
	}

	c.ID = uuid.New()
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

// GetByID retrieves a category by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all categories for an account.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*Category, error) {
	categories, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Update updates a category.
func (s *Service) Update(ctx context.Context, c *Category) (*Category, error) {
	if err := c.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.AccountID = existing.AccountID

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

// Delete deletes a category.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
