package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexfin/nexfin/internal/platform/debt"
)

// DebtRepository implements the debt repository using PostgreSQL
type DebtRepository struct {
	pool *pgxpool.Pool
}

// NewDebtRepository creates a new PostgreSQL debt repository
func NewDebtRepository(pool *pgxpool.Pool) *DebtRepository {
	return &DebtRepository{pool: pool}
}

// Create creates a new debt
func (r *DebtRepository) Create(ctx context.Context, d *debt.Debt) error {
	query := `
		INSERT INTO debts (id, account_id, name, balance_cents, interest_rate_bps, rate_period, target_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query,
		d.ID,
		d.AccountID,
		d.Name,
		int64(d.Balance),
		d.InterestRate,
		string(d.RatePeriod),
		d.TargetDate,
		d.Notes,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create debt: %w", err)
	}

	return nil
}

// GetByID retrieves a debt by ID
func (r *DebtRepository) GetByID(ctx context.Context, id uuid.UUID) (*debt.Debt, error) {
	query := `
		SELECT id, account_id, name, balance_cents, interest_rate_bps, rate_period, target_date, notes, created_at, updated_at
		FROM debts
		WHERE id = $1
	`

	d := &debt.Debt{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.AccountID,
		&d.Name,
		&d.Balance,
		&d.InterestRate,
		&d.RatePeriod,
		&d.TargetDate,
		&d.Notes,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, debt.ErrDebtNotFound
		}
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}

	return d, nil
}

// ListByAccount retrieves all debts for an account
func (r *DebtRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*debt.Debt, error) {
	query := `
		SELECT id, account_id, name, balance_cents, interest_rate_bps, rate_period, target_date, notes, created_at, updated_at
		FROM debts
		WHERE account_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query debts: %w", err)
	}
	defer rows.Close()

	var debts []*debt.Debt
	for rows.Next() {
		d := &debt.Debt{}
		err := rows.Scan(
			&d.ID,
			&d.AccountID,
			&d.Name,
			&d.Balance,
			&d.InterestRate,
			&d.RatePeriod,
			&d.TargetDate,
			&d.Notes,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating debts: %w", err)
	}

	return debts, nil
}

// Update updates an existing debt
func (r *DebtRepository) Update(ctx context.Context, d *debt.Debt) error {
	query := `
		UPDATE debts
		SET name = $1, balance_cents = $2, interest_rate_bps = $3, rate_period = $4, target_date = $5, notes = $6, updated_at = $7
		WHERE id = $8
	`

	d.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, query,
		d.Name,
		int64(d.Balance),
		d.InterestRate,
		string(d.RatePeriod),
		d.TargetDate,
		d.Notes,
		d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", err)
	}

	if result.RowsAffected() == 0 {
		return debt.ErrDebtNotFound
	}

	return nil
}

// Delete deletes a debt by ID
func (r *DebtRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM debts WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}

	if result.RowsAffected() == 0 {
		return debt.ErrDebtNotFound
	}

	return nil
}
