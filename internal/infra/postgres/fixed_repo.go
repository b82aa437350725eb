package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexfin/nexfin/internal/platform/fixed"
	"github.com/nexfin/nexfin/pkg/period"
)

// FixedRepository implements the fixed cashflow repository using PostgreSQL.
// Months are stored as their YYYY-MM key text, which sorts and compares
// correctly as a string.
type FixedRepository struct {
	pool *pgxpool.Pool
}

// NewFixedRepository creates a new PostgreSQL fixed cashflow repository
func NewFixedRepository(pool *pgxpool.Pool) *FixedRepository {
	return &FixedRepository{pool: pool}
}

// Create creates a new template
func (r *FixedRepository) Create(ctx context.Context, f *fixed.FixedCashflow) error {
	query := `
		INSERT INTO fixed_cashflows (id, account_id, description, amount_cents, kind, due_day, start_month, end_month, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query,
		f.ID,
		f.AccountID,
		f.Description,
		int64(f.Amount),
		string(f.Kind),
		f.DueDay,
		f.StartMonth.String(),
		monthString(f.EndMonth),
		f.CreatedAt,
		f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create fixed cashflow: %w", err)
	}

	return nil
}

// GetByID retrieves a template by ID
func (r *FixedRepository) GetByID(ctx context.Context, id uuid.UUID) (*fixed.FixedCashflow, error) {
	query := `
		SELECT id, account_id, description, amount_cents, kind, due_day, start_month, end_month, created_at, updated_at
		FROM fixed_cashflows
		WHERE id = $1
	`

	f, err := scanFixed(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fixed.ErrFixedNotFound
		}
		return nil, fmt.Errorf("failed to get fixed cashflow: %w", err)
	}
	return f, nil
}

// ListByAccount retrieves all templates for an account
func (r *FixedRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*fixed.FixedCashflow, error) {
	query := `
		SELECT id, account_id, description, amount_cents, kind, due_day, start_month, end_month, created_at, updated_at
		FROM fixed_cashflows
		WHERE account_id = $1
		ORDER BY start_month, created_at
	`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixed cashflows: %w", err)
	}
	defer rows.Close()

	var defs []*fixed.FixedCashflow
	for rows.Next() {
		f, err := scanFixed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixed cashflow: %w", err)
		}
		defs = append(defs, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fixed cashflows: %w", err)
	}

	return defs, nil
}

// Update updates an existing template
func (r *FixedRepository) Update(ctx context.Context, f *fixed.FixedCashflow) error {
	query := `
		UPDATE fixed_cashflows
		SET description = $1, amount_cents = $2, kind = $3, due_day = $4, start_month = $5, end_month = $6, updated_at = $7
		WHERE id = $8
	`

	f.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, query,
		f.Description,
		int64(f.Amount),
		string(f.Kind),
		f.DueDay,
		f.StartMonth.String(),
		monthString(f.EndMonth),
		f.UpdatedAt,
		f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update fixed cashflow: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fixed.ErrFixedNotFound
	}

	return nil
}

// Delete deletes a template by ID
func (r *FixedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM fixed_cashflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fixed cashflow: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fixed.ErrFixedNotFound
	}

	return nil
}

func scanFixed(row pgx.Row) (*fixed.FixedCashflow, error) {
	f := &fixed.FixedCashflow{}
	var startMonth string
	var endMonth *string

	err := row.Scan(
		&f.ID,
		&f.AccountID,
		&f.Description,
		&f.Amount,
		&f.Kind,
		&f.DueDay,
		&startMonth,
		&endMonth,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if f.StartMonth, err = period.ParseMonthKey(startMonth); err != nil {
		return nil, fmt.Errorf("failed to parse start month: %w", err)
	}
	if endMonth != nil {
		end, err := period.ParseMonthKey(*endMonth)
		if err != nil {
			return nil, fmt.Errorf("failed to parse end month: %w", err)
		}
		f.EndMonth = &end
	}
	return f, nil
}

func monthString(m *period.MonthKey) *string {
	if m == nil {
		return nil
	}
	s := m.String()
	return &s
}
