package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexfin/nexfin/internal/platform/card"
	"github.com/nexfin/nexfin/pkg/period"
)

// CardRepository implements the credit card repository using PostgreSQL.
// Invoice months are stored as their YYYY-MM key text.
type CardRepository struct {
	pool *pgxpool.Pool
}

// NewCardRepository creates a new PostgreSQL card repository
func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

// Create creates a new credit card
func (r *CardRepository) Create(ctx context.Context, c *card.CreditCard) error {
	query := `
		INSERT INTO credit_cards (id, account_id, name, brand, limit_cents, closing_day, due_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.AccountID,
		c.Name,
		c.Brand,
		int64(c.Limit),
		c.ClosingDay,
		c.DueDay,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create credit card: %w", err)
	}

	return nil
}

// GetByID retrieves a credit card by ID
func (r *CardRepository) GetByID(ctx context.Context, id uuid.UUID) (*card.CreditCard, error) {
	query := `
		SELECT id, account_id, name, brand, limit_cents, closing_day, due_day, created_at, updated_at
		FROM credit_cards
		WHERE id = $1
	`

	c := &card.CreditCard{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.AccountID,
		&c.Name,
		&c.Brand,
		&c.Limit,
		&c.ClosingDay,
		&c.DueDay,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, card.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get credit card: %w", err)
	}

	return c, nil
}

// ListByAccount retrieves all credit cards for an account
func (r *CardRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*card.CreditCard, error) {
	query := `
		SELECT id, account_id, name, brand, limit_cents, closing_day, due_day, created_at, updated_at
		FROM credit_cards
		WHERE account_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit cards: %w", err)
	}
	defer rows.Close()

	var cards []*card.CreditCard
	for rows.Next() {
		c := &card.CreditCard{}
		err := rows.Scan(
			&c.ID,
			&c.AccountID,
			&c.Name,
			&c.Brand,
			&c.Limit,
			&c.ClosingDay,
			&c.DueDay,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credit card: %w", err)
		}
		cards = append(cards, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credit cards: %w", err)
	}

	return cards, nil
}

// Update updates an existing credit card
func (r *CardRepository) Update(ctx context.Context, c *card.CreditCard) error {
	query := `
		UPDATE credit_cards
		SET name = $1, brand = $2, limit_cents = $3, closing_day = $4, due_day = $5, updated_at = $6
		WHERE id = $7
	`

	c.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, query,
		c.Name,
		c.Brand,
		int64(c.Limit),
		c.ClosingDay,
		c.DueDay,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update credit card: %w", err)
	}

	if result.RowsAffected() == 0 {
		return card.ErrCardNotFound
	}

	return nil
}

// Delete deletes a credit card by ID
func (r *CardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM credit_cards WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete credit card: %w", err)
	}

	if result.RowsAffected() == 0 {
		return card.ErrCardNotFound
	}

	return nil
}

// CreatePayment records an invoice payment
func (r *CardRepository) CreatePayment(ctx context.Context, p *card.InvoicePayment) error {
	query := `
		INSERT INTO invoice_payments (id, credit_card_id, month, amount_cents, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	p.CreatedAt = time.Now()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.CreditCardID,
		p.Month.String(),
		int64(p.Amount),
		p.PaidAt,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice payment: %w", err)
	}

	return nil
}

// ListPayments retrieves a card's invoice payments within an inclusive month range
func (r *CardRepository) ListPayments(ctx context.Context, cardID uuid.UUID, from, to period.MonthKey) ([]*card.InvoicePayment, error) {
	query := `
		SELECT id, credit_card_id, month, amount_cents, paid_at, created_at
		FROM invoice_payments
		WHERE credit_card_id = $1 AND month >= $2 AND month <= $3
		ORDER BY month
	`

	rows, err := r.pool.Query(ctx, query, cardID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice payments: %w", err)
	}
	defer rows.Close()

	var payments []*card.InvoicePayment
	for rows.Next() {
		p := &card.InvoicePayment{}
		var month string
		err := rows.Scan(
			&p.ID,
			&p.CreditCardID,
			&month,
			&p.Amount,
			&p.PaidAt,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice payment: %w", err)
		}
		p.Month, err = period.ParseMonthKey(month)
		if err != nil {
			return nil, fmt.Errorf("failed to parse payment month: %w", err)
		}
		payments = append(payments, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice payments: %w", err)
	}

	return payments, nil
}
