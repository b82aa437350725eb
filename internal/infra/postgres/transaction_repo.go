package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexfin/nexfin/internal/platform/fixed"
	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/pkg/period"
)

// execer abstracts over the pool and an open pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const transactionColumns = `id, account_id, kind, amount_cents, date, description, category_id, paid,
	credit_card_id, installments_group_id, current_installment, installments,
	recurrence_group_id, exception_for_date, skipped, created_at, updated_at`

// TransactionRepository implements the transaction repository using
// PostgreSQL. Edit-scope plans are applied inside a single transaction so a
// concurrent read never observes a half-mutated group.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create creates a single transaction
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	if err := insertTransaction(ctx, r.pool, t); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateBatch creates a set of transactions atomically
func (r *TransactionRepository) CreateBatch(ctx context.Context, ts []*transaction.Transaction) error {
	if len(ts) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	for _, t := range ts {
		t.CreatedAt = now
		t.UpdatedAt = now
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if err := insertTransaction(ctx, tx, t); err != nil {
			return fmt.Errorf("failed to create transaction batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction batch: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// ListByAccount retrieves transactions for an account, date-ascending
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1`
	args := []any{accountID}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	if filter.CreditCardID != nil {
		args = append(args, *filter.CreditCardID)
		query += fmt.Sprintf(" AND credit_card_id = $%d", len(args))
	}

	query += " ORDER BY date, created_at"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.queryTransactions(ctx, query, args...)
}

// ListByInstallmentsGroup retrieves every member of an installment group
func (r *TransactionRepository) ListByInstallmentsGroup(ctx context.Context, groupID uuid.UUID) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE installments_group_id = $1
		ORDER BY current_installment`

	return r.queryTransactions(ctx, query, groupID)
}

// ListExceptions retrieves the exception rows of a recurrence group
func (r *TransactionRepository) ListExceptions(ctx context.Context, recurrenceGroupID uuid.UUID) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE recurrence_group_id = $1
		ORDER BY exception_for_date`

	return r.queryTransactions(ctx, query, recurrenceGroupID)
}

// Update updates an existing transaction
func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET kind = $1, amount_cents = $2, date = $3, description = $4, category_id = $5,
			paid = $6, skipped = $7, updated_at = $8
		WHERE id = $9
	`

	t.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, query,
		string(t.Kind),
		int64(t.Amount),
		t.Date,
		t.Description,
		t.CategoryID,
		t.Paid,
		t.Skipped,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound
	}
	return nil
}

// Delete deletes a transaction by ID
func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound
	}
	return nil
}

// UpdateByGroup applies field changes to every member of an installment
// group, optionally restricted to installments >= minInstallment
func (r *TransactionRepository) UpdateByGroup(ctx context.Context, groupID uuid.UUID, minInstallment *int, fields transaction.FieldChange) (int64, error) {
	set, args := fieldChangeSet(fields)
	if len(set) == 0 {
		return 0, nil
	}

	args = append(args, groupID)
	query := fmt.Sprintf("UPDATE transactions SET %s WHERE installments_group_id = $%d",
		strings.Join(set, ", "), len(args))

	if minInstallment != nil {
		args = append(args, *minInstallment)
		query += fmt.Sprintf(" AND current_installment >= $%d", len(args))
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update group: %w", err)
	}
	return result.RowsAffected(), nil
}

// ApplyPlan executes an edit-scope plan inside one database transaction.
func (r *TransactionRepository) ApplyPlan(ctx context.Context, plan *transaction.Plan) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ru := range plan.UpdateRows {
		if err := applyRowUpdate(ctx, tx, ru); err != nil {
			return err
		}
	}

	if len(plan.DeleteRowIDs) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = ANY($1)`, plan.DeleteRowIDs); err != nil {
			return fmt.Errorf("failed to delete rows: %w", err)
		}
	}

	if plan.UpsertException != nil {
		if err := upsertException(ctx, tx, plan.UpsertException); err != nil {
			return err
		}
	}

	if plan.UpdateTemplate != nil {
		if err := updateTemplate(ctx, tx, plan.UpdateTemplate); err != nil {
			return err
		}
	}

	if plan.SplitTemplate != nil {
		if err := splitTemplate(ctx, tx, plan.SplitTemplate); err != nil {
			return err
		}
	}

	if plan.TruncateTemplateAt != nil {
		_, err := tx.Exec(ctx,
			`UPDATE fixed_cashflows SET end_month = $1, updated_at = $2 WHERE id = $3`,
			plan.TruncateTemplateAt.String(), time.Now(), plan.GroupID)
		if err != nil {
			return fmt.Errorf("failed to truncate template: %w", err)
		}
	}

	if plan.DeleteTemplate {
		if _, err := tx.Exec(ctx, `DELETE FROM fixed_cashflows WHERE id = $1`, plan.GroupID); err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit plan: %w", err)
	}
	return nil
}

func applyRowUpdate(ctx context.Context, tx pgx.Tx, ru transaction.RowUpdate) error {
	set, args := fieldChangeSet(ru.Fields)
	if len(set) == 0 {
		return nil
	}

	args = append(args, ru.ID)
	query := fmt.Sprintf("UPDATE transactions SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args))

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}
	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound
	}
	return nil
}

// upsertException writes the exception row for one occurrence. When the
// occurrence already has an exception row (an earlier override, or a paid
// occurrence promoted by month processing) that row is the seed, so fields
// the change does not name keep their persisted values. Only a first-time
// override seeds from the template.
func upsertException(ctx context.Context, tx pgx.Tx, up *transaction.ExceptionUpsert) error {
	now := time.Now()

	existing, err := getException(ctx, tx, up.GroupID, up.Date)
	if err != nil {
		return err
	}
	if existing != nil {
		up.Fields.Apply(existing)
		existing.Skipped = up.Skipped
		existing.UpdatedAt = now

		query := `
			UPDATE transactions SET kind = $1, amount_cents = $2, date = $3,
				description = $4, category_id = $5, paid = $6, skipped = $7,
				updated_at = $8
			WHERE id = $9
		`
		_, err = tx.Exec(ctx, query,
			string(existing.Kind), int64(existing.Amount), existing.Date,
			existing.Description, existing.CategoryID, existing.Paid,
			existing.Skipped, existing.UpdatedAt, existing.ID)
		if err != nil {
			return fmt.Errorf("failed to update exception: %w", err)
		}
		return nil
	}

	def, err := getTemplate(ctx, tx, up.GroupID)
	if err != nil {
		return err
	}

	row := def.Projection(up.Date)
	up.Fields.Apply(row)
	row.ID = uuid.New()
	row.Skipped = up.Skipped
	row.CreatedAt = now
	row.UpdatedAt = now

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (recurrence_group_id, exception_for_date)
		DO UPDATE SET kind = EXCLUDED.kind, amount_cents = EXCLUDED.amount_cents,
			date = EXCLUDED.date, description = EXCLUDED.description,
			category_id = EXCLUDED.category_id, paid = EXCLUDED.paid,
			skipped = EXCLUDED.skipped, updated_at = EXCLUDED.updated_at
	`

	_, err = tx.Exec(ctx, query, transactionArgs(row)...)
	if err != nil {
		return fmt.Errorf("failed to upsert exception: %w", err)
	}
	return nil
}

func getException(ctx context.Context, tx pgx.Tx, groupID uuid.UUID, occurrence time.Time) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE recurrence_group_id = $1 AND exception_for_date = $2`

	t, err := scanTransaction(tx.QueryRow(ctx, query, groupID, occurrence))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load exception: %w", err)
	}
	return t, nil
}

func updateTemplate(ctx context.Context, tx pgx.Tx, tu *transaction.TemplateUpdate) error {
	set := []string{}
	args := []any{}

	if tu.Fields.Amount != nil {
		args = append(args, int64(*tu.Fields.Amount))
		set = append(set, fmt.Sprintf("amount_cents = $%d", len(args)))
	}
	if tu.Fields.Description != nil {
		args = append(args, *tu.Fields.Description)
		set = append(set, fmt.Sprintf("description = $%d", len(args)))
	}
	if tu.Fields.Date != nil {
		// A date edit on a template moves its due day.
		args = append(args, tu.Fields.Date.Day())
		set = append(set, fmt.Sprintf("due_day = $%d", len(args)))
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, time.Now())
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, tu.GroupID)
	query := fmt.Sprintf("UPDATE fixed_cashflows SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args))

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fixed.ErrFixedNotFound
	}
	return nil
}

// splitTemplate closes the template the month before AtMonth and starts a
// successor carrying the changed fields from AtMonth on.
func splitTemplate(ctx context.Context, tx pgx.Tx, ts *transaction.TemplateSplit) error {
	def, err := getTemplate(ctx, tx, ts.GroupID)
	if err != nil {
		return err
	}

	end := ts.AtMonth.Add(-1)
	now := time.Now()
	_, err = tx.Exec(ctx,
		`UPDATE fixed_cashflows SET end_month = $1, updated_at = $2 WHERE id = $3`,
		end.String(), now, ts.GroupID)
	if err != nil {
		return fmt.Errorf("failed to close template: %w", err)
	}

	successor := *def
	successor.ID = uuid.New()
	successor.StartMonth = ts.AtMonth
	successor.CreatedAt = now
	successor.UpdatedAt = now
	if ts.Fields.Amount != nil {
		successor.Amount = *ts.Fields.Amount
	}
	if ts.Fields.Description != nil {
		successor.Description = *ts.Fields.Description
	}
	if ts.Fields.Date != nil {
		day := ts.Fields.Date.Day()
		successor.DueDay = &day
	}

	var endMonth *string
	if successor.EndMonth != nil && !successor.EndMonth.Before(ts.AtMonth) {
		s := successor.EndMonth.String()
		endMonth = &s
	}

	query := `
		INSERT INTO fixed_cashflows (id, account_id, description, amount_cents, kind, due_day, start_month, end_month, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, query,
		successor.ID,
		successor.AccountID,
		successor.Description,
		int64(successor.Amount),
		string(successor.Kind),
		successor.DueDay,
		successor.StartMonth.String(),
		endMonth,
		successor.CreatedAt,
		successor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert successor template: %w", err)
	}

	// Exception rows dated inside the successor's range move with it, so an
	// override or a paid occurrence keeps suppressing its re-projection.
	_, err = tx.Exec(ctx,
		`UPDATE transactions SET recurrence_group_id = $1, updated_at = $2
		 WHERE recurrence_group_id = $3 AND exception_for_date >= $4`,
		successor.ID, now, ts.GroupID, ts.AtMonth.Date(1))
	if err != nil {
		return fmt.Errorf("failed to reattach exceptions: %w", err)
	}
	return nil
}

func getTemplate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*fixed.FixedCashflow, error) {
	query := `
		SELECT id, account_id, description, amount_cents, kind, due_day, start_month, end_month, created_at, updated_at
		FROM fixed_cashflows
		WHERE id = $1
	`

	f := &fixed.FixedCashflow{}
	var startMonth string
	var endMonth *string
	err := tx.QueryRow(ctx, query, id).Scan(
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fixed.ErrFixedNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if f.StartMonth, err = period.ParseMonthKey(startMonth); err != nil {
		return nil, fmt.Errorf("failed to parse template start month: %w", err)
	}
	if endMonth != nil {
		end, err := period.ParseMonthKey(*endMonth)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template end month: %w", err)
		}
		f.EndMonth = &end
	}
	return f, nil
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

func insertTransaction(ctx context.Context, q execer, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := q.Exec(ctx, query, transactionArgs(t)...)
	return err
}

func transactionArgs(t *transaction.Transaction) []any {
	return []any{
		t.ID,
		t.AccountID,
		string(t.Kind),
		int64(t.Amount),
		t.Date,
		t.Description,
		t.CategoryID,
		t.Paid,
		t.CreditCardID,
		t.InstallmentsGroupID,
		t.CurrentInstallment,
		t.Installments,
		t.RecurrenceGroupID,
		t.ExceptionForDate,
		t.Skipped,
		t.CreatedAt,
		t.UpdatedAt,
	}
}

func scanTransaction(row pgx.Row) (*transaction.Transaction, error) {
	t := &transaction.Transaction{}
	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Kind,
		&t.Amount,
		&t.Date,
		&t.Description,
		&t.CategoryID,
		&t.Paid,
		&t.CreditCardID,
		&t.InstallmentsGroupID,
		&t.CurrentInstallment,
		&t.Installments,
		&t.RecurrenceGroupID,
		&t.ExceptionForDate,
		&t.Skipped,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// fieldChangeSet renders a FieldChange as SQL SET clauses.
func fieldChangeSet(fields transaction.FieldChange) ([]string, []any) {
	set := []string{}
	args := []any{}

	if fields.Amount != nil {
		args = append(args, int64(*fields.Amount))
		set = append(set, fmt.Sprintf("amount_cents = $%d", len(args)))
	}
	if fields.Description != nil {
		args = append(args, *fields.Description)
		set = append(set, fmt.Sprintf("description = $%d", len(args)))
	}
	if fields.CategoryID != nil {
		args = append(args, *fields.CategoryID)
		set = append(set, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if fields.Date != nil {
		args = append(args, *fields.Date)
		set = append(set, fmt.Sprintf("date = $%d", len(args)))
	}
	if fields.Paid != nil {
		args = append(args, *fields.Paid)
		set = append(set, fmt.Sprintf("paid = $%d", len(args)))
	}

	if len(set) > 0 {
		args = append(args, time.Now())
		set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))
	}
	return set, args
}
