// Package fixed holds recurring cashflow templates and their materialization
// into monthly transaction occurrences.
package fixed

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/pkg/money"
	"github.com/nexfin/nexfin/pkg/period"
)

// defaultDueDay anchors occurrences when the template has no due day.
const defaultDueDay = 1

// FixedCashflow is a recurring income or expense template. It represents
// nothing postable by itself; the materializer projects it into concrete
// occurrences per queried month. The template's ID doubles as the recurrence
// group id its exception rows carry.
type FixedCashflow struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	AccountID   uuid.UUID        `json:"account_id" db:"account_id"`
	Description string           `json:"description" db:"description"`
	Amount      money.Cents      `json:"amount" db:"amount_cents"`
	Kind        transaction.Kind `json:"kind" db:"kind"`
	DueDay      *int             `json:"due_day,omitempty" db:"due_day"`
	StartMonth  period.MonthKey  `json:"start_month" db:"start_month"`
	EndMonth    *period.MonthKey `json:"end_month,omitempty" db:"end_month"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// ValidateCreate validates template fields for creation.
func (f *FixedCashflow) ValidateCreate() error {
	if f.AccountID == uuid.Nil {
		return ErrInvalidAccountID
	}

	if f.Description == "" {
		return ErrMissingDescription
	}

	if f.Kind != transaction.KindIncome && f.Kind != transaction.KindExpense {
		return ErrInvalidKind
	}

	if f.DueDay != nil && (*f.DueDay < 1 || *f.DueDay > 31) {
		return ErrInvalidDueDay
	}

	if f.EndMonth != nil && f.EndMonth.Before(f.StartMonth) {
		return ErrInvalidActiveRange
	}

	return nil
}

// ActiveIn reports whether the template covers the given month.
func (f *FixedCashflow) ActiveIn(m period.MonthKey) bool {
	if m.Before(f.StartMonth) {
		return false
	}
	if f.EndMonth != nil && m.After(*f.EndMonth) {
		return false
	}
	return true
}

// OccurrenceDate is the deterministic occurrence date within a month: the
// due day clamped to the month's length, or the first when unset.
func (f *FixedCashflow) OccurrenceDate(m period.MonthKey) time.Time {
	day := defaultDueDay
	if f.DueDay != nil {
		day = *f.DueDay
	}
	return m.Date(day)
}

// Projection builds the virtual transaction an occurrence stands for. The
// row is unpersisted: no ID until processing promotes it.
func (f *FixedCashflow) Projection(date time.Time) *transaction.Transaction {
	groupID := f.ID
	d := date
	return &transaction.Transaction{
		AccountID:         f.AccountID,
		Kind:              f.Kind,
		Amount:            f.Amount,
		Date:              date,
		Description:       f.Description,
		RecurrenceGroupID: &groupID,
		ExceptionForDate:  &d,
	}
}
