// Package transaction holds the transaction model and the two group
// algorithms built on it: installment expansion and edit-scope resolution.
package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexfin/nexfin/pkg/money"
)

// Kind classifies a transaction. Regular account movements are income or
// expense; card-linked movements are charge or credit. The explicit pair
// replaces sign inference on card rows — a credit still carries a negative
// amount so invoice totals net correctly, but the kind is authoritative.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	KindCharge  Kind = "charge"
	KindCredit  Kind = "credit"
)

// IsValid checks if the kind is one of the known values.
func (k Kind) IsValid() bool {
	switch k {
	case KindIncome, KindExpense, KindCharge, KindCredit:
		return true
	}
	return false
}

// IsCardKind reports whether the kind requires a credit-card reference.
func (k Kind) IsCardKind() bool {
	return k == KindCharge || k == KindCredit
}

// EditScope is the blast radius of a mutation against a grouped transaction.
type EditScope string

const (
	ScopeSingle EditScope = "single"
	ScopeAll    EditScope = "all"
	ScopeFuture EditScope = "future"
)

// IsValid checks if the scope is one of the known values.
func (s EditScope) IsValid() bool {
	switch s {
	case ScopeSingle, ScopeAll, ScopeFuture:
		return true
	}
	return false
}

// Variant is the closed set of shapes a transaction row can take. The
// edit-scope resolver switches on it exhaustively instead of probing
// optional fields.
type Variant int

const (
	VariantStandalone Variant = iota
	VariantInstallmentMember
	VariantRecurrenceException
)

// Transaction is an atomic financial event.
type Transaction struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	AccountID    uuid.UUID   `json:"account_id" db:"account_id"`
	Kind         Kind        `json:"kind" db:"kind"`
	Amount       money.Cents `json:"amount" db:"amount_cents"`
	Date         time.Time   `json:"date" db:"date"`
	Description  string      `json:"description" db:"description"`
	CategoryID   *uuid.UUID  `json:"category_id,omitempty" db:"category_id"`
	Paid         bool        `json:"paid" db:"paid"`
	CreditCardID *uuid.UUID  `json:"credit_card_id,omitempty" db:"credit_card_id"`

	// Installment fields. CurrentInstallment is 1-indexed.
	InstallmentsGroupID *uuid.UUID `json:"installments_group_id,omitempty" db:"installments_group_id"`
	CurrentInstallment  int        `json:"current_installment" db:"current_installment"`
	Installments        int        `json:"installments" db:"installments"`

	// Recurrence fields. A row carrying RecurrenceGroupID is an exception:
	// it overrides the template occurrence at ExceptionForDate. Skipped marks
	// a tombstone — the occurrence is suppressed rather than overridden.
	RecurrenceGroupID *uuid.UUID `json:"recurrence_group_id,omitempty" db:"recurrence_group_id"`
	ExceptionForDate  *time.Time `json:"exception_for_date,omitempty" db:"exception_for_date"`
	Skipped           bool       `json:"skipped" db:"skipped"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Variant returns the row's shape. Installment and recurrence membership are
// mutually exclusive; ValidateCreate rejects rows claiming both.
func (t *Transaction) Variant() Variant {
	switch {
	case t.InstallmentsGroupID != nil:
		return VariantInstallmentMember
	case t.RecurrenceGroupID != nil:
		return VariantRecurrenceException
	default:
		return VariantStandalone
	}
}

// GroupID returns the row's group identifier, if any.
func (t *Transaction) GroupID() *uuid.UUID {
	if t.InstallmentsGroupID != nil {
		return t.InstallmentsGroupID
	}
	return t.RecurrenceGroupID
}

// OccurrenceDate is the template date a recurrence row stands in for, or the
// row's own date otherwise.
func (t *Transaction) OccurrenceDate() time.Time {
	if t.ExceptionForDate != nil {
		return *t.ExceptionForDate
	}
	return t.Date
}

// ValidateCreate validates transaction fields for creation.
func (t *Transaction) ValidateCreate() error {
	if t.AccountID == uuid.Nil {
		return ErrInvalidAccountID
	}

	if t.Description == "" {
		return ErrMissingDescription
	}

	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}

	if t.Kind.IsCardKind() && t.CreditCardID == nil {
		return ErrCardRequired
	}

	if !t.Kind.IsCardKind() && t.CreditCardID != nil {
		return ErrCardNotAllowed
	}

	if t.InstallmentsGroupID != nil && t.RecurrenceGroupID != nil {
		return ErrConflictingGroups
	}

	if t.InstallmentsGroupID != nil {
		if t.Installments < 1 {
			return ErrInvalidInstallmentCount
		}
		if t.CurrentInstallment < 1 || t.CurrentInstallment > t.Installments {
			return ErrInstallmentOutOfRange
		}
	}

	return nil
}
