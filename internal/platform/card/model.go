// Package card holds the credit card model, invoice payments, and the
// invoice aggregator that derives per-month invoices from card transactions.
package card

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/billing"
	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/pkg/money"
	"github.com/nexfin/nexfin/pkg/period"
)

// CreditCard is a card configuration. Its balance is never stored; invoices
// are derived from the card's transactions on demand.
type CreditCard struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	AccountID  uuid.UUID   `json:"account_id" db:"account_id"`
	Name       string      `json:"name" db:"name"`
	Brand      string      `json:"brand,omitempty" db:"brand"`
	Limit      money.Cents `json:"limit" db:"limit_cents"`
	ClosingDay int         `json:"closing_day" db:"closing_day"`
	DueDay     int         `json:"due_day" db:"due_day"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// ValidateCreate validates card fields for creation.
func (c *CreditCard) ValidateCreate() error {
	if c.AccountID == uuid.Nil {
		return ErrInvalidAccountID
	}

	if c.Name == "" {
		return ErrMissingName
	}

	if c.Limit < 0 {
		return ErrInvalidLimit
	}

	if err := billing.ValidateClosingDay(c.ClosingDay); err != nil {
		return err
	}

	return billing.ValidateDueDay(c.DueDay)
}

// InvoicePayment marks an invoice month as settled.
type InvoicePayment struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	CreditCardID uuid.UUID       `json:"credit_card_id" db:"credit_card_id"`
	Month        period.MonthKey `json:"month" db:"month"`
	Amount       money.Cents     `json:"amount" db:"amount_cents"`
	PaidAt       time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// InvoiceStatus is the settlement state of a derived invoice.
type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "paid"
	InvoicePending InvoiceStatus = "pending"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// Invoice is a derived per-month view over a card's transactions. It is
// never persisted; only its payment marker is.
type Invoice struct {
	CreditCardID uuid.UUID                  `json:"credit_card_id"`
	Month        period.MonthKey            `json:"month"`
	PeriodStart  time.Time                  `json:"period_start"`
	PeriodEnd    time.Time                  `json:"period_end"`
	DueDate      time.Time                  `json:"due_date"`
	Total        money.Cents                `json:"total"`
	Status       InvoiceStatus              `json:"status"`
	PaidAt       *time.Time                 `json:"paid_at,omitempty"`
	Transactions []*transaction.Transaction `json:"transactions"`
}
