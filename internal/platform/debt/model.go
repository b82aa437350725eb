// Package debt tracks outstanding debts alongside the cashflow aggregates.
package debt

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexfin/nexfin/pkg/money"
)

// RatePeriod is the compounding period of a debt's interest rate.
type RatePeriod string

const (
	RateMonthly RatePeriod = "monthly"
	RateYearly  RatePeriod = "yearly"
)

// IsValid checks if the rate period is one of the known values.
func (r RatePeriod) IsValid() bool {
	return r == RateMonthly || r == RateYearly
}

// Debt is an outstanding obligation. InterestRate is in basis points so the
// model stays float-free.
type Debt struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	AccountID    uuid.UUID   `json:"account_id" db:"account_id"`
	Name         string      `json:"name" db:"name"`
	Balance      money.Cents `json:"balance" db:"balance_cents"`
	InterestRate int         `json:"interest_rate_bps" db:"interest_rate_bps"`
	RatePeriod   RatePeriod  `json:"rate_period" db:"rate_period"`
	TargetDate   *time.Time  `json:"target_date,omitempty" db:"target_date"`
	Notes        string      `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// ValidateCreate validates debt fields for creation.
func (d *Debt) ValidateCreate() error {
	if d.AccountID == uuid.Nil {
		return ErrInvalidAccountID
	}

	if d.Name == "" {
		return ErrMissingName
	}

	if d.Balance < 0 {
		return ErrNegativeBalance
	}

	if d.InterestRate < 0 {
		return ErrInvalidRate
	}

	if !d.RatePeriod.IsValid() {
		return ErrInvalidRatePeriod
	}

	return nil
}
