// Package category holds per-account transaction categories.
package category

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/transaction"
)

// Category labels transactions within an account. Kind restricts it to one
// side of the ledger.
type Category struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	AccountID uuid.UUID        `json:"account_id" db:"account_id"`
	Name      string           `json:"name" db:"name"`
	Kind      transaction.Kind `json:"kind" db:"kind"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// ValidateCreate validates category fields for creation.
func (c *Category) ValidateCreate() error {
	if c.AccountID == uuid.Nil {
		return ErrInvalidAccountID
	}

	if c.Name == "" {
		return ErrMissingName
	}

	if c.Kind != transaction.KindIncome && c.Kind != transaction.KindExpense {
		return ErrInvalidKind
	}

	return nil
}
