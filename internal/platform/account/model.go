// Package account holds the account aggregate: the ownership root every
// other aggregate hangs off.
package account

import (
	"time"

	"github.com/google/uuid"
)

// Account groups a user's finances. A user may own several.
type Account struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ValidateCreate validates account fields for creation.
func (a *Account) ValidateCreate() error {
	if a.UserID == uuid.Nil {
		return ErrInvalidUserID
	}

	if a.Name == "" {
		return ErrMissingName
	}

	return nil
}
