package account

import "errors"

var (
	ErrInvalidUserID = errors.New("invalid user ID")
	ErrMissingName   = errors.New("account name is required")

	ErrAccountNotFound = errors.New("account not found")
	ErrNotOwner        = errors.New("account does not belong to user")
)
