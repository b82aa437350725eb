package category

import "errors"

var (
	ErrInvalidAccountID = errors.New("invalid account ID")
	ErrMissingName      = errors.New("category name is required")
	ErrInvalidKind      = errors.New("category kind must be income or expense")

	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateName    = errors.New("category name already exists for account")
)
