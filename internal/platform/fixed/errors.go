package fixed

import "errors"

var (
	// Validation errors
	ErrInvalidAccountID   = errors.New("invalid account ID")
	ErrMissingDescription = errors.New("fixed cashflow description is required")
	ErrInvalidKind        = errors.New("fixed cashflow kind must be income or expense")
	ErrInvalidDueDay      = errors.New("due day must be between 1 and 31")
	ErrInvalidActiveRange = errors.New("end month cannot precede start month")
	ErrInvalidWindow      = errors.New("window end cannot precede window start")

	// Repository errors
	ErrFixedNotFound = errors.New("fixed cashflow not found")

	// ErrAmbiguousOccurrence signals data corruption: more than one exception
	// row claims the same occurrence date.
	ErrAmbiguousOccurrence = errors.New("multiple exception rows exist for the same occurrence date")
)
