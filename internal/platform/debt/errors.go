package debt

import "errors"

var (
	ErrInvalidAccountID  = errors.New("invalid account ID")
	ErrMissingName       = errors.New("debt name is required")
	ErrNegativeBalance   = errors.New("debt balance cannot be negative")
	ErrInvalidRate       = errors.New("interest rate cannot be negative")
	ErrInvalidRatePeriod = errors.New("rate period must be monthly or yearly")

	ErrDebtNotFound = errors.New("debt not found")
)
