package card

import "errors"

var (
	// Validation errors
	ErrInvalidAccountID = errors.New("invalid account ID")
	ErrMissingName      = errors.New("card name is required")
	ErrInvalidLimit     = errors.New("card limit cannot be negative")
	ErrInvalidRange     = errors.New("range end month cannot precede start month")
	ErrInvalidPayment   = errors.New("payment amount must be positive")

	// Repository errors
	ErrCardNotFound    = errors.New("credit card not found")
	ErrPaymentNotFound = errors.New("invoice payment not found")
	ErrDuplicatePayment = errors.New("invoice already has a payment for this month")
)
