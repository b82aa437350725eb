package transaction

import "errors"

var (
	// Validation errors
	ErrInvalidAccountID        = errors.New("invalid account ID")
	ErrMissingDescription      = errors.New("transaction description is required")
	ErrInvalidKind             = errors.New("invalid transaction kind")
	ErrCardRequired            = errors.New("charge and credit transactions require a credit card")
	ErrCardNotAllowed          = errors.New("income and expense transactions cannot reference a credit card")
	ErrConflictingGroups       = errors.New("a transaction cannot belong to both an installment and a recurrence group")
	ErrInstallmentOutOfRange   = errors.New("current installment must be between 1 and the installment total")
	ErrInvalidInstallmentCount = errors.New("installment count must be at least 1")
	ErrInvalidEditScope        = errors.New("edit scope must be single, all or future")

	// Repository errors
	ErrTransactionNotFound = errors.New("transaction not found")

	// Group mutation errors
	ErrGroupNotFound          = errors.New("transaction group not found")
	ErrInconsistentGroupState = errors.New("installment amounts no longer sum to the group total")
	ErrAmbiguousOccurrence    = errors.New("multiple exception rows exist for the same occurrence date")
)
