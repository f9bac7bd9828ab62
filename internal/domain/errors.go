package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrDestinationNotFound = errors.New("destination account not found")
	ErrLoopTransfer        = errors.New("cannot transfer to own account")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrScheduleDateInvalid = errors.New("cannot schedule a transfer in a past date")
	ErrIncorrectPassword   = errors.New("incorrect transactional password")
	ErrTooManyAttempts     = errors.New("too many incorrect attempts, account is blocked")
	ErrForbiddenAccess     = errors.New("user is neither sender nor receiver")
	ErrAccountNotActive    = errors.New("account is not active")
	ErrEmailTaken          = errors.New("email already registered")
	ErrVersionConflict     = errors.New("optimistic lock conflict")
	ErrTransferSettled     = errors.New("transfer already settled")
)
