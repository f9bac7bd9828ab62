package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrDestinationNotFound = &AppError{http.StatusNotFound, "DESTINATION_NOT_FOUND", "Destination account not found"}
	ErrLoopTransfer        = &AppError{http.StatusForbidden, "LOOP_TRANSFER", "An account can't make a transfer to itself"}
	ErrInsufficientFunds   = &AppError{http.StatusBadRequest, "INSUFFICIENT_FUNDS", "Insufficient funds"}
	ErrScheduleDateInvalid = &AppError{http.StatusBadRequest, "SCHEDULE_DATE_INVALID", "Can't schedule a transfer in a past date"}
	ErrIncorrectPassword   = &AppError{http.StatusForbidden, "INCORRECT_TRANSACTIONAL_PASSWORD", "Inserted transactional password is not correct"}
	ErrTooManyAttempts     = &AppError{http.StatusForbidden, "TOO_MANY_ATTEMPTS", "Too many incorrect attempts, account is now blocked"}
	ErrForbiddenAccess     = &AppError{http.StatusForbidden, "FORBIDDEN_ACCESS", "User is neither sender nor receiver"}
	ErrAccountNotActive    = &AppError{http.StatusForbidden, "ACCOUNT_NOT_ACTIVE", "Account is not active"}
	ErrEmailTaken          = &AppError{http.StatusConflict, "EMAIL_TAKEN", "Email already registered"}
)
