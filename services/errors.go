package services

import "net/http"

// Error codes surfaced to API callers alongside the HTTP status.
const (
	CodeValidation        = "validation_error"
	CodeNotFound          = "not_found"
	CodeUnauthorized      = "unauthorized"
	CodeInvalidOrExpired  = "invalid_or_expired"
	CodeAccessExceeded    = "access_exceeded"
	CodeInsufficientStock = "insufficient_stock"
	CodeInvalidTransition = "invalid_transition"
	CodeTransaction       = "transaction_error"
)

// ServiceError is a typed error with an HTTP status code and a stable
// machine-readable code. Business failures are returned as values, never
// panics; the controller layer decides user-facing rendering.
type ServiceError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *ServiceError) Error() string { return e.Message }

// NewValidationError reports bad caller input. Never retried automatically.
func NewValidationError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Code: CodeValidation, Message: msg}
}

// NewNotFoundError reports an unknown order, product or store.
func NewNotFoundError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

// NewUnauthorizedError reports an identity mismatch.
func NewUnauthorizedError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: msg}
}

// NewInvalidOrExpiredError covers tracking links that are missing, inactive
// or expired without distinguishing which, so tokens cannot be enumerated.
func NewInvalidOrExpiredError() *ServiceError {
	return &ServiceError{StatusCode: http.StatusGone, Code: CodeInvalidOrExpired, Message: "Tracking link is invalid or expired"}
}

// NewAccessExceededError reports an exhausted tracking link.
func NewAccessExceededError() *ServiceError {
	return &ServiceError{StatusCode: http.StatusTooManyRequests, Code: CodeAccessExceeded, Message: "Tracking link access limit reached"}
}

// NewInsufficientStockError reports a line item that cannot be covered by
// current product stock.
func NewInsufficientStockError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Code: CodeInsufficientStock, Message: msg}
}

// NewInvalidTransitionError reports a status change not allowed by the
// transition table.
func NewInvalidTransitionError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Code: CodeInvalidTransition, Message: msg}
}

// NewTransactionError reports a storage failure. The operation was atomic, so
// nothing partial persisted and the caller may retry the whole call.
func NewTransactionError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Code: CodeTransaction, Message: msg}
}
