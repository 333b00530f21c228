package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error.
// Two DomainErrors match under errors.Is when their codes are equal, so a
// specific error such as "product x not found" still satisfies ErrNotFound.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates an INVALID_INPUT error bound to a field
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidInput,
		Message: message,
		Field:   field,
	}
}

// NewNotFoundError creates a NOT_FOUND error for the given resource
func NewNotFoundError(resource string, id fmt.Stringer) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
	}
}

// NewReconciliationError wraps a storage or planning failure raised while
// applying or reversing order effects. The order status is left untouched.
func NewReconciliationError(cause error) *DomainError {
	return &DomainError{
		Code:    CodeReconciliationFailed,
		Message: "reconciliation failed",
		cause:   cause,
	}
}

// WrapDomainError attaches a cause to a copy of a domain error
func WrapDomainError(base *DomainError, cause error) *DomainError {
	return &DomainError{
		Code:    base.Code,
		Message: base.Message,
		Field:   base.Field,
		cause:   cause,
	}
}

// Error codes
const (
	CodeNotFound             = "NOT_FOUND"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeInvalidState         = "INVALID_STATE"
	CodeIllegalTransition    = "ILLEGAL_TRANSITION"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeReconciliationFailed = "RECONCILIATION_FAILED"
)

// Common domain errors
var (
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists        = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput         = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict  = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState         = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrIllegalTransition    = NewDomainError(CodeIllegalTransition, "Order status transition not allowed")
	ErrInsufficientStock    = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrReconciliationFailed = NewDomainError(CodeReconciliationFailed, "Reconciliation failed")
)

// IsRetryable reports whether the caller may retry the whole operation.
// Reconciliation and optimistic-lock failures leave no partial state behind.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrReconciliationFailed) || errors.Is(err, ErrConcurrencyConflict)
}

// ErrorCode extracts the domain error code, or "" when err is not a DomainError
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
