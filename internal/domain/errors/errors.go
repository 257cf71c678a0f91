package errors

import (
	"errors"
	"fmt"
)

var (
	// Order / payment errors
	ErrOrderNotFound          = errors.New("order not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrDuplicatePayment       = errors.New("provider payment already recorded")
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// Webhook errors
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrDuplicateEvent   = errors.New("duplicate webhook event")

	// Catalog errors
	ErrProductNotFound = errors.New("product not found")

	// Provider errors
	ErrProviderUnavailable = errors.New("catalog provider unavailable")
	ErrProviderTimeout     = errors.New("provider request timeout")

	// Safety errors
	ErrSafetyCheckFailed = errors.New("sync safety check failed")

	// Retry errors
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
