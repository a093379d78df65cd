// Package apperr provides the structured errors returned across service boundaries.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents a stable, machine-readable error code.
type ErrorCode string

const (
	ErrCodeInvalidShipmentInput ErrorCode = "INVALID_SHIPMENT_INPUT"
	ErrCodeInvalidRequest       ErrorCode = "INVALID_REQUEST"
	ErrCodeNotFound             ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeDuplicate            ErrorCode = "DUPLICATE_RESOURCE"
	ErrCodePersistenceFailed    ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// NewInvalidShipmentInputError rejects a shipment before any evaluation happens.
func NewInvalidShipmentInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidShipmentInput,
		Message:   "Invalid shipment input",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError reports a malformed request body or parameter.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError reports a missing resource of the given kind.
func NewNotFoundError(kind, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   kind + " not found",
		Details:   fmt.Sprintf("id: %s", id),
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateError reports a uniqueness violation.
func NewDuplicateError(kind, key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicate,
		Message:   kind + " already exists",
		Details:   key,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceError wraps a storage failure. Callers may retry.
func NewPersistenceError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Storage operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewAuthenticationError reports bad credentials or a missing session.
func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationFailed,
		Message:   "Authentication failed",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// As extracts a *StandardError from err's chain.
func As(err error) (*StandardError, bool) {
	var se *StandardError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	se, ok := As(err)
	return ok && se.Code == code
}

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	se, ok := As(err)
	return ok && se.Retryable
}

// HTTPStatus maps err to a response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	se, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch se.Code {
	case ErrCodeInvalidShipmentInput, ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicate:
		return http.StatusConflict
	case ErrCodeAuthenticationFailed:
		return http.StatusUnauthorized
	case ErrCodePersistenceFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
