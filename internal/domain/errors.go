package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the normalized failure taxonomy surfaced to the state
// layer. The transport client maps raw HTTP failures onto these kinds;
// nothing downstream inspects status codes directly.
type ErrorKind string

const (
	// NetworkFailure means the transport was unreachable (DNS, refused
	// connection, timeout before a response arrived).
	NetworkFailure ErrorKind = "network_failure"
	// ClientError is a 4xx response. Not retried upstream.
	ClientError ErrorKind = "client_error"
	// ServerError is a 5xx response.
	ServerError ErrorKind = "server_error"
	// ValidationFailure is malformed local input, e.g. pageSize < 1.
	ValidationFailure ErrorKind = "validation_failure"
)

// AppError is the uniform error shape consumed by the state layer.
type AppError struct {
	Kind    ErrorKind
	Status  int // HTTP status when applicable, 0 otherwise
	Message string
	URL     string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewValidationError builds a ValidationFailure for malformed input.
func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{
		Kind:    ValidationFailure,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorKindOf extracts the normalized kind from an error chain.
// Unrecognized errors are reported as NetworkFailure, matching the
// transport's treatment of failures without an HTTP response.
func ErrorKindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return NetworkFailure
}

// IsRetryable reports whether a failed read may be retried upstream.
// Client errors and validation failures are permanent.
func IsRetryable(err error) bool {
	switch ErrorKindOf(err) {
	case ClientError, ValidationFailure:
		return false
	default:
		return true
	}
}
