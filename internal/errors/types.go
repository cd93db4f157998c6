package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	ErrorTypeConfigMissing ErrorType = "CONFIG_MISSING"
	ErrorTypeTransport     ErrorType = "TRANSPORT_FAILURE"
	ErrorTypeRemote        ErrorType = "REMOTE_REJECTION"
	ErrorTypeInternal      ErrorType = "INTERNAL_ERROR"
)

// AppError represents a structured error for the application
type AppError struct {
	Type          ErrorType `json:"type"`
	Message       string    `json:"message"`
	StatusCode    int       `json:"statusCode"`
	IsOperational bool      `json:"isOperational"`
	Err           error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As chains
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether a later attempt could plausibly succeed.
// Missing configuration is not transient; it stays broken until an operator
// fixes the environment.
func (e *AppError) IsTransient() bool {
	switch e.Type {
	case ErrorTypeTransport:
		return true
	case ErrorTypeRemote:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal when err is not
// an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// NewConfigMissingError creates an error for absent required configuration.
// Callers treat this as a skip condition, not a failure of the remote side.
func NewConfigMissingError(message string) *AppError {
	return &AppError{
		Type:          ErrorTypeConfigMissing,
		Message:       message,
		IsOperational: true,
	}
}

// NewTransportError creates an error for network-level failures (DNS,
// connection refused, timeouts) where no HTTP response was received.
func NewTransportError(message string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeTransport,
		Message:       message,
		IsOperational: true,
		Err:           err,
	}
}

// NewRemoteError creates an error for a non-2xx HTTP response.
func NewRemoteError(message string, statusCode int) *AppError {
	return &AppError{
		Type:          ErrorTypeRemote,
		Message:       fmt.Sprintf("%s: %d %s", message, statusCode, http.StatusText(statusCode)),
		StatusCode:    statusCode,
		IsOperational: true,
	}
}

// NewInternalError creates an error for unexpected failures inside this
// process (malformed payloads, programming errors).
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeInternal,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		IsOperational: false,
		Err:           err,
	}
}
