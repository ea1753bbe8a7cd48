// Package shared contains common domain types, errors, and events
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidID    = errors.New("invalid ID")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyValue   = errors.New("value cannot be empty")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "learning", "assistant", "opportunity"
	Op      string // Operation that failed, e.g., "Refresh", "Apply"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Learning domain errors
var (
	ErrPathNotFound     = NewDomainError("learning", "Find", ErrNotFound, "learning path not found")
	ErrEmptyPathTitle   = NewDomainError("learning", "Validate", ErrEmptyValue, "path title cannot be empty")
	ErrEmptyDescription = NewDomainError("learning", "Validate", ErrEmptyValue, "path description cannot be empty")
)

// Assistant domain errors
var (
	ErrEmptyMessage     = NewDomainError("assistant", "Send", ErrEmptyValue, "message cannot be empty")
	ErrAssistantBusy    = NewDomainError("assistant", "Send", ErrInvalidState, "a response is already pending")
	ErrAssistantOffline = NewDomainError("assistant", "Send", ErrExternalService, "assistant backend unreachable")
)

// Session errors
var (
	ErrSessionNotFound = NewDomainError("session", "Find", ErrNotFound, "no active session for credential")
	ErrNoCredential    = NewDomainError("session", "Authorize", ErrUnauthorized, "no bearer credential present")
)

// Backend (upstream API) errors
var (
	ErrBackendUnavailable = NewDomainError("backend", "Request", ErrServiceUnavailable, "backend API is unavailable")
	ErrBackendTimeout     = NewDomainError("backend", "Request", ErrTimeout, "backend API request timeout")
	ErrBackendRateLimited = NewDomainError("backend", "Request", ErrRateLimited, "backend API rate limit exceeded")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue)
}

// IsUnauthenticated checks if the error means no usable credential was present.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}
