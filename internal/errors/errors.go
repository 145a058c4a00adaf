// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrPlanNotFound     = errors.New("plan not found")
	ErrInvalidResult    = errors.New("invalid result")
	ErrInvalidDraft     = errors.New("invalid draft")
	ErrAlreadyClosed    = errors.New("plan already closed")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrSubscriptionDone = errors.New("subscription cancelled")
)

// StoreError represents a failure talking to the document store.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error [%s] %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("store error [%s] %s", e.Op, e.Path)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, path string, err error) *StoreError {
	return &StoreError{Op: op, Path: path, Err: err}
}

// ValidationError represents a validation error on user input.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// IdentityError represents a failure in the platform identity handshake.
type IdentityError struct {
	Provider string
	Err      error
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("identity error [%s]: %v", e.Provider, e.Err)
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}

// NewIdentityError creates a new IdentityError.
func NewIdentityError(provider string, err error) *IdentityError {
	return &IdentityError{Provider: provider, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
