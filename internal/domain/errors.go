package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("conflict with dependent data")
	ErrBackend             = errors.New("backend request failed")
	ErrAccountNotFound     = errors.New("expense account not found")
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrStaleSelection      = errors.New("selected account changed while fetching")
	ErrInvalidOwnerToken   = errors.New("invalid owner token")
	ErrOwnerPairIncomplete = errors.New("owner type and owner id must be set together")
	ErrUnknownOwnerType    = errors.New("unknown owner type")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MaxPersonNameLength  = 255
)

// ValidationError reports caller-supplied data that violates a precondition.
// It is always raised before any backend call.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrInvalidInput) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConflictError reports an operation refused because dependent data exists.
type ConflictError struct {
	Resource string
	Detail   string
}

// NewConflictError creates a ConflictError.
func NewConflictError(resource, detail string) *ConflictError {
	return &ConflictError{Resource: resource, Detail: detail}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Detail)
}

// Is makes errors.Is(err, ErrConflict) hold for every ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// BackendError wraps a failure reported by (or while reaching) the data service.
type BackendError struct {
	Op  string
	Err error
}

// NewBackendError wraps err as a BackendError for op. A nil err yields nil.
func NewBackendError(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Op: op, Err: err}
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrBackend) hold for every BackendError.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}
