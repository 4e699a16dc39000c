package shared

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a DomainError for propagation and transport mapping.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindStorage    ErrorKind = "STORAGE"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind    `json:"kind"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
	// Cause is the underlying error. It is never serialized.
	Cause   error        `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if len(e.Details) > 0 {
		parts := make([]string, 0, len(e.Details))
		for _, d := range e.Details {
			parts = append(parts, d.Field+": "+d.Message)
		}
		return e.Message + " (" + strings.Join(parts, "; ") + ")"
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches two DomainErrors by code, so errors.Is(err, ErrNotFound) works for any
// not-found error carrying the NOT_FOUND code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with optional field details.
func NewValidationError(message string, details ...FieldError) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_INPUT",
		Message: message,
		Details: details,
	}
}

// NewFieldError creates a validation error for one field.
func NewFieldError(field, message string) *DomainError {
	return NewValidationError("Invalid "+field, FieldError{Field: field, Message: message})
}

// NewNotFoundError creates a not-found error for the named resource.
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a specific code.
func NewConflictError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Code:    code,
		Message: message,
	}
}

// WrapStorageError wraps a store failure with an operation-specific message.
// The cause is kept for logging; transport layers only expose Message.
func WrapStorageError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return &DomainError{
		Kind:    KindStorage,
		Code:    "STORAGE_ERROR",
		Message: "failed to " + operation,
		Cause:   err,
	}
}

// KindOf returns the kind of err, or "" when err is not a DomainError.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// Common domain errors
var (
	ErrNotFound         = NewDomainError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrInvalidInput     = NewDomainError(KindValidation, "INVALID_INPUT", "Invalid input provided")
	ErrInvalidState     = NewDomainError(KindConflict, "INVALID_STATE", "Operation not allowed in current state")
	ErrHasDependents    = NewDomainError(KindConflict, "HAS_DEPENDENTS", "Resource is referenced by other records")
	ErrDuplicateRequest = NewDomainError(KindConflict, "DUPLICATE_REQUEST", "Request has already been processed")
)

// ValidationErrors accumulates field errors while parsing input.
type ValidationErrors struct {
	fields []FieldError
}

// Add records a field error.
func (v *ValidationErrors) Add(field, message string, value ...string) {
	fe := FieldError{Field: field, Message: message}
	if len(value) > 0 {
		fe.Value = value[0]
	}
	v.fields = append(v.fields, fe)
}

// Merge appends the details of a validation DomainError, or records err under field.
func (v *ValidationErrors) Merge(field string, err error) {
	if err == nil {
		return
	}
	var de *DomainError
	if errors.As(err, &de) && de.Kind == KindValidation && len(de.Details) > 0 {
		v.fields = append(v.fields, de.Details...)
		return
	}
	v.Add(field, err.Error())
}

// HasErrors reports whether any field errors were recorded.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.fields) > 0
}

// Err returns a validation DomainError, or nil when nothing was recorded.
func (v *ValidationErrors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return NewValidationError("Invalid request parameters", v.fields...)
}
