package errors

import (
	"net/http"
	"sort"
	"strings"
)

// NonFieldKey collects object-level validation messages.
const NonFieldKey = "non_field_errors"

// Common field messages.
const (
	MsgRequired = "This field is required."
	MsgInvalid  = "A valid value is required."
)

// FieldErrors maps a request field to its validation messages.
type FieldErrors map[string][]string

// Add appends a message to a field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Merge copies all messages of other into f, prefixing keys when prefix is set.
func (f FieldErrors) Merge(prefix string, other FieldErrors) {
	for field, messages := range other {
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		f[key] = append(f[key], messages...)
	}
}

// Empty reports whether no message was recorded.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Err returns a ValidationError when messages were recorded, nil otherwise.
func (f FieldErrors) Err() error {
	if f.Empty() {
		return nil
	}

	return &ValidationError{fields: f}
}

// ValidationError is a 400 error carrying a field-keyed message map.
type ValidationError struct {
	fields FieldErrors
}

// NewValidationError builds a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{fields: FieldErrors{field: {message}}}
}

// NewNonFieldError builds an object-level validation error.
func NewNonFieldError(message string) *ValidationError {
	return NewValidationError(NonFieldKey, message)
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.fields[k], " "))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidationFailed) match field errors.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Fields returns the field-keyed messages.
func (e *ValidationError) Fields() FieldErrors {
	return e.fields
}

// HTTPCode returns the HTTP status code
func (e *ValidationError) HTTPCode() int {
	return http.StatusBadRequest
}

// ErrorCode returns the business error code
func (e *ValidationError) ErrorCode() string {
	return ErrValidationFailed.ErrorCode()
}

// Message returns the user-friendly error message
func (e *ValidationError) Message() string {
	return ErrValidationFailed.Message()
}

// Details returns the field map.
func (e *ValidationError) Details() any {
	return e.fields
}
