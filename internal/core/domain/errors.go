package domain

import (
	"errors"
	"sort"
	"strings"
)

// Error kinds. Every failure returned by the core unwraps to one of these.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
)

// Error is a client-facing failure with a stable message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrEmailTaken           = newError(ErrConflict, "Email already registered")
	ErrInvalidCredentials   = newError(ErrUnauthorized, "Invalid email or password")
	ErrAccountInactive      = newError(ErrForbidden, "Account is not active")
	ErrUnauthenticated      = newError(ErrUnauthorized, "Unauthorized")
	ErrInvalidToken         = newError(ErrUnauthorized, "Invalid or expired token")
	ErrRefreshTokenRequired = newError(ErrUnauthorized, "Refresh token required")
	ErrInvalidRefreshToken  = newError(ErrUnauthorized, "Invalid or expired refresh token")
	ErrRefreshSubjectGone   = newError(ErrUnauthorized, "User not found")
	ErrInsufficientRole     = newError(ErrForbidden, "Forbidden")
	ErrSelfRoleChange       = newError(ErrForbidden, "You cannot change your own role")
	ErrSelfDelete           = newError(ErrForbidden, "You cannot delete your own account")
	ErrUserNotFound         = newError(ErrNotFound, "User not found")
	ErrTaskNotFound         = newError(ErrNotFound, "Task not found")
	ErrInvalidTaskID        = newError(ErrValidation, "Invalid task id")
)

// ValidationError collects per-field messages and messages about the
// request as a whole.
type ValidationError struct {
	Form   []string
	Fields map[string][]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Add appends msg to the field's messages.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// NewFormError builds a ValidationError not tied to a field.
func NewFormError(msg string) *ValidationError {
	return &ValidationError{Form: []string{msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := append([]string(nil), e.Form...)
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
