package domain

import "errors"

// Error kinds of the business layer. The REST boundary matches against
// these with errors.Is and maps them to status codes.
var (
	// ErrNotFound a referenced entity is absent
	ErrNotFound = errors.New("not found")

	// ErrBadRequest caller input violates a business rule
	ErrBadRequest = errors.New("bad request")

	// ErrConflict the action would violate a uniqueness or state invariant
	ErrConflict = errors.New("conflict")
)

// StatusError is a business error with a human-readable message.
// The message travels unmodified from the services to the boundary.
type StatusError struct {
	Kind    error
	Message string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return e.Message
}

// Unwrap returns the error kind
func (e *StatusError) Unwrap() error {
	return e.Kind
}

// NotFound creates a not-found business error
func NotFound(message string) error {
	return &StatusError{Kind: ErrNotFound, Message: message}
}

// BadRequest creates a bad-request business error
func BadRequest(message string) error {
	return &StatusError{Kind: ErrBadRequest, Message: message}
}

// Conflict creates a conflict business error
func Conflict(message string) error {
	return &StatusError{Kind: ErrConflict, Message: message}
}
