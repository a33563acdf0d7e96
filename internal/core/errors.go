package core

import (
	"errors"
	"fmt"
)

// Request fields named by validation errors.
const (
	FieldPetName    = "petName"
	FieldType       = "type"
	FieldAmount     = "amount"
	FieldDateTime   = "dateTime"
	FieldDate       = "date"
	FieldCutoffHour = "cutoffHour"
)

var (
	// ErrNotFound is the sentinel wrapped by every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrNotToday is returned when the needs-walk rule is asked about a day
	// other than the current one.
	ErrNotToday = errors.New("needs-walk is only evaluated for the current day")
)

// ValidationError reports a caller-correctable problem with one input field.
type ValidationError struct {
	Field  string
	Reason string
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is reserved for lookups by id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// AsValidationError unwraps err to a *ValidationError if it holds one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
