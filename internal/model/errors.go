package model

import "errors"

// ValidationError marks a deterministic client mistake. Its message is
// safe to return in the response body; anything else maps to a generic
// server error with the detail kept server-side.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError with the given reason.
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrNotFound is returned when a requested entity does not exist or is
// not visible to the requesting user.
var ErrNotFound = errors.New("not found")

// ErrDuplicateName is returned when a unique-per-user name collides.
var ErrDuplicateName = errors.New("name already exists")
