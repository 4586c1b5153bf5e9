package sanitize

import "errors"

// ErrInvalid is matched by every ValidationError.
var ErrInvalid = errors.New("invalid input")

// ValidationError reports why a field was rejected. Message is safe to show
// to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets callers test with errors.Is(err, ErrInvalid).
func (e *ValidationError) Unwrap() error { return ErrInvalid }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
