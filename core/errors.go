package core

import "github.com/pkg/errors"

// FieldError ties a validation failure to the request field that caused it,
// e.g. a taken username or a malformed tenant ID.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries per-field failures back to the API layer, which
// renders them as a 400 with field messages.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// shutdown signals an unrecoverable state, such as a lost database
// connection, that should take the whole service down.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
