package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateTarget = errors.New("target already exists")
	ErrTargetNotFound  = errors.New("target not found")

	// ErrServiceUnavailable marks a data source or mutation endpoint that
	// could not be reached. Callers show it and try again on the next refresh.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError is returned when a proposed target fails validation before
// it is stored.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
