package domain

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when no measurement matches the requested id.
var ErrNotFound = errors.New("measurement not found")

// ErrNoFields is returned when a partial update supplies no updatable
// fields.
var ErrNoFields = errors.New("no fields to update")

// ValidationError carries the ordered list of field errors produced by the
// validator. The whole operation is rejected; nothing is partially applied.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}
