package query

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrBadQuery is returned when query text does not match the expected
	// top-level SELECT or CONSTRUCT shape.
	ErrBadQuery = errors.New("query does not match SELECT or CONSTRUCT form")

	// ErrKindMismatch is returned when a parsed query is executed through the
	// wrong entry point.
	ErrKindMismatch = errors.New("query kind does not match operation")
)

// QueryError wraps errors with operation context
type QueryError struct {
	Op  string // Operation name
	Err error  // Underlying error
}

// Error implements the error interface
func (e *QueryError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("query: %v", e.Err)
	}
	return fmt.Sprintf("query: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target
func (e *QueryError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapError wraps an error with operation context
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &QueryError{Op: op, Err: err}
}
