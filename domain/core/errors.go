package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Shape errors
	ErrMissingExact   = errors.New("table has no Exact column")
	ErrShapeMismatch  = errors.New("restart tables differ in shape")
	ErrEmptyEnsemble  = errors.New("no restart tables supplied")
	ErrNoIterations   = errors.New("table has no iteration columns")
	ErrColumnNotFound = errors.New("column not found")
	ErrInvalidTable   = errors.New("invalid table")

	// Input errors
	ErrMissingResult = errors.New("missing result set")
	ErrPolicyLength  = errors.New("policies disagree on iteration count")
)

// NewMissingExactError reports which restart lacks the reference column
func NewMissingExactError(set string, restart int) error {
	return fmt.Errorf("%w: %s restart %d", ErrMissingExact, set, restart)
}

// NewShapeMismatchError describes the first restart that disagrees with restart 0
func NewShapeMismatchError(restart int, wantRows, wantCols, gotRows, gotCols int) error {
	return fmt.Errorf("%w: restart %d is %dx%d, expected %dx%d",
		ErrShapeMismatch, restart, gotRows, gotCols, wantRows, wantCols)
}

func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

func NewMissingResultError(key string) error {
	return fmt.Errorf("%w: %q", ErrMissingResult, key)
}

// Error checking helpers
func IsShapeError(err error) bool {
	return errors.Is(err, ErrMissingExact) ||
		errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrEmptyEnsemble) ||
		errors.Is(err, ErrNoIterations) ||
		errors.Is(err, ErrInvalidTable)
}
