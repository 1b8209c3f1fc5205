package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order construction and pricing.
var (
	// ErrInvalidInput is matched by every *InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNegativeDiscount is returned when a promotion yields a discount below zero.
	ErrNegativeDiscount = errors.New("promotion returned negative discount")
)

// InvalidInputError reports a rejected field of a line item or customer.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is reports ErrInvalidInput as a match so callers can test the class of
// failure without caring about the field.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
