package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount is returned when an obligation total is zero or
	// negative.
	ErrInvalidAmount = errors.New("total amount must be positive")

	// ErrInvalidSplit is returned for malformed split inputs: empty
	// participant sets, negative or all-zero weights, inputs for
	// unknown participants, and the like.
	ErrInvalidSplit = errors.New("invalid split")
)

// MismatchError is returned when caller-supplied exact amounts or
// percentages do not add up to the required total. Delta is the signed
// difference (required minus supplied) in Unit, kept for diagnostics.
type MismatchError struct {
	Delta int64
	Unit  string // "cents" or "bps"
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("split inputs do not sum to total: off by %d %s", e.Delta, e.Unit)
}
