package circuit

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes builder errors.
type ErrorCode string

const (
	// ErrCodeInvalidStateSpec indicates the payload preparation is not a
	// recognized single-qubit state.
	ErrCodeInvalidStateSpec ErrorCode = "INVALID_STATE_SPEC"

	// ErrCodeInvalidCircuit indicates a circuit violates a structural
	// invariant (ordering, write-once registers, qubit bounds).
	ErrCodeInvalidCircuit ErrorCode = "INVALID_CIRCUIT"
)

// Error is returned by the builder and the circuit validator.
type Error struct {
	Code ErrorCode

	// Input is the offending preparation text, if any.
	Input string

	// Index is the offending operation index, or -1.
	Index int

	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Index >= 0:
		return fmt.Sprintf("%s: %s (operation %d)", e.Code, e.Message, e.Index)
	case e.Input != "":
		return fmt.Sprintf("%s: %s (input %q)", e.Code, e.Message, e.Input)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsInvalidStateSpec reports whether err is an invalid preparation error.
// Uses errors.As to handle wrapped errors.
func IsInvalidStateSpec(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeInvalidStateSpec
	}
	return false
}

// IsInvalidCircuit reports whether err is a structural circuit error.
func IsInvalidCircuit(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeInvalidCircuit
	}
	return false
}

func stateSpecError(input, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidStateSpec,
		Input:   input,
		Index:   -1,
		Message: fmt.Sprintf(format, args...),
	}
}

func circuitError(index int, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidCircuit,
		Index:   index,
		Message: fmt.Sprintf(format, args...),
	}
}
