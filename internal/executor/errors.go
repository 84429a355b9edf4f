package executor

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes executor errors.
type ErrorCode string

const (
	// ErrCodeExecutorFailure wraps any failure reported by an executor.
	// The cause is preserved unchanged and reachable with errors.Unwrap.
	ErrCodeExecutorFailure ErrorCode = "EXECUTOR_FAILURE"

	// ErrCodeInvalidShots indicates a non-positive shot count.
	ErrCodeInvalidShots ErrorCode = "INVALID_SHOTS"
)

// Error is returned by Checked executors.
type Error struct {
	Code     ErrorCode
	Executor string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: executor %s", e.Code, e.Executor)
	}
	return fmt.Sprintf("%s: executor %s: %v", e.Code, e.Executor, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsExecutorFailure reports whether err is an EXECUTOR_FAILURE error.
func IsExecutorFailure(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeExecutorFailure
	}
	return false
}

// IsInvalidShots reports whether err is an INVALID_SHOTS error.
func IsInvalidShots(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeInvalidShots
	}
	return false
}
