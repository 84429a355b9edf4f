package evaluate

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes evaluator errors.
type ErrorCode string

const (
	// ErrCodeEmptySampleSet indicates the counts sum to zero.
	ErrCodeEmptySampleSet ErrorCode = "EMPTY_SAMPLE_SET"

	// ErrCodeMalformedCounts indicates a key is not a fixed-width bitstring
	// or a count is negative.
	ErrCodeMalformedCounts ErrorCode = "MALFORMED_COUNTS"

	// ErrCodeShotMismatch indicates the counts do not sum to the requested
	// shot count.
	ErrCodeShotMismatch ErrorCode = "SHOT_MISMATCH"
)

// Error is returned by the evaluator.
type Error struct {
	Code    ErrorCode
	Key     string
	Message string
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key %q)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsEmptySampleSet reports whether err is an EMPTY_SAMPLE_SET error.
func IsEmptySampleSet(err error) bool {
	return hasCode(err, ErrCodeEmptySampleSet)
}

// IsMalformedCounts reports whether err is a MALFORMED_COUNTS error.
func IsMalformedCounts(err error) bool {
	return hasCode(err, ErrCodeMalformedCounts)
}

// IsShotMismatch reports whether err is a SHOT_MISMATCH error.
func IsShotMismatch(err error) bool {
	return hasCode(err, ErrCodeShotMismatch)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
