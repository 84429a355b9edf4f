package teleport

import (
	"errors"
	"fmt"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/evaluate"
	"github.com/ms584/Q-Net/internal/executor"
)

// Phase names a pipeline stage.
type Phase string

const (
	PhaseBuild    Phase = "build"
	PhaseExecute  Phase = "execute"
	PhaseEvaluate Phase = "evaluate"
	PhaseRecord   Phase = "record"
)

// PhaseError wraps the error that stopped the pipeline.
type PhaseError struct {
	Phase Phase
	RunID string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase failed (run %s): %v", e.Phase, e.RunID, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// FailedPhase returns the phase an error came from, if it is a PhaseError.
func FailedPhase(err error) (Phase, bool) {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Phase, true
	}
	return "", false
}

// ErrorCode extracts the outermost domain error code from a pipeline error,
// so an executor failure caused by an invalid circuit reports
// EXECUTOR_FAILURE. Returns "" for errors that carry no code.
func ErrorCode(err error) string {
	var xe *executor.Error
	if errors.As(err, &xe) {
		return string(xe.Code)
	}
	var ce *circuit.Error
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	var ee *evaluate.Error
	if errors.As(err, &ee) {
		return string(ee.Code)
	}
	return ""
}
