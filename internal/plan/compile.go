package plan

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/ir"
)

var runFields = map[string]bool{
	"payload":   true,
	"shots":     true,
	"uncompute": true,
}

// CompileRun parses a CUE value into a RunSpec.
//
// The CUE value should be the run struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`run: one: { payload: "1" }`)
//	spec, err := CompileRun(v.LookupPath(cue.ParsePath("run.one")))
func CompileRun(v cue.Value) (*ir.RunSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.RunSpec{}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		spec.Name = sels[len(sels)-1].String()
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{Field: "run", Message: "run must be a struct", Pos: v.Pos()}
	}
	for iter.Next() {
		if !runFields[iter.Selector().String()] {
			return nil, &CompileError{
				Field:   "field",
				Message: fmt.Sprintf("unknown field %q", iter.Selector().String()),
				Pos:     iter.Value().Pos(),
			}
		}
	}

	payloadVal := v.LookupPath(cue.ParsePath("payload"))
	if !payloadVal.Exists() {
		return nil, &CompileError{Field: "payload", Message: "payload is required", Pos: v.Pos()}
	}
	payload, err := payloadVal.String()
	if err != nil {
		return nil, &CompileError{Field: "payload", Message: "payload must be a string", Pos: payloadVal.Pos()}
	}
	if _, err := circuit.ParsePreparation(payload); err != nil {
		return nil, &CompileError{Field: "payload", Message: err.Error(), Pos: payloadVal.Pos()}
	}
	spec.Preparation = payload

	if shotsVal := v.LookupPath(cue.ParsePath("shots")); shotsVal.Exists() {
		shots, err := shotsVal.Int64()
		if err != nil {
			return nil, &CompileError{Field: "shots", Message: "shots must be an integer", Pos: shotsVal.Pos()}
		}
		if shots <= 0 {
			return nil, &CompileError{
				Field:   "shots",
				Message: fmt.Sprintf("shots must be positive, got %d", shots),
				Pos:     shotsVal.Pos(),
			}
		}
		spec.Shots = shots
	}

	if uncomputeVal := v.LookupPath(cue.ParsePath("uncompute")); uncomputeVal.Exists() {
		uncompute, err := uncomputeVal.Bool()
		if err != nil {
			return nil, &CompileError{Field: "uncompute", Message: "uncompute must be a bool", Pos: uncomputeVal.Pos()}
		}
		spec.Uncompute = uncompute
	}

	return spec, nil
}

// CompileError reports an invalid run declaration.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
