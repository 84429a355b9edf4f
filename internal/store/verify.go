package store

import (
	"fmt"
	"strings"

	"github.com/ms584/Q-Net/internal/evaluate"
	"github.com/ms584/Q-Net/internal/ir"
)

// VerifyError lists every stored field that no longer matches the value
// recomputed from the run's circuit and counts.
type VerifyError struct {
	RunID      string
	Mismatches []string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("run %s: %s", e.RunID, strings.Join(e.Mismatches, "; "))
}

// Verify recomputes the circuit hash, the counts hash and, when the run has
// an expected bit, the evaluation, and compares them with the stored values.
// It returns nil or a *VerifyError.
func (r *Run) Verify() error {
	var mismatches []string

	if r.Circuit == nil {
		mismatches = append(mismatches, "circuit missing")
	} else if hash, err := ir.CircuitHash(r.Circuit); err != nil {
		mismatches = append(mismatches, "circuit: "+err.Error())
	} else if hash != r.CircuitHash {
		mismatches = append(mismatches, fmt.Sprintf("circuit_hash %s, recomputed %s", r.CircuitHash, hash))
	}

	if hash, err := ir.CountsHash(r.Counts); err != nil {
		mismatches = append(mismatches, "counts: "+err.Error())
	} else if hash != r.CountsHash {
		mismatches = append(mismatches, fmt.Sprintf("counts_hash %s, recomputed %s", r.CountsHash, hash))
	}

	if total := r.Counts.Total(); total != r.Shots {
		mismatches = append(mismatches, fmt.Sprintf("counts sum to %d, shots %d", total, r.Shots))
	}

	if r.ExpectedBit != nil {
		report, err := evaluate.Evaluate(r.Counts, *r.ExpectedBit)
		switch {
		case err != nil:
			mismatches = append(mismatches, "evaluate: "+err.Error())
		case r.Successes == nil || *r.Successes != report.Successes:
			mismatches = append(mismatches, fmt.Sprintf("successes recomputed as %d", report.Successes))
		case r.SuccessRate == nil || !r.SuccessRate.Equal(report.SuccessRate):
			mismatches = append(mismatches, "success_rate recomputed as "+report.Percent())
		}
	}

	if len(mismatches) > 0 {
		return &VerifyError{RunID: r.ID, Mismatches: mismatches}
	}
	return nil
}
