package present

import (
	"encoding/json"
	"io"

	"github.com/ms584/Q-Net/internal/ir"
	"github.com/ms584/Q-Net/internal/teleport"
)

// Summary is the machine-readable form of a run, used for JSON output and
// for messages published to the broker.
type Summary struct {
	RunID            string    `json:"run_id"`
	Name             string    `json:"name,omitempty"`
	Payload          string    `json:"payload"`
	Uncompute        bool      `json:"uncompute,omitempty"`
	Shots            int64     `json:"shots"`
	Executor         string    `json:"executor"`
	CircuitHash      string    `json:"circuit_hash"`
	Counts           ir.Counts `json:"counts"`
	DestinationZeros int64     `json:"destination_zeros"`
	DestinationOnes  int64     `json:"destination_ones"`

	// Set only when the run had a deterministic expected bit.
	ExpectedBit *ir.Bit `json:"expected_bit,omitempty"`
	Successes   *int64  `json:"successes,omitempty"`
	SuccessRate string  `json:"success_rate,omitempty"`
}

// Summarize converts a pipeline result into a Summary.
func Summarize(r *teleport.Result) Summary {
	s := Summary{
		RunID:            r.RunID,
		Name:             r.Name,
		Payload:          r.Preparation,
		Uncompute:        r.Uncompute,
		Shots:            r.Shots,
		Executor:         r.Executor,
		CircuitHash:      r.CircuitHash,
		Counts:           r.Counts,
		DestinationZeros: r.DestinationZeros,
		DestinationOnes:  r.DestinationOnes,
	}
	if r.Report != nil {
		bit := r.Report.ExpectedBit
		successes := r.Report.Successes
		s.ExpectedBit = &bit
		s.Successes = &successes
		s.SuccessRate = r.Report.SuccessRate.StringFixed(2)
	}
	return s
}

// WriteJSON writes the summary as indented JSON.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
