package evaluate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ms584/Q-Net/internal/ir"
)

var hundred = decimal.NewFromInt(100)

// Row is one distinct outcome of the breakdown.
type Row struct {
	Key         string          `json:"key"`
	Destination ir.Bit          `json:"destination"`
	EntangledA  ir.Bit          `json:"entangled_a"`
	Payload     ir.Bit          `json:"payload"`
	Count       int64           `json:"count"`
	Share       decimal.Decimal `json:"share"`
	Success     bool            `json:"success"`
}

// Report is the evaluation of one run.
type Report struct {
	ExpectedBit ir.Bit          `json:"expected_bit"`
	Total       int64           `json:"total"`
	Successes   int64           `json:"successes"`
	SuccessRate decimal.Decimal `json:"success_rate"`
	Rows        []Row           `json:"rows"`
}

// Perfect reports whether every recorded outcome matched the expected bit.
func (r *Report) Perfect() bool {
	return r.Successes == r.Total
}

// Percent formats the success rate with two decimals, e.g. "100.00%".
func (r *Report) Percent() string {
	return r.SuccessRate.StringFixed(2) + "%"
}

// NormalizeKey removes register separators from a backend outcome key.
// Backends that report one creg per register separate them with spaces
// ("1 0 1"); the canonical form is the bare bitstring ("101").
func NormalizeKey(key string) string {
	if !strings.ContainsAny(key, " \t_") {
		return key
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '_':
			return -1
		}
		return r
	}, key)
}

// Normalize returns a copy of counts with every key normalized and
// validated. Keys that collapse to the same bitstring are merged.
func Normalize(counts ir.Counts) (ir.Counts, error) {
	out := make(ir.Counts, len(counts))
	for raw, n := range counts {
		key := NormalizeKey(raw)
		if err := checkKey(key); err != nil {
			err.Key = raw
			return nil, err
		}
		if n < 0 {
			return nil, &Error{Code: ErrCodeMalformedCounts, Key: raw, Message: "negative count"}
		}
		out[key] += n
	}
	return out, nil
}

// Evaluate computes the success rate of counts against the expected
// destination bit. It fails with EMPTY_SAMPLE_SET when the counts sum to
// zero and MALFORMED_COUNTS when a key is not a three-bit string.
func Evaluate(counts ir.Counts, expected ir.Bit) (*Report, error) {
	normalized, err := Normalize(counts)
	if err != nil {
		return nil, err
	}

	total := normalized.Total()
	if total == 0 {
		return nil, &Error{Code: ErrCodeEmptySampleSet, Message: "outcome counts sum to zero"}
	}

	keys := make([]string, 0, len(normalized))
	for k := range normalized {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	report := &Report{ExpectedBit: expected, Total: total}
	den := decimal.NewFromInt(total)
	for _, k := range keys {
		n := normalized[k]
		row := Row{
			Key:         k,
			Destination: bitAt(k, ir.DestinationResult),
			EntangledA:  bitAt(k, ir.EntangledAMeasurement),
			Payload:     bitAt(k, ir.PayloadMeasurement),
			Count:       n,
			Share:       decimal.NewFromInt(n).Mul(hundred).Div(den),
		}
		row.Success = row.Destination == expected
		if row.Success {
			report.Successes += n
		}
		report.Rows = append(report.Rows, row)
	}
	report.SuccessRate = decimal.NewFromInt(report.Successes).Mul(hundred).Div(den)
	return report, nil
}

// CheckConservation verifies that counts sum exactly to shots.
func CheckConservation(counts ir.Counts, shots int64) error {
	if got := counts.Total(); got != shots {
		return &Error{
			Code:    ErrCodeShotMismatch,
			Message: fmt.Sprintf("counts sum to %d, want %d", got, shots),
		}
	}
	return nil
}

// DestinationMarginal returns how many shots read 0 and 1 on the
// destination register. It is the quantity of interest when the payload is
// a superposition and no single expected bit exists.
func DestinationMarginal(counts ir.Counts) (zeros, ones int64, err error) {
	normalized, err := Normalize(counts)
	if err != nil {
		return 0, 0, err
	}
	for k, n := range normalized {
		if bitAt(k, ir.DestinationResult) == ir.One {
			ones += n
		} else {
			zeros += n
		}
	}
	return zeros, ones, nil
}

func checkKey(key string) *Error {
	if len(key) != ir.NumRegisters {
		return &Error{Code: ErrCodeMalformedCounts, Message: "key must have one bit per register"}
	}
	for i := 0; i < len(key); i++ {
		if key[i] != '0' && key[i] != '1' {
			return &Error{Code: ErrCodeMalformedCounts, Message: "key must contain only 0 and 1"}
		}
	}
	return nil
}

func bitAt(key string, r ir.Register) ir.Bit {
	if key[r.KeyIndex()] == '1' {
		return ir.One
	}
	return ir.Zero
}
