package testutil

import (
	"fmt"

	"github.com/ms584/Q-Net/internal/ir"
)

// IdealCounts returns the noiseless outcome of teleporting a basis payload:
// every intermediate measurement pair occurs perOutcome times and the
// destination bit always equals bit.
//
//	IdealCounts(ir.One, 256) // {"100":256, "101":256, "110":256, "111":256}
func IdealCounts(bit ir.Bit, perOutcome int64) ir.Counts {
	counts := make(ir.Counts, 4)
	for i := 0; i < 4; i++ {
		counts[fmt.Sprintf("%d%02b", bit, i)] = perOutcome
	}
	return counts
}

// WithErrors moves n shots of every ideal outcome to the same intermediate
// pair with the destination bit flipped, modelling a channel that loses the
// payload n times per outcome.
func WithErrors(counts ir.Counts, n int64) ir.Counts {
	out := counts.Clone()
	for key, v := range counts {
		if v < n {
			continue
		}
		flipped := []byte(key)
		if flipped[0] == '0' {
			flipped[0] = '1'
		} else {
			flipped[0] = '0'
		}
		out[key] -= n
		out[string(flipped)] += n
	}
	return out
}
