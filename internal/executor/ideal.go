package executor

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/ir"
)

// Sampling selects how the Ideal executor turns outcome probabilities into
// shot counts.
type Sampling string

const (
	// SamplingExact apportions shots deterministically by largest remainder,
	// so four equally likely outcomes over 1024 shots give exactly 256 each.
	SamplingExact Sampling = "exact"

	// SamplingSeeded draws each shot from a PCG source seeded with Seed.
	SamplingSeeded Sampling = "sampled"
)

// ParseSampling converts a config value to a Sampling mode.
func ParseSampling(s string) (Sampling, error) {
	switch Sampling(s) {
	case "", SamplingExact:
		return SamplingExact, nil
	case SamplingSeeded:
		return SamplingSeeded, nil
	default:
		return "", fmt.Errorf("unknown sampling mode %q (want %q or %q)", s, SamplingExact, SamplingSeeded)
	}
}

// Ideal is a noiseless executor for three-qubit teleport circuits.
//
// It enumerates every measurement history of the circuit exactly and then
// converts the resulting outcome distribution into counts. It supports only
// the IR gate alphabet on three qubits.
type Ideal struct {
	Sampling Sampling
	Seed     uint64
}

// NewIdeal returns an exact-apportionment ideal executor.
func NewIdeal() *Ideal {
	return &Ideal{Sampling: SamplingExact}
}

// Name implements Executor.
func (e *Ideal) Name() string {
	if e.Sampling == SamplingSeeded {
		return fmt.Sprintf("ideal/sampled(seed=%d)", e.Seed)
	}
	return "ideal/exact"
}

// Execute implements Executor.
func (e *Ideal) Execute(ctx context.Context, c *ir.Circuit, shots int64) (ir.Counts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c != nil && c.Qubits > ir.NumQubits {
		return nil, fmt.Errorf("ideal executor supports at most %d qubits, circuit has %d", ir.NumQubits, c.Qubits)
	}
	if err := circuit.Validate(c); err != nil {
		return nil, err
	}

	probs, err := outcomes(c)
	if err != nil {
		return nil, err
	}

	switch e.Sampling {
	case SamplingSeeded:
		return sample(probs, shots, e.Seed), nil
	case SamplingExact, "":
		return apportion(probs, shots), nil
	default:
		return nil, fmt.Errorf("unknown sampling mode %q", e.Sampling)
	}
}

// apportion distributes shots over keys in proportion to probs using the
// largest-remainder method. Ties go to the lexically smaller key.
func apportion(probs map[string]float64, shots int64) ir.Counts {
	type share struct {
		key  string
		frac float64
	}
	keys := sortedKeys(probs)
	counts := make(ir.Counts, len(keys))
	shares := make([]share, 0, len(keys))

	var assigned int64
	for _, k := range keys {
		// Round away float noise so 0.25 of 1024 is exactly 256.
		exact := math.Round(probs[k]*float64(shots)*1e9) / 1e9
		whole := int64(math.Floor(exact))
		counts[k] = whole
		assigned += whole
		shares = append(shares, share{key: k, frac: exact - float64(whole)})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].frac > shares[j].frac
	})
	for i := 0; assigned < shots && len(shares) > 0; i++ {
		counts[shares[i%len(shares)].key]++
		assigned++
	}

	for k, n := range counts {
		if n == 0 {
			delete(counts, k)
		}
	}
	return counts
}

// sample draws shots independent outcomes from probs.
func sample(probs map[string]float64, shots int64, seed uint64) ir.Counts {
	keys := sortedKeys(probs)
	cumulative := make([]float64, len(keys))
	var total float64
	for i, k := range keys {
		total += probs[k]
		cumulative[i] = total
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	counts := make(ir.Counts, len(keys))
	for s := int64(0); s < shots; s++ {
		x := rng.Float64() * total
		i := sort.SearchFloat64s(cumulative, x)
		if i >= len(keys) {
			i = len(keys) - 1
		}
		counts[keys[i]]++
	}
	return counts
}

func sortedKeys(probs map[string]float64) []string {
	keys := make([]string, 0, len(probs))
	for k := range probs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
