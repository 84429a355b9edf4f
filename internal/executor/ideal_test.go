package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/evaluate"
	"github.com/ms584/Q-Net/internal/ir"
)

func build(t *testing.T, spec string, opts circuit.Options) *ir.Circuit {
	t.Helper()
	c, _, err := circuit.BuildSpec(spec, opts)
	require.NoError(t, err)
	return c
}

func TestIdeal_PayloadOne1024Shots(t *testing.T) {
	counts, err := NewIdeal().Execute(context.Background(), build(t, "1", circuit.Options{}), 1024)
	require.NoError(t, err)

	assert.Equal(t, ir.Counts{"100": 256, "101": 256, "110": 256, "111": 256}, counts)

	report, err := evaluate.Evaluate(counts, ir.One)
	require.NoError(t, err)
	assert.Equal(t, "100.00%", report.Percent())
}

func TestIdeal_PayloadZero1024Shots(t *testing.T) {
	counts, err := NewIdeal().Execute(context.Background(), build(t, "0", circuit.Options{}), 1024)
	require.NoError(t, err)

	assert.Equal(t, ir.Counts{"000": 256, "001": 256, "010": 256, "011": 256}, counts)

	report, err := evaluate.Evaluate(counts, ir.Zero)
	require.NoError(t, err)
	assert.True(t, report.Perfect())
}

func TestIdeal_AllIntermediateOutcomesCorrected(t *testing.T) {
	for _, payload := range []ir.Bit{ir.Zero, ir.One} {
		c := build(t, string(payload.Byte()), circuit.Options{})
		probs, err := outcomes(c)
		require.NoError(t, err)

		seen := map[[2]ir.Bit]bool{}
		for key, p := range probs {
			assert.Equal(t, payload.Byte(), key[0], "key %s", key)
			assert.InDelta(t, 0.25, p, 1e-9)
			seen[[2]ir.Bit{bit(key[2]), bit(key[1])}] = true
		}
		assert.Len(t, seen, 4, "every (payload, entangledA) measurement pair occurs")
	}
}

func TestIdeal_CorrectionsAreNecessary(t *testing.T) {
	c := build(t, "1", circuit.Options{})
	var ops []ir.Operation
	for _, op := range c.Operations {
		if op.Phase != ir.PhaseCorrect {
			ops = append(ops, op)
		}
	}
	c.Operations = ops

	counts, err := NewIdeal().Execute(context.Background(), c, 1024)
	require.NoError(t, err)
	report, err := evaluate.Evaluate(counts, ir.One)
	require.NoError(t, err)
	assert.Equal(t, "50.00%", report.Percent())
}

func correctionIndexes(t *testing.T, c *ir.Circuit) []int {
	t.Helper()
	var idx []int
	for i, op := range c.Operations {
		if op.Phase == ir.PhaseCorrect {
			idx = append(idx, i)
		}
	}
	require.Len(t, idx, 2)
	return idx
}

func TestIdeal_CorrectionsCommute(t *testing.T) {
	tests := []struct {
		spec     string
		opts     circuit.Options
		expected ir.Bit
	}{
		{"0", circuit.Options{}, ir.Zero},
		{"1", circuit.Options{}, ir.One},
		{"+i", circuit.Options{Uncompute: true}, ir.Zero},
		{"ry(1/3),t", circuit.Options{Uncompute: true}, ir.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			c := build(t, tt.spec, tt.opts)
			idx := correctionIndexes(t, c)
			c.Operations[idx[0]], c.Operations[idx[1]] = c.Operations[idx[1]], c.Operations[idx[0]]

			counts, err := NewIdeal().Execute(context.Background(), c, 1024)
			require.NoError(t, err)
			report, err := evaluate.Evaluate(counts, tt.expected)
			require.NoError(t, err)
			assert.Equal(t, "100.00%", report.Percent(), "counts %v", counts)
		})
	}
}

func TestIdeal_EachCorrectionIsIndependent(t *testing.T) {
	// |+i> is moved by both a bit-flip and a phase-flip, so dropping
	// either correction alone loses half the shots.
	for _, gate := range []ir.Gate{ir.GateX, ir.GateZ} {
		t.Run(string(gate), func(t *testing.T) {
			c := build(t, "+i", circuit.Options{Uncompute: true})
			var ops []ir.Operation
			for _, op := range c.Operations {
				if op.Phase == ir.PhaseCorrect && op.Gate == gate {
					continue
				}
				ops = append(ops, op)
			}
			require.Len(t, ops, len(c.Operations)-1)
			c.Operations = ops

			counts, err := NewIdeal().Execute(context.Background(), c, 1024)
			require.NoError(t, err)
			report, err := evaluate.Evaluate(counts, ir.Zero)
			require.NoError(t, err)
			assert.Equal(t, "50.00%", report.Percent())
		})
	}
}

func TestIdeal_SuperpositionsWithUncompute(t *testing.T) {
	for _, spec := range []string{"+", "-", "+i", "-i", "ry(1/3),t", "rx(2/5),rz(-1/7),h"} {
		t.Run(spec, func(t *testing.T) {
			counts, err := NewIdeal().Execute(context.Background(), build(t, spec, circuit.Options{Uncompute: true}), 1000)
			require.NoError(t, err)
			assert.Equal(t, int64(1000), counts.Total())

			report, err := evaluate.Evaluate(counts, ir.Zero)
			require.NoError(t, err)
			assert.True(t, report.Perfect(), "counts %v", counts)
		})
	}
}

func TestIdeal_SuperpositionWithoutUncomputeIsBalanced(t *testing.T) {
	counts, err := NewIdeal().Execute(context.Background(), build(t, "+", circuit.Options{}), 1024)
	require.NoError(t, err)

	zeros, ones, err := evaluate.DestinationMarginal(counts)
	require.NoError(t, err)
	assert.Equal(t, int64(512), zeros)
	assert.Equal(t, int64(512), ones)
	assert.Len(t, counts, 8)
}

func TestIdeal_SeededSampling(t *testing.T) {
	c := build(t, "1", circuit.Options{})
	e := &Ideal{Sampling: SamplingSeeded, Seed: 42}

	a, err := e.Execute(context.Background(), c, 1024)
	require.NoError(t, err)
	b, err := e.Execute(context.Background(), c, 1024)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, int64(1024), a.Total())
	for key := range a {
		assert.Equal(t, byte('1'), key[0])
	}
	assert.Equal(t, "ideal/sampled(seed=42)", e.Name())
}

func TestIdeal_Rejects(t *testing.T) {
	c := build(t, "1", circuit.Options{})
	c.Qubits = 4
	_, err := NewIdeal().Execute(context.Background(), c, 10)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewIdeal().Execute(ctx, build(t, "1", circuit.Options{}), 10)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = (&Ideal{Sampling: "weird"}).Execute(context.Background(), build(t, "1", circuit.Options{}), 10)
	assert.Error(t, err)
}

func TestApportion(t *testing.T) {
	counts := apportion(map[string]float64{"a": 1.0 / 3, "b": 1.0 / 3, "c": 1.0 / 3}, 100)
	assert.Equal(t, ir.Counts{"a": 34, "b": 33, "c": 33}, counts)

	counts = apportion(map[string]float64{"x": 0.999999, "y": 0.000001}, 10)
	assert.Equal(t, ir.Counts{"x": 10}, counts)
}

func TestParseSampling(t *testing.T) {
	s, err := ParseSampling("")
	require.NoError(t, err)
	assert.Equal(t, SamplingExact, s)

	s, err = ParseSampling("sampled")
	require.NoError(t, err)
	assert.Equal(t, SamplingSeeded, s)

	_, err = ParseSampling("random")
	assert.Error(t, err)
}

func bit(b byte) ir.Bit {
	if b == '1' {
		return ir.One
	}
	return ir.Zero
}
