package teleport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/evaluate"
	"github.com/ms584/Q-Net/internal/executor"
	"github.com/ms584/Q-Net/internal/ir"
	"github.com/ms584/Q-Net/internal/testutil"
)

type recordingSink struct {
	results []*Result
	err     error
}

func (s *recordingSink) Record(_ context.Context, r *Result) error {
	s.results = append(s.results, r)
	return s.err
}

func newTestRunner(exec executor.Executor, opts ...RunnerOption) *Runner {
	base := []RunnerOption{
		WithIDGenerator(NewFixedGenerator("run-1", "run-2", "run-3")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewRunner(exec, append(base, opts...)...)
}

func TestRun_PayloadOneIdeal(t *testing.T) {
	sink := &recordingSink{}
	r := newTestRunner(executor.NewIdeal(), WithSinks(sink))

	res, err := r.Run(context.Background(), Request{Preparation: "1"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, DefaultShots, res.Shots)
	assert.Equal(t, "ideal/exact", res.Executor)
	assert.Equal(t, ir.MustCircuitHash(res.Circuit), res.CircuitHash)
	assert.Equal(t, ir.Counts{"100": 256, "101": 256, "110": 256, "111": 256}, res.Counts)

	require.NotNil(t, res.Report)
	assert.Equal(t, "100.00%", res.Report.Percent())
	assert.Equal(t, ir.One, res.Report.ExpectedBit)
	assert.Equal(t, int64(1024), res.DestinationOnes)

	require.Len(t, sink.results, 1)
	assert.Same(t, res, sink.results[0])
}

func TestRun_PayloadZeroIdeal(t *testing.T) {
	res, err := Run(context.Background(), Request{Preparation: "0", Shots: 1024}, executor.NewIdeal())
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.True(t, res.Report.Perfect())
	assert.Equal(t, ir.Zero, res.Report.ExpectedBit)
	assert.NotEmpty(t, res.RunID)
}

func TestRun_SuperpositionWithoutExpectedBit(t *testing.T) {
	res, err := newTestRunner(executor.NewIdeal()).Run(context.Background(), Request{Preparation: "+", Shots: 1024})
	require.NoError(t, err)
	assert.Nil(t, res.Report)
	assert.Equal(t, int64(512), res.DestinationZeros)
	assert.Equal(t, int64(512), res.DestinationOnes)
}

func TestRun_SuperpositionWithUncompute(t *testing.T) {
	res, err := newTestRunner(executor.NewIdeal()).Run(context.Background(), Request{
		Preparation: "ry(1/3),t",
		Options:     circuit.Options{Uncompute: true},
		Shots:       500,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.True(t, res.Report.Perfect())
	assert.True(t, res.Uncompute)
}

func TestRun_BuildFailureNeverExecutes(t *testing.T) {
	exec := testutil.NewScriptedExecutor(nil)
	sink := &recordingSink{}
	res, err := newTestRunner(exec, WithSinks(sink)).Run(context.Background(), Request{Preparation: "|psi>"})

	require.Error(t, err)
	assert.Nil(t, res)
	phase, ok := FailedPhase(err)
	require.True(t, ok)
	assert.Equal(t, PhaseBuild, phase)
	assert.True(t, circuit.IsInvalidStateSpec(err))
	assert.Empty(t, exec.Calls())
	assert.Empty(t, sink.results)
}

func TestRun_ExecutorFailurePropagates(t *testing.T) {
	cause := errors.New("quota exhausted")
	res, err := newTestRunner(testutil.NewFailingExecutor(cause)).Run(context.Background(), Request{Preparation: "1"})

	require.Error(t, err)
	assert.Nil(t, res)
	phase, _ := FailedPhase(err)
	assert.Equal(t, PhaseExecute, phase)
	assert.True(t, executor.IsExecutorFailure(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "execute phase failed (run run-1)")
}

func TestRun_ShotMismatchIsExecuteFailure(t *testing.T) {
	_, err := newTestRunner(testutil.NewScriptedExecutor(ir.Counts{"100": 3})).Run(context.Background(), Request{Preparation: "1", Shots: 4})
	require.Error(t, err)
	phase, _ := FailedPhase(err)
	assert.Equal(t, PhaseExecute, phase)
	assert.True(t, evaluate.IsShotMismatch(err))
}

func TestRun_InvalidShots(t *testing.T) {
	_, err := newTestRunner(executor.NewIdeal()).Run(context.Background(), Request{Preparation: "1", Shots: -1})
	require.Error(t, err)
	assert.True(t, executor.IsInvalidShots(err))
}

func TestRun_SinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	res, err := newTestRunner(executor.NewIdeal(), WithSinks(sink)).Run(context.Background(), Request{Preparation: "1"})
	require.Error(t, err)
	assert.Nil(t, res)
	phase, _ := FailedPhase(err)
	assert.Equal(t, PhaseRecord, phase)
}

func TestRun_SinkFailureStopsLaterSinks(t *testing.T) {
	first := &recordingSink{}
	failing := &recordingSink{err: errors.New("broker gone")}
	last := &recordingSink{}

	runner := newTestRunner(executor.NewIdeal(), WithSinks(first, failing, last))
	res, err := runner.Run(context.Background(), Request{Preparation: "1"})
	require.Error(t, err)
	assert.Nil(t, res)

	var pe *PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhaseRecord, pe.Phase)
	assert.Equal(t, "run-1", pe.RunID)

	assert.Len(t, first.results, 1)
	assert.Len(t, failing.results, 1)
	assert.Empty(t, last.results)
}

func TestFixedGenerator_Exhausted(t *testing.T) {
	g := NewFixedGenerator("only")
	assert.Equal(t, "only", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestRun_NoisyCountsFromBackend(t *testing.T) {
	exec := testutil.NewScriptedExecutor(testutil.WithErrors(testutil.IdealCounts(ir.One, 10), 1))
	exec.Label = "backend/noisy"

	res, err := newTestRunner(exec).Run(context.Background(), Request{Preparation: "1", Shots: 40})
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.False(t, res.Report.Perfect())
	assert.Equal(t, "90.00%", res.Report.Percent())
	assert.Equal(t, int64(4), res.DestinationZeros)
	assert.Equal(t, int64(36), res.DestinationOnes)
	assert.Equal(t, "backend/noisy", res.Executor)

	calls := exec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(40), calls[0].Shots)
	assert.Equal(t, res.CircuitHash, ir.MustCircuitHash(calls[0].Circuit))
}

func TestErrorCode(t *testing.T) {
	_, stateErr := circuit.ParsePreparation("cx")
	require.Error(t, stateErr)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"state spec", &PhaseError{Phase: PhaseBuild, Err: stateErr}, "INVALID_STATE_SPEC"},
		{"evaluator", fmt.Errorf("wrapped: %w", &evaluate.Error{Code: evaluate.ErrCodeShotMismatch}), "SHOT_MISMATCH"},
		{
			"executor wins over cause",
			&executor.Error{Code: executor.ErrCodeExecutorFailure, Executor: "x", Err: &evaluate.Error{Code: evaluate.ErrCodeMalformedCounts}},
			"EXECUTOR_FAILURE",
		},
		{"plain", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

