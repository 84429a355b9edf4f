package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/executor"
	"github.com/ms584/Q-Net/internal/ir"
	"github.com/ms584/Q-Net/internal/teleport"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(t *testing.T, id, payload string) Run {
	t.Helper()
	c, _, err := circuit.BuildSpec(payload, circuit.Options{})
	require.NoError(t, err)
	return Run{
		ID:          id,
		Payload:     payload,
		Shots:       1024,
		Executor:    "ideal/exact",
		CircuitHash: ir.MustCircuitHash(c),
		Circuit:     c,
		Counts:      ir.Counts{"100": 512, "111": 512},
		IRVersion:   ir.IRVersion,
		ToolVersion: ir.ToolVersion,
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
	require.NoError(t, s.verifyPragma("synchronous", "1"))
	require.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	require.NoError(t, s.verifyPragma("foreign_keys", "1"))
	require.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.WriteRun(context.Background(), testRun(t, "run-1", "1"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	run, err := s2.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "1", run.Payload)
}

func TestWriteRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	in := testRun(t, "run-1", "1")
	bit := ir.One
	successes := int64(1024)
	rate := decimal.NewFromInt(100)
	in.ExpectedBit, in.Successes, in.SuccessRate = &bit, &successes, &rate
	in.Name = "demo"

	seq, err := s.WriteRun(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	out, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), out.Seq)
	assert.Equal(t, "demo", out.Name)
	assert.Equal(t, in.Counts, out.Counts)
	assert.Equal(t, in.Circuit, out.Circuit)
	assert.Equal(t, in.CircuitHash, ir.MustCircuitHash(out.Circuit))
	assert.Equal(t, ir.One, *out.ExpectedBit)
	assert.Equal(t, int64(1024), *out.Successes)
	assert.True(t, out.SuccessRate.Equal(rate))

	wantHash, err := ir.CountsHash(in.Counts)
	require.NoError(t, err)
	assert.Equal(t, wantHash, out.CountsHash)
}

func TestWriteRun_NoExpectedBit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, testRun(t, "run-plus", "+"))
	require.NoError(t, err)

	out, err := s.ReadRun(ctx, "run-plus")
	require.NoError(t, err)
	assert.Nil(t, out.ExpectedBit)
	assert.Nil(t, out.Successes)
	assert.Nil(t, out.SuccessRate)
}

func TestWriteRun_DuplicateIDRejected(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, testRun(t, "run-1", "1"))
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, testRun(t, "run-1", "0"))
	assert.Error(t, err)
}

func TestWriteRun_NilCircuit(t *testing.T) {
	s := createTestStore(t)
	run := testRun(t, "run-1", "1")
	run.Circuit = nil
	_, err := s.WriteRun(context.Background(), run)
	assert.Error(t, err)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestListRuns_OrderAndFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, r := range []Run{
		testRun(t, "c", "1"),
		testRun(t, "a", "0"),
		testRun(t, "b", "1"),
	} {
		_, err := s.WriteRun(ctx, r)
		require.NoError(t, err)
	}

	all, err := s.ListRuns(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "a", "b"}, ids(all))
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].Seq, all[1].Seq, all[2].Seq})

	ones, err := s.ListRuns(ctx, Filter{Payload: "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, ids(ones))

	byHash, err := s.ListRuns(ctx, Filter{CircuitHash: all[1].CircuitHash})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(byHash))

	limited, err := s.ListRuns(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(limited))
}

func TestRecord_AsPipelineSink(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runner := teleport.NewRunner(executor.NewIdeal(),
		teleport.WithIDGenerator(teleport.NewFixedGenerator("run-a", "run-b")),
		teleport.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		teleport.WithSinks(s),
	)
	_, err := runner.Run(ctx, teleport.Request{Preparation: "1"})
	require.NoError(t, err)
	_, err = runner.Run(ctx, teleport.Request{Preparation: "+", Shots: 64})
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-a", runs[0].ID)
	assert.Equal(t, "100", runs[0].SuccessRate.StringFixed(0))
	assert.Equal(t, int64(1024), runs[0].Counts.Total())
	assert.Equal(t, "ideal/exact", runs[0].Executor)

	assert.Equal(t, "run-b", runs[1].ID)
	assert.Nil(t, runs[1].SuccessRate)
	assert.Equal(t, int64(64), runs[1].Shots)
}

func ids(runs []*Run) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}

func TestVerify(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runner := teleport.NewRunner(executor.NewIdeal(),
		teleport.WithIDGenerator(teleport.NewFixedGenerator("run-a", "run-b")),
		teleport.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		teleport.WithSinks(s),
	)
	_, err := runner.Run(ctx, teleport.Request{Preparation: "1"})
	require.NoError(t, err)
	_, err = runner.Run(ctx, teleport.Request{Preparation: "+"})
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, Filter{})
	require.NoError(t, err)
	for _, r := range runs {
		assert.NoError(t, r.Verify(), r.ID)
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	in := testRun(t, "run-1", "1")
	bit := ir.One
	successes := int64(1024)
	rate := decimal.NewFromInt(100)
	in.ExpectedBit, in.Successes, in.SuccessRate = &bit, &successes, &rate
	_, err := s.WriteRun(ctx, in)
	require.NoError(t, err)

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	require.NoError(t, run.Verify())

	run.Counts = ir.Counts{"100": 512, "011": 512}
	run.CircuitHash = "deadbeef"

	err = run.Verify()
	var ve *VerifyError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "run-1", ve.RunID)
	require.Len(t, ve.Mismatches, 3)
	assert.Contains(t, ve.Mismatches[0], "circuit_hash deadbeef")
	assert.Contains(t, ve.Mismatches[1], "counts_hash")
	assert.Equal(t, "successes recomputed as 512", ve.Mismatches[2])
}
