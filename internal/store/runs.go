package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ms584/Q-Net/internal/ir"
	"github.com/ms584/Q-Net/internal/teleport"
)

// ErrRunNotFound is returned by ReadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored teleportation run.
type Run struct {
	ID          string
	Seq         int64
	Name        string
	Payload     string
	Uncompute   bool
	Shots       int64
	Executor    string
	CircuitHash string
	Circuit     *ir.Circuit
	Counts      ir.Counts
	CountsHash  string

	// Nil when the run had no deterministic expected bit.
	ExpectedBit *ir.Bit
	Successes   *int64
	SuccessRate *decimal.Decimal

	IRVersion   string
	ToolVersion string
}

// Filter narrows ListRuns. Zero values match everything.
type Filter struct {
	Payload     string
	CircuitHash string
	Limit       int
}

// Record stores a pipeline result. It lets a Store act as a teleport.Sink.
func (s *Store) Record(ctx context.Context, r *teleport.Result) error {
	run := Run{
		ID:          r.RunID,
		Name:        r.Name,
		Payload:     r.Preparation,
		Uncompute:   r.Uncompute,
		Shots:       r.Shots,
		Executor:    r.Executor,
		CircuitHash: r.CircuitHash,
		Circuit:     r.Circuit,
		Counts:      r.Counts,
		IRVersion:   ir.IRVersion,
		ToolVersion: ir.ToolVersion,
	}
	if r.Report != nil {
		bit := r.Report.ExpectedBit
		successes := r.Report.Successes
		rate := r.Report.SuccessRate
		run.ExpectedBit = &bit
		run.Successes = &successes
		run.SuccessRate = &rate
	}
	_, err := s.WriteRun(ctx, run)
	return err
}

// WriteRun appends a run and returns the sequence number assigned to it.
// The seq field of run is ignored; counts_hash is computed here.
// Writing an ID that already exists is an error: runs are immutable.
func (s *Store) WriteRun(ctx context.Context, run Run) (int64, error) {
	if run.Circuit == nil {
		return 0, fmt.Errorf("write run %s: circuit is nil", run.ID)
	}
	circuitJSON, err := marshalCircuit(run.Circuit)
	if err != nil {
		return 0, fmt.Errorf("write run %s: %w", run.ID, err)
	}
	countsJSON, err := marshalCounts(run.Counts)
	if err != nil {
		return 0, fmt.Errorf("write run %s: %w", run.ID, err)
	}
	countsHash, err := ir.CountsHash(run.Counts)
	if err != nil {
		return 0, fmt.Errorf("write run %s: %w", run.ID, err)
	}

	var expected, successes, rate any
	if run.ExpectedBit != nil {
		expected = int(*run.ExpectedBit)
	}
	if run.Successes != nil {
		successes = *run.Successes
	}
	if run.SuccessRate != nil {
		rate = run.SuccessRate.String()
	}

	var seq int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO runs
		(id, seq, name, payload, uncompute, shots, executor, circuit_hash, circuit,
		 counts, counts_hash, expected_bit, successes, success_rate, ir_version, tool_version)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING seq
	`,
		run.ID,
		run.Name,
		run.Payload,
		run.Uncompute,
		run.Shots,
		run.Executor,
		run.CircuitHash,
		circuitJSON,
		countsJSON,
		countsHash,
		expected,
		successes,
		rate,
		run.IRVersion,
		run.ToolVersion,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("write run %s: %w", run.ID, err)
	}
	return seq, nil
}

const runColumns = `id, seq, name, payload, uncompute, shots, executor, circuit_hash, circuit,
	counts, counts_hash, expected_bit, successes, success_rate, ir_version, tool_version`

// ReadRun returns the run with the given ID, or ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs matching f, oldest first.
func (s *Store) ListRuns(ctx context.Context, f Filter) ([]*Run, error) {
	var (
		where []string
		args  []any
	)
	if f.Payload != "" {
		where = append(where, "payload = ?")
		args = append(args, f.Payload)
	}
	if f.CircuitHash != "" {
		where = append(where, "circuit_hash = ?")
		args = append(args, f.CircuitHash)
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq ASC, id COLLATE BINARY ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run         Run
		circuitJSON string
		countsJSON  string
		expected    sql.NullInt64
		successes   sql.NullInt64
		rate        sql.NullString
	)
	err := sc.Scan(
		&run.ID,
		&run.Seq,
		&run.Name,
		&run.Payload,
		&run.Uncompute,
		&run.Shots,
		&run.Executor,
		&run.CircuitHash,
		&circuitJSON,
		&countsJSON,
		&run.CountsHash,
		&expected,
		&successes,
		&rate,
		&run.IRVersion,
		&run.ToolVersion,
	)
	if err != nil {
		return nil, err
	}

	if run.Circuit, err = unmarshalCircuit(circuitJSON); err != nil {
		return nil, err
	}
	if run.Counts, err = unmarshalCounts(countsJSON); err != nil {
		return nil, err
	}
	if expected.Valid {
		bit := ir.Bit(expected.Int64)
		run.ExpectedBit = &bit
	}
	if successes.Valid {
		n := successes.Int64
		run.Successes = &n
	}
	if rate.Valid {
		d, err := decimal.NewFromString(rate.String)
		if err != nil {
			return nil, fmt.Errorf("parse success_rate %q: %w", rate.String, err)
		}
		run.SuccessRate = &d
	}
	return &run, nil
}
