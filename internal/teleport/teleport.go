package teleport

import (
	"context"
	"io"
	"log/slog"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/evaluate"
	"github.com/ms584/Q-Net/internal/executor"
	"github.com/ms584/Q-Net/internal/ir"
)

// DefaultShots matches the shot count the protocol is demonstrated with.
const DefaultShots int64 = 1024

// Request describes one run.
type Request struct {
	// Name labels the run (plan entry or scenario name). Optional.
	Name string

	// Preparation is the payload instruction, e.g. "1", "+", "ry(1/3)".
	Preparation string
	Options     circuit.Options

	// Shots defaults to DefaultShots when zero.
	Shots int64
}

// Result is the outcome of a successful run.
type Result struct {
	RunID       string
	Name        string
	Preparation string
	Uncompute   bool
	Shots       int64
	Executor    string

	Circuit     *ir.Circuit
	CircuitHash string
	Counts      ir.Counts

	// Report is nil when the payload has no deterministic expected bit
	// (a superposition without uncompute). DestinationZeros/Ones are
	// always set.
	Report           *evaluate.Report
	DestinationZeros int64
	DestinationOnes  int64
}

// Sink receives every successful Result.
type Sink interface {
	Record(ctx context.Context, r *Result) error
}

// Runner executes teleportation runs against one executor.
type Runner struct {
	exec   executor.Executor
	ids    IDGenerator
	logger *slog.Logger
	sinks  []Sink
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithIDGenerator overrides the UUIDv7 run ID generator.
func WithIDGenerator(g IDGenerator) RunnerOption {
	return func(r *Runner) {
		r.ids = g
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithSinks appends result sinks, called in order after evaluation.
// The first failing sink stops the run with a record PhaseError; sinks
// before it have already accepted the result and keep it, sinks after it
// never see it. Put the sink that must only hold fully delivered runs last.
func WithSinks(sinks ...Sink) RunnerOption {
	return func(r *Runner) {
		r.sinks = append(r.sinks, sinks...)
	}
}

// NewRunner creates a Runner. The executor is wrapped with
// executor.Checked so every result honours the executor contract.
func NewRunner(exec executor.Executor, opts ...RunnerOption) *Runner {
	r := &Runner{
		exec:   executor.Checked(exec),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run executes one request with a default Runner.
func Run(ctx context.Context, req Request, exec executor.Executor) (*Result, error) {
	return NewRunner(exec).Run(ctx, req)
}

// Run builds, executes and evaluates one request.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	runID := r.ids.Generate()
	shots := req.Shots
	if shots == 0 {
		shots = DefaultShots
	}
	log := r.logger.With("run_id", runID, "payload", req.Preparation)

	log.Debug("building circuit", "phase", PhaseBuild, "uncompute", req.Options.Uncompute)
	circ, prep, err := circuit.BuildSpec(req.Preparation, req.Options)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseBuild, RunID: runID, Err: err}
	}
	hash, err := ir.CircuitHash(circ)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseBuild, RunID: runID, Err: err}
	}

	log.Info("executing circuit",
		"phase", PhaseExecute,
		"shots", shots,
		"executor", r.exec.Name(),
		"circuit_hash", hash,
	)
	counts, err := r.exec.Execute(ctx, circ, shots)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseExecute, RunID: runID, Err: err}
	}

	res := &Result{
		RunID:       runID,
		Name:        req.Name,
		Preparation: prep.Label,
		Uncompute:   req.Options.Uncompute,
		Shots:       shots,
		Executor:    r.exec.Name(),
		Circuit:     circ,
		CircuitHash: hash,
		Counts:      counts,
	}

	res.DestinationZeros, res.DestinationOnes, err = evaluate.DestinationMarginal(counts)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseEvaluate, RunID: runID, Err: err}
	}
	if expected, ok := circuit.ExpectedBit(prep, req.Options); ok {
		res.Report, err = evaluate.Evaluate(counts, expected)
		if err != nil {
			return nil, &PhaseError{Phase: PhaseEvaluate, RunID: runID, Err: err}
		}
		log.Info("run evaluated",
			"phase", PhaseEvaluate,
			"expected_bit", int(expected),
			"success_rate", res.Report.Percent(),
		)
	} else {
		log.Info("run evaluated",
			"phase", PhaseEvaluate,
			"destination_zeros", res.DestinationZeros,
			"destination_ones", res.DestinationOnes,
		)
	}

	for _, s := range r.sinks {
		if err := s.Record(ctx, res); err != nil {
			return nil, &PhaseError{Phase: PhaseRecord, RunID: runID, Err: err}
		}
	}
	return res, nil
}
