package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/executor"
	"github.com/ms584/Q-Net/internal/store"
	"github.com/ms584/Q-Net/internal/teleport"
)

// Harness is the test execution engine.
// It runs one scenario against the ideal executor with a fixed run ID.
type Harness struct {
	store  *store.Store
	runner *teleport.Runner
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Configure the ideal executor from the scenario's sampling mode
// 3. Run build, execute, evaluate and record
// 4. Return result with pass/fail and errors
//
// A run that fails in the pipeline is not an error here: it is checked
// against the scenario's fails_with assertions.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	sampling, err := executor.ParseSampling(scenario.Sampling)
	if err != nil {
		return nil, err
	}
	exec := &executor.Ideal{Sampling: sampling, Seed: scenario.Seed}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		store:  st,
		logger: logger,
		runner: teleport.NewRunner(exec,
			teleport.WithIDGenerator(teleport.NewFixedGenerator("scenario-"+scenario.Name)),
			teleport.WithLogger(logger),
			teleport.WithSinks(st),
		),
	}

	return h.execute(ctx, scenario)
}

func (h *Harness) execute(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()

	run, runErr := h.runner.Run(ctx, teleport.Request{
		Name:        scenario.Name,
		Preparation: scenario.Payload,
		Options:     circuit.Options{Uncompute: scenario.Uncompute},
		Shots:       scenario.Shots,
	})
	result.Run = run
	result.RunErr = runErr

	var failures []error
	if runErr != nil {
		h.logger.Debug("scenario run failed", "scenario", scenario.Name, "error", runErr)
		failures = assertFailure(runErr, scenario.Assertions)
	} else {
		failures = EvaluateAssertions(run, scenario.Assertions)
	}
	for _, f := range failures {
		result.AddError(f.Error())
	}

	recorded, err := h.store.ListRuns(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}
	result.Recorded = len(recorded)

	return result, nil
}
