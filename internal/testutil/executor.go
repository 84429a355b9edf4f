// Package testutil provides deterministic test doubles for teleportation
// runs.
package testutil

import (
	"context"
	"sync"

	"github.com/ms584/Q-Net/internal/ir"
)

// Call records one Execute invocation.
type Call struct {
	Circuit *ir.Circuit
	Shots   int64
}

// ScriptedExecutor returns the same counts (or error) on every call and
// records what it was asked to run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedExecutor struct {
	Label  string
	Counts ir.Counts
	Err    error

	mu    sync.Mutex
	calls []Call
}

// NewScriptedExecutor creates an executor that always returns counts.
func NewScriptedExecutor(counts ir.Counts) *ScriptedExecutor {
	return &ScriptedExecutor{Label: "scripted", Counts: counts}
}

// NewFailingExecutor creates an executor that always returns err.
func NewFailingExecutor(err error) *ScriptedExecutor {
	return &ScriptedExecutor{Label: "scripted", Err: err}
}

// Name implements executor.Executor.
func (e *ScriptedExecutor) Name() string {
	if e.Label == "" {
		return "scripted"
	}
	return e.Label
}

// Execute implements executor.Executor. The returned counts are a copy so
// callers may modify them.
func (e *ScriptedExecutor) Execute(ctx context.Context, c *ir.Circuit, shots int64) (ir.Counts, error) {
	e.mu.Lock()
	e.calls = append(e.calls, Call{Circuit: c, Shots: shots})
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Counts.Clone(), nil
}

// Calls returns the recorded invocations in order.
func (e *ScriptedExecutor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// Reset forgets every recorded call.
func (e *ScriptedExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}
