// Package teleport runs the teleportation pipeline: build the circuit,
// execute it for N shots, evaluate the counts.
//
// Each phase runs once and in order. A failure stops the pipeline and is
// returned as a *PhaseError naming the phase, so a construction problem
// (build) is distinguishable from an execution-environment problem
// (execute). No partial Result is returned on failure.
//
// After a successful evaluation the Result is handed to every configured
// Sink (run history, message broker).
package teleport
