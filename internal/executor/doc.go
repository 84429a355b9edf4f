// Package executor runs teleportation circuits and returns outcome counts.
//
// An Executor is the opaque collaborator that takes a circuit and a shot
// count and produces a bitstring-to-count mapping. Two implementations
// ship with the module:
//
//   - Ideal, a noiseless stand-in restricted to the three-qubit teleport
//     register, used by tests, scenarios and demos
//   - Command, which hands OpenQASM to an external program (for example a
//     cloud SDK script) and reads counts back as JSON
//
// Checked wraps any Executor and enforces the contract every result must
// meet: positive shots in, counts summing to shots out, with failures
// reported as EXECUTOR_FAILURE.
package executor
