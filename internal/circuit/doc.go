// Package circuit builds the teleportation circuit.
//
// Build emits five strict phases over the three qubit roles:
//
//  1. Prepare: the caller's preparation on Payload
//  2. Entangle: h(EntangledA), cx(EntangledA -> EntangledB)
//  3. Bell basis: cx(Payload -> EntangledA), h(Payload)
//  4. Measure: Payload -> PayloadMeasurement, EntangledA -> EntangledAMeasurement
//  5. Correct: x(EntangledB) if EntangledAMeasurement == 1,
//     z(EntangledB) if PayloadMeasurement == 1, then
//     measure EntangledB -> DestinationResult
//
// The corrections are emitted unconditionally as conditioned operations; the
// executor resolves the conditions at run time. Build is a pure function:
// the same preparation always yields a structurally identical circuit.
package circuit
