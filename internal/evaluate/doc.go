// Package evaluate turns an outcome-count mapping into a success rate and a
// per-outcome breakdown.
//
// Outcome keys are fixed-width bitstrings with the most recently declared
// register leftmost:
//
//	key[0] = DestinationResult
//	key[1] = EntangledAMeasurement
//	key[2] = PayloadMeasurement
//
// A shot succeeds when its destination bit equals the expected payload bit.
// The evaluator never mutates the counts it is given.
package evaluate
