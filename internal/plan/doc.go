// Package plan loads batches of teleportation runs declared in CUE.
//
// A plan directory holds one or more .cue files that declare runs under
// the top-level run field:
//
//	run: payload_one: {
//		payload: "1"
//		shots:   1024
//	}
//	run: plus_roundtrip: {
//		payload:   "+"
//		uncompute: true
//	}
//
// payload is required and must be a valid preparation. shots is optional
// (zero means the configured default) and must be a positive integer when
// present. Runs are returned in declaration order.
package plan
