// Package harness provides conformance testing for teleportation runs.
//
// The harness executes YAML scenarios through the full pipeline (build,
// execute on the ideal executor, evaluate, record to an in-memory run
// history) and checks assertions against the outcome.
//
// # Scenario Format
//
//	name: payload_one
//	description: "Payload 1 arrives intact on a noiseless channel"
//	payload: "1"
//	shots: 1024
//	uncompute: false
//	sampling: exact        # or "sampled" with a seed
//	seed: 0
//	assertions:
//	  - type: success_rate
//	    equals: "100.00"
//	  - type: all_keys_lead_with
//	    bit: 1
//	  - type: key_count
//	    count: 4
//	  - type: outcome_count
//	    key: "101"
//	    count: 256
//	  - type: shots
//	    count: 1024
//
// # Assertion Types
//
//   - success_rate: success rate with two decimals equals "equals", or is
//     at least "min"
//   - all_keys_lead_with: every outcome key has the given destination bit
//   - key_count: number of distinct outcome keys
//   - outcome_count: count recorded for one key
//   - shots: counts sum to the given total
//   - fails_with: the run fails with the given error code (e.g.
//     INVALID_STATE_SPEC); other assertions are skipped
//
// # Golden Files
//
// RunWithGolden snapshots the run (payload, counts, success rate) as
// canonical JSON under testdata/golden/<scenario>.golden.
//
//	go test ./internal/harness -run TestScenarios -update
package harness
