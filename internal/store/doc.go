// Package store provides SQLite-backed run history.
//
// Each successful teleportation run is appended to the runs table with its
// circuit, outcome counts and evaluation. Rows are never updated.
//
// # Ordering
//
// Runs are ordered by seq, a logical sequence assigned at insert time, never
// by wall-clock time. Every listing query uses ORDER BY seq, id.
//
// # Identity
//
// The circuit and counts are stored as canonical JSON together with their
// domain-separated SHA-256 hashes from internal/ir, so runs of the same
// circuit can be grouped by circuit_hash.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
