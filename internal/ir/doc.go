// Package ir provides the circuit intermediate representation for Q-Net.
//
// This package contains value types only. Every other internal package
// imports ir; ir imports nothing internal, so the circuit description can be
// shared between the builder, the executors and the evaluator without cycles.
//
// Key design constraints:
//   - NO float types anywhere: rotation angles are PiFraction values
//   - Circuits are immutable once built; callers never mutate Operations
//   - All JSON tags use snake_case
//   - Classical registers are declared in a fixed order and outcome keys
//     place the most recently declared register leftmost
package ir
