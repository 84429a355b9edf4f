package circuit

import (
	"github.com/ms584/Q-Net/internal/ir"
)

// Validate checks the structural invariants of a circuit:
//   - exactly three qubits and three one-bit registers
//   - every operation targets a valid qubit with a known gate
//   - cx has a distinct, valid control
//   - rotations carry an angle with a positive denominator
//   - every register is written by exactly one measurement
//   - every conditional operation comes strictly after the measurement that
//     writes its register
//
// Validate returns the first violation as an INVALID_CIRCUIT error.
func Validate(c *ir.Circuit) error {
	if c == nil {
		return circuitError(-1, "circuit is nil")
	}
	if c.Qubits != ir.NumQubits {
		return circuitError(-1, "circuit has %d qubits, want %d", c.Qubits, ir.NumQubits)
	}
	if c.Registers != ir.NumRegisters {
		return circuitError(-1, "circuit has %d registers, want %d", c.Registers, ir.NumRegisters)
	}

	written := make(map[ir.Register]int, ir.NumRegisters)
	for i, op := range c.Operations {
		if !op.Target.Valid() {
			return circuitError(i, "target %s out of range", op.Target)
		}

		switch op.Gate {
		case ir.GateMeasure:
			if op.Register == nil || !op.Register.Valid() {
				return circuitError(i, "measurement without a valid register")
			}
			if prev, dup := written[*op.Register]; dup {
				return circuitError(i, "register %s already written by operation %d", op.Register, prev)
			}
			written[*op.Register] = i
		case ir.GateCX:
			if op.Control == nil || !op.Control.Valid() {
				return circuitError(i, "cx without a valid control")
			}
			if *op.Control == op.Target {
				return circuitError(i, "cx control equals target")
			}
		default:
			takesAngle, known := ir.SingleQubitGates[op.Gate]
			if !known {
				return circuitError(i, "unknown gate %q", op.Gate)
			}
			if takesAngle && (op.Angle == nil || op.Angle.Den <= 0) {
				return circuitError(i, "%s requires an angle with a positive denominator", op.Gate)
			}
		}

		if op.Condition != nil {
			if !op.Condition.Register.Valid() {
				return circuitError(i, "condition on unknown register")
			}
			if _, ok := written[op.Condition.Register]; !ok {
				return circuitError(i, "condition on %s before it is measured", op.Condition.Register)
			}
		}
	}

	for r := ir.PayloadMeasurement; r <= ir.DestinationResult; r++ {
		if _, ok := written[r]; !ok {
			return circuitError(-1, "register %s is never written", r)
		}
	}
	return nil
}
