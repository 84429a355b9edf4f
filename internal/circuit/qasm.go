package circuit

import (
	"fmt"
	"strings"

	"github.com/ms584/Q-Net/internal/ir"
)

// registerNames are the OpenQASM creg names, indexed by ir.Register.
var registerNames = [ir.NumRegisters]string{"c1", "c2", "result"}

// RegisterName returns the OpenQASM creg name for r.
func RegisterName(r ir.Register) string {
	if !r.Valid() {
		return fmt.Sprintf("creg%d", int(r))
	}
	return registerNames[r]
}

// QASM renders the circuit as an OpenQASM 2.0 program. A barrier separates
// consecutive phases. Each register is declared as its own one-bit creg, in
// declaration order, so backends report outcome keys with DestinationResult
// leftmost.
func QASM(c *ir.Circuit) (string, error) {
	if err := Validate(c); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", c.Qubits)
	for r := ir.PayloadMeasurement; r <= ir.DestinationResult; r++ {
		fmt.Fprintf(&sb, "creg %s[1];\n", RegisterName(r))
	}

	var last ir.Phase
	for i, op := range c.Operations {
		if i > 0 && op.Phase != last {
			sb.WriteString("barrier q[0],q[1],q[2];\n")
		}
		last = op.Phase
		sb.WriteString(qasmOp(op))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func qasmOp(op ir.Operation) string {
	var stmt string
	switch {
	case op.Gate == ir.GateMeasure:
		stmt = fmt.Sprintf("measure q[%d] -> %s[0];", op.Target, RegisterName(*op.Register))
	case op.Gate == ir.GateCX:
		stmt = fmt.Sprintf("cx q[%d],q[%d];", *op.Control, op.Target)
	case op.Angle != nil:
		stmt = fmt.Sprintf("%s(%s) q[%d];", op.Gate, qasmAngle(*op.Angle), op.Target)
	default:
		stmt = fmt.Sprintf("%s q[%d];", op.Gate, op.Target)
	}
	if op.Condition != nil {
		stmt = fmt.Sprintf("if(%s==%d) %s", RegisterName(op.Condition.Register), op.Condition.Value, stmt)
	}
	return stmt
}

// qasmAngle writes a pi fraction as an OpenQASM expression: pi/3, -2*pi/3, pi, 0.
func qasmAngle(p ir.PiFraction) string {
	if p.Num == 0 {
		return "0"
	}
	var num string
	switch p.Num {
	case 1:
		num = "pi"
	case -1:
		num = "-pi"
	default:
		num = fmt.Sprintf("%d*pi", p.Num)
	}
	if p.Den == 1 {
		return num
	}
	return fmt.Sprintf("%s/%d", num, p.Den)
}
