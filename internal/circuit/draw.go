package circuit

import (
	"fmt"
	"strings"

	"github.com/ms584/Q-Net/internal/ir"
)

// Draw renders a left-to-right text diagram of the circuit, one row per
// qubit. Each operation occupies its own column; a "|" column marks a phase
// boundary. Targets show the gate name, "*" marks a cx control, "M>reg" a
// measurement and "X?reg" a gate conditioned on reg being 1.
func Draw(c *ir.Circuit) (string, error) {
	if err := Validate(c); err != nil {
		return "", err
	}

	rows := make([]strings.Builder, c.Qubits)
	for q := range rows {
		fmt.Fprintf(&rows[q], "q%d %-12s -", q, ir.QubitRole(q))
	}

	var last ir.Phase
	for i, op := range c.Operations {
		if i > 0 && op.Phase != last {
			for q := range rows {
				rows[q].WriteString("|-")
			}
		}
		last = op.Phase

		label := drawLabel(op)
		width := len(label) + 2
		lo, hi := int(op.Target), int(op.Target)
		if op.Control != nil {
			lo, hi = min(lo, int(*op.Control)), max(hi, int(*op.Control))
		}
		for q := range rows {
			cell := "-"
			switch {
			case q == int(op.Target):
				cell = label
			case op.Control != nil && q == int(*op.Control):
				cell = "*"
			case q > lo && q < hi:
				cell = "+"
			}
			rows[q].WriteString(center(cell, width))
		}
	}

	var sb strings.Builder
	for q := range rows {
		sb.WriteString(rows[q].String())
		sb.WriteString("-\n")
	}
	return sb.String(), nil
}

func drawLabel(op ir.Operation) string {
	var label string
	switch {
	case op.Gate == ir.GateMeasure:
		label = "M>" + RegisterName(*op.Register)
	case op.Gate == ir.GateCX:
		label = "X"
	case op.Angle != nil:
		label = strings.ToUpper(string(op.Gate)) + "(" + qasmAngle(*op.Angle) + ")"
	default:
		label = strings.ToUpper(string(op.Gate))
	}
	if op.Condition != nil {
		label += "?" + RegisterName(op.Condition.Register)
	}
	return label
}

// center pads s with '-' on both sides to width; odd padding goes right.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat("-", left) + s + strings.Repeat("-", pad-left)
}
