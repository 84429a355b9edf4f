package circuit

import (
	"github.com/ms584/Q-Net/internal/ir"
)

// Options adjusts circuit construction.
type Options struct {
	// Uncompute applies the inverse preparation to EntangledB after the
	// corrections. A faithful teleport then always leaves EntangledB in |0>,
	// which gives every payload (not only basis states) a deterministic
	// expected destination bit of 0.
	Uncompute bool
}

// Build constructs the teleportation circuit for the given preparation.
// It fails with INVALID_STATE_SPEC before emitting anything if the
// preparation is not a valid single-qubit preparation.
func Build(prep Preparation, opts Options) (*ir.Circuit, error) {
	if prep.Label == "" && len(prep.Steps) > 0 {
		prep.Label = stepsLabel(prep.Steps)
	}
	if err := prep.Validate(); err != nil {
		return nil, err
	}

	b := &builder{}

	b.phase = ir.PhasePrepare
	for _, s := range prep.Steps {
		b.single(s, ir.Payload)
	}

	b.phase = ir.PhaseEntangle
	b.gate(ir.GateH, ir.EntangledA)
	b.cx(ir.EntangledA, ir.EntangledB)

	b.phase = ir.PhaseBellBasis
	b.cx(ir.Payload, ir.EntangledA)
	b.gate(ir.GateH, ir.Payload)

	b.phase = ir.PhaseMeasure
	b.measure(ir.Payload, ir.PayloadMeasurement)
	b.measure(ir.EntangledA, ir.EntangledAMeasurement)

	// The two corrections act on disjoint registers and commute; each fires
	// on its own register regardless of the other.
	b.phase = ir.PhaseCorrect
	b.conditional(ir.GateX, ir.EntangledB, ir.EntangledAMeasurement)
	b.conditional(ir.GateZ, ir.EntangledB, ir.PayloadMeasurement)

	if opts.Uncompute {
		b.phase = ir.PhaseUncompute
		for _, s := range prep.Inverse() {
			b.single(s, ir.EntangledB)
		}
	}

	b.phase = ir.PhaseDestination
	b.measure(ir.EntangledB, ir.DestinationResult)

	label := prep.Label
	if label == "" {
		label = "0"
	}
	return &ir.Circuit{
		Preparation: label,
		Qubits:      ir.NumQubits,
		Registers:   ir.NumRegisters,
		Operations:  b.ops,
	}, nil
}

// BuildSpec parses a preparation instruction and builds its circuit.
func BuildSpec(spec string, opts Options) (*ir.Circuit, Preparation, error) {
	prep, err := ParsePreparation(spec)
	if err != nil {
		return nil, Preparation{}, err
	}
	c, err := Build(prep, opts)
	if err != nil {
		return nil, Preparation{}, err
	}
	return c, prep, nil
}

// ExpectedBit returns the bit the destination measurement must read for a
// perfect teleport. ok is false when the payload is a superposition and
// Uncompute is off: the destination outcome is then random by design.
func ExpectedBit(prep Preparation, opts Options) (bit ir.Bit, ok bool) {
	if opts.Uncompute {
		return ir.Zero, true
	}
	return prep.BasisBit()
}

type builder struct {
	phase ir.Phase
	ops   []ir.Operation
}

func (b *builder) gate(g ir.Gate, target ir.QubitRole) {
	b.ops = append(b.ops, ir.Operation{Phase: b.phase, Gate: g, Target: target})
}

func (b *builder) single(s Step, target ir.QubitRole) {
	op := ir.Operation{Phase: b.phase, Gate: s.Gate, Target: target}
	if s.Angle != nil {
		angle := *s.Angle
		op.Angle = &angle
	}
	b.ops = append(b.ops, op)
}

func (b *builder) cx(control, target ir.QubitRole) {
	c := control
	b.ops = append(b.ops, ir.Operation{Phase: b.phase, Gate: ir.GateCX, Target: target, Control: &c})
}

func (b *builder) measure(q ir.QubitRole, reg ir.Register) {
	r := reg
	b.ops = append(b.ops, ir.Operation{Phase: b.phase, Gate: ir.GateMeasure, Target: q, Register: &r})
}

func (b *builder) conditional(g ir.Gate, target ir.QubitRole, on ir.Register) {
	b.ops = append(b.ops, ir.Operation{
		Phase:     b.phase,
		Gate:      g,
		Target:    target,
		Condition: &ir.Condition{Register: on, Value: ir.One},
	})
}

func stepsLabel(steps []Step) string {
	label := ""
	for i, s := range steps {
		if i > 0 {
			label += ","
		}
		label += s.String()
	}
	return label
}
