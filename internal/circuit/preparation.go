package circuit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ms584/Q-Net/internal/ir"
)

// Step is one single-qubit gate of a payload preparation.
type Step struct {
	Gate  ir.Gate
	Angle *ir.PiFraction
}

func (s Step) String() string {
	if s.Angle == nil {
		return string(s.Gate)
	}
	return string(s.Gate) + "(" + formatFraction(*s.Angle) + ")"
}

// Preparation is a single-qubit state preparation applied to |0>.
// Label is the text the preparation was parsed from.
type Preparation struct {
	Label string
	Steps []Step
}

// namedStates maps the well-known single-qubit states to their gate
// sequences from |0>.
var namedStates = map[string][]Step{
	"0":  nil,
	"1":  {{Gate: ir.GateX}},
	"+":  {{Gate: ir.GateH}},
	"-":  {{Gate: ir.GateX}, {Gate: ir.GateH}},
	"+i": {{Gate: ir.GateH}, {Gate: ir.GateS}},
	"-i": {{Gate: ir.GateH}, {Gate: ir.GateSdg}},
}

// NamedStates returns the labels accepted by ParsePreparation besides gate
// lists, in a stable order.
func NamedStates() []string {
	return []string{"0", "1", "+", "-", "+i", "-i"}
}

// ComputationalBasis returns the preparation of |0> or |1>.
func ComputationalBasis(b ir.Bit) Preparation {
	p, _ := ParsePreparation(string(b.Byte()))
	return p
}

// ParsePreparation parses a payload preparation instruction.
//
// Accepted forms:
//   - a named state: 0, 1, +, -, +i, -i
//   - a comma-separated gate list applied left to right, e.g. "h,t" or
//     "ry(1/3),rz(-1/4)"; rotation angles are multiples of pi and may be
//     written "1/3", "pi/3" or "2pi/3"
//
// Anything else fails with an INVALID_STATE_SPEC error.
func ParsePreparation(spec string) (Preparation, error) {
	label := strings.TrimSpace(spec)
	if label == "" {
		return Preparation{}, stateSpecError(spec, "preparation is empty")
	}
	if steps, ok := namedStates[label]; ok {
		return Preparation{Label: label, Steps: append([]Step(nil), steps...)}, nil
	}

	var steps []Step
	for _, raw := range strings.Split(label, ",") {
		step, err := parseStep(strings.TrimSpace(raw))
		if err != nil {
			return Preparation{}, stateSpecError(spec, "%s", err.Error())
		}
		steps = append(steps, step)
	}

	p := Preparation{Label: label, Steps: steps}
	if err := p.Validate(); err != nil {
		return Preparation{}, err
	}
	return p, nil
}

// Validate checks that every step is a known single-qubit gate with a
// well-formed angle where one is required.
func (p Preparation) Validate() error {
	for i, s := range p.Steps {
		takesAngle, ok := ir.SingleQubitGates[s.Gate]
		if !ok {
			return stateSpecError(p.Label, "step %d: %q is not a single-qubit gate", i, s.Gate)
		}
		if takesAngle && s.Angle == nil {
			return stateSpecError(p.Label, "step %d: %s requires an angle", i, s.Gate)
		}
		if !takesAngle && s.Angle != nil {
			return stateSpecError(p.Label, "step %d: %s takes no angle", i, s.Gate)
		}
		if s.Angle != nil && s.Angle.Den <= 0 {
			return stateSpecError(p.Label, "step %d: angle denominator must be positive", i)
		}
	}
	return nil
}

// BasisBit reports the computational basis state the preparation produces,
// if it produces one. Only bit-flip and phase gates keep a basis state in
// the basis; any other gate makes the result a superposition in general.
func (p Preparation) BasisBit() (ir.Bit, bool) {
	bit := ir.Zero
	for _, s := range p.Steps {
		switch s.Gate {
		case ir.GateX, ir.GateY:
			bit ^= 1
		case ir.GateZ, ir.GateS, ir.GateSdg, ir.GateT, ir.GateTdg, ir.GateRZ:
		default:
			return ir.Zero, false
		}
	}
	return bit, true
}

// Inverse returns the steps that undo the preparation, in application order.
func (p Preparation) Inverse() []Step {
	inv := make([]Step, 0, len(p.Steps))
	for i := len(p.Steps) - 1; i >= 0; i-- {
		s := p.Steps[i]
		switch s.Gate {
		case ir.GateS:
			inv = append(inv, Step{Gate: ir.GateSdg})
		case ir.GateSdg:
			inv = append(inv, Step{Gate: ir.GateS})
		case ir.GateT:
			inv = append(inv, Step{Gate: ir.GateTdg})
		case ir.GateTdg:
			inv = append(inv, Step{Gate: ir.GateT})
		case ir.GateRX, ir.GateRY, ir.GateRZ:
			neg := s.Angle.Neg()
			inv = append(inv, Step{Gate: s.Gate, Angle: &neg})
		default:
			inv = append(inv, Step{Gate: s.Gate})
		}
	}
	return inv
}

func parseStep(raw string) (Step, error) {
	if raw == "" {
		return Step{}, fmt.Errorf("empty gate in list")
	}
	name, arg, hasArg := strings.Cut(raw, "(")
	gate := ir.Gate(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := ir.SingleQubitGates[gate]; !ok {
		return Step{}, fmt.Errorf("unknown gate %q", name)
	}
	if !hasArg {
		return Step{Gate: gate}, nil
	}
	if !strings.HasSuffix(arg, ")") {
		return Step{}, fmt.Errorf("unterminated angle in %q", raw)
	}
	angle, err := parseAngle(strings.TrimSuffix(arg, ")"))
	if err != nil {
		return Step{}, err
	}
	return Step{Gate: gate, Angle: &angle}, nil
}

// parseAngle reads a multiple of pi: "1/3", "-1/4", "pi/2", "2pi/3", "pi", "0".
func parseAngle(s string) (ir.PiFraction, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, "*", "")
	numText, denText, hasDen := strings.Cut(s, "/")
	if strings.HasSuffix(numText, "pi") {
		numText = strings.TrimSuffix(numText, "pi")
		if numText == "" || numText == "+" || numText == "-" {
			numText += "1"
		}
	}
	num, err := strconv.ParseInt(numText, 10, 64)
	if err != nil {
		return ir.PiFraction{}, fmt.Errorf("invalid angle %q", s)
	}
	den := int64(1)
	if hasDen {
		den, err = strconv.ParseInt(denText, 10, 64)
		if err != nil || den == 0 {
			return ir.PiFraction{}, fmt.Errorf("invalid angle denominator in %q", s)
		}
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	if g > 1 {
		num, den = num/g, den/g
	}
	if num == 0 {
		den = 1
	}
	return ir.PiFraction{Num: num, Den: den}, nil
}

func formatFraction(p ir.PiFraction) string {
	if p.Den == 1 {
		return strconv.FormatInt(p.Num, 10)
	}
	return strconv.FormatInt(p.Num, 10) + "/" + strconv.FormatInt(p.Den, 10)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
