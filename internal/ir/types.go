package ir

import (
	"fmt"
	"strings"
)

// QubitRole identifies one of the three qubits of the teleportation circuit.
// The numeric value is the qubit index in the register.
type QubitRole int

const (
	// Payload holds the state being teleported (source node).
	Payload QubitRole = iota
	// EntangledA is the source node's half of the entangled pair.
	EntangledA
	// EntangledB is the destination node's half of the entangled pair.
	EntangledB
)

// NumQubits is the fixed width of the quantum register.
const NumQubits = 3

func (r QubitRole) String() string {
	switch r {
	case Payload:
		return "payload"
	case EntangledA:
		return "entangled_a"
	case EntangledB:
		return "entangled_b"
	default:
		return fmt.Sprintf("qubit(%d)", int(r))
	}
}

// Valid reports whether r names one of the three circuit qubits.
func (r QubitRole) Valid() bool {
	return r >= Payload && r <= EntangledB
}

// Register identifies a one-bit classical register.
// Registers are listed in declaration order.
type Register int

const (
	// PayloadMeasurement receives the measurement of Payload.
	PayloadMeasurement Register = iota
	// EntangledAMeasurement receives the measurement of EntangledA.
	EntangledAMeasurement
	// DestinationResult receives the final measurement of EntangledB.
	DestinationResult
)

// NumRegisters is the number of classical registers (one bit each).
const NumRegisters = 3

func (r Register) String() string {
	switch r {
	case PayloadMeasurement:
		return "payload_measurement"
	case EntangledAMeasurement:
		return "entangled_a_measurement"
	case DestinationResult:
		return "destination_result"
	default:
		return fmt.Sprintf("register(%d)", int(r))
	}
}

// Valid reports whether r names one of the three classical registers.
func (r Register) Valid() bool {
	return r >= PayloadMeasurement && r <= DestinationResult
}

// KeyIndex returns the character position of r inside an outcome key.
// The most recently declared register is leftmost, so DestinationResult is
// at index 0 and PayloadMeasurement at index NumRegisters-1.
func (r Register) KeyIndex() int {
	return NumRegisters - 1 - int(r)
}

// Bit is a classical bit value.
type Bit int

const (
	Zero Bit = 0
	One  Bit = 1
)

// ParseBit converts "0" or "1" to a Bit.
func ParseBit(s string) (Bit, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return Zero, nil
	case "1":
		return One, nil
	default:
		return Zero, fmt.Errorf("invalid bit %q: must be 0 or 1", s)
	}
}

// Byte returns the outcome-key character for b.
func (b Bit) Byte() byte {
	if b == One {
		return '1'
	}
	return '0'
}

// Gate names an operation in the circuit alphabet.
type Gate string

const (
	GateX       Gate = "x"
	GateY       Gate = "y"
	GateZ       Gate = "z"
	GateH       Gate = "h"
	GateS       Gate = "s"
	GateSdg     Gate = "sdg"
	GateT       Gate = "t"
	GateTdg     Gate = "tdg"
	GateRX      Gate = "rx"
	GateRY      Gate = "ry"
	GateRZ      Gate = "rz"
	GateCX      Gate = "cx"
	GateMeasure Gate = "measure"
)

// SingleQubitGates lists the gates a payload preparation may use.
// The value reports whether the gate takes an angle.
var SingleQubitGates = map[Gate]bool{
	GateX:   false,
	GateY:   false,
	GateZ:   false,
	GateH:   false,
	GateS:   false,
	GateSdg: false,
	GateT:   false,
	GateTdg: false,
	GateRX:  true,
	GateRY:  true,
	GateRZ:  true,
}

// PiFraction is an angle expressed as Num/Den multiples of pi.
// Den must be positive.
type PiFraction struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

// Neg returns the negated angle.
func (p PiFraction) Neg() PiFraction {
	return PiFraction{Num: -p.Num, Den: p.Den}
}

func (p PiFraction) String() string {
	if p.Den == 1 {
		return fmt.Sprintf("%d*pi", p.Num)
	}
	return fmt.Sprintf("%d*pi/%d", p.Num, p.Den)
}

// Phase labels the protocol stage an operation belongs to.
type Phase string

const (
	PhasePrepare     Phase = "prepare"
	PhaseEntangle    Phase = "entangle"
	PhaseBellBasis   Phase = "bell_basis"
	PhaseMeasure     Phase = "measure"
	PhaseCorrect     Phase = "correct"
	PhaseUncompute   Phase = "uncompute"
	PhaseDestination Phase = "destination"
)

// Condition gates an operation on the value of a classical register.
// The executor resolves it at run time.
type Condition struct {
	Register Register `json:"register"`
	Value    Bit      `json:"value"`
}

// Operation is a single step of a circuit.
//
// Target is the acted-on qubit; for cx, Control holds the control qubit.
// Measure operations set Register. Angle is set only for rx/ry/rz.
type Operation struct {
	Phase     Phase       `json:"phase"`
	Gate      Gate        `json:"gate"`
	Target    QubitRole   `json:"target"`
	Control   *QubitRole  `json:"control,omitempty"`
	Angle     *PiFraction `json:"angle,omitempty"`
	Register  *Register   `json:"register,omitempty"`
	Condition *Condition  `json:"condition,omitempty"`
}

// IsMeasurement reports whether op writes a classical register.
func (op Operation) IsMeasurement() bool {
	return op.Gate == GateMeasure
}

// IsConditional reports whether op depends on a classical register.
func (op Operation) IsConditional() bool {
	return op.Condition != nil
}

// Circuit is an ordered operation sequence over three qubits and three
// one-bit classical registers.
type Circuit struct {
	Preparation string      `json:"preparation"`
	Qubits      int         `json:"qubits"`
	Registers   int         `json:"registers"`
	Operations  []Operation `json:"operations"`
}

// Counts maps a measured bitstring to the number of shots that produced it.
// Keys place DestinationResult leftmost, then EntangledAMeasurement, then
// PayloadMeasurement.
type Counts map[string]int64

// Total returns the sum of all counts.
func (c Counts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}

// Clone returns an independent copy of c.
func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// RunSpec describes one teleportation run: what to send and how often.
type RunSpec struct {
	Name        string `json:"name"`
	Preparation string `json:"preparation"`
	Shots       int64  `json:"shots"`
	Uncompute   bool   `json:"uncompute,omitempty"`
}
