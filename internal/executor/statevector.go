package executor

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ms584/Q-Net/internal/ir"
)

const (
	dim = 1 << ir.NumQubits

	// probEpsilon drops branches whose probability is rounding noise.
	probEpsilon = 1e-12
)

// matrix is a single-qubit gate [[a, b], [c, d]].
type matrix [4]complex128

// branch is one measurement history: a normalized state plus the classical
// bits recorded so far and the probability of reaching it.
type branch struct {
	amps [dim]complex128
	bits [ir.NumRegisters]ir.Bit
	prob float64
}

// outcomes enumerates every measurement history of c and returns the exact
// probability of each outcome key.
func outcomes(c *ir.Circuit) (map[string]float64, error) {
	start := branch{prob: 1}
	start.amps[0] = 1
	branches := []branch{start}

	for i, op := range c.Operations {
		var next []branch
		for _, b := range branches {
			if op.Condition != nil && b.bits[op.Condition.Register] != op.Condition.Value {
				next = append(next, b)
				continue
			}
			switch op.Gate {
			case ir.GateMeasure:
				next = append(next, b.measure(int(op.Target), *op.Register)...)
			case ir.GateCX:
				b.applyCX(int(*op.Control), int(op.Target))
				next = append(next, b)
			default:
				m, err := gateMatrix(op)
				if err != nil {
					return nil, fmt.Errorf("operation %d: %w", i, err)
				}
				b.apply(int(op.Target), m)
				next = append(next, b)
			}
		}
		branches = next
	}

	probs := make(map[string]float64, len(branches))
	for _, b := range branches {
		probs[b.key()] += b.prob
	}
	return probs, nil
}

func (b *branch) apply(q int, m matrix) {
	bit := 1 << q
	for i := 0; i < dim; i++ {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := b.amps[i], b.amps[j]
			b.amps[i] = m[0]*a0 + m[1]*a1
			b.amps[j] = m[2]*a0 + m[3]*a1
		}
	}
}

func (b *branch) applyCX(control, target int) {
	cbit, tbit := 1<<control, 1<<target
	for i := 0; i < dim; i++ {
		if i&cbit != 0 && i&tbit == 0 {
			j := i | tbit
			b.amps[i], b.amps[j] = b.amps[j], b.amps[i]
		}
	}
}

// measure splits b into the branches where qubit q reads 0 and 1.
func (b branch) measure(q int, r ir.Register) []branch {
	bit := 1 << q
	var p1 float64
	for i := 0; i < dim; i++ {
		if i&bit != 0 {
			p1 += real(b.amps[i] * cmplx.Conj(b.amps[i]))
		}
	}
	p0 := 1 - p1

	var out []branch
	for _, outcome := range []struct {
		value ir.Bit
		p     float64
	}{{ir.Zero, p0}, {ir.One, p1}} {
		if outcome.p < probEpsilon {
			continue
		}
		nb := b
		nb.prob = b.prob * outcome.p
		nb.bits[r] = outcome.value
		norm := complex(1/math.Sqrt(outcome.p), 0)
		for i := 0; i < dim; i++ {
			if (i&bit != 0) == (outcome.value == ir.One) {
				nb.amps[i] *= norm
			} else {
				nb.amps[i] = 0
			}
		}
		out = append(out, nb)
	}
	return out
}

func (b *branch) key() string {
	key := make([]byte, ir.NumRegisters)
	for r := ir.PayloadMeasurement; r <= ir.DestinationResult; r++ {
		key[r.KeyIndex()] = b.bits[r].Byte()
	}
	return string(key)
}

func gateMatrix(op ir.Operation) (matrix, error) {
	invSqrt2 := complex(1/math.Sqrt2, 0)
	switch op.Gate {
	case ir.GateX:
		return matrix{0, 1, 1, 0}, nil
	case ir.GateY:
		return matrix{0, -1i, 1i, 0}, nil
	case ir.GateZ:
		return matrix{1, 0, 0, -1}, nil
	case ir.GateH:
		return matrix{invSqrt2, invSqrt2, invSqrt2, -invSqrt2}, nil
	case ir.GateS:
		return matrix{1, 0, 0, 1i}, nil
	case ir.GateSdg:
		return matrix{1, 0, 0, -1i}, nil
	case ir.GateT:
		return matrix{1, 0, 0, cmplx.Exp(complex(0, math.Pi/4))}, nil
	case ir.GateTdg:
		return matrix{1, 0, 0, cmplx.Exp(complex(0, -math.Pi/4))}, nil
	}

	if op.Angle == nil || op.Angle.Den <= 0 {
		return matrix{}, fmt.Errorf("gate %q has no usable angle", op.Gate)
	}
	theta := math.Pi * float64(op.Angle.Num) / float64(op.Angle.Den)
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	switch op.Gate {
	case ir.GateRX:
		return matrix{complex(c, 0), complex(0, -s), complex(0, -s), complex(c, 0)}, nil
	case ir.GateRY:
		return matrix{complex(c, 0), complex(-s, 0), complex(s, 0), complex(c, 0)}, nil
	case ir.GateRZ:
		return matrix{cmplx.Exp(complex(0, -theta/2)), 0, 0, cmplx.Exp(complex(0, theta/2))}, nil
	}
	return matrix{}, fmt.Errorf("unsupported gate %q", op.Gate)
}
