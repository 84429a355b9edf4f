package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCircuit(prep string) *Circuit {
	ctrl := EntangledA
	return &Circuit{
		Preparation: prep,
		Qubits:      NumQubits,
		Registers:   NumRegisters,
		Operations: []Operation{
			{Phase: PhasePrepare, Gate: GateX, Target: Payload},
			{Phase: PhaseEntangle, Gate: GateH, Target: EntangledA},
			{Phase: PhaseEntangle, Gate: GateCX, Target: EntangledB, Control: &ctrl},
		},
	}
}

func TestCircuitHashDeterminism(t *testing.T) {
	h1, err := CircuitHash(sampleCircuit("1"))
	require.NoError(t, err)
	h2, err := CircuitHash(sampleCircuit("1"))
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "CircuitHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestCircuitHashChangesWithContent(t *testing.T) {
	base := MustCircuitHash(sampleCircuit("1"))

	relabeled := sampleCircuit("0")
	assert.NotEqual(t, base, MustCircuitHash(relabeled), "preparation label is part of identity")

	reordered := sampleCircuit("1")
	reordered.Operations[1], reordered.Operations[2] = reordered.Operations[2], reordered.Operations[1]
	assert.NotEqual(t, base, MustCircuitHash(reordered), "operation order is part of identity")
}

func TestCountsHashIgnoresMapOrder(t *testing.T) {
	a := Counts{"100": 256, "101": 256, "110": 256, "111": 256}
	b := Counts{"111": 256, "110": 256, "101": 256, "100": 256}

	ha, err := CountsHash(a)
	require.NoError(t, err)
	hb, err := CountsHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{}`)
	assert.NotEqual(t, hashWithDomain(DomainCircuit, data), hashWithDomain(DomainCounts, data))
}
