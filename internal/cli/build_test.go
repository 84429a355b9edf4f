package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/ir"
)

func TestBuild_Text(t *testing.T) {
	out, err := execute(t, NewBuildCommand(textOpts()), "1")
	require.NoError(t, err)

	c, _, err := circuit.BuildSpec("1", circuit.Options{})
	require.NoError(t, err)
	diagram, err := circuit.Draw(c)
	require.NoError(t, err)

	assert.Contains(t, out, "Payload: 1\n")
	assert.Contains(t, out, "Circuit: "+ir.MustCircuitHash(c))
	assert.Contains(t, out, diagram)
	assert.Contains(t, out, "Expected destination bit: 1")
}

func TestBuild_Superposition(t *testing.T) {
	out, err := execute(t, NewBuildCommand(textOpts()), "+")
	require.NoError(t, err)
	assert.Contains(t, out, "Expected destination bit: none")

	out, err = execute(t, NewBuildCommand(textOpts()), "+", "--uncompute")
	require.NoError(t, err)
	assert.Contains(t, out, "Expected destination bit: 0")
}

func TestBuild_QASM(t *testing.T) {
	out, err := execute(t, NewBuildCommand(textOpts()), "ry(1/3)", "--uncompute", "--qasm")
	require.NoError(t, err)

	c, _, err := circuit.BuildSpec("ry(1/3)", circuit.Options{Uncompute: true})
	require.NoError(t, err)
	want, err := circuit.QASM(c)
	require.NoError(t, err)
	assert.Equal(t, want, out)
}

func TestBuild_QASMAndDrawExclusive(t *testing.T) {
	_, err := execute(t, NewBuildCommand(textOpts()), "1", "--qasm", "--draw")
	require.Error(t, err)
}

func TestBuild_JSON(t *testing.T) {
	out, err := execute(t, NewBuildCommand(jsonOpts()), "0")
	require.NoError(t, err)

	var data BuildOutput
	resp := decodeResponse(t, out, &data)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "0", data.Payload)
	require.NotNil(t, data.ExpectedBit)
	assert.Equal(t, ir.Zero, *data.ExpectedBit)
	require.NotNil(t, data.Circuit)
	assert.Equal(t, ir.MustCircuitHash(data.Circuit), data.CircuitHash)
	assert.Contains(t, data.QASM, "OPENQASM 2.0;")
}

func TestBuild_InvalidPayload(t *testing.T) {
	out, err := execute(t, NewBuildCommand(jsonOpts()), "|psi>")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_STATE_SPEC", resp.Error.Code)
}
