package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/ir"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Uncompute bool
	QASM      bool
	Draw      bool
}

// BuildOutput is the JSON payload of the build command.
type BuildOutput struct {
	Payload     string      `json:"payload"`
	CircuitHash string      `json:"circuit_hash"`
	ExpectedBit *ir.Bit     `json:"expected_bit,omitempty"`
	Circuit     *ir.Circuit `json:"circuit"`
	QASM        string      `json:"qasm"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <payload>",
		Short: "Build a teleportation circuit without running it",
		Long: `Build the teleportation circuit for a payload and print it.

The payload is a named state (0, 1, +, -, +i, -i) or a comma-separated list of
single-qubit gates applied to |0>, e.g. "x", "h,t", "ry(1/3)".

By default a text diagram is printed; --qasm prints OpenQASM 2.0 instead.

Examples:
  qnet build 1
  qnet build "ry(1/3)" --uncompute --qasm
  qnet build + --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Uncompute, "uncompute", false, "undo the preparation before measuring the destination")
	cmd.Flags().BoolVar(&opts.QASM, "qasm", false, "print OpenQASM 2.0")
	cmd.Flags().BoolVar(&opts.Draw, "draw", false, "print a text diagram (default)")
	cmd.MarkFlagsMutuallyExclusive("qasm", "draw")

	return cmd
}

func runBuild(opts *BuildOptions, payload string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	copts := circuit.Options{Uncompute: opts.Uncompute}

	c, prep, err := circuit.BuildSpec(payload, copts)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "invalid payload", err))
	}
	hash, err := ir.CircuitHash(c)
	if err != nil {
		return out.Fail(WrapExitError(ExitFailure, "failed to hash circuit", err))
	}
	qasm, err := circuit.QASM(c)
	if err != nil {
		return out.Fail(WrapExitError(ExitFailure, "failed to export circuit", err))
	}
	slog.Debug("circuit built", "payload", prep.Label, "operations", len(c.Operations), "circuit_hash", hash)

	if out.JSON() {
		result := BuildOutput{
			Payload:     prep.Label,
			CircuitHash: hash,
			Circuit:     c,
			QASM:        qasm,
		}
		if bit, ok := circuit.ExpectedBit(prep, copts); ok {
			result.ExpectedBit = &bit
		}
		return out.Success(result)
	}

	w := cmd.OutOrStdout()
	if opts.QASM {
		fmt.Fprint(w, qasm)
		return nil
	}

	diagram, err := circuit.Draw(c)
	if err != nil {
		return out.Fail(WrapExitError(ExitFailure, "failed to draw circuit", err))
	}
	fmt.Fprintf(w, "Payload: %s\n", prep.Label)
	fmt.Fprintf(w, "Circuit: %s\n\n", hash)
	fmt.Fprint(w, diagram)
	if bit, ok := circuit.ExpectedBit(prep, copts); ok {
		fmt.Fprintf(w, "\nExpected destination bit: %d\n", bit)
	} else {
		fmt.Fprintln(w, "\nExpected destination bit: none (superposition; use --uncompute to check it)")
	}
	return nil
}
