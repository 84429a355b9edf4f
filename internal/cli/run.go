package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/present"
	"github.com/ms584/Q-Net/internal/teleport"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	SessionOptions

	Shots     int64
	Uncompute bool
	Name      string
	Style     string
	Histogram bool
	Strict    bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

// newRunCommand builds the command around opts, so tests can set
// SessionOptions overrides.
func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <payload>",
		Short: "Teleport a payload and evaluate the result",
		Long: `Build the teleportation circuit for a payload, run it on the configured
executor and report how often the destination qubit measured the expected bit.

Payloads in a superposition have no single expected bit; for those the
destination marginal is reported instead, unless --uncompute is given.

Exit codes:
  0 - Run completed (and, with --strict, every shot succeeded)
  1 - Executor failure, or an imperfect run with --strict
  2 - Command error (invalid payload, bad config, database not writable)

Examples:
  qnet run 1
  qnet run "ry(1/3)" --uncompute --shots 4096
  qnet run + --db ./qnet.db --format json
  qnet run 0 --config ./qnet.yaml --publish`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeleport(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64VarP(&opts.Shots, "shots", "n", 0, "number of shots (default from config)")
	cmd.Flags().BoolVar(&opts.Uncompute, "uncompute", false, "undo the preparation before measuring the destination")
	cmd.Flags().StringVar(&opts.Name, "name", "", "label stored with the run")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().BoolVar(&opts.Publish, "publish", false, "publish the run summary to the MQTT broker")
	cmd.Flags().StringVar(&opts.Style, "style", string(present.StyleUnicode), "table style (unicode|ascii|plain)")
	cmd.Flags().BoolVar(&opts.Histogram, "histogram", true, "print a histogram of outcomes")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 unless every shot succeeded")

	return cmd
}

func runTeleport(opts *RunOptions, payload string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return out.Fail(err)
	}
	shots := opts.Shots
	if shots == 0 {
		shots = cfg.Run.Shots
	}
	if shots < 0 {
		return out.Fail(NewExitError(ExitCommandError, fmt.Sprintf("--shots must be positive, got %d", shots)))
	}

	sess, err := openSession(cfg, opts.SessionOptions)
	if err != nil {
		return out.Fail(err)
	}
	defer sess.close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	res, err := sess.runner.Run(ctx, teleport.Request{
		Name:        opts.Name,
		Preparation: payload,
		Options:     circuit.Options{Uncompute: opts.Uncompute},
		Shots:       shots,
	})
	if err != nil {
		return out.Fail(runExitError(err))
	}

	if out.JSON() {
		if err := out.Success(present.Summarize(res)); err != nil {
			return err
		}
	} else if err := writeRunText(cmd.OutOrStdout(), res, present.Style(opts.Style), opts.Histogram); err != nil {
		return err
	}

	if opts.Strict && (res.Report == nil || !res.Report.Perfect()) {
		return NewExitError(ExitFailure, "run was not perfect")
	}
	return nil
}

// writeRunText prints the human-readable report of one run.
func writeRunText(w io.Writer, res *teleport.Result, style present.Style, histogram bool) error {
	fmt.Fprintf(w, "Run %s\n", res.RunID)
	fmt.Fprintf(w, "Payload: %s", res.Preparation)
	if res.Uncompute {
		fmt.Fprint(w, " (uncomputed)")
	}
	fmt.Fprintf(w, "\nExecutor: %s, %d shots\n", res.Executor, res.Shots)
	fmt.Fprintf(w, "Circuit: %s\n\n", res.CircuitHash)

	if res.Report != nil {
		if err := present.Table(w, res.Report, style); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "Destination: %d zeros, %d ones (no single expected bit for %q)\n",
			res.DestinationZeros, res.DestinationOnes, res.Preparation)
	}

	if histogram {
		fmt.Fprintln(w)
		return present.Histogram(w, res.Counts, present.DefaultBarWidth)
	}
	return nil
}
