package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ms584/Q-Net/internal/evaluate"
	"github.com/ms584/Q-Net/internal/ir"
	"github.com/ms584/Q-Net/internal/present"
)

// EvaluateOptions holds flags for the evaluate command.
type EvaluateOptions struct {
	*RootOptions
	Expect int
	Shots  int64
	Style  string
	Strict bool
}

// EvaluateOutput is the JSON payload of the evaluate command.
type EvaluateOutput struct {
	*evaluate.Report
	Percent string `json:"percent"`
}

// NewEvaluateCommand creates the evaluate command.
func NewEvaluateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvaluateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "evaluate <counts.json>",
		Short: "Evaluate counts returned by any backend",
		Long: `Evaluate a counts file produced elsewhere, e.g. by a hardware backend.

The file holds a JSON object mapping outcome keys to counts, either bare or
under a "counts" field. Keys are three-bit strings with the destination
register leftmost; register separators ("1 0 1") are accepted. Use "-" to
read from stdin.

Examples:
  qnet evaluate counts.json --expect 1
  qnet evaluate counts.json --expect 0 --shots 1024 --strict
  backend-run | qnet evaluate - --expect 1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Expect, "expect", "e", 0, "expected destination bit (0 or 1)")
	_ = cmd.MarkFlagRequired("expect")
	cmd.Flags().Int64Var(&opts.Shots, "shots", 0, "verify the counts sum to this many shots")
	cmd.Flags().StringVar(&opts.Style, "style", string(present.StyleUnicode), "table style (unicode|ascii|plain)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 unless every shot succeeded")

	return cmd
}

func runEvaluate(opts *EvaluateOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	if opts.Expect != 0 && opts.Expect != 1 {
		return out.Fail(NewExitError(ExitCommandError, fmt.Sprintf("--expect must be 0 or 1, got %d", opts.Expect)))
	}

	counts, err := readCounts(path, cmd.InOrStdin())
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to read counts", err))
	}

	if opts.Shots > 0 {
		normalized, err := evaluate.Normalize(counts)
		if err != nil {
			return out.Fail(WrapExitError(ExitFailure, "evaluation failed", err))
		}
		if err := evaluate.CheckConservation(normalized, opts.Shots); err != nil {
			return out.Fail(WrapExitError(ExitFailure, "evaluation failed", err))
		}
	}

	report, err := evaluate.Evaluate(counts, ir.Bit(opts.Expect))
	if err != nil {
		return out.Fail(WrapExitError(ExitFailure, "evaluation failed", err))
	}

	if out.JSON() {
		if err := out.Success(EvaluateOutput{Report: report, Percent: report.Percent()}); err != nil {
			return err
		}
	} else if err := present.Table(cmd.OutOrStdout(), report, present.Style(opts.Style)); err != nil {
		return err
	}

	if opts.Strict && !report.Perfect() {
		return NewExitError(ExitFailure, "evaluation was not perfect")
	}
	return nil
}

// readCounts decodes a counts object from path ("-" for stdin). Both the
// bare form and the executor output form {"counts": {...}} are accepted.
func readCounts(path string, stdin io.Reader) (ir.Counts, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("counts must be a JSON object: %w", err)
	}
	if raw, ok := fields["counts"]; ok && len(fields) == 1 {
		data = raw
	}

	var counts ir.Counts
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&counts); err != nil {
		return nil, fmt.Errorf("counts must map outcome keys to integers: %w", err)
	}
	return counts, nil
}
