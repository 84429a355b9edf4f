package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/ir"
	"github.com/ms584/Q-Net/internal/plan"
	"github.com/ms584/Q-Net/internal/present"
	"github.com/ms584/Q-Net/internal/teleport"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	SessionOptions

	Check  bool
	Style  string
	Strict bool
}

// PlanOutput is the JSON payload of the plan command.
type PlanOutput struct {
	FileCount int               `json:"file_count"`
	Runs      []ir.RunSpec      `json:"runs,omitempty"`
	Results   []present.Summary `json:"results,omitempty"`
}

// PlanErrorDetail describes one plan error in JSON output.
type PlanErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	return newPlanCommand(&PlanOptions{RootOptions: rootOpts})
}

// newPlanCommand builds the command around opts, so tests can set
// SessionOptions overrides.
func newPlanCommand(opts *PlanOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <plan-dir>",
		Short: "Run every teleportation declared in a CUE plan",
		Long: `Load the runs declared in a directory of CUE files and execute them in
declaration order.

	run: one: { payload: "1", shots: 2048 }
	run: tilted: { payload: "ry(1/3)", uncompute: true }

With --check the plan is only validated; every error is reported with its
file position.

Exit codes:
  0 - All runs completed (or the plan is valid, with --check)
  1 - A run failed, or was imperfect with --strict
  2 - Command error (invalid plan, bad config)

Examples:
  qnet plan ./plans
  qnet plan ./plans --check
  qnet plan ./plans --db ./qnet.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "validate the plan without running it")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the runs in this SQLite database")
	cmd.Flags().BoolVar(&opts.Publish, "publish", false, "publish run summaries to the MQTT broker")
	cmd.Flags().StringVar(&opts.Style, "style", string(present.StyleUnicode), "table style (unicode|ascii|plain)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 unless every run with an expected bit was perfect")

	return cmd
}

func runPlan(opts *PlanOptions, dir string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	w := cmd.OutOrStdout()

	mode := plan.LoadModeFailFast
	if opts.Check {
		mode = plan.LoadModeCollectAll
	}
	loaded, loadErrs := plan.LoadPlans(dir, mode)
	if len(loadErrs) > 0 {
		return reportPlanErrors(out, cmd, loadErrs)
	}
	slog.Info("plan loaded", "dir", dir, "files", loaded.FileCount, "runs", len(loaded.Runs))
	out.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, dir)

	if opts.Check {
		if out.JSON() {
			return out.Success(PlanOutput{FileCount: loaded.FileCount, Runs: loaded.Runs})
		}
		fmt.Fprintf(w, "✓ %d run(s) in %d file(s)\n", len(loaded.Runs), loaded.FileCount)
		for _, spec := range loaded.Runs {
			fmt.Fprintf(w, "  %s: payload=%s shots=%d uncompute=%t\n", spec.Name, spec.Preparation, spec.Shots, spec.Uncompute)
		}
		return nil
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return out.Fail(err)
	}
	sess, err := openSession(cfg, opts.SessionOptions)
	if err != nil {
		return out.Fail(err)
	}
	defer sess.close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	results := make([]*teleport.Result, 0, len(loaded.Runs))
	for _, spec := range loaded.Runs {
		shots := spec.Shots
		if shots == 0 {
			shots = cfg.Run.Shots
		}
		out.VerboseLog("Running %s: payload=%s shots=%d", spec.Name, spec.Preparation, shots)
		res, err := sess.runner.Run(ctx, teleport.Request{
			Name:        spec.Name,
			Preparation: spec.Preparation,
			Options:     circuit.Options{Uncompute: spec.Uncompute},
			Shots:       shots,
		})
		if err != nil {
			return out.Fail(WrapExitError(ExitFailure, fmt.Sprintf("run %s failed", spec.Name), err))
		}
		results = append(results, res)
	}

	if out.JSON() {
		summaries := make([]present.Summary, len(results))
		for i, res := range results {
			summaries[i] = present.Summarize(res)
		}
		if err := out.Success(PlanOutput{FileCount: loaded.FileCount, Results: summaries}); err != nil {
			return err
		}
	} else {
		rows := make([]present.RunRow, len(results))
		for i, res := range results {
			rows[i] = present.ResultRow(res)
		}
		if err := present.Runs(w, rows, present.Style(opts.Style)); err != nil {
			return err
		}
	}

	if opts.Strict {
		for _, res := range results {
			if res.Report != nil && !res.Report.Perfect() {
				return NewExitError(ExitFailure, fmt.Sprintf("run %s was not perfect", res.Name))
			}
		}
	}
	return nil
}

// reportPlanErrors prints every load error and returns a command error.
func reportPlanErrors(out *OutputFormatter, cmd *cobra.Command, errs []error) error {
	exitErr := NewExitError(ExitCommandError, fmt.Sprintf("plan has %d error(s)", len(errs)))

	if out.JSON() {
		details := make([]PlanErrorDetail, 0, len(errs))
		for _, err := range errs {
			details = append(details, planErrorDetail(err))
		}
		if err := out.Error(details[0].Code, exitErr.Message, details); err != nil {
			return err
		}
		return exitErr
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✗ %s\n", exitErr.Message)
	for _, err := range errs {
		fmt.Fprintf(w, "  %v\n", err)
	}
	return exitErr
}

func planErrorDetail(err error) PlanErrorDetail {
	var le *plan.LoadError
	if !errors.As(err, &le) {
		return PlanErrorDetail{Code: plan.ErrCodeGeneric, Message: err.Error()}
	}
	d := PlanErrorDetail{Code: le.Code, Message: le.Message}
	if le.Pos.IsValid() {
		d.File = le.Pos.Filename()
		d.Line = le.Pos.Line()
		d.Column = le.Pos.Column()
	}
	return d
}
