package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ms584/Q-Net/internal/evaluate"
	"github.com/ms584/Q-Net/internal/present"
	"github.com/ms584/Q-Net/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Payload  string
	Hash     string
	Limit    int
	ID       string
	Verify   bool
	Style    string
}

// HistoryEntry is one run in JSON output.
type HistoryEntry struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Name        string `json:"name,omitempty"`
	Payload     string `json:"payload"`
	Uncompute   bool   `json:"uncompute,omitempty"`
	Shots       int64  `json:"shots"`
	Executor    string `json:"executor"`
	CircuitHash string `json:"circuit_hash"`
	CountsHash  string `json:"counts_hash"`
	Outcome     string `json:"outcome"`
	Verified    *bool  `json:"verified,omitempty"`
	Problem     string `json:"problem,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or verify recorded runs",
		Long: `List runs recorded in the SQLite run history, oldest first.

With --id a single run is shown with its full breakdown. With --verify every
listed run is checked: circuit and counts hashes are recomputed and the
evaluation is redone from the stored counts.

Exit codes:
  0 - Success (and every run verified, with --verify)
  1 - A run failed verification
  2 - Command error (database not found, unknown run ID)

Examples:
  qnet history --db ./qnet.db
  qnet history --db ./qnet.db --payload 1 --limit 10
  qnet history --db ./qnet.db --id 0190f7a2-...
  qnet history --db ./qnet.db --verify --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Payload, "payload", "", "only runs with this payload")
	cmd.Flags().StringVar(&opts.Hash, "circuit", "", "only runs of this circuit hash")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of runs")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show a single run")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "recompute hashes and evaluations")
	cmd.Flags().StringVar(&opts.Style, "style", string(present.StyleUnicode), "table style (unicode|ascii|plain)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPath := opts.Database
	if dbPath == "" {
		cfg, err := opts.loadConfig()
		if err != nil {
			return out.Fail(err)
		}
		dbPath = cfg.Store.Path
	}
	if dbPath == "" {
		return out.Fail(NewExitError(ExitCommandError, "no database: pass --db or set store.path"))
	}

	if _, err := os.Stat(dbPath); err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "database not found", err))
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer st.Close()

	if opts.ID != "" {
		return showRun(ctx, opts, out, st, cmd)
	}

	runs, err := st.ListRuns(ctx, store.Filter{Payload: opts.Payload, CircuitHash: opts.Hash, Limit: opts.Limit})
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to list runs", err))
	}

	var failed int
	entries := make([]HistoryEntry, len(runs))
	rows := make([]present.RunRow, len(runs))
	for i, r := range runs {
		entries[i] = historyEntry(r)
		rows[i] = present.StoredRow(r)
		if opts.Verify {
			ok := true
			if err := r.Verify(); err != nil {
				ok = false
				failed++
				entries[i].Problem = err.Error()
			}
			entries[i].Verified = &ok
		}
	}

	if out.JSON() {
		if err := out.Success(entries); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		if err := present.Runs(w, rows, present.Style(opts.Style)); err != nil {
			return err
		}
		if opts.Verify {
			for _, e := range entries {
				if e.Problem != "" {
					fmt.Fprintf(w, "✗ %s\n", e.Problem)
				}
			}
			if failed == 0 {
				fmt.Fprintf(w, "✓ %d run(s) verified\n", len(entries))
			}
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d run(s) failed verification", failed))
	}
	return nil
}

func showRun(ctx context.Context, opts *HistoryOptions, out *OutputFormatter, st *store.Store, cmd *cobra.Command) error {
	r, err := st.ReadRun(ctx, opts.ID)
	if errors.Is(err, store.ErrRunNotFound) {
		return out.Fail(WrapExitError(ExitCommandError, "unknown run", err))
	}
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to read run", err))
	}

	entry := historyEntry(r)
	verifyErr := r.Verify()
	ok := verifyErr == nil
	entry.Verified = &ok
	if verifyErr != nil {
		entry.Problem = verifyErr.Error()
	}

	if out.JSON() {
		if err := out.Success(entry); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Run %s (#%d)\n", r.ID, r.Seq)
		if r.Name != "" {
			fmt.Fprintf(w, "Name: %s\n", r.Name)
		}
		fmt.Fprintf(w, "Payload: %s", r.Payload)
		if r.Uncompute {
			fmt.Fprint(w, " (uncomputed)")
		}
		fmt.Fprintf(w, "\nExecutor: %s, %d shots\n", r.Executor, r.Shots)
		fmt.Fprintf(w, "Circuit: %s\n", r.CircuitHash)
		fmt.Fprintf(w, "Recorded by %s (IR v%s)\n\n", r.ToolVersion, r.IRVersion)

		if r.ExpectedBit != nil {
			report, err := evaluate.Evaluate(r.Counts, *r.ExpectedBit)
			if err != nil {
				return out.Fail(WrapExitError(ExitFailure, "stored counts are invalid", err))
			}
			if err := present.Table(w, report, present.Style(opts.Style)); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(w, "Destination: %s\n", present.StoredRow(r).Outcome)
		}
		fmt.Fprintln(w)
		if err := present.Histogram(w, r.Counts, present.DefaultBarWidth); err != nil {
			return err
		}
		if verifyErr != nil {
			fmt.Fprintf(w, "\n✗ %v\n", verifyErr)
		}
	}

	if verifyErr != nil {
		return NewExitError(ExitFailure, "run failed verification")
	}
	return nil
}

func historyEntry(r *store.Run) HistoryEntry {
	return HistoryEntry{
		ID:          r.ID,
		Seq:         r.Seq,
		Name:        r.Name,
		Payload:     r.Payload,
		Uncompute:   r.Uncompute,
		Shots:       r.Shots,
		Executor:    r.Executor,
		CircuitHash: r.CircuitHash,
		CountsHash:  r.CountsHash,
		Outcome:     present.StoredRow(r).Outcome,
	}
}
