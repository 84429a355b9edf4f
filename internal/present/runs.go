package present

import (
	"fmt"
	"io"
	"strconv"

	"github.com/markkurossi/tabulate"

	"github.com/ms584/Q-Net/internal/store"
	"github.com/ms584/Q-Net/internal/teleport"
)

// RunRow is one line of a run listing.
type RunRow struct {
	ID        string
	Name      string
	Payload   string
	Uncompute bool
	Shots     int64
	Executor  string

	// Outcome is the success rate ("100.00%") or, without an expected bit,
	// the destination marginal ("0:512 1:512").
	Outcome string
}

// ResultRow summarizes a pipeline result.
func ResultRow(r *teleport.Result) RunRow {
	row := RunRow{
		ID:        r.RunID,
		Name:      r.Name,
		Payload:   r.Preparation,
		Uncompute: r.Uncompute,
		Shots:     r.Shots,
		Executor:  r.Executor,
	}
	if r.Report != nil {
		row.Outcome = r.Report.Percent()
	} else {
		row.Outcome = marginal(r.DestinationZeros, r.DestinationOnes)
	}
	return row
}

// StoredRow summarizes a run read back from the history.
func StoredRow(r *store.Run) RunRow {
	row := RunRow{
		ID:        r.ID,
		Name:      r.Name,
		Payload:   r.Payload,
		Uncompute: r.Uncompute,
		Shots:     r.Shots,
		Executor:  r.Executor,
	}
	if r.SuccessRate != nil {
		row.Outcome = r.SuccessRate.StringFixed(2) + "%"
		return row
	}
	var zeros, ones int64
	for k, n := range r.Counts {
		if len(k) > 0 && k[0] == '1' {
			ones += n
		} else {
			zeros += n
		}
	}
	row.Outcome = marginal(zeros, ones)
	return row
}

func marginal(zeros, ones int64) string {
	return fmt.Sprintf("0:%d 1:%d", zeros, ones)
}

// Runs writes a run listing, one row per run in the given order.
func Runs(w io.Writer, rows []RunRow, style Style) error {
	tab := tabulate.New(style.tabulate())
	tab.Header("Run").SetAlign(tabulate.ML)
	tab.Header("Name").SetAlign(tabulate.ML)
	tab.Header("Payload").SetAlign(tabulate.ML)
	tab.Header("Shots").SetAlign(tabulate.MR)
	tab.Header("Executor").SetAlign(tabulate.ML)
	tab.Header("Outcome").SetAlign(tabulate.MR)

	for _, r := range rows {
		row := tab.Row()
		row.Column(r.ID)
		row.Column(r.Name)
		payload := r.Payload
		if r.Uncompute {
			payload += " (uncomputed)"
		}
		row.Column(payload)
		row.Column(strconv.FormatInt(r.Shots, 10))
		row.Column(r.Executor)
		row.Column(r.Outcome)
	}
	tab.Print(w)

	_, err := fmt.Fprintf(w, "%d run(s)\n", len(rows))
	return err
}
