package present

import (
	"fmt"
	"io"
	"strconv"

	"github.com/markkurossi/tabulate"

	"github.com/ms584/Q-Net/internal/evaluate"
)

// Style selects the table border style.
type Style string

const (
	StyleUnicode Style = "unicode"
	StyleASCII   Style = "ascii"
	StylePlain   Style = "plain"
)

func (s Style) tabulate() tabulate.Style {
	switch s {
	case StyleASCII:
		return tabulate.ASCII
	case StylePlain:
		return tabulate.Plain
	default:
		return tabulate.Unicode
	}
}

// Table writes the per-outcome breakdown of report followed by the
// success-rate line.
func Table(w io.Writer, report *evaluate.Report, style Style) error {
	tab := tabulate.New(style.tabulate())
	tab.Header("Outcome").SetAlign(tabulate.ML)
	tab.Header("Destination").SetAlign(tabulate.MC)
	tab.Header("Entangled A").SetAlign(tabulate.MC)
	tab.Header("Payload").SetAlign(tabulate.MC)
	tab.Header("Count").SetAlign(tabulate.MR)
	tab.Header("Share").SetAlign(tabulate.MR)
	tab.Header("Match").SetAlign(tabulate.MC)

	for _, r := range report.Rows {
		row := tab.Row()
		row.Column(r.Key)
		row.Column(strconv.Itoa(int(r.Destination)))
		row.Column(strconv.Itoa(int(r.EntangledA)))
		row.Column(strconv.Itoa(int(r.Payload)))
		row.Column(strconv.FormatInt(r.Count, 10))
		row.Column(r.Share.StringFixed(2) + "%")
		if r.Success {
			row.Column("yes")
		} else {
			row.Column("no")
		}
	}
	tab.Print(w)

	_, err := fmt.Fprintf(w, "Success rate (destination == %d): %s (%d/%d)\n",
		report.ExpectedBit, report.Percent(), report.Successes, report.Total)
	return err
}
