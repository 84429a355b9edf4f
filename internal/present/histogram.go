package present

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ms584/Q-Net/internal/ir"
)

// DefaultBarWidth is the length of the longest histogram bar.
const DefaultBarWidth = 40

// Histogram writes one bar per outcome key, sorted by key, scaled so the
// most frequent key spans width characters.
//
//	100 |########################################| 256  25.00%
func Histogram(w io.Writer, counts ir.Counts, width int) error {
	if width <= 0 {
		width = DefaultBarWidth
	}
	keys := make([]string, 0, len(counts))
	var peak int64
	for k, n := range counts {
		keys = append(keys, k)
		peak = max(peak, n)
	}
	sort.Strings(keys)

	total := counts.Total()
	digits := len(fmt.Sprint(peak))
	for _, k := range keys {
		n := counts[k]
		bar := 0
		if peak > 0 {
			bar = int(n * int64(width) / peak)
		}
		share := decimal.Zero
		if total > 0 {
			share = decimal.NewFromInt(n).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total))
		}
		_, err := fmt.Fprintf(w, "%s |%s%s| %*d %6s%%\n",
			k,
			strings.Repeat("#", bar),
			strings.Repeat(" ", width-bar),
			digits, n,
			share.StringFixed(2),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
