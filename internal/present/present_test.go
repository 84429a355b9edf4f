package present

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ms584/Q-Net/internal/evaluate"
	"github.com/ms584/Q-Net/internal/ir"
	"github.com/ms584/Q-Net/internal/store"
	"github.com/ms584/Q-Net/internal/teleport"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

var idealOne = ir.Counts{"100": 256, "101": 256, "110": 256, "111": 256}

func TestHistogram_Golden(t *testing.T) {
	g := newGoldie(t)

	var buf bytes.Buffer
	require.NoError(t, Histogram(&buf, idealOne, 10))
	g.Assert(t, "histogram_payload_one", buf.Bytes())

	buf.Reset()
	require.NoError(t, Histogram(&buf, ir.Counts{"100": 12, "000": 3, "011": 1}, 8))
	g.Assert(t, "histogram_noisy", buf.Bytes())
}

func TestHistogram_DefaultWidth(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Histogram(&buf, ir.Counts{"111": 5}, 0))
	assert.Contains(t, buf.String(), strings.Repeat("#", DefaultBarWidth))
}

func TestTable(t *testing.T) {
	report, err := evaluate.Evaluate(ir.Counts{"100": 1000, "011": 24}, ir.One)
	require.NoError(t, err)

	for _, style := range []Style{StyleUnicode, StyleASCII, StylePlain} {
		t.Run(string(style), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Table(&buf, report, style))
			out := buf.String()

			for _, want := range []string{"Outcome", "Destination", "Entangled A", "Payload", "Count", "Share", "Match"} {
				assert.Contains(t, out, want)
			}
			assert.Contains(t, out, "011")
			assert.Contains(t, out, "1000")
			assert.Contains(t, out, "97.66%")
			assert.Contains(t, out, "2.34%")
			assert.Contains(t, out, "Success rate (destination == 1): 97.66% (1000/1024)")
			assert.Less(t, strings.Index(out, "011"), strings.Index(out, "1000"), "rows are sorted by key")
		})
	}
}

func TestSummarize_Golden(t *testing.T) {
	g := newGoldie(t)

	res := &teleport.Result{
		RunID:           "run-1",
		Preparation:     "1",
		Shots:           1024,
		Executor:        "ideal/exact",
		CircuitHash:     "abc123",
		Counts:          idealOne,
		DestinationOnes: 1024,
		Report: &evaluate.Report{
			ExpectedBit: ir.One,
			Total:       1024,
			Successes:   1024,
			SuccessRate: decimal.NewFromInt(100),
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Summarize(res)))
	g.Assert(t, "summary_payload_one", buf.Bytes())

	res = &teleport.Result{
		RunID:            "run-2",
		Name:             "plus",
		Preparation:      "+",
		Shots:            4,
		Executor:         "stub",
		CircuitHash:      "def456",
		Counts:           ir.Counts{"001": 2, "110": 2},
		DestinationZeros: 2,
		DestinationOnes:  2,
	}
	buf.Reset()
	require.NoError(t, WriteJSON(&buf, Summarize(res)))
	g.Assert(t, "summary_superposition", buf.Bytes())
}

func TestRuns(t *testing.T) {
	rate := decimal.RequireFromString("97.5")
	rows := []RunRow{
		ResultRow(&teleport.Result{
			RunID:            "run-1",
			Name:             "plus",
			Preparation:      "+",
			Shots:            1024,
			Executor:         "ideal/exact",
			DestinationZeros: 512,
			DestinationOnes:  512,
		}),
		StoredRow(&store.Run{
			ID:          "run-2",
			Payload:     "ry(1/3)",
			Uncompute:   true,
			Shots:       200,
			Executor:    "command/ibm",
			Counts:      ir.Counts{"000": 195, "100": 5},
			SuccessRate: &rate,
		}),
		StoredRow(&store.Run{
			ID:      "run-3",
			Payload: "+",
			Shots:   4,
			Counts:  ir.Counts{"000": 1, "101": 3},
		}),
	}

	assert.Equal(t, "0:512 1:512", rows[0].Outcome)
	assert.Equal(t, "97.50%", rows[1].Outcome)
	assert.Equal(t, "0:1 1:3", rows[2].Outcome)

	var buf bytes.Buffer
	require.NoError(t, Runs(&buf, rows, StyleASCII))
	out := buf.String()
	for _, want := range []string{"Run", "Outcome", "run-1", "plus", "ry(1/3) (uncomputed)", "command/ibm", "97.50%", "3 run(s)"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "run-1"), strings.Index(out, "run-2"))
}
