package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ms584/Q-Net/internal/evaluate"
	"github.com/ms584/Q-Net/internal/ir"
	"github.com/ms584/Q-Net/internal/teleport"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string    // Assertion type for categorization
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Counts   ir.Counts // Observed counts for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Counts) > 0 {
		fmt.Fprintf(&buf, "\nCounts:\n")
		for _, k := range sortedCountKeys(e.Counts) {
			fmt.Fprintf(&buf, "  %s: %d\n", k, e.Counts[k])
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against a completed run and
// returns the failures.
func EvaluateAssertions(run *teleport.Result, assertions []Assertion) []error {
	var errs []error
	for _, a := range assertions {
		if err := evaluateAssertion(run, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func evaluateAssertion(run *teleport.Result, a Assertion) error {
	switch a.Type {
	case AssertSuccessRate:
		return assertSuccessRate(run, a)
	case AssertAllKeysLeadWith:
		return assertAllKeysLeadWith(run, a)
	case AssertKeyCount:
		if got := int64(len(run.Counts)); got != *a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d distinct outcomes", *a.Count),
				Actual:   fmt.Sprintf("%d distinct outcomes", got),
				Counts:   run.Counts,
			}
		}
	case AssertOutcomeCount:
		key := evaluate.NormalizeKey(a.Key)
		if got := run.Counts[key]; got != *a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s recorded %d times", key, *a.Count),
				Actual:   fmt.Sprintf("%s recorded %d times", key, got),
				Counts:   run.Counts,
			}
		}
	case AssertShots:
		if got := run.Counts.Total(); got != *a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("counts sum to %d", *a.Count),
				Actual:   fmt.Sprintf("counts sum to %d", got),
				Counts:   run.Counts,
			}
		}
	case AssertFailsWith:
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("run fails with %s", a.Code),
			Actual:   "run succeeded",
			Counts:   run.Counts,
		}
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	return nil
}

func assertSuccessRate(run *teleport.Result, a Assertion) error {
	if run.Report == nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: "a deterministic expected bit",
			Actual:   fmt.Sprintf("payload %q has none", run.Preparation),
			Counts:   run.Counts,
		}
	}

	rate := run.Report.SuccessRate.Round(2)
	if a.Equals != "" {
		want, err := decimal.NewFromString(a.Equals)
		if err != nil {
			return fmt.Errorf("success_rate: invalid equals %q: %w", a.Equals, err)
		}
		if !rate.Equal(want) {
			return &AssertionError{
				Type:     a.Type,
				Expected: want.StringFixed(2) + "%",
				Actual:   run.Report.Percent(),
				Counts:   run.Counts,
			}
		}
		return nil
	}

	floor, err := decimal.NewFromString(a.Min)
	if err != nil {
		return fmt.Errorf("success_rate: invalid min %q: %w", a.Min, err)
	}
	if rate.LessThan(floor) {
		return &AssertionError{
			Type:     a.Type,
			Expected: "at least " + floor.StringFixed(2) + "%",
			Actual:   run.Report.Percent(),
			Counts:   run.Counts,
		}
	}
	return nil
}

func assertAllKeysLeadWith(run *teleport.Result, a Assertion) error {
	lead := ir.Bit(*a.Bit).Byte()
	var offending []string
	for _, k := range sortedCountKeys(run.Counts) {
		if k[ir.DestinationResult.KeyIndex()] != lead {
			offending = append(offending, k)
		}
	}
	if len(offending) > 0 {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("every destination bit = %d", *a.Bit),
			Actual:   "mismatching outcomes " + strings.Join(offending, ", "),
			Counts:   run.Counts,
		}
	}
	return nil
}

// assertFailure checks a failed run against fails_with assertions. A failed
// run with no fails_with assertion is itself a failure.
func assertFailure(runErr error, assertions []Assertion) []error {
	code := teleport.ErrorCode(runErr)
	var expected []string
	for _, a := range assertions {
		if a.Type == AssertFailsWith {
			if a.Code == code {
				return nil
			}
			expected = append(expected, a.Code)
		}
	}
	if len(expected) == 0 {
		return []error{fmt.Errorf("run failed: %w", runErr)}
	}
	return []error{&AssertionError{
		Type:     AssertFailsWith,
		Expected: "run fails with " + strings.Join(expected, " or "),
		Actual:   fmt.Sprintf("%s (%v)", code, runErr),
	}}
}

func sortedCountKeys(c ir.Counts) []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
