package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/ms584/Q-Net/internal/ir"
	"github.com/ms584/Q-Net/internal/teleport"
)

// Snapshot is the golden-file view of a scenario execution. The circuit
// hash is left out so the snapshot stays readable and stable across
// circuit encoding changes; counts and success rate carry the behavior.
type Snapshot struct {
	ScenarioName string
	Payload      string
	Uncompute    bool
	Shots        int64
	Counts       ir.Counts
	ExpectedBit  *ir.Bit
	SuccessRate  string
	ErrorCode    string
	Recorded     int
}

// NewSnapshot builds the snapshot for a scenario result.
func NewSnapshot(scenario *Scenario, result *Result) *Snapshot {
	s := &Snapshot{
		ScenarioName: scenario.Name,
		Payload:      scenario.Payload,
		Uncompute:    scenario.Uncompute,
		Recorded:     result.Recorded,
	}
	if result.RunErr != nil {
		s.ErrorCode = teleport.ErrorCode(result.RunErr)
		return s
	}
	run := result.Run
	s.Shots = run.Shots
	s.Counts = run.Counts
	if run.Report != nil {
		bit := run.Report.ExpectedBit
		s.ExpectedBit = &bit
		s.SuccessRate = run.Report.SuccessRate.StringFixed(2)
	}
	return s
}

// IR converts the snapshot to a canonical value.
// Optional fields are omitted rather than encoded as null.
func (s *Snapshot) IR() ir.IRObject {
	obj := ir.IRObject{
		"scenario":  ir.IRString(s.ScenarioName),
		"payload":   ir.IRString(s.Payload),
		"uncompute": ir.IRBool(s.Uncompute),
		"recorded":  ir.IRInt(s.Recorded),
	}
	if s.ErrorCode != "" {
		obj["error_code"] = ir.IRString(s.ErrorCode)
		return obj
	}
	obj["shots"] = ir.IRInt(s.Shots)
	obj["counts"] = s.Counts.IR()
	if s.ExpectedBit != nil {
		obj["expected_bit"] = ir.IRInt(*s.ExpectedBit)
		obj["success_rate"] = ir.IRString(s.SuccessRate)
	}
	return obj
}

// SnapshotJSON returns the canonical JSON golden content for a result.
func SnapshotJSON(scenario *Scenario, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(NewSnapshot(scenario, result).IR())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
