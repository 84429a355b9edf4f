package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ms584/Q-Net/internal/executor"
)

// Scenario defines a conformance test scenario: one teleportation run and
// the assertions its outcome must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Payload is the preparation instruction, e.g. "1" or "ry(1/3)".
	Payload string `yaml:"payload"`

	// Uncompute appends the inverse preparation before the final
	// measurement.
	Uncompute bool `yaml:"uncompute,omitempty"`

	// Shots defaults to 1024.
	Shots int64 `yaml:"shots,omitempty"`

	// Sampling selects the ideal executor mode: "exact" (default) or
	// "sampled" with Seed.
	Sampling string `yaml:"sampling,omitempty"`
	Seed     uint64 `yaml:"seed,omitempty"`

	// Assertions validate the run outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates a run outcome.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Equals and Min are decimal percentages (success_rate).
	Equals string `yaml:"equals,omitempty"`
	Min    string `yaml:"min,omitempty"`

	// Bit is the expected leading bit (all_keys_lead_with).
	Bit *int `yaml:"bit,omitempty"`

	// Key is the outcome key (outcome_count).
	Key string `yaml:"key,omitempty"`

	// Count is the expected number (key_count, outcome_count, shots).
	Count *int64 `yaml:"count,omitempty"`

	// Code is the expected error code (fails_with).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertSuccessRate     = "success_rate"
	AssertAllKeysLeadWith = "all_keys_lead_with"
	AssertKeyCount        = "key_count"
	AssertOutcomeCount    = "outcome_count"
	AssertShots           = "shots"
	AssertFailsWith       = "fails_with"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml and *.yml scenario in dir, sorted by
// file name.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Payload == "" {
		return fmt.Errorf("payload is required")
	}
	if s.Shots < 0 {
		return fmt.Errorf("shots must be positive")
	}
	if _, err := executor.ParseSampling(s.Sampling); err != nil {
		return err
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSuccessRate:
		if (a.Equals == "") == (a.Min == "") {
			return fmt.Errorf("assertions[%d]: exactly one of equals or min is required for success_rate", index)
		}
	case AssertAllKeysLeadWith:
		if a.Bit == nil || (*a.Bit != 0 && *a.Bit != 1) {
			return fmt.Errorf("assertions[%d]: bit must be 0 or 1 for all_keys_lead_with", index)
		}
	case AssertKeyCount, AssertShots:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
	case AssertOutcomeCount:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for outcome_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for outcome_count", index)
		}
	case AssertFailsWith:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for fails_with", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
