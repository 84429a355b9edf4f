package harness

import (
	"github.com/ms584/Q-Net/internal/teleport"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Run is the completed run, nil when the run failed.
	Run *teleport.Result `json:"-"`

	// RunErr is the pipeline error, nil when the run succeeded.
	RunErr error `json:"-"`

	// Recorded is the number of runs found in the scenario's run history
	// after execution.
	Recorded int `json:"recorded"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
