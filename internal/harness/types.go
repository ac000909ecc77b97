package harness

import (
	"github.com/roach88/simdb/internal/aggregate"
	"github.com/roach88/simdb/internal/ingest"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions match.
	Pass bool `json:"pass"`

	// Ingest is the ingestion report of the scenario's documents.
	Ingest *ingest.Report `json:"ingest"`

	// Deleted counts the rows removed per table by the delete step.
	Deleted map[string]int64 `json:"deleted,omitempty"`

	// Figure is the query outcome, nil when the scenario has no query.
	Figure *aggregate.Figure `json:"figure,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
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
