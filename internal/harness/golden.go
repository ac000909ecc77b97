package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/simdb/internal/aggregate"
)

// FigureSnapshot captures what a scenario produced.
type FigureSnapshot struct {
	ScenarioName string            `json:"scenario_name"`
	BatchID      string            `json:"batch_id"`
	Ingested     int               `json:"ingested"`
	Skipped      int               `json:"skipped"`
	Figure       *aggregate.Figure `json:"figure,omitempty"`
}

// Snapshot renders the golden form of a result: indented JSON with a
// trailing newline. Struct field order keeps it deterministic.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snap := FigureSnapshot{ScenarioName: scenarioName, Figure: result.Figure}
	if result.Ingest != nil {
		snap.BatchID = result.Ingest.BatchID
		snap.Ingested = result.Ingest.Ingested
		snap.Skipped = result.Ingest.Skipped
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file in testdata/golden/{scenario.Name}.golden.
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
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
