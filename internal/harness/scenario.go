package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one end-to-end check: documents are ingested into a
// fresh store, optionally some simulations are deleted again, then a query
// is run and the assertions are evaluated against the figure and the store.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is an optional CUE chain configuration, relative to the
	// scenario file.
	Config string `yaml:"config,omitempty"`

	// User is recorded with every ingested simulation. Defaults to
	// "harness".
	User string `yaml:"user,omitempty"`

	// Documents are ingested in order.
	Documents []DocumentRef `yaml:"documents"`

	// Delete lists documents (by index into Documents) whose simulations
	// are deleted after ingestion.
	Delete []int `yaml:"delete,omitempty"`

	// Query is the figure request. Optional when only store assertions are
	// made.
	Query *QuerySpec `yaml:"query,omitempty"`

	// Assertions validate the figure and the final store.
	Assertions []Assertion `yaml:"assertions"`

	// BatchID is an optional fixed batch id. Defaults to
	// "test-batch-default".
	BatchID string `yaml:"batch_id,omitempty"`
}

// DocumentRef names a result document, either a file relative to the
// scenario or inline content.
type DocumentRef struct {
	Path    string `yaml:"path,omitempty"`
	Name    string `yaml:"name,omitempty"`
	Content string `yaml:"content,omitempty"`
}

// DisplayName is the file name recorded for the document.
func (d DocumentRef) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return filepath.Base(d.Path)
}

// QuerySpec is the YAML form of aggregate.Query.
type QuerySpec struct {
	Chain      string   `yaml:"chain"`
	Function   string   `yaml:"function"`
	Params     []string `yaml:"params,omitempty"` // "module.name=constraint"
	Iterations []int    `yaml:"iterations,omitempty"`
}

// Assertion validates the figure or the final store.
type Assertion struct {
	// Type specifies the assertion type:
	// - "title": figure title equals Value
	// - "y_label": figure y label equals Value
	// - "legends": figure legends equal Values, in order
	// - "series_count": figure has Count curves
	// - "points": curve Series has exactly Points
	// - "row_count": Table has Count rows
	// - "chains": the store lists exactly Values as chains
	// - "params": Chain lists exactly Values as parameters
	Type string `yaml:"type"`

	Value  string       `yaml:"value,omitempty"`
	Values []string     `yaml:"values,omitempty"`
	Count  int          `yaml:"count,omitempty"`
	Series int          `yaml:"series,omitempty"`
	Points [][2]float64 `yaml:"points,omitempty"`
	Table  string       `yaml:"table,omitempty"`
	Chain  string       `yaml:"chain,omitempty"`
}

// Assertion type constants.
const (
	AssertTitle       = "title"
	AssertYLabel      = "y_label"
	AssertLegends     = "legends"
	AssertSeriesCount = "series_count"
	AssertPoints      = "points"
	AssertRowCount    = "row_count"
	AssertChains      = "chains"
	AssertParams      = "params"
)

// figureAssertions need a query to evaluate against.
var figureAssertions = map[string]bool{
	AssertTitle:       true,
	AssertYLabel:      true,
	AssertLegends:     true,
	AssertSeriesCount: true,
	AssertPoints:      true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Document and config paths are resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, doc := range scenario.Documents {
		if doc.Path != "" && !filepath.IsAbs(doc.Path) {
			scenario.Documents[i].Path = filepath.Join(base, doc.Path)
		}
	}
	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(base, scenario.Config)
	}

	if err := validateFiles(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML. Paths are left as
// written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Documents) == 0 {
		return fmt.Errorf("documents list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, doc := range s.Documents {
		if (doc.Path == "") == (doc.Content == "") {
			return fmt.Errorf("documents[%d]: exactly one of path or content is required", i)
		}
		if doc.Content != "" && doc.Name == "" {
			return fmt.Errorf("documents[%d]: name is required for inline content", i)
		}
	}

	for i, idx := range s.Delete {
		if idx < 0 || idx >= len(s.Documents) {
			return fmt.Errorf("delete[%d]: document index %d out of range", i, idx)
		}
	}

	if s.Query != nil {
		if s.Query.Chain == "" {
			return fmt.Errorf("query: chain is required")
		}
		if s.Query.Function == "" {
			return fmt.Errorf("query: function is required")
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], s.Query != nil); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, hasQuery bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if figureAssertions[a.Type] && !hasQuery {
		return fmt.Errorf("assertions[%d]: %s needs a query", index, a.Type)
	}

	switch a.Type {
	case AssertTitle, AssertYLabel, AssertLegends, AssertChains:
	case AssertSeriesCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for series_count", index)
		}
	case AssertPoints:
		if a.Series < 0 {
			return fmt.Errorf("assertions[%d]: series must be non-negative for points", index)
		}
	case AssertRowCount:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for row_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertParams:
		if a.Chain == "" {
			return fmt.Errorf("assertions[%d]: chain is required for params", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// validateFiles checks that referenced files exist.
func validateFiles(s *Scenario) error {
	for i, doc := range s.Documents {
		if doc.Path == "" {
			continue
		}
		if _, err := os.Stat(doc.Path); os.IsNotExist(err) {
			return fmt.Errorf("documents[%d]: file not found: %s", i, doc.Path)
		}
	}
	if s.Config != "" {
		if _, err := os.Stat(s.Config); os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", s.Config)
		}
	}
	return nil
}
