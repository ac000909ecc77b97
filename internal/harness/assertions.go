package harness

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/simdb/internal/aggregate"
	"github.com/roach88/simdb/internal/store"
)

// validIdentifier matches valid SQL identifiers (table names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string            // Assertion type for categorization
	Expected string            // Human-readable expected outcome
	Actual   string            // Human-readable actual outcome
	Figure   *aggregate.Figure // Figure for debugging context, may be nil
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Figure != nil {
		fmt.Fprintf(&buf, "\nFigure %q:\n", e.Figure.Title)
		for i, c := range e.Figure.Series {
			fmt.Fprintf(&buf, "  [%d] %q %d points\n", i, c.Legend, len(c.Points))
		}
	}
	return buf.String()
}

func assertString(kind, want, got string, fig *aggregate.Figure) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", got),
		Figure:   fig,
	}
}

func assertStrings(kind string, want, got []string, fig *aggregate.Figure) error {
	// A nil expectation means "none".
	if want == nil {
		want = []string{}
	}
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", got),
		Figure:   fig,
	}
}

func assertSeriesCount(fig *aggregate.Figure, a Assertion) error {
	if len(fig.Series) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertSeriesCount,
		Expected: fmt.Sprintf("%d curves", a.Count),
		Actual:   fmt.Sprintf("%d curves", len(fig.Series)),
		Figure:   fig,
	}
}

// assertPoints checks the exact points of one curve, in order.
func assertPoints(fig *aggregate.Figure, a Assertion) error {
	if a.Series >= len(fig.Series) {
		return &AssertionError{
			Type:     AssertPoints,
			Expected: fmt.Sprintf("curve %d", a.Series),
			Actual:   fmt.Sprintf("%d curves", len(fig.Series)),
			Figure:   fig,
		}
	}

	got := fig.Series[a.Series].Points
	want := make([]aggregate.Point, len(a.Points))
	for i, p := range a.Points {
		want[i] = aggregate.Point{X: p[0], Y: p[1]}
	}
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertPoints,
		Expected: fmt.Sprintf("curve %d points %v", a.Series, want),
		Actual:   fmt.Sprintf("%v", got),
		Figure:   fig,
	}
}

// assertRowCount counts the rows of one store table.
//
// Table names are validated against a whitelist pattern since identifiers
// can't be parameterized.
func assertRowCount(ctx context.Context, st *store.Store, a Assertion) error {
	if !validIdentifier.MatchString(a.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", a.Table, validIdentifier.String())
	}

	rows, err := st.Query(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", a.Table))
	if err != nil {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("query table %s", a.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return fmt.Errorf("scan row count: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("count %s: %w", a.Table, err)
	}

	if n != a.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows in %s", a.Count, a.Table),
			Actual:   fmt.Sprintf("%d rows", n),
		}
	}
	return nil
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for store assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, a := range assertions {
		var err error
		fig := result.Figure

		switch {
		case figureAssertions[a.Type] && fig == nil:
			err = fmt.Errorf("assertion[%d]: %s requires a figure", i, a.Type)
		case a.Type == AssertTitle:
			err = assertString(a.Type, a.Value, fig.Title, fig)
		case a.Type == AssertYLabel:
			err = assertString(a.Type, a.Value, fig.YLabel, fig)
		case a.Type == AssertLegends:
			err = assertStrings(a.Type, a.Values, fig.Legends(), fig)
		case a.Type == AssertSeriesCount:
			err = assertSeriesCount(fig, a)
		case a.Type == AssertPoints:
			err = assertPoints(fig, a)
		case actx == nil || actx.Store == nil:
			err = fmt.Errorf("assertion[%d]: %s requires database context", i, a.Type)
		case a.Type == AssertRowCount:
			err = assertRowCount(actx.Ctx, actx.Store, a)
		case a.Type == AssertChains:
			var chains []string
			chains, err = actx.Store.Chains(actx.Ctx)
			if err == nil {
				err = assertStrings(a.Type, a.Values, chains, nil)
			}
		case a.Type == AssertParams:
			var params []string
			params, err = actx.Store.Parameters(actx.Ctx, a.Chain)
			if err == nil {
				err = assertStrings(a.Type, a.Values, params, nil)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
