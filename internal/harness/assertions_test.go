package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/simdb/internal/aggregate"
	"github.com/roach88/simdb/internal/testutil"
)

func sampleFigure() *aggregate.Figure {
	return &aggregate.Figure{
		Title:  "wpan_sim",
		YLabel: "FER",
		Series: []aggregate.Curve{
			{Legend: "global.K=10", Points: []aggregate.Point{{X: 0, Y: 0.5}, {X: 5, Y: 0.01}}},
			{Legend: "global.K=20", Points: []aggregate.Point{{X: 0, Y: 0.25}}},
		},
	}
}

func TestEvaluateAssertions_Figure(t *testing.T) {
	result := NewResult()
	result.Figure = sampleFigure()

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"title match", Assertion{Type: AssertTitle, Value: "wpan_sim"}, ""},
		{"title mismatch", Assertion{Type: AssertTitle, Value: "other"}, `Expected: "other"`},
		{"y label", Assertion{Type: AssertYLabel, Value: "FER"}, ""},
		{"legends", Assertion{Type: AssertLegends, Values: []string{"global.K=10", "global.K=20"}}, ""},
		{"legends order", Assertion{Type: AssertLegends, Values: []string{"global.K=20", "global.K=10"}}, "legends"},
		{"series count", Assertion{Type: AssertSeriesCount, Count: 2}, ""},
		{"series count mismatch", Assertion{Type: AssertSeriesCount, Count: 1}, "1 curves"},
		{"points", Assertion{Type: AssertPoints, Series: 0, Points: [][2]float64{{0, 0.5}, {5, 0.01}}}, ""},
		{"points mismatch", Assertion{Type: AssertPoints, Series: 1, Points: [][2]float64{{0, 0.5}}}, "curve 1 points"},
		{"points missing curve", Assertion{Type: AssertPoints, Series: 5}, "2 curves"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(result, []Assertion{tt.assertion}, nil)
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestEvaluateAssertions_FigureRequired(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertTitle, Value: "x"}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires a figure")
}

func TestEvaluateAssertions_Store(t *testing.T) {
	s := testutil.OpenStore(t)
	seed := testutil.Seed(t, s)
	id := seed.Simulation("wpan_sim", "d")
	seed.Config(id, 0, "global", "K", "10").Result(id, 0, "Stats", "fer", -1, 0.1)

	actx := &AssertionContext{Store: s, Ctx: context.Background()}

	errs := EvaluateAssertions(NewResult(), []Assertion{
		{Type: AssertRowCount, Table: "simulation", Count: 1},
		{Type: AssertRowCount, Table: "configuration", Count: 1},
		{Type: AssertChains, Values: []string{"wpan_sim"}},
		{Type: AssertParams, Chain: "wpan_sim", Values: []string{"global.K"}},
		{Type: AssertParams, Chain: "absent"},
	}, actx)
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_RowCountRejectsBadTable(t *testing.T) {
	s := testutil.OpenStore(t)
	actx := &AssertionContext{Store: s, Ctx: context.Background()}

	errs := EvaluateAssertions(NewResult(), []Assertion{
		{Type: AssertRowCount, Table: "simulation; DROP TABLE result", Count: 0},
	}, actx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "invalid table name")
}

func TestEvaluateAssertions_StoreRequired(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertChains}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires database context")
}
