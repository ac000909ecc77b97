package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/roach88/simdb/internal/value"
)

func TestChains_Empty(t *testing.T) {
	s := createTestStore(t)

	chains, err := s.Chains(context.Background())
	if err != nil {
		t.Fatalf("Chains() failed: %v", err)
	}
	// Should return empty slice, not nil
	if chains == nil {
		t.Error("chains is nil, want empty slice")
	}
	if len(chains) != 0 {
		t.Errorf("len(chains) = %d, want 0", len(chains))
	}
}

func TestChains_DistinctAndSorted(t *testing.T) {
	s := createTestStore(t)
	createTestSimulation(t, s, "wpan", "d1")
	createTestSimulation(t, s, "emssim_lte_turbo", "d2")
	createTestSimulation(t, s, "wpan", "d3")
	createTestSimulation(t, s, "WPAN", "d4")

	chains, err := s.Chains(context.Background())
	if err != nil {
		t.Fatalf("Chains() failed: %v", err)
	}
	want := []string{"WPAN", "emssim_lte_turbo", "wpan"}
	if !reflect.DeepEqual(chains, want) {
		t.Errorf("Chains() = %v, want %v", chains, want)
	}
}

func TestParameters_ScopedToChain(t *testing.T) {
	s := createTestStore(t)
	a := createTestSimulation(t, s, "a", "d1")
	b := createTestSimulation(t, s, "b", "d2")

	insertConfig(t, s, a, 0, "global", "eb_n0", "1")
	insertConfig(t, s, a, 0, "TCDec", "num_iter", "8")
	insertConfig(t, s, a, 1, "global", "eb_n0", "2")
	insertConfig(t, s, a, 1, "Channel", "model", "awgn")
	insertConfig(t, s, b, 0, "global", "other", "1")

	params, err := s.Parameters(context.Background(), "a")
	if err != nil {
		t.Fatalf("Parameters() failed: %v", err)
	}
	want := []string{"Channel.model", "TCDec.num_iter", "global.eb_n0"}
	if !reflect.DeepEqual(params, want) {
		t.Errorf("Parameters() = %v, want %v", params, want)
	}

	params, err = s.Parameters(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Parameters() failed: %v", err)
	}
	if params == nil || len(params) != 0 {
		t.Errorf("Parameters(unknown) = %v, want empty slice", params)
	}
}

func TestListSimulations_OmitsContent(t *testing.T) {
	s := createTestStore(t)
	first := createTestSimulation(t, s, "a", "d1")
	second := createTestSimulation(t, s, "b", "d2")

	sims, err := s.ListSimulations(context.Background())
	if err != nil {
		t.Fatalf("ListSimulations() failed: %v", err)
	}
	if len(sims) != 2 {
		t.Fatalf("len(sims) = %d, want 2", len(sims))
	}
	if sims[0].ID != first || sims[1].ID != second {
		t.Errorf("ids = %d, %d, want %d, %d", sims[0].ID, sims[1].ID, first, second)
	}
	if sims[0].FileContent != "" {
		t.Errorf("FileContent = %q, want empty", sims[0].FileContent)
	}
	if sims[1].Chain != "b" || sims[1].SimulationDate != "d2" {
		t.Errorf("sims[1] = %+v", sims[1])
	}
}

func TestReadSimulation_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadSimulation(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadSimulation() error = %v, want ErrNotFound", err)
	}
}

func TestReadSimulation_IncludesContent(t *testing.T) {
	s := createTestStore(t)
	id := createTestSimulation(t, s, "a", "d1")

	sim, err := s.ReadSimulation(context.Background(), id)
	if err != nil {
		t.Fatalf("ReadSimulation() failed: %v", err)
	}
	if sim.FileContent != "<simulation/>" {
		t.Errorf("FileContent = %q, want %q", sim.FileContent, "<simulation/>")
	}
	if sim.User != "tester" {
		t.Errorf("User = %q, want tester", sim.User)
	}
}

func TestReadParameters_TypedAndOrdered(t *testing.T) {
	s := createTestStore(t)
	id := createTestSimulation(t, s, "a", "d1")

	insertConfig(t, s, id, 0, "global", "eb_n0", "1.5")
	insertConfig(t, s, id, 0, "global", "mode", "fast")
	insertConfig(t, s, id, 0, "TCDec", "num_iter", "8")
	insertConfig(t, s, id, 1, "global", "eb_n0", "2")

	ref := ConfigRef{SimulationID: id, ConfigurationNumber: 0}
	params, err := s.ReadParameters(context.Background(), ref, "global", "eb_n0")
	if err != nil {
		t.Fatalf("ReadParameters() failed: %v", err)
	}
	want := []Param{
		{Module: "global", Name: "mode", Value: value.Symbol("FAST")},
		{Module: "TCDec", Name: "num_iter", Value: value.Number(8)},
	}
	if !reflect.DeepEqual(params, want) {
		t.Errorf("ReadParameters() = %+v, want %+v", params, want)
	}

	all, err := s.ReadParameters(context.Background(), ref, "", "")
	if err != nil {
		t.Fatalf("ReadParameters() failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestReadSNR(t *testing.T) {
	s := createTestStore(t)
	id := createTestSimulation(t, s, "a", "d1")
	insertConfig(t, s, id, 0, "global", "eb_n0", "3.5")

	tests := []struct {
		name  string
		block int
		param string
		want  float64
	}{
		{"declared", 0, "eb_n0", 3.5},
		{"undeclared name", 0, "es_n0", 0},
		{"undeclared block", 1, "eb_n0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ReadSNR(context.Background(), ConfigRef{SimulationID: id, ConfigurationNumber: tt.block}, "global", tt.param)
			if err != nil {
				t.Fatalf("ReadSNR() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadSNR() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadResults_FilterByAddress(t *testing.T) {
	s := createTestStore(t)
	id := createTestSimulation(t, s, "a", "d1")
	for addr, v := range []float64{0.5, 0.25, 0.125} {
		insertResult(t, s, id, 0, "Stats", "fer", addr, v)
	}
	insertResult(t, s, id, 0, "Stats", "num_blocks", -1, 100)
	insertResult(t, s, id, 1, "Stats", "fer", 0, 0.9)

	ref := ConfigRef{SimulationID: id}

	all, err := s.ReadResults(context.Background(), ref, "Stats", "fer", nil)
	if err != nil {
		t.Fatalf("ReadResults() failed: %v", err)
	}
	want := []ResultPoint{{Address: 0, Value: 0.5}, {Address: 1, Value: 0.25}, {Address: 2, Value: 0.125}}
	if !reflect.DeepEqual(all, want) {
		t.Errorf("ReadResults() = %+v, want %+v", all, want)
	}

	some, err := s.ReadResults(context.Background(), ref, "Stats", "fer", []int{2, 0})
	if err != nil {
		t.Fatalf("ReadResults() failed: %v", err)
	}
	want = []ResultPoint{{Address: 0, Value: 0.5}, {Address: 2, Value: 0.125}}
	if !reflect.DeepEqual(some, want) {
		t.Errorf("ReadResults(addrs) = %+v, want %+v", some, want)
	}

	plain, err := s.ReadResults(context.Background(), ref, "Stats", "num_blocks", nil)
	if err != nil {
		t.Fatalf("ReadResults() failed: %v", err)
	}
	want = []ResultPoint{{Address: NoAddress, Value: 100}}
	if !reflect.DeepEqual(plain, want) {
		t.Errorf("ReadResults(num_blocks) = %+v, want %+v", plain, want)
	}
}

func TestSearchConfigurations(t *testing.T) {
	s := createTestStore(t)
	a := createTestSimulation(t, s, "a", "d1")
	b := createTestSimulation(t, s, "b", "d2")
	insertConfig(t, s, a, 0, "global", "K", "10")
	insertConfig(t, s, a, 1, "global", "K", "20")
	insertConfig(t, s, b, 0, "global", "K", "10")

	query := `
		SELECT simulation_id, configuration_number FROM configuration
		WHERE module = ? AND name = ? AND value_float = ?
		ORDER BY simulation_id, configuration_number`
	refs, err := s.SearchConfigurations(context.Background(), query, []any{"global", "K", 10.0})
	if err != nil {
		t.Fatalf("SearchConfigurations() failed: %v", err)
	}
	want := []ConfigRef{{SimulationID: a, ConfigurationNumber: 0}, {SimulationID: b, ConfigurationNumber: 0}}
	if !reflect.DeepEqual(refs, want) {
		t.Errorf("SearchConfigurations() = %+v, want %+v", refs, want)
	}
}

func TestSearchConfigurations_BadQuery(t *testing.T) {
	s := createTestStore(t)

	if _, err := s.SearchConfigurations(context.Background(), "SELECT nope FROM nowhere", nil); err == nil {
		t.Error("SearchConfigurations() succeeded, want error")
	}
}

func TestCounts(t *testing.T) {
	s := createTestStore(t)
	a := createTestSimulation(t, s, "a", "d1")
	b := createTestSimulation(t, s, "b", "d2")
	insertConfig(t, s, a, 0, "global", "K", "10")
	insertConfig(t, s, b, 0, "global", "K", "10")
	insertResult(t, s, a, 0, "Stats", "fer", -1, 0.1)

	all, err := s.Counts(context.Background(), 0)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	want := map[string]int64{"simulation": 2, "configuration": 2, "result": 1}
	if !reflect.DeepEqual(all, want) {
		t.Errorf("Counts(0) = %v, want %v", all, want)
	}

	one, err := s.Counts(context.Background(), b)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	want = map[string]int64{"simulation": 1, "configuration": 1, "result": 0}
	if !reflect.DeepEqual(one, want) {
		t.Errorf("Counts(b) = %v, want %v", one, want)
	}
}
