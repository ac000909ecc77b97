package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/simdb/internal/store"
	"github.com/roach88/simdb/internal/value"
)

// OpenStore opens a file-backed store in a temporary directory and closes
// it when the test ends.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "simdb.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Seeder writes rows straight into a store, bypassing ingestion.
type Seeder struct {
	t testing.TB
	s *store.Store
}

// Seed returns a Seeder for s.
func Seed(t testing.TB, s *store.Store) *Seeder {
	return &Seeder{t: t, s: s}
}

// Simulation inserts a simulation row and returns its id.
func (sd *Seeder) Simulation(chain, date string) int64 {
	sd.t.Helper()
	id, err := sd.s.Writer().InsertSimulation(context.Background(), store.Simulation{
		FileName:       chain + ".xml",
		InsertDate:     DefaultTime.Format("Mon Jan _2 15:04:05 2006"),
		SimulationDate: date,
		User:           "tester",
		Chain:          chain,
		Standard:       "none",
	})
	if err != nil {
		sd.t.Fatalf("InsertSimulation() failed: %v", err)
	}
	return id
}

// Config inserts a configuration binding, classifying text the way
// ingestion does.
func (sd *Seeder) Config(simID int64, block int, module, name, text string) *Seeder {
	sd.t.Helper()
	err := sd.s.Writer().InsertConfigEntry(context.Background(), store.ConfigEntry{
		SimulationID:        simID,
		ConfigurationNumber: block,
		Module:              module,
		Name:                name,
		Value:               value.Coerce(text),
	})
	if err != nil {
		sd.t.Fatalf("InsertConfigEntry(%s.%s) failed: %v", module, name, err)
	}
	return sd
}

// Result inserts a result value. addr < 0 inserts it without inner
// dimension.
func (sd *Seeder) Result(simID int64, block int, module, port string, addr int, v float64) *Seeder {
	sd.t.Helper()
	row := store.ResultRow{
		SimulationID:        simID,
		ConfigurationNumber: block,
		Module:              module,
		Port:                port,
		Value:               v,
	}
	if addr >= 0 {
		row.DimName = "iteration"
		row.DimAddr = addr
	}
	if err := sd.s.Writer().InsertResult(context.Background(), row); err != nil {
		sd.t.Fatalf("InsertResult(%s.%s) failed: %v", module, port, err)
	}
	return sd
}
