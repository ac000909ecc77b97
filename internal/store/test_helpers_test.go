package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/simdb/internal/value"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSimulation inserts a simulation row with minimal fields.
func createTestSimulation(t *testing.T, s *Store, chain, date string) int64 {
	t.Helper()
	id, err := s.Writer().InsertSimulation(context.Background(), Simulation{
		FileName:       chain + ".xml",
		FileContent:    "<simulation/>",
		InsertDate:     "Mon Jan  2 15:04:05 2006",
		SimulationDate: date,
		User:           "tester",
		Chain:          chain,
		Standard:       "none",
	})
	if err != nil {
		t.Fatalf("InsertSimulation() failed: %v", err)
	}
	return id
}

// insertConfig writes one configuration binding, classifying text the way
// ingestion does.
func insertConfig(t *testing.T, s *Store, simID int64, block int, module, name, text string) {
	t.Helper()
	err := s.Writer().InsertConfigEntry(context.Background(), ConfigEntry{
		SimulationID:        simID,
		ConfigurationNumber: block,
		Module:              module,
		Name:                name,
		Value:               value.Coerce(text),
	})
	if err != nil {
		t.Fatalf("InsertConfigEntry(%s.%s) failed: %v", module, name, err)
	}
}

// insertResult writes one result row. addr < 0 writes a dimension-less row.
func insertResult(t *testing.T, s *Store, simID int64, block int, module, port string, addr int, v float64) {
	t.Helper()
	row := ResultRow{
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
	if err := s.Writer().InsertResult(context.Background(), row); err != nil {
		t.Fatalf("InsertResult(%s.%s) failed: %v", module, port, err)
	}
}
