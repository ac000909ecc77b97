package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/roach88/simdb/internal/value"
)

func TestInsertSimulation_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sim := Simulation{
		FileName:       "run.xml",
		FileContent:    "<simulation/>",
		InsertDate:     "Mon Jan  2 15:04:05 2006",
		SimulationDate: "2009-04-01 10:00:00",
		User:           "alice",
		Chain:          "emssim_lte_turbo",
		Standard:       "LTE",
		FreeComment:    "baseline",
	}
	id, err := s.Writer().InsertSimulation(ctx, sim)
	if err != nil {
		t.Fatalf("InsertSimulation() failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("id = %d, want > 0", id)
	}

	got, err := s.ReadSimulation(ctx, id)
	if err != nil {
		t.Fatalf("ReadSimulation() failed: %v", err)
	}
	sim.ID = id
	if got != sim {
		t.Errorf("ReadSimulation() = %+v, want %+v", got, sim)
	}
}

func TestInsertSimulation_AssignsUniqueIDs(t *testing.T) {
	s := createTestStore(t)

	id1 := createTestSimulation(t, s, "chain", "d1")
	id2 := createTestSimulation(t, s, "chain", "d2")
	if id1 == id2 {
		t.Errorf("ids not unique: %d == %d", id1, id2)
	}
}

func TestLookupSimulationID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id1 := createTestSimulation(t, s, "chain", "2009-04-01")
	createTestSimulation(t, s, "other", "2009-04-01")

	got, err := s.Writer().LookupSimulationID(ctx, "chain", "2009-04-01")
	if err != nil {
		t.Fatalf("LookupSimulationID() failed: %v", err)
	}
	if got != id1 {
		t.Errorf("LookupSimulationID() = %d, want %d", got, id1)
	}
}

func TestLookupSimulationID_NoMatchReturnsZero(t *testing.T) {
	s := createTestStore(t)

	got, err := s.Writer().LookupSimulationID(context.Background(), "missing", "")
	if err != nil {
		t.Fatalf("LookupSimulationID() failed: %v", err)
	}
	if got != 0 {
		t.Errorf("LookupSimulationID() = %d, want 0", got)
	}
}

func TestLookupSimulationID_DuplicateTimestampPicksLatest(t *testing.T) {
	s := createTestStore(t)

	createTestSimulation(t, s, "chain", "same")
	id2 := createTestSimulation(t, s, "chain", "same")

	got, err := s.Writer().LookupSimulationID(context.Background(), "chain", "same")
	if err != nil {
		t.Fatalf("LookupSimulationID() failed: %v", err)
	}
	if got != id2 {
		t.Errorf("LookupSimulationID() = %d, want latest %d", got, id2)
	}
}

func TestInsertConfigEntry_SplitsColumnsByClass(t *testing.T) {
	s := createTestStore(t)
	simID := createTestSimulation(t, s, "chain", "d")

	insertConfig(t, s, simID, 0, "global", "eb_n0", "2.5")
	insertConfig(t, s, simID, 0, "global", "poly", "0x0B")

	rows, err := s.db.Query(`
		SELECT name, value_float, value_string FROM configuration ORDER BY id
	`)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	type row struct {
		name string
		f    sql.NullFloat64
		str  sql.NullString
	}
	var got []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.name, &r.f, &r.str); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		got = append(got, r)
	}

	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if !got[0].f.Valid || got[0].f.Float64 != 2.5 || got[0].str.Valid {
		t.Errorf("eb_n0 row = %+v, want value_float 2.5 only", got[0])
	}
	if got[1].f.Valid || !got[1].str.Valid || got[1].str.String != "0X0B" {
		t.Errorf("poly row = %+v, want value_string 0X0B only", got[1])
	}
}

func TestInsertConfigEntry_RejectsMarkers(t *testing.T) {
	s := createTestStore(t)

	err := s.Writer().InsertConfigEntry(context.Background(), ConfigEntry{
		Module: "global",
		Name:   "x",
		Value:  value.Default{},
	})
	if err == nil {
		t.Error("InsertConfigEntry() with Default value should fail")
	}
}

func TestInsertResult_NullDimension(t *testing.T) {
	s := createTestStore(t)
	simID := createTestSimulation(t, s, "chain", "d")

	insertResult(t, s, simID, 0, "Statistics_Error_Rates", "error_rate_blocks", -1, 0.25)

	var name sql.NullString
	var addr sql.NullInt64
	err := s.db.QueryRow(`SELECT inner_dim1_name, inner_dim1_addr FROM result`).Scan(&name, &addr)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if name.Valid || addr.Valid {
		t.Errorf("dimension = (%v, %v), want NULL, NULL", name, addr)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(w *Writer) error {
		if _, err := w.InsertSimulation(ctx, Simulation{Chain: "chain"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}

	counts, err := s.Counts(ctx, 0)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	if counts["simulation"] != 0 {
		t.Errorf("simulation count = %d, want 0 after rollback", counts["simulation"])
	}
}

func TestWithTx_Commits(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var simID int64
	err := s.WithTx(ctx, func(w *Writer) error {
		id, err := w.InsertSimulation(ctx, Simulation{Chain: "chain", SimulationDate: "d"})
		if err != nil {
			return err
		}
		simID, err = w.LookupSimulationID(ctx, "chain", "d")
		if err != nil {
			return err
		}
		if simID != id {
			t.Errorf("lookup inside tx = %d, want %d", simID, id)
		}
		return w.InsertConfigEntry(ctx, ConfigEntry{
			SimulationID: simID,
			Module:       "global",
			Name:         "k",
			Value:        value.Number(10),
		})
	})
	if err != nil {
		t.Fatalf("WithTx() failed: %v", err)
	}

	counts, err := s.Counts(ctx, simID)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	if counts["simulation"] != 1 || counts["configuration"] != 1 {
		t.Errorf("counts = %v, want 1 simulation and 1 configuration", counts)
	}
}

func TestDeleteSimulation_RemovesAllRows(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	keep := createTestSimulation(t, s, "chain", "keep")
	drop := createTestSimulation(t, s, "chain", "drop")
	for _, id := range []int64{keep, drop} {
		insertConfig(t, s, id, 0, "global", "eb_n0", "1")
		insertConfig(t, s, id, 0, "global", "k", "10")
		insertResult(t, s, id, 0, "Statistics_Error_Rates", "error_rate_blocks", 0, 0.5)
	}

	removed, err := s.DeleteSimulation(ctx, drop)
	if err != nil {
		t.Fatalf("DeleteSimulation() failed: %v", err)
	}
	want := map[string]int64{"simulation": 1, "configuration": 2, "result": 1}
	for table, n := range want {
		if removed[table] != n {
			t.Errorf("removed[%s] = %d, want %d", table, removed[table], n)
		}
	}

	counts, err := s.Counts(ctx, drop)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	for table, n := range counts {
		if n != 0 {
			t.Errorf("%s still has %d rows for deleted simulation", table, n)
		}
	}

	counts, err = s.Counts(ctx, keep)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	if counts["configuration"] != 2 || counts["result"] != 1 {
		t.Errorf("kept simulation counts = %v", counts)
	}
}

func TestDeleteSimulation_Unknown(t *testing.T) {
	s := createTestStore(t)

	removed, err := s.DeleteSimulation(context.Background(), 42)
	if err != nil {
		t.Fatalf("DeleteSimulation() failed: %v", err)
	}
	for table, n := range removed {
		if n != 0 {
			t.Errorf("removed[%s] = %d, want 0", table, n)
		}
	}
}
