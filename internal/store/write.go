package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/simdb/internal/value"
)

// Writer performs inserts, either directly on the connection (Store.Writer)
// or inside a transaction (Store.WithTx).
type Writer struct {
	q querier
}

// InsertSimulation inserts a simulation row and returns the id the driver
// reports for it. The ID field of sim is ignored.
func (w *Writer) InsertSimulation(ctx context.Context, sim Simulation) (int64, error) {
	result, err := w.q.ExecContext(ctx, `
		INSERT INTO simulation
		(file_name, file_content, insert_date, simulation_date, user, chain, standard, free_comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sim.FileName,
		sim.FileContent,
		sim.InsertDate,
		sim.SimulationDate,
		sim.User,
		sim.Chain,
		sim.Standard,
		sim.FreeComment,
	)
	if err != nil {
		return 0, fmt.Errorf("insert simulation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert simulation: last insert id: %w", err)
	}
	return id, nil
}

// LookupSimulationID returns the id of the simulation with the given chain
// and simulation date. When several rows match, the most recently inserted
// one wins. Returns 0 if nothing matches.
func (w *Writer) LookupSimulationID(ctx context.Context, chain, simulationDate string) (int64, error) {
	var id int64
	err := w.q.QueryRowContext(ctx, `
		SELECT id FROM simulation
		WHERE chain = ? AND simulation_date = ?
		ORDER BY id DESC
		LIMIT 1
	`, chain, simulationDate).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lookup simulation id: %w", err)
	}
	return id, nil
}

// InsertConfigEntry inserts one configuration binding. Numbers are written
// to value_float and symbols to value_string.
func (w *Writer) InsertConfigEntry(ctx context.Context, e ConfigEntry) error {
	var floatVal sql.NullFloat64
	var stringVal sql.NullString

	switch v := e.Value.(type) {
	case value.Number:
		floatVal = sql.NullFloat64{Float64: float64(v), Valid: true}
	case value.Symbol:
		stringVal = sql.NullString{String: string(v), Valid: true}
	default:
		return fmt.Errorf("insert config entry %s.%s: unsupported value %T", e.Module, e.Name, e.Value)
	}

	_, err := w.q.ExecContext(ctx, `
		INSERT INTO configuration
		(module, name, value_float, value_string, simulation_id, configuration_number)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.Module,
		e.Name,
		floatVal,
		stringVal,
		e.SimulationID,
		e.ConfigurationNumber,
	)
	if err != nil {
		return fmt.Errorf("insert config entry %s.%s: %w", e.Module, e.Name, err)
	}
	return nil
}

// InsertResult inserts one result value. Rows without an inner dimension
// leave inner_dim1_name and inner_dim1_addr NULL.
func (w *Writer) InsertResult(ctx context.Context, r ResultRow) error {
	var dimName sql.NullString
	var dimAddr sql.NullInt64
	if r.HasDim() {
		dimName = sql.NullString{String: r.DimName, Valid: true}
		dimAddr = sql.NullInt64{Int64: int64(r.DimAddr), Valid: true}
	}

	_, err := w.q.ExecContext(ctx, `
		INSERT INTO result
		(module_name, port_name, inner_dim1_name, inner_dim1_addr, value, configuration_number, simulation_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.Module,
		r.Port,
		dimName,
		dimAddr,
		r.Value,
		r.ConfigurationNumber,
		r.SimulationID,
	)
	if err != nil {
		return fmt.Errorf("insert result %s.%s: %w", r.Module, r.Port, err)
	}
	return nil
}

// DeleteSimulation removes a simulation and all its configuration and result
// rows in one transaction. Returns the number of rows removed per table.
func (s *Store) DeleteSimulation(ctx context.Context, id int64) (map[string]int64, error) {
	removed := make(map[string]int64, len(Tables))

	err := s.WithTx(ctx, func(w *Writer) error {
		for _, table := range Tables {
			column := "simulation_id"
			if table == "simulation" {
				column = "id"
			}
			result, err := w.q.ExecContext(ctx,
				fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, column), id)
			if err != nil {
				return fmt.Errorf("delete from %s: %w", table, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("delete from %s: rows affected: %w", table, err)
			}
			removed[table] = n
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete simulation %d: %w", id, err)
	}

	return removed, nil
}
