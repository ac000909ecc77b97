package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/simdb/internal/value"
)

// ErrNotFound is returned when a requested simulation does not exist.
var ErrNotFound = errors.New("not found")

// Chains returns the distinct chain names present in the store, sorted.
//
// Returns an empty slice (not nil) for an empty store.
func (s *Store) Chains(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT chain FROM simulation
		ORDER BY chain COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query chains: %w", err)
	}
	defer rows.Close()

	chains := []string{}
	for rows.Next() {
		var chain sql.NullString
		if err := rows.Scan(&chain); err != nil {
			return nil, fmt.Errorf("scan chain: %w", err)
		}
		chains = append(chains, chain.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chains: %w", err)
	}
	return chains, nil
}

// Parameters returns the distinct "module.name" parameters declared by any
// simulation of the given chain, sorted by module then name.
func (s *Store) Parameters(ctx context.Context, chain string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT module, name FROM configuration AS c
		WHERE EXISTS (SELECT id FROM simulation WHERE id = c.simulation_id AND chain = ?)
		ORDER BY module COLLATE BINARY ASC, name COLLATE BINARY ASC
	`, chain)
	if err != nil {
		return nil, fmt.Errorf("query parameters: %w", err)
	}
	defer rows.Close()

	params := []string{}
	for rows.Next() {
		var module, name string
		if err := rows.Scan(&module, &name); err != nil {
			return nil, fmt.Errorf("scan parameter: %w", err)
		}
		params = append(params, module+"."+name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parameters: %w", err)
	}
	return params, nil
}

// ListSimulations returns every simulation ordered by id. FileContent is
// left empty; use ReadSimulation for the raw document.
func (s *Store) ListSimulations(ctx context.Context) ([]Simulation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, insert_date, simulation_date, user, chain, standard, free_comment
		FROM simulation
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query simulations: %w", err)
	}
	defer rows.Close()

	sims := []Simulation{}
	for rows.Next() {
		var sim Simulation
		var fileName, insertDate, simDate, user, chain, standard, comment sql.NullString
		if err := rows.Scan(&sim.ID, &fileName, &insertDate, &simDate, &user, &chain, &standard, &comment); err != nil {
			return nil, fmt.Errorf("scan simulation: %w", err)
		}
		sim.FileName = fileName.String
		sim.InsertDate = insertDate.String
		sim.SimulationDate = simDate.String
		sim.User = user.String
		sim.Chain = chain.String
		sim.Standard = standard.String
		sim.FreeComment = comment.String
		sims = append(sims, sim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulations: %w", err)
	}
	return sims, nil
}

// ReadSimulation returns one simulation including its raw file content.
// Returns ErrNotFound if the id does not exist.
func (s *Store) ReadSimulation(ctx context.Context, id int64) (Simulation, error) {
	var sim Simulation
	var fileName, content, insertDate, simDate, user, chain, standard, comment sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, file_name, file_content, insert_date, simulation_date, user, chain, standard, free_comment
		FROM simulation
		WHERE id = ?
	`, id).Scan(&sim.ID, &fileName, &content, &insertDate, &simDate, &user, &chain, &standard, &comment)
	if err == sql.ErrNoRows {
		return Simulation{}, fmt.Errorf("simulation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Simulation{}, fmt.Errorf("read simulation %d: %w", id, err)
	}
	sim.FileName = fileName.String
	sim.FileContent = content.String
	sim.InsertDate = insertDate.String
	sim.SimulationDate = simDate.String
	sim.User = user.String
	sim.Chain = chain.String
	sim.Standard = standard.String
	sim.FreeComment = comment.String
	return sim, nil
}

// ReadParameters returns the configuration bindings of one block in
// insertion order, leaving out the binding excludeModule.excludeName.
func (s *Store) ReadParameters(ctx context.Context, ref ConfigRef, excludeModule, excludeName string) ([]Param, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT module, name, value_float, value_string
		FROM configuration
		WHERE simulation_id = ? AND configuration_number = ?
		  AND NOT (module = ? AND name = ?)
		ORDER BY id ASC
	`, ref.SimulationID, ref.ConfigurationNumber, excludeModule, excludeName)
	if err != nil {
		return nil, fmt.Errorf("query parameters of %d/%d: %w", ref.SimulationID, ref.ConfigurationNumber, err)
	}
	defer rows.Close()

	params := []Param{}
	for rows.Next() {
		var p Param
		var f sql.NullFloat64
		var str sql.NullString
		if err := rows.Scan(&p.Module, &p.Name, &f, &str); err != nil {
			return nil, fmt.Errorf("scan parameter: %w", err)
		}
		if f.Valid {
			p.Value = value.Number(f.Float64)
		} else {
			p.Value = value.Symbol(str.String)
		}
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parameters: %w", err)
	}
	return params, nil
}

// ReadSNR returns the numeric value of module.name in one block, or 0 when
// the block does not declare it. When several rows match the last one wins.
func (s *Store) ReadSNR(ctx context.Context, ref ConfigRef, module, name string) (float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value_float
		FROM configuration
		WHERE simulation_id = ? AND configuration_number = ? AND module = ? AND name = ?
		ORDER BY id ASC
	`, ref.SimulationID, ref.ConfigurationNumber, module, name)
	if err != nil {
		return 0, fmt.Errorf("query snr of %d/%d: %w", ref.SimulationID, ref.ConfigurationNumber, err)
	}
	defer rows.Close()

	var snr float64
	for rows.Next() {
		var f sql.NullFloat64
		if err := rows.Scan(&f); err != nil {
			return 0, fmt.Errorf("scan snr: %w", err)
		}
		snr = f.Float64
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate snr: %w", err)
	}
	return snr, nil
}

// ReadResults returns the values reported by module/port in one block in
// insertion order. When addrs is non-empty only values whose address is in
// addrs are returned. Values without an inner dimension carry Address
// NoAddress.
func (s *Store) ReadResults(ctx context.Context, ref ConfigRef, module, port string, addrs []int) ([]ResultPoint, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT inner_dim1_addr, value
		FROM result
		WHERE simulation_id = ? AND configuration_number = ? AND module_name = ? AND port_name = ?`)
	args := []any{ref.SimulationID, ref.ConfigurationNumber, module, port}

	if len(addrs) > 0 {
		b.WriteString(" AND inner_dim1_addr IN (")
		for i, addr := range addrs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, addr)
		}
		b.WriteString(")")
	}
	b.WriteString(" ORDER BY id ASC")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query results of %d/%d: %w", ref.SimulationID, ref.ConfigurationNumber, err)
	}
	defer rows.Close()

	points := []ResultPoint{}
	for rows.Next() {
		var addr sql.NullInt64
		var v sql.NullFloat64
		if err := rows.Scan(&addr, &v); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		p := ResultPoint{Address: NoAddress, Value: v.Float64}
		if addr.Valid {
			p.Address = int(addr.Int64)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return points, nil
}

// SearchConfigurations runs a compiled search query and returns the matching
// configuration blocks in the order the query yields them. The query must
// select (simulation_id, configuration_number).
func (s *Store) SearchConfigurations(ctx context.Context, query string, args []any) ([]ConfigRef, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search configurations: %w", err)
	}
	defer rows.Close()

	refs := []ConfigRef{}
	for rows.Next() {
		var ref ConfigRef
		if err := rows.Scan(&ref.SimulationID, &ref.ConfigurationNumber); err != nil {
			return nil, fmt.Errorf("scan configuration ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate configuration refs: %w", err)
	}
	return refs, nil
}

// Counts returns the number of rows per table, optionally restricted to one
// simulation when simulationID is non-zero.
func (s *Store) Counts(ctx context.Context, simulationID int64) (map[string]int64, error) {
	counts := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		var args []any
		if simulationID != 0 {
			column := "simulation_id"
			if table == "simulation" {
				column = "id"
			}
			query += fmt.Sprintf(" WHERE %s = ?", column)
			args = append(args, simulationID)
		}

		var n int64
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
