// Package store provides SQLite-backed storage for simulation results.
//
// The schema has exactly three tables:
//   - simulation: one row per ingested result document
//   - configuration: one (module, name) -> value binding per configuration block
//   - result: one reported value per module/port, optionally tagged with an
//     inner dimension such as the iteration index
//
// The store holds no business logic. Classification of values, blacklists and
// grouping live in the ingest and aggregate packages.
//
// # Critical Patterns
//
// Single connection:
//   - SetMaxOpenConns(1); the tool is a single-process batch program
//   - Writes that belong to one document go through WithTx so the simulation
//     row and its configuration/result rows commit together
//
// Deterministic reads:
//   - Every read carries an ORDER BY so aggregation is reproducible
//
// Parameterized SQL:
//   - Values are always bound with ? placeholders, never interpolated
//
// # Database Configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//
// Indices on simulation(chain), simulation(standard) and the
// (simulation_id) / (simulation_id, configuration_number) pairs of the
// configuration and result tables are created by the v1 migration, which
// also upgrades databases created without them.
package store
