// Package ingest flattens simulator result documents into store rows.
//
// For every document one simulation row is written, then one configuration
// row per parameter occurrence per configuration block and one result row
// per reported value. Configuration and result blocks are numbered
// independently, from 0, in document order.
//
// Parameters are never stored when
//   - the chain's static blacklist lists them, or
//   - the initial configuration forwards their value from a global
//     variable (the auto-blacklist), or
//   - the same module.name was already stored for the block.
//
// A document that cannot be parsed is skipped; IngestFiles carries on with
// the next one. Missing metadata is stored empty and logged.
package ingest
