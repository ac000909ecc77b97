// Package aggregate answers figure queries: it searches the store for
// matching configuration blocks, groups them into parameter-equivalence
// groups and labels the resulting series.
//
// # Grouping
//
// Blocks are processed in search order. A block joins the lowest-numbered
// existing group whose recorded value equals the block's own value for every
// parameter the block declares; the SNR parameter is never compared. A block
// declaring a parameter no earlier block declared always starts a new group.
// Every parameter column is padded with value.Default so it has exactly one
// entry per group.
//
// Within a group, points are kept in ascending SNR order. A point whose SNR
// equals an existing one goes after it.
//
// # Functions
//
// Result functions are held in a Registry. A Function names the module and
// port reporting its values either literally or by role: RoleError resolves
// to the chain's error-rate module and RoleIteration to its iteration module
// or port. A chain without an iteration module cannot answer iteration
// functions; Engine.Run reports a *ConfigError.
//
// # Purity
//
// Aggregate returns a fresh Result and has no other effect. Engine.Run logs
// the result's warnings and turns it into a Figure.
package aggregate
