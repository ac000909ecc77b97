// Package value classifies and types simulation parameter values.
//
// The simulator writes every parameter as text. Before storage each value is
// classified as numeric or symbolic (see Classify); symbolic values are
// upper-cased so that matching is case-insensitive. When values are read back
// for grouping they become members of the sealed Value union, which also
// carries the Default and Suppressed markers used by the aggregation and
// presentation layers instead of magic strings.
//
// This package imports nothing internal.
package value
