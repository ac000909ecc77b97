// Package present turns grouped parameter columns into a figure title and
// per-series legends.
//
// A Column holds one value per group. Combinators (MaskColumn, Or, Replace,
// FormatFloat, Add, Div) derive new columns; predicates (Truth, EqualTo,
// EqualColumns, EqualOrDefault) derive Masks. The Labeler collects the
// result: a column that is identical across groups becomes one title
// fragment, anything else is split into the groups' legends.
//
// Chain-specific presentation is an ordered list of Adjusters. The turbo
// decoder chains have a built-in adjuster; other chains may declare
// erase/append steps in the chain configuration.
package present
