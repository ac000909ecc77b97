package present

import (
	"fmt"

	"github.com/roach88/simdb/internal/value"
)

// Column holds one parameter's value per group, indexed by group id.
type Column []value.Value

// Mask is a per-group truth array.
type Mask []bool

// Filled returns a column of n copies of v.
func Filled(n int, v value.Value) Column {
	col := make(Column, n)
	for i := range col {
		col[i] = v
	}
	return col
}

// MaskColumn replaces col[i] with Suppressed wherever mask[i] is false.
// Positions beyond the end of mask count as false.
func MaskColumn(col Column, mask Mask) Column {
	out := make(Column, len(col))
	for i, v := range col {
		if i < len(mask) && mask[i] {
			out[i] = v
		} else {
			out[i] = value.Suppressed{}
		}
	}
	return out
}

// Or takes a[i] unless it is suppressed, in which case it takes b[i].
func Or(a, b Column) Column {
	out := make(Column, len(a))
	for i, v := range a {
		if value.IsSuppressed(v) && i < len(b) {
			out[i] = b[i]
		} else {
			out[i] = v
		}
	}
	return out
}

// Truth converts a column to a mask: a value is true unless it is
// suppressed or the symbol FALSE.
func Truth(col Column) Mask {
	out := make(Mask, len(col))
	for i, v := range col {
		out[i] = !value.IsSuppressed(v)
	}
	return out
}

// Not complements a mask.
func Not(m Mask) Mask {
	out := make(Mask, len(m))
	for i, b := range m {
		out[i] = !b
	}
	return out
}

// And combines two masks element-wise. Positions missing from b are false.
func And(a, b Mask) Mask {
	out := make(Mask, len(a))
	for i, x := range a {
		out[i] = x && i < len(b) && b[i]
	}
	return out
}

// AnyOf combines two masks element-wise with logical or.
func AnyOf(a, b Mask) Mask {
	out := make(Mask, len(a))
	for i, x := range a {
		out[i] = x || (i < len(b) && b[i])
	}
	return out
}

// EqualTo is true where the value's human form equals constant, compared
// case-insensitively.
func EqualTo(col Column, constant string) Mask {
	want := value.Normalize(constant)
	out := make(Mask, len(col))
	for i, v := range col {
		out[i] = v.String() == want
	}
	return out
}

// EqualColumns is true where a[i] and b[i] have the same human form.
func EqualColumns(a, b Column) Mask {
	out := make(Mask, len(a))
	for i, v := range a {
		if i >= len(b) {
			break
		}
		out[i] = v.String() == value.Normalize(b[i].String())
	}
	return out
}

// EqualOrDefault is EqualTo, additionally true where the group uses the
// parameter's default.
func EqualOrDefault(col Column, constant string) Mask {
	out := EqualTo(col, constant)
	for i, v := range col {
		if _, ok := v.(value.Default); ok {
			out[i] = true
		}
	}
	return out
}

// Replace maps values through table, keyed by human form. Unmapped values
// pass through unchanged; a mapping to "FALSE" suppresses the value.
func Replace(col Column, table map[string]string) Column {
	out := make(Column, len(col))
	for i, v := range col {
		repl, ok := table[v.String()]
		switch {
		case !ok:
			out[i] = v
		case repl == string(value.SymbolFalse):
			out[i] = value.Suppressed{}
		default:
			out[i] = value.Symbol(repl)
		}
	}
	return out
}

// FormatFloat formats every numeric value with a printf float verb such as
// "%1.2f". Non-numeric values become Suppressed.
func FormatFloat(col Column, pattern string) Column {
	out := make(Column, len(col))
	for i, v := range col {
		f, ok := numeric(v)
		if !ok {
			out[i] = value.Suppressed{}
			continue
		}
		out[i] = value.Symbol(fmt.Sprintf(pattern, f))
	}
	return out
}

// Add sums two columns element-wise. A position where either operand is not
// numeric becomes Suppressed.
func Add(a, b Column) Column {
	return arith(a, b, func(x, y float64) (float64, bool) { return x + y, true })
}

// Div divides a by b element-wise. Division by zero and non-numeric operands
// give Suppressed.
func Div(a, b Column) Column {
	return arith(a, b, func(x, y float64) (float64, bool) {
		if y == 0 {
			return 0, false
		}
		return x / y, true
	})
}

func arith(a, b Column, op func(x, y float64) (float64, bool)) Column {
	out := make(Column, len(a))
	for i := range a {
		out[i] = value.Suppressed{}
		if i >= len(b) {
			continue
		}
		x, okx := numeric(a[i])
		y, oky := numeric(b[i])
		if !okx || !oky {
			continue
		}
		if r, ok := op(x, y); ok {
			out[i] = value.Number(r)
		}
	}
	return out
}

// numeric is value.Float restricted to values that are not suppressed.
func numeric(v value.Value) (float64, bool) {
	if value.IsSuppressed(v) {
		return 0, false
	}
	return value.Float(v)
}

// allIdentical reports whether every value equals the first.
func allIdentical(col Column) bool {
	if len(col) == 0 {
		return true
	}
	for _, v := range col[1:] {
		if !value.Equal(v, col[0]) {
			return false
		}
	}
	return true
}
