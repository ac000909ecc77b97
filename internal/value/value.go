package value

import (
	"math"
	"strconv"
)

// Value is a sealed interface over the values a configuration parameter can
// take once it has been read back from the store.
//
// Only Number, Symbol, Default and Suppressed implement it:
//   - Number: value stored in configuration.value_float
//   - Symbol: value stored in configuration.value_string (upper-cased)
//   - Default: the parameter was never persisted for this group, i.e. the
//     simulator used its compiled-in default
//   - Suppressed: a presentation mask removed the value
type Value interface {
	value() // Sealed - only these types implement it

	// String returns the human-readable form used for grouping and labels.
	String() string
}

// Number is a numeric parameter value.
type Number float64

func (Number) value() {}

// String trims integral values to their integer form ("10", not "10.0").
func (n Number) String() string {
	f := float64(n)
	if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Symbol is a symbolic (non-numeric) parameter value.
type Symbol string

func (Symbol) value() {}

func (s Symbol) String() string { return string(s) }

// Default marks a parameter that is absent for a group.
type Default struct{}

func (Default) value() {}

func (Default) String() string { return "DEFAULT" }

// Suppressed marks a value that a presentation mask has removed.
type Suppressed struct{}

func (Suppressed) value() {}

func (Suppressed) String() string { return "FALSE" }

// Boolean symbols as the simulator writes them after upper-casing.
const (
	SymbolTrue  Symbol = "TRUE"
	SymbolFalse Symbol = "FALSE"
)

// Equal reports whether two values are the same variant with the same content.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Symbol:
		bv, ok := b.(Symbol)
		return ok && av == bv
	case Default:
		_, ok := b.(Default)
		return ok
	case Suppressed:
		_, ok := b.(Suppressed)
		return ok
	default:
		return false
	}
}

// IsSuppressed reports whether v renders as nothing: either a masked value
// or the symbolic FALSE the simulator writes for disabled flags.
func IsSuppressed(v Value) bool {
	switch val := v.(type) {
	case Suppressed:
		return true
	case Symbol:
		return val == SymbolFalse
	default:
		return false
	}
}

// Float returns the numeric content of v. Symbols are parsed, so a value
// stored as text but spelled as a number still participates in arithmetic.
func Float(v Value) (float64, bool) {
	switch val := v.(type) {
	case Number:
		return float64(val), true
	case Symbol:
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
