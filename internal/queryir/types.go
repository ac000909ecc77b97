package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/simdb/internal/value"
)

// Param names a configuration parameter by module and name.
type Param struct {
	Module string
	Name   string
}

// String returns the "module.name" form.
func (p Param) String() string {
	return p.Module + "." + p.Name
}

// Constraint restricts the value of one parameter.
//
// This is a sealed interface - only types in this package implement it,
// so compilers can switch over it exhaustively.
//
// Constraint types:
//   - Equal: value equals operand
//   - NotEqual: value differs from operand
//   - Less, Greater: numeric comparison
//   - In: value is one of a set
//   - Default: parameter absent, optionally or present with an allowed value
type Constraint interface {
	constraintNode() // Marker method - seals interface to this package

	// String returns the constraint in the textual grammar Parse accepts.
	String() string
}

// Equal matches blocks whose parameter equals Value.
type Equal struct {
	Value value.Value // Number or Symbol
}

func (Equal) constraintNode() {}

func (c Equal) String() string { return c.Value.String() }

// NotEqual matches blocks that declare the parameter with a value other
// than Value. Blocks that do not declare it do not match.
type NotEqual struct {
	Value value.Value // Number or Symbol
}

func (NotEqual) constraintNode() {}

func (c NotEqual) String() string { return "<>" + c.Value.String() }

// Less matches blocks whose numeric parameter is below Bound.
type Less struct {
	Bound float64
}

func (Less) constraintNode() {}

func (c Less) String() string { return "<" + value.Number(c.Bound).String() }

// Greater matches blocks whose numeric parameter is above Bound.
type Greater struct {
	Bound float64
}

func (Greater) constraintNode() {}

func (c Greater) String() string { return ">" + value.Number(c.Bound).String() }

// In matches blocks whose parameter is one of Values. All values share the
// storage class of the first one.
type In struct {
	Values []value.Value
}

func (In) constraintNode() {}

func (c In) String() string { return "(" + joinValues(c.Values) + ")" }

// Default matches blocks that do not declare the parameter, meaning the
// simulator used its compiled-in default. When Allowed is non-empty, blocks
// declaring the parameter with one of Allowed match as well.
type Default struct {
	Allowed []value.Value
}

func (Default) constraintNode() {}

func (c Default) String() string {
	if len(c.Allowed) == 0 {
		return "!"
	}
	return "(!," + joinValues(c.Allowed) + ")"
}

// Class returns the storage class a constraint's operands are compared in.
// Less and Greater always compare numerically.
func Class(c Constraint) value.Class {
	switch con := c.(type) {
	case Equal:
		return classOf(con.Value)
	case NotEqual:
		return classOf(con.Value)
	case In:
		if len(con.Values) > 0 {
			return classOf(con.Values[0])
		}
	case Default:
		if len(con.Allowed) > 0 {
			return classOf(con.Allowed[0])
		}
	case Less, Greater:
		return value.ClassNumber
	}
	return value.ClassSymbol
}

func classOf(v value.Value) value.Class {
	if _, ok := v.(value.Number); ok {
		return value.ClassNumber
	}
	return value.ClassSymbol
}

// Term binds a constraint to a parameter.
type Term struct {
	Param      Param
	Constraint Constraint
}

// String returns "module.name=constraint".
func (t Term) String() string {
	return fmt.Sprintf("%s=%s", t.Param, t.Constraint)
}

// Search selects the configuration blocks of one chain that satisfy every
// term. A search without terms selects every block of the chain.
type Search struct {
	Chain string
	Terms []Term
}

func joinValues(vals []value.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}
