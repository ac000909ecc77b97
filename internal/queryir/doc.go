// Package queryir is the intermediate representation of configuration
// searches.
//
// A Search names a chain and a list of Terms, each binding a Constraint to
// a "module.name" parameter. Constraints are parsed from the textual
// grammar users type (see Parse) and compiled to SQL by package querysql.
//
// SEALED INTERFACES:
//
// Constraint is a sealed interface using the marker method pattern. Only
// types in this package implement it, so the compiler's type switch is
// exhaustive:
//
//	switch c := term.Constraint.(type) {
//	case Equal, NotEqual, Less, Greater, In:
//	    // INTERSECT sub-query
//	case Default:
//	    // attached to the base existence check
//	}
//
// VALUE CLASSES:
//
// Operands are typed with package value. A Number operand compares against
// configuration.value_float, a Symbol operand against value_string. List
// operands take the class of their first element.
package queryir
