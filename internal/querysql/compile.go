package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/simdb/internal/queryir"
	"github.com/roach88/simdb/internal/value"
)

// SQLCompiler compiles configuration searches to parameterized SQL for
// SQLite.
//
// The compiled query selects (simulation_id, configuration_number) pairs:
// a base set of blocks belonging to the chain, narrowed by every Default
// term attached to the base existence check, then intersected with one
// sub-query per remaining term.
//
// CRITICAL: the query ends with ORDER BY so results are deterministic.
// CRITICAL: all values are parameterized, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

const (
	baseSelect = "SELECT DISTINCT c.simulation_id, c.configuration_number FROM configuration AS c" +
		" WHERE EXISTS (SELECT id FROM simulation WHERE id = c.simulation_id AND chain = ?)"

	sameBlock = "SELECT id FROM configuration" +
		" WHERE simulation_id = c.simulation_id AND configuration_number = c.configuration_number" +
		" AND module = ? AND name = ?"

	intersectSelect = " INTERSECT SELECT simulation_id, configuration_number FROM configuration" +
		" WHERE module = ? AND name = ? AND "

	orderBy = " ORDER BY 1 ASC, 2 ASC"
)

// Compile converts a search to SQL. Returns (sql, params, error).
//
// Default terms are compiled before the others regardless of their
// position in s.Terms, because they attach to the base existence check
// rather than forming an intersectable sub-query.
func (c *SQLCompiler) Compile(s queryir.Search) (string, []any, error) {
	var b strings.Builder
	params := []any{s.Chain}

	b.WriteString(baseSelect)

	for _, t := range s.Terms {
		def, ok := t.Constraint.(queryir.Default)
		if !ok {
			continue
		}
		sql, p := c.compileDefault(t.Param, def)
		b.WriteString(sql)
		params = append(params, p...)
	}

	for _, t := range s.Terms {
		if _, ok := t.Constraint.(queryir.Default); ok {
			continue
		}
		sql, p, err := c.compileIntersect(t)
		if err != nil {
			return "", nil, fmt.Errorf("compile %s: %w", t.Param, err)
		}
		b.WriteString(sql)
		params = append(params, p...)
	}

	b.WriteString(orderBy)
	return b.String(), params, nil
}

// compileDefault renders
//
//	AND (NOT EXISTS (<same block, module, name>)
//	     [OR EXISTS (<same block, module, name> AND col IN (...))])
func (c *SQLCompiler) compileDefault(p queryir.Param, d queryir.Default) (string, []any) {
	var b strings.Builder
	params := []any{p.Module, p.Name}

	b.WriteString(" AND (NOT EXISTS (")
	b.WriteString(sameBlock)
	b.WriteString(")")

	if len(d.Allowed) > 0 {
		col := queryir.Class(d).Column()
		b.WriteString(" OR EXISTS (")
		b.WriteString(sameBlock)
		b.WriteString(" AND ")
		b.WriteString(col)
		b.WriteString(" IN (")
		b.WriteString(placeholders(len(d.Allowed)))
		b.WriteString("))")

		params = append(params, p.Module, p.Name)
		for _, v := range d.Allowed {
			params = append(params, valueToParam(v))
		}
	}

	b.WriteString(")")
	return b.String(), params
}

// compileIntersect renders one INTERSECT sub-query for a non-default term.
func (c *SQLCompiler) compileIntersect(t queryir.Term) (string, []any, error) {
	params := []any{t.Param.Module, t.Param.Name}
	col := queryir.Class(t.Constraint).Column()

	var cond string
	switch con := t.Constraint.(type) {
	case queryir.Equal:
		cond = col + " = ?"
		params = append(params, valueToParam(con.Value))
	case queryir.NotEqual:
		cond = col + " <> ?"
		params = append(params, valueToParam(con.Value))
	case queryir.Less:
		cond = "value_float < ?"
		params = append(params, con.Bound)
	case queryir.Greater:
		cond = "value_float > ?"
		params = append(params, con.Bound)
	case queryir.In:
		if len(con.Values) == 0 {
			return "", nil, fmt.Errorf("empty value list")
		}
		cond = col + " IN (" + placeholders(len(con.Values)) + ")"
		for _, v := range con.Values {
			params = append(params, valueToParam(v))
		}
	case nil:
		return "", nil, fmt.Errorf("nil constraint")
	default:
		return "", nil, fmt.Errorf("unsupported constraint type: %T", t.Constraint)
	}

	return intersectSelect + cond, params, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// valueToParam converts a constraint operand to a SQL parameter.
func valueToParam(v value.Value) any {
	switch val := v.(type) {
	case value.Number:
		return float64(val)
	default:
		return v.String()
	}
}
