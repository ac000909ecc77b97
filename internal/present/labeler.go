package present

import (
	"fmt"
	"strings"

	"github.com/roach88/simdb/internal/value"
)

// separator joins title and legend fragments.
const separator = ", "

// Labeler decides, per parameter, whether it goes into the figure title or
// the legend. It must be built after grouping is final: a parameter is a
// title fragment when it has the same value in every group.
type Labeler struct {
	params  []string
	columns map[string]Column
	groups  int

	used   map[string]bool
	title  []string
	legend [][]string
}

// NewLabeler builds a labeler over the parameter columns of a grouping
// result. params gives the discovery order; every column has one value per
// group.
func NewLabeler(params []string, columns map[string][]value.Value, groups int) *Labeler {
	cols := make(map[string]Column, len(columns))
	for name, vals := range columns {
		cols[name] = Column(vals)
	}
	return &Labeler{
		params:  params,
		columns: cols,
		groups:  groups,
		used:    make(map[string]bool),
		title:   []string{},
		legend:  make([][]string, groups),
	}
}

// Groups returns the number of groups.
func (l *Labeler) Groups() int {
	return l.groups
}

// Par returns a copy of the named column and marks the parameter used, so
// Finish leaves it out. A parameter no group declares yields a column of
// Suppressed.
func (l *Labeler) Par(name string) Column {
	col, ok := l.columns[name]
	if !ok {
		return Filled(l.groups, value.Suppressed{})
	}
	l.used[name] = true
	return append(Column(nil), col...)
}

// ParNumber is Par for arithmetic: a parameter no group declares yields a
// column of zeros.
func (l *Labeler) ParNumber(name string) Column {
	if _, ok := l.columns[name]; !ok {
		return Filled(l.groups, value.Number(0))
	}
	return l.Par(name)
}

// Erase marks a parameter used without showing it.
func (l *Labeler) Erase(name string) {
	l.used[name] = true
}

// Append shows col under label. A column with the same value in every group
// becomes one title fragment; otherwise each group's value is added to that
// group's legend. Suppressed values and FALSE contribute nothing.
func (l *Labeler) Append(label string, col Column) {
	if len(col) == 0 {
		return
	}
	if allIdentical(col) {
		if frag := fragment(label, col[0]); frag != "" {
			l.title = append(l.title, frag)
		}
		return
	}
	for g, v := range col {
		if g >= l.groups {
			break
		}
		if frag := fragment(label, v); frag != "" {
			l.legend[g] = append(l.legend[g], frag)
		}
	}
}

// Finish appends every parameter not yet used, in discovery order, under
// its own "module.name" label.
func (l *Labeler) Finish() {
	for _, name := range l.params {
		if l.used[name] {
			continue
		}
		l.used[name] = true
		l.Append(name, l.columns[name])
	}
}

// Title returns prefix followed by the title fragments.
func (l *Labeler) Title(prefix string) string {
	return joinFragments(prefix, l.title)
}

// Legend returns the legend of one series of group g, starting from seed
// (for example "iteration 3" or "").
func (l *Labeler) Legend(g int, seed string) string {
	if g < 0 || g >= l.groups {
		return seed
	}
	return joinFragments(seed, l.legend[g])
}

// IterationSeed returns the legend seed of a series with inner dimension
// address addr: empty for dimension-less series, "iteration n" otherwise.
// Half-iteration chains count in halves.
func IterationSeed(addr int, halfIteration bool) string {
	if addr < 0 {
		return ""
	}
	if !halfIteration {
		return fmt.Sprintf("iteration %d", addr)
	}
	if addr%2 != 0 {
		return fmt.Sprintf("iteration %1.1f", float64(addr)/2)
	}
	return fmt.Sprintf("iteration %d", addr/2)
}

// fragment renders one label/value pair: nothing for suppressed values,
// the bare label for TRUE, the bare value for an empty label.
func fragment(label string, v value.Value) string {
	switch {
	case value.IsSuppressed(v):
		return ""
	case value.Equal(v, value.SymbolTrue):
		return label
	case label == "":
		return v.String()
	default:
		return label + "=" + v.String()
	}
}

func joinFragments(prefix string, frags []string) string {
	parts := make([]string, 0, len(frags)+1)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	for _, f := range frags {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, separator)
}
