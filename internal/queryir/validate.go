package queryir

import "fmt"

// Validate reports search shapes that compile and run but are likely not
// what the caller meant. An empty result means no warnings.
//
// Validate is a pure function with no side effects.
func Validate(s Search) []string {
	warnings := []string{}
	add := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if s.Chain == "" {
		add("empty chain - only simulations without executable name match")
	}

	seen := make(map[Param]Constraint, len(s.Terms))
	for _, t := range s.Terms {
		if t.Constraint == nil {
			add("%s: nil constraint", t.Param)
			continue
		}
		if prev, ok := seen[t.Param]; ok {
			if _, isDefault := t.Constraint.(Default); isDefault {
				add("%s: default constraint combined with %s", t.Param, prev)
			} else if _, prevDefault := prev.(Default); prevDefault {
				add("%s: default constraint combined with %s", t.Param, t.Constraint)
			} else {
				add("%s: constrained twice (%s and %s); both must hold", t.Param, prev, t.Constraint)
			}
		}
		seen[t.Param] = t.Constraint
	}

	return warnings
}
