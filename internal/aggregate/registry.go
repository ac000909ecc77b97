package aggregate

import (
	"fmt"

	"github.com/roach88/simdb/internal/chainconfig"
)

// Kind selects how the results of one configuration block are shaped
// before grouping.
type Kind int

const (
	// OverIterations reads every value of the module/port, one per inner
	// dimension address, optionally restricted to requested addresses.
	OverIterations Kind = iota

	// Single reads the values of the module/port without their address.
	Single
)

func (k Kind) String() string {
	if k == Single {
		return chainconfig.KindSingle
	}
	return chainconfig.KindOverIterations
}

// Role names a module or port that is resolved per chain.
type Role string

const (
	// RoleNone marks a literal name.
	RoleNone Role = ""
	// RoleError resolves to the chain's error-rate module.
	RoleError Role = chainconfig.RoleError
	// RoleIteration resolves to the chain's iteration module or port.
	RoleIteration Role = chainconfig.RoleIteration
)

// Ref is a module or port name, either literal or resolved by role.
type Ref struct {
	Name string
	Role Role
}

// Literal returns a Ref naming exactly name.
func Literal(name string) Ref { return Ref{Name: name} }

// ByRole returns a Ref resolved per chain.
func ByRole(role Role) Ref { return Ref{Role: role} }

func (r Ref) String() string {
	if r.Role != RoleNone {
		return "<" + string(r.Role) + ">"
	}
	return r.Name
}

// Function describes one named result function: where its values come
// from and how the y axis is labeled.
type Function struct {
	Name     string
	Kind     Kind
	Module   Ref
	Port     Ref
	Label    string
	LogScale bool
}

// Label of the iteration-count functions; half-iteration chains relabel it.
const (
	iterationsLabel     = "Mean number of iterations"
	halfIterationsLabel = "Mean number of half-iterations"
)

func builtinFunctions() []Function {
	errMod := ByRole(RoleError)
	iterMod := ByRole(RoleIteration)
	iterPort := ByRole(RoleIteration)

	return []Function{
		{Name: "FER over iterations", Kind: OverIterations, Module: errMod, Port: Literal("error_rate_blocks"), Label: "FER", LogScale: true},
		{Name: "BER over iterations", Kind: OverIterations, Module: errMod, Port: Literal("error_rate_bits"), Label: "BER", LogScale: true},
		{Name: "FER (single)", Kind: Single, Module: errMod, Port: Literal("error_rate_blocks"), Label: "FER", LogScale: true},
		{Name: "BER (single)", Kind: Single, Module: errMod, Port: Literal("error_rate_bits"), Label: "BER", LogScale: true},
		{Name: "Mean number of iterations", Kind: Single, Module: iterMod, Port: iterPort, Label: iterationsLabel},
		{Name: "Mean number of iterations over max. iter.", Kind: OverIterations, Module: iterMod, Port: iterPort, Label: iterationsLabel},
	}
}

// Registry maps function names to Functions. Iteration order is
// registration order.
type Registry struct {
	byName map[string]Function
	order  []string
}

// NewRegistry returns a registry holding the built-in functions.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Function)}
	for _, f := range builtinFunctions() {
		r.Register(f)
	}
	return r
}

// FromConfig returns the built-in functions plus those declared in cfg. A
// declared function with the name of an existing one replaces it.
func FromConfig(cfg *chainconfig.Config) (*Registry, error) {
	r := NewRegistry()
	if cfg == nil {
		return r, nil
	}
	for _, spec := range cfg.Functions {
		f, err := functionFromSpec(spec)
		if err != nil {
			return nil, err
		}
		r.Register(f)
	}
	return r, nil
}

// Register adds f, replacing any function with the same name in place.
func (r *Registry) Register(f Function) {
	if _, ok := r.byName[f.Name]; !ok {
		r.order = append(r.order, f.Name)
	}
	r.byName[f.Name] = f
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// Functions returns every registered function in registration order.
func (r *Registry) Functions() []Function {
	out := make([]Function, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

func functionFromSpec(spec chainconfig.FunctionSpec) (Function, error) {
	f := Function{
		Name:     spec.Name,
		Label:    spec.Label,
		LogScale: spec.LogScale,
		Module:   Ref{Name: spec.Module, Role: Role(spec.ModuleRole)},
		Port:     Ref{Name: spec.Port, Role: Role(spec.PortRole)},
	}
	switch spec.Kind {
	case chainconfig.KindOverIterations:
		f.Kind = OverIterations
	case chainconfig.KindSingle:
		f.Kind = Single
	default:
		return Function{}, fmt.Errorf("function %q: unknown kind %q", spec.Name, spec.Kind)
	}
	return f, nil
}

// resolved is a Function bound to one chain.
type resolved struct {
	Function
	module string
	port   string
}

// resolve binds f's role references and label to chain.
func resolve(f Function, chain string, cfg *chainconfig.Config) (resolved, error) {
	out := resolved{Function: f}

	var err error
	if out.module, err = resolveRef(f, f.Module, chain, cfg, true); err != nil {
		return resolved{}, err
	}
	if out.port, err = resolveRef(f, f.Port, chain, cfg, false); err != nil {
		return resolved{}, err
	}
	if f.Label == iterationsLabel && cfg.IsHalfIteration(chain) {
		out.Label = halfIterationsLabel
	}
	return out, nil
}

func resolveRef(f Function, ref Ref, chain string, cfg *chainconfig.Config, isModule bool) (string, error) {
	switch ref.Role {
	case RoleNone:
		return ref.Name, nil
	case RoleError:
		if !isModule {
			return "", &ConfigError{Chain: chain, Function: f.Name, Message: "the error role names a module, not a port"}
		}
		return cfg.ErrorModuleOf(chain), nil
	case RoleIteration:
		mp, ok := cfg.IterationOf(chain)
		if !ok {
			return "", &ConfigError{Chain: chain, Function: f.Name, Message: "no iterating module configured"}
		}
		if isModule {
			return mp.Module, nil
		}
		return mp.Port, nil
	default:
		return "", &ConfigError{Chain: chain, Function: f.Name, Message: fmt.Sprintf("unknown role %q", ref.Role)}
	}
}
