package chainconfig

import (
	"fmt"
	"slices"
)

// Default module, port and axis description of the SNR parameter.
const (
	DefaultSNRModule   = "global"
	DefaultSNRPort     = "eb_n0"
	DefaultSNRLabel    = "E_b/N_0 / dB"
	DefaultErrorModule = "Statistics_Error_Rates"
	DefaultStandard    = "none"
)

// Config is the per-deployment naming and suppression data for chains.
// Every map is keyed by chain name.
type Config struct {
	// Standards maps a chain to the standard label stored with each
	// simulation.
	Standards map[string]string `json:"standards,omitempty"`

	// Titles maps a chain to the figure title prefix.
	Titles map[string]string `json:"titles,omitempty"`

	// Blacklist lists "module.name" parameters never persisted for a chain.
	Blacklist map[string][]string `json:"blacklist,omitempty"`

	// HalfIteration lists chains that count half-iterations.
	HalfIteration []string `json:"half_iteration,omitempty"`

	// ErrorModule overrides DefaultErrorModule.
	ErrorModule map[string]string `json:"error_module,omitempty"`

	// SNR overrides the default SNR parameter.
	SNR map[string]SNRSpec `json:"snr,omitempty"`

	// Iteration names the module and port reporting iteration counts.
	// Chains without an entry cannot answer iteration queries.
	Iteration map[string]ModulePort `json:"iteration,omitempty"`

	// Functions registers result functions in addition to the built-ins.
	Functions []FunctionSpec `json:"functions,omitempty"`

	// Adjust holds declarative title/legend steps per chain. They run
	// after any built-in adjuster for the chain, in order.
	Adjust map[string][]AdjustStep `json:"adjust,omitempty"`
}

// SNRSpec locates the SNR parameter and describes the x axis.
type SNRSpec struct {
	Module string `json:"module"`
	Port   string `json:"port"`
	Label  string `json:"label,omitempty"`
}

// ModulePort names a module and one of its ports.
type ModulePort struct {
	Module string `json:"module"`
	Port   string `json:"port"`
}

// FunctionSpec declares a result function. Module and Port are literal
// names; ModuleRole and PortRole resolve them per chain instead
// ("error", "iteration").
type FunctionSpec struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"` // "over_iterations" or "single"
	Module     string `json:"module,omitempty"`
	Port       string `json:"port,omitempty"`
	ModuleRole string `json:"module_role,omitempty"`
	PortRole   string `json:"port_role,omitempty"`
	Label      string `json:"label"`
	LogScale   bool   `json:"log_scale,omitempty"`
}

// AdjustStep is one declarative title/legend step.
//
//   - op "erase": Param is left out of title and legend
//   - op "append": Param's values are shown under Label, optionally mapped
//     through Replace and formatted with Format (a printf float verb)
type AdjustStep struct {
	Op      string            `json:"op"`
	Param   string            `json:"param"`
	Label   string            `json:"label,omitempty"`
	Replace map[string]string `json:"replace,omitempty"`
	Format  string            `json:"format,omitempty"`
}

// Function kinds.
const (
	KindOverIterations = "over_iterations"
	KindSingle         = "single"
)

// Roles resolved per chain.
const (
	RoleError     = "error"
	RoleIteration = "iteration"
)

// Adjust step operations.
const (
	OpErase  = "erase"
	OpAppend = "append"
)

// StandardOf returns the standard label of chain.
func (c *Config) StandardOf(chain string) string {
	if s, ok := c.Standards[chain]; ok {
		return s
	}
	return DefaultStandard
}

// TitleOf returns the figure title prefix of chain, the chain name itself
// when none is configured.
func (c *Config) TitleOf(chain string) string {
	if t, ok := c.Titles[chain]; ok {
		return t
	}
	return chain
}

// IsBlacklisted reports whether "module.name" must not be stored for chain.
func (c *Config) IsBlacklisted(chain, key string) bool {
	return slices.Contains(c.Blacklist[chain], key)
}

// IsHalfIteration reports whether chain counts half-iterations.
func (c *Config) IsHalfIteration(chain string) bool {
	return slices.Contains(c.HalfIteration, chain)
}

// ErrorModuleOf returns the module reporting error rates for chain.
func (c *Config) ErrorModuleOf(chain string) string {
	if m, ok := c.ErrorModule[chain]; ok {
		return m
	}
	return DefaultErrorModule
}

// SNROf returns the SNR parameter of chain with defaults filled in.
func (c *Config) SNROf(chain string) SNRSpec {
	spec := SNRSpec{Module: DefaultSNRModule, Port: DefaultSNRPort, Label: DefaultSNRLabel}
	if s, ok := c.SNR[chain]; ok {
		if s.Module != "" {
			spec.Module = s.Module
		}
		if s.Port != "" {
			spec.Port = s.Port
		}
		if s.Label != "" {
			spec.Label = s.Label
		}
	}
	return spec
}

// IterationOf returns the iteration module/port of chain.
func (c *Config) IterationOf(chain string) (ModulePort, bool) {
	mp, ok := c.Iteration[chain]
	return mp, ok
}

// Validate checks declared functions and adjust steps.
func (c *Config) Validate() error {
	for i, f := range c.Functions {
		if f.Name == "" {
			return fmt.Errorf("functions[%d]: name is required", i)
		}
		if f.Kind != KindOverIterations && f.Kind != KindSingle {
			return fmt.Errorf("function %q: unknown kind %q", f.Name, f.Kind)
		}
		if f.Module == "" && f.ModuleRole == "" {
			return fmt.Errorf("function %q: module or module_role is required", f.Name)
		}
		if f.Port == "" && f.PortRole == "" {
			return fmt.Errorf("function %q: port or port_role is required", f.Name)
		}
		for _, role := range []string{f.ModuleRole, f.PortRole} {
			if role != "" && role != RoleError && role != RoleIteration {
				return fmt.Errorf("function %q: unknown role %q", f.Name, role)
			}
		}
	}

	for chain, steps := range c.Adjust {
		for i, s := range steps {
			if s.Op != OpErase && s.Op != OpAppend {
				return fmt.Errorf("adjust %s[%d]: unknown op %q", chain, i, s.Op)
			}
			if s.Param == "" {
				return fmt.Errorf("adjust %s[%d]: param is required", chain, i)
			}
		}
	}
	return nil
}

// Merge overlays o onto c. Map entries of o replace those of c key by key;
// half-iteration chains and functions are appended; adjust steps for a
// chain are appended after the existing ones.
func (c *Config) Merge(o *Config) {
	c.Standards = mergeMap(c.Standards, o.Standards)
	c.Titles = mergeMap(c.Titles, o.Titles)
	c.Blacklist = mergeMap(c.Blacklist, o.Blacklist)
	c.ErrorModule = mergeMap(c.ErrorModule, o.ErrorModule)
	c.SNR = mergeMap(c.SNR, o.SNR)
	c.Iteration = mergeMap(c.Iteration, o.Iteration)

	for _, chain := range o.HalfIteration {
		if !slices.Contains(c.HalfIteration, chain) {
			c.HalfIteration = append(c.HalfIteration, chain)
		}
	}
	c.Functions = append(c.Functions, o.Functions...)

	if len(o.Adjust) > 0 && c.Adjust == nil {
		c.Adjust = make(map[string][]AdjustStep)
	}
	for chain, steps := range o.Adjust {
		c.Adjust[chain] = append(c.Adjust[chain], steps...)
	}
}

func mergeMap[V any](dst, src map[string]V) map[string]V {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]V, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
