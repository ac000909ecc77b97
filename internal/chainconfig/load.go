package chainconfig

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE []byte

// LoadError reports a configuration file that cannot be used.
type LoadError struct {
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Load reads a CUE configuration file and merges it over Default.
// An empty path returns Default unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}

	overlay, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	cfg.Merge(overlay)
	return cfg, nil
}

// Parse compiles CUE source, checks it against the configuration schema
// and decodes it. filename is used in error positions only.
func Parse(filename string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile configuration schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(filename, err)
	}

	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(filename, err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, cueLoadError(filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Path: filename, Message: err.Error()}
	}
	return &cfg, nil
}

// cueLoadError extracts the first position from a CUE error.
func cueLoadError(path string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Path: path, Message: err.Error()}
	}

	first := errs[0]
	le := &LoadError{Path: path, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
