package aggregate

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/simdb/internal/chainconfig"
	"github.com/roach88/simdb/internal/present"
	"github.com/roach88/simdb/internal/queryir"
)

// Query is one request for a figure.
type Query struct {
	Chain    string
	Function string
	Terms    []queryir.Term

	// Iterations restricts over-iterations functions to these inner
	// dimension addresses. Empty means all.
	Iterations []int
}

// Engine answers queries against a store using one chain configuration.
//
// The engine holds no state between queries: every Run builds a fresh
// Result.
type Engine struct {
	reader    Reader
	cfg       *chainconfig.Config
	registry  *Registry
	adjusters *present.Adjusters
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger diagnostics go to. nil discards them.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRegistry replaces the function registry built from the configuration.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithAdjusters replaces the adjusters built from the configuration.
func WithAdjusters(a *present.Adjusters) Option {
	return func(e *Engine) {
		e.adjusters = a
	}
}

// NewEngine creates an engine reading from r. A nil cfg means
// chainconfig.Default().
func NewEngine(r Reader, cfg *chainconfig.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = chainconfig.Default()
	}
	e := &Engine{reader: r, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		reg, err := FromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("build function registry: %w", err)
		}
		e.registry = reg
	}
	if e.adjusters == nil {
		e.adjusters = present.NewAdjusters(cfg)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e, nil
}

// Registry returns the engine's function registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Run searches, groups and labels the results of q.
//
// An unregistered function is logged and reported as ErrUnknownFunction
// without touching the store. A function that needs chain configuration
// the chain lacks fails with a *ConfigError.
func (e *Engine) Run(ctx context.Context, q Query) (*Figure, error) {
	f, ok := e.registry.Lookup(q.Function)
	if !ok {
		e.logger.Warn("result function not implemented", "function", q.Function, "chain", q.Chain)
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, q.Function)
	}

	fn, err := resolve(f, q.Chain, e.cfg)
	if err != nil {
		return nil, err
	}

	snr := e.cfg.SNROf(q.Chain)
	fetch := Fetch{
		Kind:      fn.Kind,
		Module:    fn.module,
		Port:      fn.port,
		SNRModule: snr.Module,
		SNRPort:   snr.Port,
	}
	if fn.Kind == OverIterations {
		fetch.Addresses = q.Iterations
	}

	e.logger.Debug("running query",
		"chain", q.Chain,
		"function", fn.Name,
		"module", fn.module,
		"port", fn.port,
		"terms", len(q.Terms))

	res, err := Aggregate(ctx, e.reader, queryir.Search{Chain: q.Chain, Terms: q.Terms}, fetch)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", q.Chain, err)
	}
	for _, w := range res.Warnings {
		e.logger.Warn(w, "chain", q.Chain)
	}
	e.logger.Info("query finished",
		"chain", q.Chain,
		"function", fn.Name,
		"configurations", res.Configurations,
		"groups", len(res.Groups))

	return e.figure(q.Chain, fn, snr.Label, res), nil
}
