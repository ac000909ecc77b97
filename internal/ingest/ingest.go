package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/roach88/simdb/internal/chainconfig"
	"github.com/roach88/simdb/internal/document"
	"github.com/roach88/simdb/internal/store"
	"github.com/roach88/simdb/internal/value"
)

// GlobalModule is the module name global variables are stored under.
const GlobalModule = "global"

// InsertDateLayout formats simulation.insert_date.
const InsertDateLayout = time.ANSIC

// Pipeline writes result documents into a store.
//
// Documents are ingested one after the other. Each document is written in
// its own transaction, so a document that fails half-way leaves no rows.
type Pipeline struct {
	store  *store.Store
	cfg    *chainconfig.Config
	user   string
	clock  Clock
	ids    BatchIDGenerator
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithUser sets the submitting user recorded with every simulation.
func WithUser(user string) Option {
	return func(p *Pipeline) {
		p.user = user
	}
}

// WithClock sets the clock insert dates are taken from.
func WithClock(c Clock) Option {
	return func(p *Pipeline) {
		p.clock = c
	}
}

// WithBatchIDs sets the batch id generator.
func WithBatchIDs(g BatchIDGenerator) Option {
	return func(p *Pipeline) {
		p.ids = g
	}
}

// WithLogger sets the logger diagnostics go to. nil discards them.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// DefaultUser is recorded when no user is configured.
const DefaultUser = "anonymous"

// New creates a pipeline writing to s. A nil cfg means
// chainconfig.Default().
func New(s *store.Store, cfg *chainconfig.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = chainconfig.Default()
	}
	p := &Pipeline{
		store: s,
		cfg:   cfg,
		user:  DefaultUser,
		clock: SystemClock{},
		ids:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// FileResult describes the ingestion of one document.
type FileResult struct {
	File         string `json:"file"`
	SimulationID int64  `json:"simulation_id,omitempty"`
	Chain        string `json:"chain,omitempty"`

	// Configurations and Results count the rows written.
	Configurations int `json:"configurations"`
	Results        int `json:"results"`

	// Suppressed counts configuration entries left out by a blacklist or
	// as duplicates.
	Suppressed int `json:"suppressed"`

	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Report is the outcome of a batch.
type Report struct {
	BatchID  string       `json:"batch_id"`
	Files    []FileResult `json:"files"`
	Ingested int          `json:"ingested"`
	Skipped  int          `json:"skipped"`
}

// IngestFiles ingests every file in order. A file that cannot be read or
// parsed is reported and skipped; the batch continues. Only a cancelled
// context stops the batch early.
func (p *Pipeline) IngestFiles(ctx context.Context, paths []string) (*Report, error) {
	rep := &Report{BatchID: p.ids.Generate(), Files: []FileResult{}}
	log := p.logger.With("batch", rep.BatchID)
	log.Info("ingesting files", "count", len(paths))

	for _, file := range paths {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res, err := p.IngestFile(ctx, file)
		if err != nil {
			log.Error("skipping file", "file", file, "error", err)
			res.Error = err.Error()
			rep.Skipped++
		} else {
			log.Info("ingested file",
				"file", file,
				"simulation_id", res.SimulationID,
				"chain", res.Chain,
				"configurations", res.Configurations,
				"results", res.Results)
			rep.Ingested++
		}
		rep.Files = append(rep.Files, res)
	}
	return rep, nil
}

// IngestFile reads and ingests one file.
func (p *Pipeline) IngestFile(ctx context.Context, file string) (FileResult, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return FileResult{File: file}, fmt.Errorf("read %s: %w", file, err)
	}
	return p.IngestBytes(ctx, file, data)
}

// IngestBytes ingests one document held in memory. name is recorded as the
// simulation's file name and data as its content.
func (p *Pipeline) IngestBytes(ctx context.Context, name string, data []byte) (FileResult, error) {
	res := FileResult{File: name}

	doc, err := document.ParseBytes(data)
	if err != nil {
		return res, fmt.Errorf("parse %s: %w", name, err)
	}

	warn := func(msg string, args ...any) {
		res.Warnings = append(res.Warnings, msg)
		p.logger.Warn(msg, append([]any{"file", name}, args...)...)
	}

	if !doc.HasSimulationDate {
		warn("simulation_date not found")
	}
	if !doc.HasExecutableName {
		warn("executable_name not found")
	}
	chain := ChainName(doc.ExecutableName)
	res.Chain = chain

	sim := store.Simulation{
		FileName:       name,
		FileContent:    string(data),
		InsertDate:     p.clock.Now().Format(InsertDateLayout),
		SimulationDate: doc.SimulationDate,
		User:           p.user,
		Chain:          chain,
		Standard:       p.cfg.StandardOf(chain),
		FreeComment:    doc.FreeComment,
	}

	err = p.store.WithTx(ctx, func(w *store.Writer) error {
		inserted, err := w.InsertSimulation(ctx, sim)
		if err != nil {
			return err
		}

		// The id is looked up again by (chain, simulation_date). Documents
		// sharing both resolve to the newest row.
		id, err := w.LookupSimulationID(ctx, chain, doc.SimulationDate)
		if err != nil {
			return err
		}
		switch {
		case id == 0:
			warn("simulation id lookup found no row; using the inserted id", "inserted_id", inserted)
			id = inserted
		case id != inserted:
			warn("simulation id lookup disagrees with the inserted id", "inserted_id", inserted, "simulation_id", id)
		}
		res.SimulationID = id

		if err := p.writeConfigurations(ctx, w, id, chain, doc, &res); err != nil {
			return err
		}
		return p.writeResults(ctx, w, id, doc, &res)
	})
	if err != nil {
		return FileResult{File: name, Chain: chain, Warnings: res.Warnings}, fmt.Errorf("store %s: %w", name, err)
	}
	return res, nil
}

func (p *Pipeline) writeConfigurations(ctx context.Context, w *store.Writer, simID int64, chain string, doc *document.Document, res *FileResult) error {
	auto := AutoBlacklist(doc)

	for block, cfg := range doc.Configurations {
		seen := make(map[string]bool)

		write := func(module, name, text string) error {
			key := module + "." + name
			switch {
			case p.cfg.IsBlacklisted(chain, key), auto[key]:
				res.Suppressed++
				return nil
			case seen[key]:
				p.logger.Debug("duplicate parameter, keeping the first", "simulation_id", simID, "block", block, "param", key)
				res.Suppressed++
				return nil
			}
			seen[key] = true

			err := w.InsertConfigEntry(ctx, store.ConfigEntry{
				SimulationID:        simID,
				ConfigurationNumber: block,
				Module:              module,
				Name:                name,
				Value:               value.Coerce(text),
			})
			if err != nil {
				return err
			}
			res.Configurations++
			return nil
		}

		for _, g := range cfg.Globals {
			if err := write(GlobalModule, g.Name, g.Value); err != nil {
				return err
			}
		}
		for _, m := range cfg.Modules {
			for _, b := range m.Params {
				if err := write(m.Instance, b.Name, b.Value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (p *Pipeline) writeResults(ctx context.Context, w *store.Writer, simID int64, doc *document.Document, res *FileResult) error {
	for block, rb := range doc.Results {
		for _, m := range rb.Modules {
			for _, port := range m.Ports {
				for _, s := range port.Samples {
					row := store.ResultRow{
						SimulationID:        simID,
						ConfigurationNumber: block,
						Module:              m.Name,
						Port:                port.Name,
						Value:               s.Value,
					}
					if s.HasDim {
						row.DimName = s.DimName
						row.DimAddr = s.DimAddr
					}
					if err := w.InsertResult(ctx, row); err != nil {
						return err
					}
					res.Results++
				}
			}
		}
	}
	return nil
}

// AutoBlacklist returns the "module.name" keys whose value the initial
// configuration forwards from a global variable. They are stored once,
// under GlobalModule, and never again under the module.
func AutoBlacklist(doc *document.Document) map[string]bool {
	keys := make(map[string]bool)
	for _, m := range doc.Initial {
		for _, param := range m.Params {
			if param.Forwarded {
				keys[m.Instance+"."+param.Name] = true
			}
		}
	}
	return keys
}

var extension = regexp.MustCompile(`\.[a-zA-Z0-9]+`)

// ChainName derives the chain from an executable path: the last path
// element with every extension removed.
//
//	/opt/emssim/bin/emssim_lte_turbo.exe -> emssim_lte_turbo
func ChainName(executable string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(executable), `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return extension.ReplaceAllString(base, "")
}
