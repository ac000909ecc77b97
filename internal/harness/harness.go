package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/simdb/internal/aggregate"
	"github.com/roach88/simdb/internal/chainconfig"
	"github.com/roach88/simdb/internal/ingest"
	"github.com/roach88/simdb/internal/queryir"
	"github.com/roach88/simdb/internal/store"
	"github.com/roach88/simdb/internal/testutil"
)

// DefaultUser is recorded with simulations when a scenario names none.
const DefaultUser = "harness"

// Harness is the test execution engine.
// It runs scenarios with a fixed clock and batch id so that ingested rows
// and figures are identical across runs.
type Harness struct {
	store    *store.Store
	cfg      *chainconfig.Config
	pipeline *ingest.Pipeline
	engine   *aggregate.Engine
	batchID  string
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Load the chain configuration
// 3. Ingest the documents
// 4. Delete the listed simulations
// 5. Run the query, if any
// 6. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	cfg, err := chainconfig.Load(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load chain configuration: %w", err)
	}

	h, err := newHarness(st, cfg, scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()

	ids, err := h.ingest(ctx, scenario.Documents, result)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest documents: %w", err)
	}

	if err := h.delete(ctx, scenario.Delete, ids, result); err != nil {
		return nil, fmt.Errorf("failed to delete simulations: %w", err)
	}

	if scenario.Query != nil {
		fig, err := h.query(ctx, scenario.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to run query: %w", err)
		}
		result.Figure = fig
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}
	return result, nil
}

func newHarness(st *store.Store, cfg *chainconfig.Config, scenario *Scenario) (*Harness, error) {
	// Suppress logs in tests
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	user := scenario.User
	if user == "" {
		user = DefaultUser
	}

	batches := testutil.NewFixedBatchGenerator(scenario.BatchID)
	pipeline := ingest.New(st, cfg,
		ingest.WithUser(user),
		ingest.WithClock(testutil.NewFixedClock()),
		ingest.WithBatchIDs(batches),
		ingest.WithLogger(logger),
	)

	eng, err := aggregate.NewEngine(st, cfg, aggregate.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create aggregation engine: %w", err)
	}

	return &Harness{
		store:    st,
		cfg:      cfg,
		pipeline: pipeline,
		engine:   eng,
		batchID:  batches.Generate(),
		logger:   logger,
	}, nil
}

// ingest writes every document and returns the simulation id of each, 0
// for skipped documents. A skipped document is reported, not fatal.
func (h *Harness) ingest(ctx context.Context, docs []DocumentRef, result *Result) ([]int64, error) {
	report := &ingest.Report{BatchID: h.batchID, Files: []ingest.FileResult{}}
	ids := make([]int64, len(docs))

	for i, doc := range docs {
		data := []byte(doc.Content)
		if doc.Path != "" {
			var err error
			data, err = os.ReadFile(doc.Path)
			if err != nil {
				return nil, fmt.Errorf("documents[%d]: %w", i, err)
			}
		}

		res, err := h.pipeline.IngestBytes(ctx, doc.DisplayName(), data)
		if err != nil {
			res.Error = err.Error()
			report.Skipped++
		} else {
			report.Ingested++
			ids[i] = res.SimulationID
		}
		report.Files = append(report.Files, res)

		h.logger.Info("document ingested",
			"index", i,
			"file", res.File,
			"simulation_id", res.SimulationID,
		)
	}

	result.Ingest = report
	return ids, nil
}

func (h *Harness) delete(ctx context.Context, indices []int, ids []int64, result *Result) error {
	if len(indices) == 0 {
		return nil
	}
	result.Deleted = make(map[string]int64)
	for _, idx := range indices {
		if ids[idx] == 0 {
			return fmt.Errorf("document %d was not ingested", idx)
		}
		removed, err := h.store.DeleteSimulation(ctx, ids[idx])
		if err != nil {
			return err
		}
		for table, n := range removed {
			result.Deleted[table] += n
		}
	}
	return nil
}

func (h *Harness) query(ctx context.Context, q *QuerySpec) (*aggregate.Figure, error) {
	query := aggregate.Query{
		Chain:      q.Chain,
		Function:   q.Function,
		Iterations: q.Iterations,
	}
	for _, assignment := range q.Params {
		term, err := queryir.ParseAssignment(assignment)
		if err != nil {
			return nil, err
		}
		query.Terms = append(query.Terms, term)
	}
	return h.engine.Run(ctx, query)
}
