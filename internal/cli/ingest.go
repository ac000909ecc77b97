package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/simdb/internal/ingest"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions

	// BatchIDs allows overriding the batch id generator (for testing).
	// If nil, defaults to ingest.UUIDv7Generator.
	BatchIDs ingest.BatchIDGenerator

	// Clock allows overriding the insertion clock (for testing).
	Clock ingest.Clock
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Store simulator result documents",
		Long: `Parse result documents and store their configurations and results.

Each document is written in its own transaction. A document that cannot
be read or parsed is reported and skipped; the remaining documents are
still ingested.

Exit codes:
  0 - All documents ingested
  1 - One or more documents skipped
  2 - Command error (database, configuration)

Examples:
  simdb ingest --db ./results.db runs/*.xml
  SIMDB_USER=alice simdb ingest sweep.xml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, args, cmd)
		},
	}

	return cmd
}

func runIngest(opts *IngestOptions, files []string, cmd *cobra.Command) error {
	logger := opts.Logger()

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}

	st, err := opts.OpenStore(true)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	pipelineOpts := []ingest.Option{ingest.WithLogger(logger)}
	if opts.User != "" {
		pipelineOpts = append(pipelineOpts, ingest.WithUser(opts.User))
	}
	if opts.BatchIDs != nil {
		pipelineOpts = append(pipelineOpts, ingest.WithBatchIDs(opts.BatchIDs))
	}
	if opts.Clock != nil {
		pipelineOpts = append(pipelineOpts, ingest.WithClock(opts.Clock))
	}
	pipeline := ingest.New(st, cfg, pipelineOpts...)

	f := opts.Formatter(cmd)
	f.VerboseLog("Ingesting %d file(s) into %s", len(files), opts.Database)

	report, err := pipeline.IngestFiles(commandContext(cmd), files)
	if err != nil {
		return WrapExitError(ExitFailure, "ingestion interrupted", err)
	}
	for _, file := range report.Files {
		if file.Suppressed > 0 {
			f.VerboseLog("%s: %d configuration entries suppressed", file.File, file.Suppressed)
		}
	}

	if f.Format == "json" {
		status := "ok"
		if report.Skipped > 0 {
			status = "error"
		}
		resp := CLIResponse{Status: status, Data: report, BatchID: report.BatchID}
		if report.Skipped > 0 {
			resp.Error = &CLIError{
				Code:    CodeIngest,
				Message: fmt.Sprintf("%d file(s) skipped", report.Skipped),
			}
		}
		if err := f.encode(resp); err != nil {
			return err
		}
	} else {
		w := f.Writer
		for _, file := range report.Files {
			if file.Error != "" {
				fmt.Fprintf(w, "✗ %s\n", file.File)
				fmt.Fprintf(w, "  %s\n", file.Error)
				continue
			}
			fmt.Fprintf(w, "✓ %s -> simulation %d (%s, %d configuration rows, %d result rows)\n",
				file.File, file.SimulationID, file.Chain, file.Configurations, file.Results)
			for _, warning := range file.Warnings {
				fmt.Fprintf(w, "  warning: %s\n", warning)
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Ingest Summary: %d ingested, %d skipped, %d total\n",
			report.Ingested, report.Skipped, len(report.Files))
	}

	if report.Skipped > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) skipped", report.Skipped))
	}
	return nil
}
