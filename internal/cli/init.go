package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// InitResult is the output of the init command.
type InitResult struct {
	Database string           `json:"database"`
	Rows     map[string]int64 `json:"rows"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema",
		Long: `Create the simulation, configuration and result tables.

Opening an existing database is harmless: the schema is only created
where missing and older databases are migrated.

Example:
  simdb init --db ./results.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	logger := opts.Logger()

	st, err := opts.OpenStore(true)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	counts, err := st.Counts(commandContext(cmd), 0)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to count rows", err)
	}
	logger.Debug("database ready", "path", opts.Database)

	result := InitResult{Database: opts.Database, Rows: counts}
	return opts.Formatter(cmd).Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "Database ready: %s (%d simulations)\n", opts.Database, counts["simulation"])
	})
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
