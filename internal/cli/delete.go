package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/simdb/internal/store"
)

// DeleteResult reports one deleted simulation.
type DeleteResult struct {
	SimulationID int64            `json:"simulation_id"`
	Removed      map[string]int64 `json:"removed"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete simulations and all their rows",
		Long: `Delete simulations by id, together with their configuration and
result rows. Each simulation is removed in its own transaction.

Example:
  simdb delete 4 7`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args, cmd)
		},
	}
}

func runDelete(opts *RootOptions, args []string, cmd *cobra.Command) error {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid simulation id %q", arg))
		}
		ids[i] = id
	}

	logger := opts.Logger()
	st, err := opts.OpenStore(false)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	ctx := commandContext(cmd)
	f := opts.Formatter(cmd)
	results := make([]DeleteResult, 0, len(ids))
	for _, id := range ids {
		if _, err := st.ReadSimulation(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return reportError(f, CodeNotFound, map[string]int64{"simulation_id": id},
					NewExitError(ExitCommandError, fmt.Sprintf("simulation %d not found", id)))
			}
			return WrapExitError(ExitFailure, "failed to read simulation", err)
		}
		f.VerboseLog("Deleting simulation %d", id)
		removed, err := st.DeleteSimulation(ctx, id)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to delete simulation", err)
		}
		logger.Info("simulation deleted", "simulation_id", id, "configurations", removed["configuration"], "results", removed["result"])
		results = append(results, DeleteResult{SimulationID: id, Removed: removed})
	}

	return f.Render(results, func(w io.Writer) {
		for _, r := range results {
			fmt.Fprintf(w, "Deleted simulation %d (%d configuration rows, %d result rows)\n",
				r.SimulationID, r.Removed["configuration"], r.Removed["result"])
		}
	})
}
