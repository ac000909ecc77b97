package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/simdb/internal/store"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var chain string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored simulations",
		Long: `List every stored simulation without its document content.

Examples:
  simdb list
  simdb list --chain emssim_lte_turbo --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, chain, cmd)
		},
	}

	cmd.Flags().StringVar(&chain, "chain", "", "only simulations of this chain")

	return cmd
}

func runList(opts *RootOptions, chain string, cmd *cobra.Command) error {
	logger := opts.Logger()

	st, err := opts.OpenStore(false)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	sims, err := st.ListSimulations(commandContext(cmd))
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list simulations", err)
	}
	if chain != "" {
		filtered := []store.Simulation{}
		for _, sim := range sims {
			if sim.Chain == chain {
				filtered = append(filtered, sim)
			}
		}
		sims = filtered
	}

	f := opts.Formatter(cmd)
	if f.Format == "json" {
		return f.Success(sims)
	}
	if len(sims) == 0 {
		fmt.Fprintln(f.Writer, "No simulations found.")
		return nil
	}
	rows := make([][]string, len(sims))
	for i, sim := range sims {
		rows[i] = []string{
			strconv.FormatInt(sim.ID, 10),
			sim.Chain,
			sim.Standard,
			sim.SimulationDate,
			sim.User,
			sim.FileName,
		}
	}
	return f.Table([]string{"ID", "CHAIN", "STANDARD", "SIMULATION_DATE", "USER", "FILE"}, rows)
}

// NewChainsCommand creates the chains command.
func NewChainsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "chains",
		Short:         "List chains with stored simulations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := rootOpts.Logger()
			st, err := rootOpts.OpenStore(false)
			if err != nil {
				return err
			}
			defer closeStore(st, logger)

			chains, err := st.Chains(commandContext(cmd))
			if err != nil {
				return WrapExitError(ExitFailure, "failed to list chains", err)
			}
			return rootOpts.Formatter(cmd).Render(chains, lines(chains))
		},
	}
}

// NewParamsCommand creates the params command.
func NewParamsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "params <chain>",
		Short: "List the parameters stored for a chain",
		Long: `List every module.name parameter stored by a simulation of the chain.
Blacklisted and forwarded parameters are never stored and do not appear.

Example:
  simdb params emssim_lte_turbo`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := rootOpts.Logger()
			st, err := rootOpts.OpenStore(false)
			if err != nil {
				return err
			}
			defer closeStore(st, logger)

			params, err := st.Parameters(commandContext(cmd), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "failed to list parameters", err)
			}
			return rootOpts.Formatter(cmd).Render(params, lines(params))
		},
	}
}

// lines renders one value per line.
func lines(values []string) func(io.Writer) {
	return func(w io.Writer) {
		for _, v := range values {
			fmt.Fprintln(w, v)
		}
	}
}
