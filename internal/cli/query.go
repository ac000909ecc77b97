package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/simdb/internal/aggregate"
	"github.com/roach88/simdb/internal/queryir"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Chain      string
	Function   string
	Params     []string
	Iterations []int
	File       string
}

// QueryFile is the YAML form of a query. Command-line flags override it.
//
//	chain: emssim_lte_turbo
//	function: FER over iterations
//	params:
//	  - TCDec.decoding_algo=(LOG_MAP, MAX_LOG_MAP)
//	  - global.info_bits=<1000
//	iterations: [0, 7]
type QueryFile struct {
	Chain      string   `yaml:"chain"`
	Function   string   `yaml:"function"`
	Params     []string `yaml:"params"`
	Iterations []int    `yaml:"iterations"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Search configurations and group their results into curves",
		Long: `Select the configuration blocks of a chain that satisfy every
parameter constraint, group blocks with equal parameters into curves over
SNR and label them.

Constraints (--param module.name=CONSTRAINT, repeatable):
  VALUE         equal (symbols compare case-insensitively)
  <>VALUE       not equal
  <N, >N        numeric bounds
  (A, B, ...)   any of the listed values
  !             the parameter was never stored (simulator default)

Examples:
  simdb query --chain emssim_lte_turbo --function "FER (single)"
  simdb query --chain emssim_lte_turbo --function "FER over iterations" \
      --param "TCDec.decoding_algo=LOG_MAP" --iter 0 --iter 7
  simdb query --file sweep.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Chain, "chain", "", "chain to search")
	cmd.Flags().StringVar(&opts.Function, "function", "", "result function to plot (see simdb functions)")
	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "constraint module.name=CONSTRAINT (repeatable)")
	cmd.Flags().IntSliceVar(&opts.Iterations, "iter", nil, "iteration addresses for over-iterations functions")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "YAML query file")

	return cmd
}

// buildQuery merges the query file, if any, with the flags and parses the
// constraints.
func buildQuery(opts *QueryOptions, cmd *cobra.Command) (aggregate.Query, error) {
	var spec QueryFile
	if opts.File != "" {
		loaded, err := LoadQueryFile(opts.File)
		if err != nil {
			return aggregate.Query{}, WrapExitError(ExitCommandError, "failed to load query file", err)
		}
		spec = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("chain") || spec.Chain == "" {
		spec.Chain = opts.Chain
	}
	if flags.Changed("function") || spec.Function == "" {
		spec.Function = opts.Function
	}
	// Flag constraints add to those of the file.
	spec.Params = append(spec.Params, opts.Params...)
	if flags.Changed("iter") {
		spec.Iterations = opts.Iterations
	}

	if spec.Chain == "" {
		return aggregate.Query{}, NewExitError(ExitCommandError, "no chain given (use --chain or a query file)")
	}
	if spec.Function == "" {
		return aggregate.Query{}, NewExitError(ExitCommandError, "no function given (use --function or a query file)")
	}

	q := aggregate.Query{Chain: spec.Chain, Function: spec.Function, Iterations: spec.Iterations}
	for _, assignment := range spec.Params {
		term, err := queryir.ParseAssignment(assignment)
		if err != nil {
			return aggregate.Query{}, WrapExitError(ExitCommandError, "invalid constraint", err)
		}
		q.Terms = append(q.Terms, term)
	}
	return q, nil
}

// LoadQueryFile reads a YAML query file, rejecting unknown fields.
func LoadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	var spec QueryFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &spec, nil
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	q, err := buildQuery(opts, cmd)
	if err != nil {
		return err
	}

	logger := opts.Logger()
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}

	st, err := opts.OpenStore(false)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	eng, err := aggregate.NewEngine(st, cfg, aggregate.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid function configuration", err)
	}

	f := opts.Formatter(cmd)
	f.VerboseLog("Searching %s with %d constraint(s) for %q", q.Chain, len(q.Terms), q.Function)

	fig, err := eng.Run(commandContext(cmd), q)
	switch {
	case errors.Is(err, aggregate.ErrUnknownFunction):
		return reportError(f, CodeQuery, map[string]string{"function": q.Function},
			WrapExitError(ExitCommandError, "unknown result function", err))
	case aggregate.IsConfigError(err):
		return reportError(f, CodeQuery, map[string]string{"chain": q.Chain},
			WrapExitError(ExitCommandError, "chain configuration incomplete", err))
	case err != nil:
		return WrapExitError(ExitFailure, "query failed", err)
	}

	f.VerboseLog("Built %d curve(s)", len(fig.Series))
	return f.Render(fig, func(w io.Writer) { writeFigure(w, fig) })
}

// reportError writes an error envelope for exitErr and returns it. A
// failure to write the envelope is joined to the returned error.
func reportError(f *OutputFormatter, code string, details any, exitErr *ExitError) error {
	message := exitErr.Message
	if exitErr.Err != nil {
		message = exitErr.Err.Error()
	}
	if err := f.Error(code, message, details); err != nil {
		return errors.Join(exitErr, fmt.Errorf("write error output: %w", err))
	}
	return exitErr
}

// writeFigure prints a figure as a title block followed by one
// "x<TAB>y" listing per curve.
func writeFigure(w io.Writer, fig *aggregate.Figure) {
	fmt.Fprintf(w, "%s\n", fig.Title)
	scale := "linear"
	if fig.LogScale {
		scale = "log"
	}
	fmt.Fprintf(w, "x: %s, y: %s (%s)\n", fig.XLabel, fig.YLabel, scale)
	if len(fig.Series) == 0 {
		fmt.Fprintln(w, "No matching configurations.")
		return
	}
	for i, c := range fig.Series {
		legend := c.Legend
		if legend == "" {
			legend = "curve " + strconv.Itoa(i)
		}
		fmt.Fprintf(w, "\n# %s\n", legend)
		for _, p := range c.Points {
			fmt.Fprintf(w, "%s\t%s\n",
				strconv.FormatFloat(p.X, 'g', -1, 64),
				strconv.FormatFloat(p.Y, 'g', -1, 64))
		}
	}
}
