package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/simdb/internal/chainconfig"
	"github.com/roach88/simdb/internal/store"
)

// Environment variables read when the matching flag is not given.
const (
	EnvDatabase = "SIMDB_DB"
	EnvUser     = "SIMDB_USER"
	EnvConfig   = "SIMDB_CONFIG"
)

// DefaultDatabase is used when neither --db nor SIMDB_DB is set.
const DefaultDatabase = "simdb.db"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	User     string
	Config   string // CUE chain configuration overlay

	// LogWriter receives diagnostics. Defaults to stderr.
	LogWriter io.Writer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the simdb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "simdb",
		Short: "simdb - simulation result database",
		Long: `Collect simulator result documents in a SQLite database and plot
error rates and iteration counts over SNR.

Documents are ingested with "simdb ingest", searched by parameter
constraints and grouped into curves with "simdb query".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.applyEnv(cmd)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", DefaultDatabase, "path to SQLite database (env "+EnvDatabase+")")
	cmd.PersistentFlags().StringVar(&opts.User, "user", "", "user recorded with ingested simulations (env "+EnvUser+")")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "CUE chain configuration file (env "+EnvConfig+")")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewChainsCommand(opts))
	cmd.AddCommand(NewParamsCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewFunctionsCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// applyEnv fills flags the user did not set from the environment.
func (o *RootOptions) applyEnv(cmd *cobra.Command) {
	flags := cmd.Flags()
	if v := os.Getenv(EnvDatabase); v != "" && !flags.Changed("db") {
		o.Database = v
	}
	if v := os.Getenv(EnvUser); v != "" && !flags.Changed("user") {
		o.User = v
	}
	if v := os.Getenv(EnvConfig); v != "" && !flags.Changed("config") {
		o.Config = v
	}
}

// Logger returns a text logger on the diagnostics writer, at debug level
// with --verbose and info otherwise.
func (o *RootOptions) Logger() *slog.Logger {
	logLevel := slog.LevelInfo
	if o.Verbose {
		logLevel = slog.LevelDebug
	}
	w := o.LogWriter
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// Formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) Formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// LoadConfig loads the chain configuration, defaults overlaid with --config.
func (o *RootOptions) LoadConfig() (*chainconfig.Config, error) {
	cfg, err := chainconfig.Load(o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load chain configuration", err)
	}
	return cfg, nil
}

// OpenStore opens the database, creating it when create is set. Without
// create a missing database is a command error.
func (o *RootOptions) OpenStore(create bool) (*store.Store, error) {
	if o.Database == "" {
		return nil, NewExitError(ExitCommandError, "no database given (use --db or "+EnvDatabase+")")
	}
	if !create && o.Database != ":memory:" {
		if _, err := os.Stat(o.Database); errors.Is(err, os.ErrNotExist) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", o.Database))
		}
	}
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// closeStore closes st and logs a failure.
func closeStore(st *store.Store, logger *slog.Logger) {
	if err := st.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
