package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/simdb/internal/aggregate"
)

// FunctionInfo describes a registered result function.
type FunctionInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Module   string `json:"module"`
	Port     string `json:"port"`
	Label    string `json:"label"`
	LogScale bool   `json:"log_scale"`
}

// NewFunctionsCommand creates the functions command.
func NewFunctionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the result functions queries can plot",
		Long: `List the built-in result functions and those added by --config.

Modules and ports shown as <error> or <iteration> are resolved per chain
from the chain configuration.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.LoadConfig()
			if err != nil {
				return err
			}
			reg, err := aggregate.FromConfig(cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid function configuration", err)
			}

			infos := make([]FunctionInfo, 0)
			for _, fn := range reg.Functions() {
				infos = append(infos, FunctionInfo{
					Name:     fn.Name,
					Kind:     fn.Kind.String(),
					Module:   refString(fn.Module),
					Port:     refString(fn.Port),
					Label:    fn.Label,
					LogScale: fn.LogScale,
				})
			}

			f := rootOpts.Formatter(cmd)
			if f.Format == "json" {
				return f.Success(infos)
			}
			rows := make([][]string, len(infos))
			for i, info := range infos {
				scale := "linear"
				if info.LogScale {
					scale = "log"
				}
				rows[i] = []string{info.Name, info.Kind, info.Module + "." + info.Port, scale}
			}
			return f.Table([]string{"NAME", "KIND", "SOURCE", "SCALE"}, rows)
		},
	}
}

func refString(r aggregate.Ref) string {
	if r.Role != aggregate.RoleNone {
		return "<" + string(r.Role) + ">"
	}
	return r.Name
}
