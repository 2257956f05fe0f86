package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dspeclang/dspec/pkg/compiler"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "graph [files...]",
		Short: "Print the resolved schema graph",
		Long: `Compile the schema files and print the resolved schema graph.
Diagnostics go to stderr; the graph is printed even when resolution
reported errors, with the failing members absent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := ConfigFrom(ctx)

			units, err := loadUnits(cfg, args)
			if err != nil {
				return err
			}
			policy, err := cfg.Policy()
			if err != nil {
				return err
			}

			res, err := compiler.Compile(ctx, units, compiler.Options{
				Policy:      policy,
				Parallelism: cfg.Parallelism,
				Logger:      LoggerFrom(ctx),
			})
			if err != nil {
				return err
			}

			for _, d := range res.Diagnostics {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), d.Error())
			}

			switch format {
			case "yaml":
				out, err := yaml.Marshal(res.Graph)
				if err != nil {
					return err
				}
				_, _ = cmd.OutOrStdout().Write(out)
				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res.Graph)
			default:
				return fmt.Errorf("invalid format %q (want json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Graph output format (json|yaml)")
	return cmd
}
