package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/schemawatch/internal/config"
	"github.com/hupe1980/schemawatch/internal/watch"
)

func newModulesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "modules [module_path]",
		Short: "List the modules the watcher would regenerate",
		Long: `List every directory below the module root that contains a schema
file. Hidden directories are skipped, exactly as the watcher skips them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())

			root := config.DefaultRoot
			if len(args) == 1 {
				root = args[0]
			}

			modules, err := watch.Discover(root, cfg.SchemaFile)
			if err != nil {
				return &ExitError{Code: 1, Err: fmt.Errorf("listing modules in %s: %w", root, err)}
			}

			return renderModules(cmd.OutOrStdout(), format, modules)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "table", "output format: table, json, yaml")

	return cmd
}

type moduleList struct {
	Modules []watch.Module `json:"modules" yaml:"modules"`
}

func renderModules(w io.Writer, format string, modules []watch.Module) error {
	if modules == nil {
		modules = []watch.Module{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(moduleList{Modules: modules})
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(moduleList{Modules: modules}); err != nil {
			return err
		}

		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MODULE\tSCHEMA")

		for _, m := range modules {
			fmt.Fprintf(tw, "%s\t%s\n", m.Name, m.Schema)
		}

		return tw.Flush()
	default:
		return &ExitError{Code: 2, Err: fmt.Errorf("unknown format %q: expected table, json, yaml", format)}
	}
}
