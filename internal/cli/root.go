// Package cli implements the cobra command tree for schemawatch.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/schemawatch/internal/config"
	"github.com/hupe1980/schemawatch/internal/logging"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	return execute(context.Background(), NewRootCommand())
}

// execute runs cmd under ctx and maps its error to an exit code. A watcher
// stopped by cancelling ctx exits 0.
func execute(ctx context.Context, cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		cmd.PrintErrln("Error:", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return 1
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command. Running it without
// a subcommand starts the watcher.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "schemawatch [module_path]",
		Short: "Regenerate modules when their schema.toml changes",
		Long: `schemawatch watches a directory tree of modules for changes to
schema.toml files. When a schema changes, the owning module is regenerated
by running the engine headless:

  $GODOT_BIN --headless --script tools/regenerate_module.gd -- <module_dir>

Without an argument the modules/ directory is watched. Repeated changes to
the same file within the debounce window (1s) trigger only once, and each
regeneration is bounded by a timeout (30s). Press Ctrl+C to stop.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("configFile", cfg.ConfigFile),
				slog.String("godotBin", cfg.GodotBin),
				slog.Duration("timeout", cfg.Timeout),
				slog.Duration("debounce", cfg.Debounce),
			)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .schemawatch.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "only log errors (status lines still print)")

	registerEngineFlags(cmd)
	registerWatchFlags(cmd)

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	cmd.AddCommand(
		newVersionCommand(),
		newModulesCommand(),
		newDoctorCommand(),
		newCompletionCommand(),
	)

	return cmd
}
