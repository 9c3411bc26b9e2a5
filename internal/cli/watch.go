package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/schemawatch/internal/config"
	"github.com/hupe1980/schemawatch/internal/engine"
	"github.com/hupe1980/schemawatch/internal/logging"
	"github.com/hupe1980/schemawatch/internal/watch"
)

func runWatch(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	root := config.DefaultRoot
	if len(args) == 1 {
		root = args[0]
	}

	if cfg.EngineConstraint != "" {
		if _, err := checkEngine(ctx, cfg.GodotBin, cfg.EngineConstraint); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
	}

	runner := engine.NewRunner(engine.Options{
		Bin:     cfg.GodotBin,
		Script:  cfg.Script,
		Dir:     cfg.ProjectDir,
		Timeout: cfg.Timeout,
	})

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := watch.Run(sigCtx, watch.Options{
		Root:       root,
		SchemaFile: cfg.SchemaFile,
		Debounce:   cfg.Debounce,
		ShowDiff:   cfg.ShowDiff,
		Engine:     runner.Bin(),
		Color:      !cfg.NoColor,
		Logger:     logger,
		Out:        cmd.OutOrStdout(),
	}, runner)

	switch {
	case errors.Is(err, watch.ErrRootNotFound):
		if len(args) == 0 {
			return &ExitError{Code: 1, Err: fmt.Errorf("%s/ directory not found", root)}
		}

		return &ExitError{Code: 1, Err: fmt.Errorf("module path not found: %s", root)}
	case errors.Is(err, watch.ErrBackendUnavailable):
		return &ExitError{Code: 1, Err: err}
	}

	return err
}

// checkEngine probes the engine version and checks it against constraint.
func checkEngine(ctx context.Context, bin, constraint string) (*engine.EngineVersion, error) {
	ev, err := engine.ProbeVersion(ctx, bin)
	if err != nil {
		return nil, err
	}

	if err := engine.CheckVersion(ev.Version, constraint); err != nil {
		return ev, err
	}

	return ev, nil
}
