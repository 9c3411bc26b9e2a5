package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/schemawatch/internal/config"
)

const defaultEngineConstraint = ">=4.0"

func newDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor [module_path]",
		Short: "Check that the engine and regeneration script are usable",
		Long: `Doctor verifies the environment the watcher depends on: the engine
executable can be found, reports a version that satisfies the engine
constraint (default ">=4.0"), the regeneration script exists, and the
module root is a directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			w := cmd.OutOrStdout()

			root := config.DefaultRoot
			if len(args) == 1 {
				root = args[0]
			}

			constraint := cfg.EngineConstraint
			if constraint == "" {
				constraint = defaultEngineConstraint
			}

			failed := 0
			report := func(err error, okMsg string) {
				if err != nil {
					failed++
					fmt.Fprintf(w, "✗ %v\n", err)

					return
				}

				fmt.Fprintf(w, "✓ %s\n", okMsg)
			}

			path, lookErr := exec.LookPath(cfg.GodotBin)
			report(lookErr, "engine: "+path)

			if lookErr == nil {
				ev, err := checkEngine(cmd.Context(), cfg.GodotBin, constraint)
				if ev != nil {
					report(err, fmt.Sprintf("engine version %s satisfies %q", ev.Version, constraint))
				} else {
					report(err, "")
				}
			}

			script := cfg.Script
			if !filepath.IsAbs(script) && cfg.ProjectDir != "" {
				script = filepath.Join(cfg.ProjectDir, script)
			}

			report(checkFile(script, false), "script: "+script)
			report(checkFile(root, true), "module root: "+root)

			if failed > 0 {
				return &ExitError{Code: 1, Err: fmt.Errorf("%d check(s) failed", failed)}
			}

			return nil
		},
	}

	cmd.Flags().String("script", config.DefaultScript, "engine script that regenerates a module")
	cmd.Flags().String("project-dir", "", "working directory for the engine (default: current directory)")

	return cmd
}

func checkFile(path string, wantDir bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: not found", path)
		}

		return err
	}

	if wantDir && !info.IsDir() {
		return fmt.Errorf("%s: not a directory", path)
	}

	if !wantDir && info.IsDir() {
		return fmt.Errorf("%s: is a directory", path)
	}

	return nil
}
