package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/schemawatch/internal/config"
)

// registerEngineFlags adds the flags shared by every command that talks to
// the engine or walks modules. They are persistent so subcommands see them.
func registerEngineFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("godot-bin", config.DefaultGodotBin, "engine executable (env: GODOT_BIN)")
	pf.String("schema-file", config.DefaultSchemaFile, "schema file name that marks a module")
	pf.String("engine-constraint", "", "required engine version, e.g. \">=4.2\"")
}

// registerWatchFlags adds the watcher and regeneration flags to cmd.
func registerWatchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("script", config.DefaultScript, "engine script that regenerates a module")
	f.String("project-dir", "", "working directory for the engine (default: current directory)")
	f.Duration("timeout", config.DefaultTimeout, "timeout for a single regeneration")
	f.Duration("debounce", config.DefaultDebounce, "ignore repeated changes to a file within this window")
	f.Bool("show-diff", false, "print a diff of each changed schema file")
}
