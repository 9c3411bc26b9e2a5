package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrRootNotFound is returned when the watch root does not exist or is not
// a directory.
var ErrRootNotFound = errors.New("watch root not found")

// Options configures the watch behaviour.
type Options struct {
	// Root is the module directory tree to watch recursively.
	Root string

	// SchemaFile is the file name suffix that marks a schema change.
	SchemaFile string

	// Debounce is the per-file window in which repeated changes are ignored.
	Debounce time.Duration

	// ShowDiff prints a unified diff of each changed schema file.
	ShowDiff bool

	// Engine is the engine binary, shown in the startup banner.
	Engine string

	// Color enables colored status glyphs.
	Color bool

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for the [Watch] status log.
	Out io.Writer

	// Now is the debounce clock. Nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns the stock watch options.
func DefaultOptions() Options {
	return Options{
		Root:       "modules",
		SchemaFile: "schema.toml",
		Debounce:   time.Second,
		Engine:     "godot",
		Logger:     slog.Default(),
		Out:        os.Stdout,
	}
}

// Run watches opts.Root and regenerates modules whose schema file changes.
// It returns ErrRootNotFound or ErrBackendUnavailable before watching
// starts, and nil once ctx is cancelled and the subscription is closed.
func Run(ctx context.Context, opts Options, regen Regenerator) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if opts.SchemaFile == "" {
		opts.SchemaFile = "schema.toml"
	}

	if err := checkRoot(opts.Root); err != nil {
		return err
	}

	src, err := NewSource(opts.Root, opts.Logger)
	if err != nil {
		return err
	}
	defer src.Close()

	rep := NewReporter(opts.Out, opts.Color)

	abs, err := filepath.Abs(opts.Root)
	if err != nil {
		abs = opts.Root
	}

	modules, err := Discover(opts.Root, opts.SchemaFile)
	if err != nil {
		opts.Logger.Warn("module discovery failed", slog.String("error", err.Error()))
	}

	rep.Infof("Starting file watcher...")
	rep.Infof("Watching: %s", abs)
	rep.Infof("Godot: %s", opts.Engine)
	rep.Infof("Modules: %d", len(modules))
	rep.Infof("Press Ctrl+C to stop")
	rep.Blank()

	opts.Logger.Debug("subscribed", slog.Int("directories", len(src.WatchList())))

	var snapshots *Snapshots
	if opts.ShowDiff {
		snapshots = NewSnapshots()

		for _, m := range modules {
			if err := snapshots.Prime(m.Schema); err != nil {
				opts.Logger.Warn("cannot read schema", slog.String("path", m.Schema), slog.String("error", err.Error()))
			}
		}
	}

	dispatcher := NewDispatcher(opts.SchemaFile, NewDebounceTable(opts.Debounce, opts.Now),
		snapshots, regen, rep, opts.Logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return src.Pump(gctx)
	})

	g.Go(func() error {
		for ev := range src.Events() {
			dispatcher.Handle(gctx, ev)
		}

		return nil
	})

	runErr := g.Wait()

	rep.Blank()
	rep.Infof("Stopping...")

	if err := src.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("closing watcher: %w", err)
	}

	rep.Infof("Stopped")

	return runErr
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}

		return fmt.Errorf("checking watch root: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	return nil
}
