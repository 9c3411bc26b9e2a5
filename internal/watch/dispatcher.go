package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/schemawatch/internal/engine"
)

// Regenerator regenerates the module in moduleDir. *engine.Runner is the
// production implementation.
type Regenerator interface {
	Regenerate(ctx context.Context, moduleDir string) engine.Result
}

// Dispatcher applies the filter, debounce and regenerate steps to each
// event. Handle must be called from a single goroutine.
type Dispatcher struct {
	schemaFile string
	table      *DebounceTable
	snapshots  *Snapshots
	regen      Regenerator
	reporter   *Reporter
	logger     *slog.Logger
}

// NewDispatcher wires a dispatcher. snapshots may be nil to disable diffs.
func NewDispatcher(schemaFile string, table *DebounceTable, snapshots *Snapshots,
	regen Regenerator, reporter *Reporter, logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		schemaFile: schemaFile,
		table:      table,
		snapshots:  snapshots,
		regen:      regen,
		reporter:   reporter,
		logger:     logger,
	}
}

// Handle processes one event and reports whether it triggered a
// regeneration. It blocks until the regeneration has finished.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) bool {
	if !isRelevant(ev, d.schemaFile) {
		return false
	}

	key, err := filepath.Abs(ev.Path)
	if err != nil {
		key = ev.Path
	}

	if !d.table.Accept(key) {
		last, _ := d.table.Last(key)
		d.logger.Debug("change debounced",
			slog.String("path", ev.Path),
			slog.Time("lastAccepted", last),
		)

		return false
	}

	d.logger.Debug("change accepted", slog.String("path", ev.Path), slog.Int("tracked", d.table.Len()))

	d.reporter.Blank()
	d.reporter.Infof("Schema changed: %s", ev.Path)
	d.showDiff(ev.Path)

	moduleDir := filepath.Dir(ev.Path)
	d.regenerate(ctx, moduleDir)

	return true
}

func (d *Dispatcher) showDiff(path string) {
	if d.snapshots == nil {
		return
	}

	diff, err := d.snapshots.Update(path)
	if err != nil {
		d.logger.Warn("cannot diff schema", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	if diff == "" {
		return
	}

	d.reporter.Infof("Diff: %s", DiffSummary(diff))
	d.reporter.Echo(diff)
}

func (d *Dispatcher) regenerate(ctx context.Context, moduleDir string) {
	runID := uuid.NewString()

	d.reporter.Infof("Regenerating module: %s", moduleDir)
	d.logger.Debug("regeneration started", slog.String("run", runID), slog.String("module", moduleDir))

	res := d.regen.Regenerate(ctx, moduleDir)

	level := slog.LevelInfo
	if !res.OK() {
		level = slog.LevelWarn
	}

	d.logger.Log(ctx, level, "regeneration finished",
		slog.String("run", runID),
		slog.String("module", moduleDir),
		slog.String("command", strings.Join(res.Command, " ")),
		slog.String("outcome", res.Outcome.String()),
		slog.Int("exitCode", res.ExitCode),
		slog.Duration("duration", res.Duration),
	)

	switch res.Outcome {
	case engine.OutcomeSuccess:
		d.reporter.Successf("Regeneration complete")
		d.reporter.Echo(res.Stdout)
	case engine.OutcomeFailure:
		d.reporter.Failuref("Regeneration failed (exit code %d)", res.ExitCode)
		d.reporter.Echo(res.Stderr)
	case engine.OutcomeTimeout:
		d.reporter.Failuref("Regeneration timed out after %s", res.Duration.Round(100*time.Millisecond))
	case engine.OutcomeCancelled:
		d.reporter.Failuref("Regeneration cancelled")
	case engine.OutcomeSpawnError:
		d.reporter.Failuref("Error: %v", res.Err)
	default:
		d.reporter.Failuref("Error: unexpected outcome %s", res.Outcome)
	}
}
