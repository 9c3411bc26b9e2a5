package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ErrBackendUnavailable is returned when the notification backend cannot
// be created (e.g. inotify instance limits are exhausted).
var ErrBackendUnavailable = errors.New("filesystem notifications unavailable")

// Source turns fsnotify notifications for a directory tree into Events.
type Source struct {
	root    string
	watcher *fsnotify.Watcher
	events  chan Event
	logger  *slog.Logger
}

// NewSource subscribes to root and every non-hidden directory below it.
func NewSource(root string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	if err := addRecursive(w, root); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}

	return &Source{
		root:    root,
		watcher: w,
		events:  make(chan Event),
		logger:  logger,
	}, nil
}

// Events returns the channel Pump delivers on. It is closed when Pump returns.
func (s *Source) Events() <-chan Event { return s.events }

// WatchList returns the directories currently subscribed.
func (s *Source) WatchList() []string { return s.watcher.WatchList() }

// Pump forwards notifications until ctx is done or the backend shuts down.
// Backend errors are logged and do not stop the pump.
func (s *Source) Pump(ctx context.Context) error {
	defer close(s.events)

	for {
		select {
		case <-ctx.Done():
			return nil

		case raw, ok := <-s.watcher.Events:
			if !ok {
				return nil
			}

			select {
			case s.events <- s.translate(raw):
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return nil
			}

			if errors.Is(err, fsnotify.ErrEventOverflow) {
				s.logger.Warn("notification queue overflowed, changes may be missed")
				continue
			}

			s.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

// Close ends the subscription. It is safe to call more than once.
func (s *Source) Close() error {
	return s.watcher.Close()
}

func (s *Source) translate(raw fsnotify.Event) Event {
	ev := Event{Path: raw.Name, Op: raw.Op}

	if !raw.Has(fsnotify.Create) && !raw.Has(fsnotify.Write) {
		return ev
	}

	info, err := os.Stat(raw.Name)
	if err != nil || !info.IsDir() {
		return ev
	}

	ev.IsDir = true

	// New directories are subscribed so modules added later are watched.
	if raw.Has(fsnotify.Create) && !isHidden(raw.Name) {
		if err := addRecursive(s.watcher, raw.Name); err != nil {
			s.logger.Warn("cannot watch new directory",
				slog.String("path", raw.Name), slog.String("error", err.Error()))
		}
	}

	return ev
}

// addRecursive walks root and adds all directories to the watcher.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && isHidden(path) {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
}

func isHidden(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
