package watch

import (
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Event is a filesystem change delivered by a Source.
type Event struct {
	Path  string
	Op    fsnotify.Op
	IsDir bool
}

// isRelevant reports whether ev can trigger a regeneration. Writes count,
// and so do creates, which is how atomic-save editors replace a file.
func isRelevant(ev Event, schemaFile string) bool {
	if ev.IsDir {
		return false
	}

	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
		return false
	}

	return matchesSchema(ev.Path, schemaFile)
}

// matchesSchema is a literal suffix test on the full path.
func matchesSchema(path, schemaFile string) bool {
	return strings.HasSuffix(path, schemaFile)
}
