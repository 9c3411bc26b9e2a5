// Package watch implements the schema watcher. It subscribes to filesystem
// notifications under a module root, keeps only writes to schema files,
// drops repeats of the same file inside a debounce window, and regenerates
// the owning module through an external engine, reporting every step with
// a [Watch] status line.
//
// Notifications are produced by a [Source] and consumed by a single
// dispatch loop, which is the only owner of the [DebounceTable].
package watch
