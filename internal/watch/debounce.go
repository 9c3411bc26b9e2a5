package watch

import "time"

// DebounceTable remembers when each path last triggered a regeneration.
// An event for a path is accepted unless the previous accepted event for
// the same path is less than the window old. Entries are never evicted.
//
// A DebounceTable is not safe for concurrent use; the dispatch loop owns it.
type DebounceTable struct {
	window time.Duration
	now    func() time.Time
	last   map[string]time.Time
}

// NewDebounceTable creates an empty table. A nil now uses time.Now.
func NewDebounceTable(window time.Duration, now func() time.Time) *DebounceTable {
	if now == nil {
		now = time.Now
	}

	return &DebounceTable{
		window: window,
		now:    now,
		last:   make(map[string]time.Time),
	}
}

// Accept reports whether an event for path should trigger now, recording
// the time when it does. Suppressed events leave the table untouched.
func (d *DebounceTable) Accept(path string) bool {
	now := d.now()

	if last, ok := d.last[path]; ok && now.Sub(last) < d.window {
		return false
	}

	d.last[path] = now

	return true
}

// Last returns the time path was last accepted.
func (d *DebounceTable) Last(path string) (time.Time, bool) {
	t, ok := d.last[path]
	return t, ok
}

// Len returns the number of distinct paths ever accepted.
func (d *DebounceTable) Len() int { return len(d.last) }
