package watch

import (
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Snapshots keeps the last seen content of each schema file so a change can
// be shown as a unified diff. It is owned by the dispatch loop.
type Snapshots struct {
	content map[string]string
}

// NewSnapshots creates an empty snapshot store.
func NewSnapshots() *Snapshots {
	return &Snapshots{content: make(map[string]string)}
}

// Prime records the current content of path as the baseline.
func (s *Snapshots) Prime(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	s.content[path] = string(data)

	return nil
}

// Update reads path, stores it as the new baseline and returns the diff
// against the previous one. Without a baseline the diff is empty.
func (s *Snapshots) Update(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	curr := string(data)
	prev, seen := s.content[path]
	s.content[path] = curr

	if !seen || prev == curr {
		return "", nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(prev),
		B:        difflib.SplitLines(curr),
		FromFile: path + " (previous)",
		ToFile:   path,
		Context:  2,
	})
	if err != nil {
		return "", fmt.Errorf("diffing %s: %w", path, err)
	}

	return diff, nil
}

// DiffSummary returns a one-line summary of a unified diff.
func DiffSummary(diff string) string {
	var added, removed int

	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}

	if added == 0 && removed == 0 {
		return "no content changes"
	}

	return fmt.Sprintf("+%d -%d line(s)", added, removed)
}
