package watch

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	glyphOK   = "✓"
	glyphFail = "✗"
)

// Reporter writes the operator-facing [Watch] log.
type Reporter struct {
	out    io.Writer
	prefix lipgloss.Style
	ok     lipgloss.Style
	fail   lipgloss.Style
}

// NewReporter creates a Reporter for w. Colors are only emitted when color
// is set and w is a terminal that supports them.
func NewReporter(w io.Writer, color bool) *Reporter {
	r := lipgloss.NewRenderer(w)

	rep := &Reporter{
		out:    w,
		prefix: r.NewStyle(),
		ok:     r.NewStyle(),
		fail:   r.NewStyle(),
	}

	if color {
		rep.prefix = rep.prefix.Bold(true).Foreground(lipgloss.Color("6"))
		rep.ok = rep.ok.Foreground(lipgloss.Color("2"))
		rep.fail = rep.fail.Foreground(lipgloss.Color("1"))
	}

	return rep
}

// Infof prints a plain status line.
func (r *Reporter) Infof(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.prefix.Render("[Watch]"), fmt.Sprintf(format, args...))
}

// Successf prints a status line marked with a check glyph.
func (r *Reporter) Successf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s %s\n", r.prefix.Render("[Watch]"), r.ok.Render(glyphOK), fmt.Sprintf(format, args...))
}

// Failuref prints a status line marked with a cross glyph.
func (r *Reporter) Failuref(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s %s\n", r.prefix.Render("[Watch]"), r.fail.Render(glyphFail), fmt.Sprintf(format, args...))
}

// Blank prints an empty separator line.
func (r *Reporter) Blank() {
	fmt.Fprintln(r.out)
}

// Echo writes captured engine output verbatim, ending with one newline.
func (r *Reporter) Echo(text string) {
	text = strings.TrimRight(text, "\r\n")
	if text == "" {
		return
	}

	fmt.Fprintln(r.out, text)
}
