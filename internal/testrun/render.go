package testrun

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	markOK   = "✔"
	markFail = "✘"
)

// Renderer writes normalized groups to a terminal, one line per Line.
type Renderer struct {
	w    io.Writer
	ok   lipgloss.Style
	fail lipgloss.Style
}

// NewRenderer creates a Renderer writing to w. Colors follow w's terminal
// capabilities; noColor forces plain output.
func NewRenderer(w io.Writer, noColor bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	if noColor {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		w:    w,
		ok:   lr.NewStyle().Foreground(lipgloss.Color("10")),
		fail: lr.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Render writes every line of every group in order.
func (r *Renderer) Render(groups []Group) error {
	for _, g := range groups {
		for _, line := range g.Lines {
			if _, err := fmt.Fprintf(r.w, "  %s %s\n", r.mark(line.OK), line.Text); err != nil {
				return fmt.Errorf("writing %s: %w", g.Field, err)
			}
		}
	}
	return nil
}

// mark styles only the marker; multi-line text is left unstyled so lipgloss
// does not pad it into a block.
func (r *Renderer) mark(ok bool) string {
	if ok {
		return r.ok.Render(markOK)
	}
	return r.fail.Render(markFail)
}
