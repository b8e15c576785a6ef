package highlight

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	// Force ANSI color output in tests (lipgloss disables colors when no TTY)
	lipgloss.SetColorProfile(termenv.ANSI256)
}

// spanText maps the text of each span to its tag.
func spanText(line string, spans []Span) map[string]Tag {
	out := make(map[string]Tag, len(spans))
	for _, sp := range spans {
		out[line[sp.Start:sp.End]] = sp.Tag
	}
	return out
}

// mutableTheme is a ThemeProvider tests can switch.
type mutableTheme struct {
	name string
	ok   bool
}

func (m *mutableTheme) Theme() (string, bool) { return m.name, m.ok }
