package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Span is a tagged byte range of a line, End exclusive.
type Span struct {
	Start int
	End   int
	Tag   Tag
}

// Grammar splits a single line into tagged spans. Spans must be sorted by
// Start and must not overlap; gaps are plain text.
type Grammar interface {
	Name() string
	Spans(line string) []Span
}

// SyntaxToken is a styled region of a line.
type SyntaxToken struct {
	Start int
	End   int
	Tag   Tag
	Style lipgloss.Style
}

// LanguageSupport pairs a grammar with a style table.
type LanguageSupport struct {
	grammar Grammar
	styles  StyleTable
}

// NewLanguageSupport composes g with styles.
func NewLanguageSupport(g Grammar, styles StyleTable) *LanguageSupport {
	return &LanguageSupport{grammar: g, styles: styles}
}

// Name returns the grammar name.
func (s *LanguageSupport) Name() string { return s.grammar.Name() }

// Dark reports whether the dark table is in use.
func (s *LanguageSupport) Dark() bool { return s.styles.Dark() }

// Styles returns the style table.
func (s *LanguageSupport) Styles() StyleTable { return s.styles }

// Tokenize returns the styled tokens of line. Spans with tags the table
// does not style, and malformed spans, are dropped.
func (s *LanguageSupport) Tokenize(line string) []SyntaxToken {
	spans := s.grammar.Spans(line)
	tokens := make([]SyntaxToken, 0, len(spans))
	prev := 0
	for _, sp := range spans {
		if sp.Start < prev || sp.End <= sp.Start || sp.End > len(line) {
			continue
		}
		if _, ok := s.styles.Get(sp.Tag); !ok {
			continue
		}
		tokens = append(tokens, SyntaxToken{
			Start: sp.Start,
			End:   sp.End,
			Tag:   sp.Tag,
			Style: s.styles.Style(sp.Tag),
		})
		prev = sp.End
	}
	return tokens
}

// Render returns line with ANSI styling applied.
func (s *LanguageSupport) Render(line string) string {
	var b strings.Builder
	last := 0
	for _, tok := range s.Tokenize(line) {
		b.WriteString(line[last:tok.Start])
		b.WriteString(tok.Style.Render(line[tok.Start:tok.End]))
		last = tok.End
	}
	b.WriteString(line[last:])
	return b.String()
}
