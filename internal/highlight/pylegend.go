package highlight

import (
	"context"

	"github.com/ilegend/legendnb/internal/log"
	"github.com/ilegend/legendnb/internal/pylegend"
)

// pylegend registration record.
const (
	PylegendName      = "pylegend"
	PylegendMime      = "text/x-pylegend"
	PylegendExtension = ".pylgd"
	// LegendMime is the identity of Legend notebook cells, served by the
	// pylegend grammar.
	LegendMime = "text/x-ilegend"
)

type pylegendGrammar struct{}

// PylegendGrammar returns the grammar for pylegend lines.
func PylegendGrammar() Grammar { return pylegendGrammar{} }

func (pylegendGrammar) Name() string { return PylegendName }

func (pylegendGrammar) Spans(line string) []Span {
	tokens := pylegend.Tokenize(line)
	spans := make([]Span, 0, len(tokens))
	for _, tok := range tokens {
		tag := pylegendTag(tok.Type)
		if tag == TagNone {
			continue
		}
		spans = append(spans, Span{Start: tok.Pos, End: tok.End(), Tag: tag})
	}
	return spans
}

func pylegendTag(t pylegend.TokenType) Tag {
	switch t {
	case pylegend.TokenKeyword:
		return TagKeyword
	case pylegend.TokenNumber:
		return TagNumber
	case pylegend.TokenOperator:
		return TagOperator
	case pylegend.TokenIdent:
		return TagIdentifier
	case pylegend.TokenParen:
		return TagParen
	case pylegend.TokenString:
		return TagString
	case pylegend.TokenComment:
		return TagComment
	case pylegend.TokenArrow:
		return TagArrow
	case pylegend.TokenVariable:
		return TagVariable
	default:
		return TagNone
	}
}

// BuildLanguageSupport returns pylegend support styled for dark or light.
func BuildLanguageSupport(dark bool) *LanguageSupport {
	return NewLanguageSupport(PylegendGrammar(), ResolveStyle(dark))
}

// RegisterLanguage registers pylegend with reg. The loader consults
// provider on every load, so a theme switch takes effect the next time the
// language is loaded.
func RegisterLanguage(reg *Registry, provider ThemeProvider) error {
	return reg.AddLanguage(LanguageSpec{
		Name:       PylegendName,
		Mime:       PylegendMime,
		Aliases:    []string{LegendMime},
		Extensions: []string{PylegendExtension},
		Load: func(ctx context.Context) (*LanguageSupport, error) {
			dark := ThemeIsDark(provider)
			log.Info(log.CatHighlight, "loading pylegend language", "style", flavor(dark))
			return BuildLanguageSupport(dark), nil
		},
	})
}

func flavor(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}
