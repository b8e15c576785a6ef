package highlight

import (
	"context"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/ilegend/legendnb/internal/log"
)

// Python registration record.
const (
	PythonName      = "python"
	PythonMime      = "text/x-python"
	PythonExtension = ".py"
)

var pythonKeywords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true, "match": true, "case": true, "print": true,
	"exec": true, "type": true,
}

// pythonGrammar tags Python lines using the tree-sitter Python parser.
// Lines are parsed in isolation, so constructs spanning lines (triple
// quoted strings) are tagged per line on a best-effort basis.
type pythonGrammar struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewPythonGrammar returns a tree-sitter backed Python grammar.
func NewPythonGrammar() Grammar {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &pythonGrammar{parser: parser}
}

func (g *pythonGrammar) Name() string { return PythonName }

func (g *pythonGrammar) Spans(line string) []Span {
	if line == "" {
		return nil
	}
	content := []byte(line)

	g.mu.Lock()
	tree, err := g.parser.ParseCtx(context.Background(), nil, content)
	g.mu.Unlock()
	if err != nil {
		log.Debug(log.CatHighlight, "python parse failed", "error", err)
		return nil
	}
	defer tree.Close()

	var spans []Span
	collectPythonSpans(tree.RootNode(), &spans)
	return spans
}

func collectPythonSpans(node *sitter.Node, spans *[]Span) {
	if node == nil {
		return
	}
	start, end := int(node.StartByte()), int(node.EndByte())
	if end <= start {
		return
	}

	kind := node.Type()
	switch kind {
	case "string", "comment":
		*spans = append(*spans, Span{Start: start, End: end, Tag: pythonTag(kind, node.IsNamed())})
		return
	}

	if node.ChildCount() == 0 {
		if tag := pythonTag(kind, node.IsNamed()); tag != TagNone {
			*spans = append(*spans, Span{Start: start, End: end, Tag: tag})
		}
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectPythonSpans(node.Child(i), spans)
	}
}

func pythonTag(kind string, named bool) Tag {
	if named {
		switch kind {
		case "identifier":
			return TagIdentifier
		case "integer", "float":
			return TagNumber
		case "true", "false", "none":
			return TagKeyword
		case "string":
			return TagString
		case "comment":
			return TagComment
		}
		return TagNone
	}
	switch {
	case pythonKeywords[kind]:
		return TagKeyword
	case kind == "(" || kind == ")" || kind == "[" || kind == "]" || kind == "{" || kind == "}":
		return TagParen
	case isPunctuation(kind):
		return TagOperator
	}
	return TagNone
}

func isPunctuation(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case '+', '-', '*', '/', '%', '@', '&', '|', '^', '~', '<', '>', '=', '!', '.', ',', ':', ';':
		default:
			return false
		}
	}
	return true
}

// BuildPythonSupport returns Python support over g styled for dark or light.
func BuildPythonSupport(g Grammar, dark bool) *LanguageSupport {
	return NewLanguageSupport(g, ResolveStyle(dark))
}

// RegisterPython registers Python with reg, with the same theme rules as
// RegisterLanguage. The parser is shared by every load.
func RegisterPython(reg *Registry, provider ThemeProvider) error {
	g := NewPythonGrammar()
	return reg.AddLanguage(LanguageSpec{
		Name:       PythonName,
		Mime:       PythonMime,
		Aliases:    []string{"text/x-ipython"},
		Extensions: []string{PythonExtension},
		Load: func(ctx context.Context) (*LanguageSupport, error) {
			dark := ThemeIsDark(provider)
			log.Debug(log.CatHighlight, "loading python language", "style", flavor(dark))
			return BuildPythonSupport(g, dark), nil
		},
	})
}
