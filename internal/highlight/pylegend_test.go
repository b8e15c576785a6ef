package highlight

import (
	"context"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestPylegendGrammar_Spans(t *testing.T) {
	line := "let r = $people->filter(p|$p.age > 18) // adults"
	got := spanText(line, PylegendGrammar().Spans(line))

	require.Equal(t, TagKeyword, got["let"])
	require.Equal(t, TagIdentifier, got["r"])
	require.Equal(t, TagVariable, got["$people"])
	require.Equal(t, TagArrow, got["->filter"])
	require.Equal(t, TagParen, got["("])
	require.Equal(t, TagOperator, got[">"])
	require.Equal(t, TagNumber, got["18"])
	require.Equal(t, TagComment, got["// adults"])
}

func TestBuildLanguageSupport_CustomTagColors(t *testing.T) {
	line := "$x->map()"

	for _, tt := range []struct {
		dark          bool
		arrow, varCol string
	}{
		{false, "#0c4a87", "#8B4513"},
		{true, "#61dafb", "#ffb86c"},
	} {
		support := BuildLanguageSupport(tt.dark)
		require.Equal(t, PylegendName, support.Name())
		require.Equal(t, tt.dark, support.Dark())

		colors := map[Tag]lipgloss.TerminalColor{}
		for _, tok := range support.Tokenize(line) {
			colors[tok.Tag] = tok.Style.GetForeground()
			if tok.Tag == TagArrow || tok.Tag == TagVariable {
				require.True(t, tok.Style.GetBold())
			}
		}
		require.Equal(t, lipgloss.Color(tt.arrow), colors[TagArrow])
		require.Equal(t, lipgloss.Color(tt.varCol), colors[TagVariable])
	}
}

func TestRegisterLanguage_FollowsTheme(t *testing.T) {
	theme := &mutableTheme{name: "JupyterLab Light", ok: true}
	reg := NewRegistry()
	require.NoError(t, RegisterLanguage(reg, theme))

	spec, ok := reg.FindByExtension(PylegendExtension)
	require.True(t, ok)
	require.Equal(t, PylegendMime, spec.Mime)

	load := func() *LanguageSupport {
		support, err := reg.Load(context.Background(), PylegendMime)
		require.NoError(t, err)
		return support
	}

	require.False(t, load().Dark())

	theme.name = "JupyterLab Dark"
	require.True(t, load().Dark(), "the next load sees the new theme")

	theme.ok = false
	require.False(t, load().Dark(), "no theme is light")

	theme.name, theme.ok = "Monokai", true
	require.False(t, load().Dark(), "unrecognized theme is light")
}

func TestRegisterLanguage_Twice(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterLanguage(reg, nil))
	require.ErrorIs(t, RegisterLanguage(reg, nil), ErrDuplicateLanguage)
}

func TestLanguageSupport_Render(t *testing.T) {
	line := "Person.all()->project(~[name])"
	out := BuildLanguageSupport(false).Render(line)

	require.NotEqual(t, line, out)
	require.Equal(t, line, ansi.Strip(out))
}
