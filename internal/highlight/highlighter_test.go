package highlight

import (
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/ilegend/legendnb/internal/cachemanager"
)

func newTestHighlighter(t *testing.T, theme ThemeProvider) (*Highlighter, *cachemanager.InMemoryCacheManager[string]) {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, RegisterLanguage(reg, theme))
	require.NoError(t, RegisterPython(reg, theme))
	cache := cachemanager.NewInMemoryCacheManager[string]("highlight", time.Minute, time.Minute)
	return NewHighlighter(reg, cache, time.Minute), cache
}

func TestHighlighter_RenderCaches(t *testing.T) {
	h, cache := newTestHighlighter(t, StaticTheme("JupyterLab Light"))
	ctx := context.Background()
	source := "$a->filter(x|$x > 1)\n\n$a->filter(x|$x > 1)"

	out := h.Render(ctx, LegendMime, source)
	require.Equal(t, source, ansi.Strip(out))
	require.Equal(t, 1, cache.Len(), "identical lines share an entry; blank lines are not cached")

	require.Equal(t, out, h.Render(ctx, LegendMime, source))
	require.Equal(t, 1, cache.Len())
}

func TestHighlighter_ThemeSwitchMissesCache(t *testing.T) {
	theme := &mutableTheme{name: "JupyterLab Light", ok: true}
	h, cache := newTestHighlighter(t, theme)
	ctx := context.Background()

	light := h.Render(ctx, PylegendMime, "$a")
	theme.name = "JupyterLab Dark"
	dark := h.Render(ctx, PylegendMime, "$a")

	require.NotEqual(t, light, dark)
	require.Equal(t, 2, cache.Len())

	h.Invalidate(ctx)
	require.Zero(t, cache.Len())
}

func TestHighlighter_UnknownIdentityIsPlain(t *testing.T) {
	h, cache := newTestHighlighter(t, nil)

	lines := []string{"SELECT 1", "FROM t"}
	require.Equal(t, lines, h.RenderLines(context.Background(), "text/x-sql", lines))
	require.Zero(t, cache.Len())
}

func TestHighlighter_Python(t *testing.T) {
	h, _ := newTestHighlighter(t, nil)
	source := "#Kernel: Python\n#Code in Python below. Don't Remove this Header!!\nprint(1)"

	out := h.Render(context.Background(), PythonMime, source)
	require.Equal(t, source, ansi.Strip(out))
	require.NotEqual(t, source, out)
}

func TestHighlighter_NilCache(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterLanguage(reg, nil))
	h := NewHighlighter(reg, nil, 0)

	out := h.Render(context.Background(), LegendMime, "$x")
	require.Equal(t, "$x", ansi.Strip(out))
	h.Invalidate(context.Background())
}
