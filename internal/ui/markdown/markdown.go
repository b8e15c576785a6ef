// Package markdown renders markdown cells for the notebook view.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// StyleFor maps the ui.markdown_style setting to a glamour style name.
// "auto" and "" follow the highlighting theme.
//
// glamour's own auto style is never used: it queries the terminal, and the
// reply would leak into the bubbletea input stream.
func StyleFor(setting string, dark bool) string {
	switch setting {
	case "dark", "light":
		return setting
	}
	if dark {
		return "dark"
	}
	return "light"
}

// Renderer wraps glamour with legendnb's configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// New creates a markdown renderer with the given wrap width and style
// ("dark" or "light", default "dark").
func New(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s markdown renderer: %w", style, err)
	}
	return &Renderer{renderer: r, width: width, style: style}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Style returns the glamour style name.
func (r *Renderer) Style() string {
	return r.style
}

// Render transforms markdown to styled terminal output without trailing
// blank lines.
func (r *Renderer) Render(markdown string) (string, error) {
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// Cache keeps one renderer per width and style so resizing or toggling the
// theme back does not rebuild glamour's style tree.
type Cache struct {
	renderers map[string]*Renderer
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{renderers: make(map[string]*Renderer)}
}

// Get returns a renderer for width and style, creating it on first use.
func (c *Cache) Get(width int, style string) (*Renderer, error) {
	k := fmt.Sprintf("%d|%s", width, style)
	if r, ok := c.renderers[k]; ok {
		return r, nil
	}
	r, err := New(width, style)
	if err != nil {
		return nil, err
	}
	c.renderers[k] = r
	return r, nil
}

// Len returns the number of cached renderers.
func (c *Cache) Len() int {
	return len(c.renderers)
}
