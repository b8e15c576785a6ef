package highlight

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ilegend/legendnb/internal/cachemanager"
	"github.com/ilegend/legendnb/internal/log"
)

type renderInput struct {
	support *LanguageSupport
	line    string
}

// Highlighter renders cell text for a language identity, caching rendered
// lines per language, theme flavor and line text.
type Highlighter struct {
	reg   *Registry
	cache *cachemanager.ReadThroughCache[string, string, renderInput]
	ttl   time.Duration
}

// NewHighlighter renders with languages from reg. A nil cache disables
// caching.
func NewHighlighter(reg *Registry, cache cachemanager.CacheManager[string, string], ttl time.Duration) *Highlighter {
	return &Highlighter{
		reg: reg,
		cache: cachemanager.NewReadThroughCache[string, string, renderInput](
			cache,
			func(_ context.Context, in renderInput) (string, error) {
				return in.support.Render(in.line), nil
			},
			cache == nil,
		),
		ttl: ttl,
	}
}

// Support loads the language serving identity. ok is false for unknown
// identities and failing loaders.
func (h *Highlighter) Support(ctx context.Context, identity string) (*LanguageSupport, bool) {
	support, err := h.reg.Load(ctx, identity)
	if err != nil {
		if !errors.Is(err, ErrUnknownLanguage) {
			log.ErrorErr(log.CatHighlight, "language load failed", err, "identity", identity)
		}
		return nil, false
	}
	return support, true
}

// RenderLines styles each line; lines of unknown identities come back
// unchanged.
func (h *Highlighter) RenderLines(ctx context.Context, identity string, lines []string) []string {
	out := make([]string, len(lines))
	support, ok := h.Support(ctx, identity)
	if !ok {
		copy(out, lines)
		return out
	}
	for i, line := range lines {
		out[i] = h.renderLine(ctx, support, line)
	}
	return out
}

// Render styles a whole cell source.
func (h *Highlighter) Render(ctx context.Context, identity, source string) string {
	return strings.Join(h.RenderLines(ctx, identity, strings.Split(source, "\n")), "\n")
}

// Invalidate drops cached lines, e.g. after the terminal color profile
// changed.
func (h *Highlighter) Invalidate(ctx context.Context) {
	if err := h.cache.Invalidate(ctx); err != nil {
		log.ErrorErr(log.CatHighlight, "cache flush failed", err)
	}
}

func (h *Highlighter) renderLine(ctx context.Context, support *LanguageSupport, line string) string {
	if line == "" {
		return ""
	}
	key := support.Name() + "|" + strconv.FormatBool(support.Dark()) + "|" + line
	out, err := h.cache.Get(ctx, key, renderInput{support: support, line: line}, h.ttl)
	if err != nil {
		return line
	}
	return out
}
