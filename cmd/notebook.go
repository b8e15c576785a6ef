package cmd

import (
	"fmt"

	"github.com/ilegend/legendnb/internal/app"
	"github.com/ilegend/legendnb/internal/cachemanager"
	"github.com/ilegend/legendnb/internal/config"
	"github.com/ilegend/legendnb/internal/directive"
	"github.com/ilegend/legendnb/internal/highlight"
	"github.com/ilegend/legendnb/internal/log"
	"github.com/ilegend/legendnb/internal/notebook"
	"github.com/ilegend/legendnb/internal/paths"
	"github.com/ilegend/legendnb/internal/tracing"
)

// loadNotebook resolves target and reads it. Cells without a recorded
// language get the identity of their directive.
func loadNotebook(target string, ids directive.Identities) (*notebook.Document, error) {
	path, err := paths.ResolveNotebook(target)
	if err != nil {
		return nil, err
	}
	return notebook.Load(path, app.ReadOptions(ids))
}

// cellAt returns the cell with one-based index n.
func cellAt(doc *notebook.Document, n int) (*notebook.Cell, error) {
	c, err := doc.Cell(n - 1)
	if err != nil {
		return nil, fmt.Errorf("cell %d: %w", n, err)
	}
	return c, nil
}

// newController builds a controller from the kernels config.
func newController(cfg config.Config, provider *tracing.Provider) *directive.Controller {
	return directive.NewController(directive.Options{
		Identities: app.IdentitiesFromConfig(cfg.Kernels),
		Managed:    cfg.Kernels.Managed,
		Tracer:     provider.Tracer(),
	})
}

// newRegistry registers the built-in languages and points the configured
// kernel identities at them.
func newRegistry(kernels config.KernelsConfig, themes highlight.ThemeProvider, provider *tracing.Provider) *highlight.Registry {
	reg := highlight.NewRegistry(highlight.WithTracer(provider.Tracer()))
	if err := highlight.RegisterDefaults(reg, themes); err != nil {
		log.ErrorErr(log.CatHighlight, "Registering languages failed", err)
	}
	if err := highlight.RegisterIdentities(reg, kernels.DefaultIdentity, kernels.AlternateIdentity); err != nil {
		log.ErrorErr(log.CatHighlight, "Registering kernel identities failed", err)
	}
	return reg
}

// newHighlighter caches rendered lines for cfg.Cache.TTL.
func newHighlighter(cfg config.Config, themes highlight.ThemeProvider, provider *tracing.Provider) *highlight.Highlighter {
	cache := cachemanager.NewInMemoryCacheManager[string]("highlight", cfg.Cache.TTL, 0)
	return highlight.NewHighlighter(newRegistry(cfg.Kernels, themes, provider), cache, cfg.Cache.TTL)
}
