// Package flags provides feature flag support for optional notebook view
// behavior. Flags are read-only after initialization and unknown flags are
// disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/ilegend/legendnb/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagRenderMarkdown renders markdown cells with glamour. When disabled
	// markdown cells show their raw source.
	FlagRenderMarkdown = "render-markdown"

	// FlagMouse enables mouse support: clicking a kernel selector opens it.
	FlagMouse = "mouse"
)

// Defaults returns the built-in flag values. Configuration overrides them.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagRenderMarkdown: true,
		FlagMouse:          true,
	}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from the defaults overlaid with overrides.
func New(overrides map[string]bool) *Registry {
	flags := Defaults()
	maps.Copy(flags, overrides)
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(flags), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Unknown flags and a nil registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}

// Names returns the flag names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.flags))
}
