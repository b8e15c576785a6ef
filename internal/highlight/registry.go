package highlight

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ilegend/legendnb/internal/tracing"
)

var (
	// ErrUnknownLanguage is returned for a mime type nothing is registered for.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrDuplicateLanguage is returned when a name, mime type or alias is
	// already registered.
	ErrDuplicateLanguage = errors.New("language already registered")
)

// Loader produces language support. Registries call it on every load, so a
// loader may return different support over time.
type Loader func(ctx context.Context) (*LanguageSupport, error)

// LanguageSpec describes a registered language.
type LanguageSpec struct {
	Name       string
	Mime       string
	Aliases    []string
	Extensions []string
	Load       Loader
}

// Registry maps identities and file extensions to languages.
type Registry struct {
	mu     sync.RWMutex
	specs  map[string]LanguageSpec // by name
	byMime map[string]string
	byExt  map[string]string
	tracer trace.Tracer
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTracer records a span for every Load.
func WithTracer(t trace.Tracer) RegistryOption {
	return func(r *Registry) {
		if t != nil {
			r.tracer = t
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		specs:  make(map[string]LanguageSpec),
		byMime: make(map[string]string),
		byExt:  make(map[string]string),
		tracer: noop.NewTracerProvider().Tracer("highlight"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddLanguage registers spec. Every name, mime type and alias may be
// registered once.
func (r *Registry) AddLanguage(spec LanguageSpec) error {
	if spec.Name == "" || spec.Mime == "" {
		return fmt.Errorf("add language: name and mime are required")
	}
	if spec.Load == nil {
		return fmt.Errorf("add language %s: nil loader", spec.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.specs[spec.Name]; ok {
		return fmt.Errorf("add language %s: %w", spec.Name, ErrDuplicateLanguage)
	}
	mimes := append([]string{spec.Mime}, spec.Aliases...)
	for _, m := range mimes {
		if owner, ok := r.byMime[m]; ok {
			return fmt.Errorf("add language %s: %s is served by %s: %w", spec.Name, m, owner, ErrDuplicateLanguage)
		}
	}

	r.specs[spec.Name] = spec
	for _, m := range mimes {
		r.byMime[m] = spec.Name
	}
	for _, ext := range spec.Extensions {
		if ext = normalizeExt(ext); ext != "" {
			if _, taken := r.byExt[ext]; !taken {
				r.byExt[ext] = spec.Name
			}
		}
	}
	return nil
}

// AddAlias makes mime resolve to the language registered as name. Adding an
// alias the language already serves is a no-op.
func (r *Registry) AddAlias(mime, name string) error {
	if mime == "" {
		return fmt.Errorf("add alias to %s: empty mime", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	spec, ok := r.specs[name]
	if !ok {
		return fmt.Errorf("add alias %s to %s: %w", mime, name, ErrUnknownLanguage)
	}
	if owner, ok := r.byMime[mime]; ok {
		if owner == name {
			return nil
		}
		return fmt.Errorf("add alias %s to %s: served by %s: %w", mime, name, owner, ErrDuplicateLanguage)
	}
	spec.Aliases = append(append([]string(nil), spec.Aliases...), mime)
	r.specs[name] = spec
	r.byMime[mime] = name
	return nil
}

// FindByMime returns the language serving mime, as primary type or alias.
func (r *Registry) FindByMime(mime string) (LanguageSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byMime[mime]
	if !ok {
		return LanguageSpec{}, false
	}
	return r.specs[name], true
}

// FindByExtension returns the language for a file extension, with or
// without the leading dot, ignoring case.
func (r *Registry) FindByExtension(ext string) (LanguageSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byExt[normalizeExt(ext)]
	if !ok {
		return LanguageSpec{}, false
	}
	return r.specs[name], true
}

// FindByName returns the language registered as name.
func (r *Registry) FindByName(name string) (LanguageSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// Languages returns every registered language sorted by name.
func (r *Registry) Languages() []LanguageSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LanguageSpec, 0, len(r.specs))
	for _, spec := range r.specs {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Load invokes the loader of the language serving mime.
func (r *Registry) Load(ctx context.Context, mime string) (*LanguageSupport, error) {
	spec, ok := r.FindByMime(mime)
	if !ok {
		return nil, fmt.Errorf("load %q: %w", mime, ErrUnknownLanguage)
	}

	ctx, span := r.tracer.Start(ctx, tracing.SpanLoadLanguage, trace.WithAttributes(
		attribute.String(tracing.AttrIdentity, mime),
		attribute.String(tracing.AttrLanguageName, spec.Name),
	))
	defer span.End()

	support, err := spec.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("load %s: %w", spec.Name, err)
	}
	if support == nil {
		err := fmt.Errorf("load %s: loader returned no support", spec.Name)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Bool(tracing.AttrThemeDark, support.Dark()))
	return support, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
