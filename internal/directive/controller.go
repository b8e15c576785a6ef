package directive

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ilegend/legendnb/internal/log"
	"github.com/ilegend/legendnb/internal/tracing"
)

// Options configures a Controller.
type Options struct {
	// Identities maps modes to the identities written on a switch.
	Identities Identities
	// Managed lists the identities whose cells get a selector. The two
	// mode identities are always managed.
	Managed []string
	// Scheduler defers caret placement. Nil runs it immediately.
	Scheduler Scheduler
	// Tracer records ApplyMode spans. Nil disables tracing.
	Tracer trace.Tracer
}

// Controller owns the selector bindings of one document and performs mode
// switches. It must only be used from the goroutine that mutates cells.
type Controller struct {
	ids     Identities
	managed map[string]bool
	sched   Scheduler
	tracer  trace.Tracer

	bindings map[string]*Binding
	tracked  map[string]func()
	// mutating counts in-flight guarded writes per cell id.
	mutating map[string]int
}

// NewController returns a controller with no bindings.
func NewController(opts Options) *Controller {
	c := &Controller{
		ids:      opts.Identities,
		managed:  make(map[string]bool),
		sched:    opts.Scheduler,
		tracer:   opts.Tracer,
		bindings: make(map[string]*Binding),
		tracked:  make(map[string]func()),
		mutating: make(map[string]int),
	}
	if c.sched == nil {
		c.sched = SchedulerFunc(func(fn func()) { fn() })
	}
	if c.tracer == nil {
		c.tracer = noop.NewTracerProvider().Tracer("directive")
	}
	for _, id := range opts.Managed {
		if id != "" {
			c.managed[id] = true
		}
	}
	c.managed[c.ids.For(Legend)] = true
	c.managed[c.ids.For(Python)] = true
	return c
}

// Identities returns the mode to identity mapping in use.
func (c *Controller) Identities() Identities {
	return Identities{Legend: c.ids.For(Legend), Python: c.ids.For(Python)}
}

// IsManaged reports whether cells with identity get a selector.
func (c *Controller) IsManaged(identity string) bool {
	return c.managed[identity]
}

// ApplyMode rewrites cell for mode m and reports whether it wrote anything.
// A cell whose source already has the normalized form for m is left
// untouched. Otherwise the source and then the identity are written while
// the cell's content notifications are suppressed, and the caret is moved to
// the first body line on a later frame.
func (c *Controller) ApplyMode(ctx context.Context, cell Cell, m Mode) (bool, error) {
	if cell == nil {
		return false, fmt.Errorf("apply %s: nil cell: %w", m, ErrPrecondition)
	}

	source := cell.Source()
	lines := SplitLines(source)
	res := Rewrite(lines, m)
	next := res.Source()
	if next == source {
		log.Debug(log.CatDirective, "mode already applied", "cell", cell.ID(), "mode", m)
		return false, nil
	}

	from := DeriveMode(lines)
	_, span := c.tracer.Start(ctx, tracing.SpanApplyMode, trace.WithAttributes(
		attribute.String(tracing.AttrCellID, cell.ID()),
		attribute.String(tracing.AttrModeFrom, from.String()),
		attribute.String(tracing.AttrModeTo, m.String()),
	))
	defer span.End()

	if err := c.write(cell, next, c.ids.For(m)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool(tracing.AttrMutated, false))
		log.ErrorErr(log.CatDirective, "mode switch failed", err, "cell", cell.ID(), "mode", m)
		return false, fmt.Errorf("apply %s to cell %s: %w: %w", m, cell.ID(), ErrPrecondition, err)
	}
	span.SetAttributes(attribute.Bool(tracing.AttrMutated, true))
	span.SetStatus(codes.Ok, "")

	// Content notifications were suppressed; project the result directly.
	if b := c.bindings[cell.ID()]; b != nil {
		b.setValue(m)
	}

	line := res.CursorLine
	c.sched.Defer(func() { c.placeCaret(cell, line) })

	log.Debug(log.CatDirective, "mode applied", "cell", cell.ID(), "from", from, "to", m, "lines", len(res.Lines))
	return true, nil
}

// write performs the guarded section. The guard is released even if a
// collaborator panics. A rejected identity rolls the source back, so the
// cell never keeps a header that disagrees with its language.
func (c *Controller) write(cell Cell, source, identity string) error {
	id := cell.ID()
	c.mutating[id]++
	defer func() {
		if c.mutating[id]--; c.mutating[id] <= 0 {
			delete(c.mutating, id)
		}
	}()

	old := cell.Source()
	if err := cell.SetSource(source); err != nil {
		return fmt.Errorf("set source: %w", err)
	}
	if err := cell.SetLanguageIdentity(identity); err != nil {
		if rerr := cell.SetSource(old); rerr != nil {
			return fmt.Errorf("set language identity: %w (restore source: %v)", err, rerr)
		}
		return fmt.Errorf("set language identity: %w", err)
	}
	return nil
}

// Mutating reports whether a guarded write to cell is in progress.
func (c *Controller) Mutating(cell Cell) bool {
	return c.mutating[cell.ID()] > 0
}

func (c *Controller) placeCaret(cell Cell, line int) {
	if !cell.Attached() {
		log.Debug(log.CatDirective, "caret target gone", "cell", cell.ID())
		return
	}
	if err := cell.SetCursorPosition(line, 0); err != nil {
		log.Debug(log.CatDirective, "caret not placed", "cell", cell.ID(), "line", line, "error", err)
	}
}

// InjectSelector creates the selector binding for cell. It returns the
// existing binding, unchanged, when there already is one. Non-code cells
// and cells outside the managed identities get no binding.
func (c *Controller) InjectSelector(cell Cell) (*Binding, bool) {
	if cell == nil || !cell.IsCode() {
		return nil, false
	}
	if b, ok := c.bindings[cell.ID()]; ok {
		return b, false
	}
	if !c.IsManaged(cell.LanguageIdentity()) {
		return nil, false
	}

	b := newBinding(c, cell)
	c.bindings[cell.ID()] = b
	b.subscribe()
	b.onCellContentChanged()

	log.Debug(log.CatDirective, "selector injected", "cell", cell.ID(), "mode", b.Value())
	return b, true
}

// TeardownSelector removes the binding of cell, if any.
func (c *Controller) TeardownSelector(cell Cell) bool {
	if cell == nil {
		return false
	}
	b, ok := c.bindings[cell.ID()]
	if !ok {
		return false
	}
	delete(c.bindings, cell.ID())
	b.close()
	log.Debug(log.CatDirective, "selector removed", "cell", cell.ID())
	return true
}

// Binding returns the live binding of cell, or nil.
func (c *Controller) Binding(cell Cell) *Binding {
	if cell == nil {
		return nil
	}
	return c.bindings[cell.ID()]
}

// Len returns the number of live bindings.
func (c *Controller) Len() int {
	return len(c.bindings)
}

// Track injects a selector into cell and keeps watching its language
// identity, so the selector comes back when the cell returns to a managed
// identity after a teardown. Tracking the same cell twice is a no-op.
func (c *Controller) Track(cell Cell) *Binding {
	if cell == nil || !cell.IsCode() {
		return nil
	}
	if _, ok := c.tracked[cell.ID()]; !ok {
		c.tracked[cell.ID()] = cell.OnLanguageChanged(func(_, identity string) {
			if c.IsManaged(identity) {
				c.InjectSelector(cell)
			}
		})
	}
	b, _ := c.InjectSelector(cell)
	return b
}

// Forget stops tracking cell and removes its binding.
func (c *Controller) Forget(cell Cell) {
	if cell == nil {
		return
	}
	if unsub, ok := c.tracked[cell.ID()]; ok {
		unsub()
		delete(c.tracked, cell.ID())
	}
	c.TeardownSelector(cell)
}

// Close removes every binding and tracking subscription.
func (c *Controller) Close() {
	for id, unsub := range c.tracked {
		unsub()
		delete(c.tracked, id)
	}
	for id, b := range c.bindings {
		delete(c.bindings, id)
		b.close()
	}
}
