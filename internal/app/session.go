package app

import (
	"context"

	"github.com/ilegend/legendnb/internal/config"
	"github.com/ilegend/legendnb/internal/directive"
	"github.com/ilegend/legendnb/internal/flags"
	"github.com/ilegend/legendnb/internal/highlight"
	"github.com/ilegend/legendnb/internal/log"
	"github.com/ilegend/legendnb/internal/notebook"
	"github.com/ilegend/legendnb/internal/pubsub"
	"github.com/ilegend/legendnb/internal/theme"
	"github.com/ilegend/legendnb/internal/ui/markdown"
	"github.com/ilegend/legendnb/internal/ui/selector"
	"github.com/ilegend/legendnb/internal/watcher"
)

// cellView is the UI state kept for a cell that has a selector binding.
type cellView struct {
	binding *directive.Binding
	sel     selector.Model
	unsub   func()
}

type caretPos struct {
	line, col int
}

// session is the state shared by every copy of Model. Cells and their
// signals live here; everything in it is touched from the Update goroutine
// only, except the listeners, which only read channels.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg        config.Config
	configPath string

	doc    *notebook.Document
	ctrl   *directive.Controller
	sched  *directive.FrameScheduler
	hl     *highlight.Highlighter
	themes *theme.Manager
	flags  *flags.Registry
	md     *markdown.Cache

	views  map[string]*cellView
	carets map[string]caretPos
	dirty  bool

	frameRequested bool

	watcher       *watcher.Watcher
	reloads       <-chan struct{}
	themeListener *pubsub.ContinuousListener[theme.Change]
	logListener   *log.LogListener

	disconnects []func()
}

// caretHost is the notebook.Editor of a rendered cell. Caret requests are
// stored and applied when the cell's text is in the editor.
type caretHost struct {
	s  *session
	id string
}

func (h caretHost) SetCursorPosition(line, column int) error {
	h.s.carets[h.id] = caretPos{line: line, col: column}
	return nil
}

// wire connects document notifications to the controller: every code cell
// gets a selector when the document is ready, added cells get one a frame
// later, and the active cell gets one when it becomes active.
func (s *session) wire() {
	s.disconnects = append(s.disconnects,
		s.doc.CellsChanged().Connect(s.onCellsChanged),
		s.doc.ActiveCellChanged().Connect(func(c *notebook.Cell) {
			if c != nil {
				s.ctrl.Track(c)
			}
		}),
	)

	for _, c := range s.doc.Cells() {
		c.SetEditor(caretHost{s: s, id: c.ID()})
	}

	s.doc.OnReady(func(d *notebook.Document) {
		for _, c := range d.Cells() {
			s.ctrl.Track(c)
		}
		log.Debug(log.CatUI, "selectors injected", "cells", d.Len(), "bindings", s.ctrl.Len())
	})
}

func (s *session) onCellsChanged(change notebook.CellsChange) {
	for _, c := range change.Removed {
		s.ctrl.Forget(c)
		delete(s.carets, c.ID())
	}
	for _, c := range change.Added {
		c.SetEditor(caretHost{s: s, id: c.ID()})
		cell := c
		s.sched.Defer(func() {
			if !cell.Attached() {
				return
			}
			s.ctrl.Track(cell)
		})
	}
	if len(change.Added) > 0 || len(change.Removed) > 0 || len(change.Moved) > 0 {
		s.dirty = true
	}
}

// syncViews keeps one selector view per live binding.
func (s *session) syncViews() {
	live := make(map[string]bool, len(s.views))
	for _, c := range s.doc.Cells() {
		b := s.ctrl.Binding(c)
		if b == nil {
			continue
		}
		id := c.ID()
		live[id] = true
		if v, ok := s.views[id]; ok {
			if v.binding == b {
				continue
			}
			v.unsub()
		}
		v := &cellView{binding: b, sel: selector.New(id, b.Value())}
		v.unsub = b.OnValueChanged(func(m directive.Mode) {
			v.sel = v.sel.SetMode(m)
		})
		s.views[id] = v
	}
	for id, v := range s.views {
		if !live[id] {
			v.unsub()
			delete(s.views, id)
		}
	}
}

func (s *session) openSelector() *cellView {
	for _, v := range s.views {
		if v.sel.IsOpen() {
			return v
		}
	}
	return nil
}

func (s *session) closeSelectors() {
	for _, v := range s.views {
		v.sel = v.sel.Close()
	}
}

// applyMode switches cell to m and reports whether its text changed.
func (s *session) applyMode(cell *notebook.Cell, m directive.Mode) (bool, error) {
	changed, err := s.ctrl.ApplyMode(s.ctx, cell, m)
	if changed {
		s.dirty = true
	}
	return changed, err
}

func (s *session) close() error {
	for _, d := range s.disconnects {
		d()
	}
	s.disconnects = nil
	for id, v := range s.views {
		v.unsub()
		delete(s.views, id)
	}
	s.ctrl.Close()
	s.cancel()

	if s.watcher != nil {
		err := s.watcher.Stop()
		s.watcher = nil
		return err
	}
	return nil
}

// ReadOptions returns how to read a notebook whose cells may lack a
// recorded language: the identity is derived from the cell's directive.
func ReadOptions(ids directive.Identities) notebook.ReadOptions {
	return notebook.ReadOptions{
		IdentityFor: func(source string) string {
			return ids.For(directive.DeriveMode(directive.SplitLines(source)))
		},
	}
}

// IdentitiesFromConfig maps the kernels config section to identities.
func IdentitiesFromConfig(k config.KernelsConfig) directive.Identities {
	return directive.Identities{Legend: k.DefaultIdentity, Python: k.AlternateIdentity}
}
