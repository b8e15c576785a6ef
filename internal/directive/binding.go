package directive

import (
	"context"

	"github.com/ilegend/legendnb/internal/log"
)

// Binding is the selector attached to one cell. Its value is a read-only
// projection of the cell's directive; user choices go through
// OnSelectorChanged.
type Binding struct {
	ctrl  *Controller
	cell  Cell
	value Mode

	listeners []valueListener
	nextID    int

	unsubs     []func()
	live       bool
	suppressed int
}

type valueListener struct {
	id int
	fn func(Mode)
}

func newBinding(ctrl *Controller, cell Cell) *Binding {
	return &Binding{ctrl: ctrl, cell: cell, value: Legend, live: true}
}

func (b *Binding) subscribe() {
	b.unsubs = append(b.unsubs,
		b.cell.OnContentChanged(b.onCellContentChanged),
		b.cell.OnLanguageChanged(b.onLanguageChanged),
	)
}

// Cell returns the bound cell.
func (b *Binding) Cell() Cell { return b.cell }

// Value returns the displayed mode.
func (b *Binding) Value() Mode { return b.value }

// Live reports whether the binding is still attached to its cell.
func (b *Binding) Live() bool { return b.live }

// Suppressed returns how many content notifications arrived during the
// controller's own writes and were skipped.
func (b *Binding) Suppressed() int { return b.suppressed }

// OnValueChanged registers fn to run whenever the displayed mode changes.
// It returns an unsubscribe function.
func (b *Binding) OnValueChanged(fn func(Mode)) func() {
	id := b.nextID
	b.nextID++
	b.listeners = append(b.listeners, valueListener{id: id, fn: fn})
	return func() {
		for i, l := range b.listeners {
			if l.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// OnSelectorChanged is the user-driven entry point: it applies m to the cell.
func (b *Binding) OnSelectorChanged(ctx context.Context, m Mode) error {
	_, err := b.ctrl.ApplyMode(ctx, b.cell, m)
	return err
}

// Select applies the mode named by a selector option value.
func (b *Binding) Select(ctx context.Context, value string) error {
	return b.OnSelectorChanged(ctx, ParseMode(value))
}

func (b *Binding) onCellContentChanged() {
	if !b.live {
		return
	}
	if b.ctrl.Mutating(b.cell) {
		b.suppressed++
		log.Debug(log.CatDirective, "own write skipped", "cell", b.cell.ID())
		return
	}
	b.setValue(DeriveMode(SplitLines(b.cell.Source())))
}

func (b *Binding) onLanguageChanged(_, identity string) {
	if !b.ctrl.IsManaged(identity) {
		b.ctrl.TeardownSelector(b.cell)
	}
}

func (b *Binding) setValue(m Mode) {
	if m == b.value {
		return
	}
	b.value = m
	for _, l := range append([]valueListener(nil), b.listeners...) {
		l.fn(m)
	}
}

func (b *Binding) close() {
	b.live = false
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil
	b.listeners = nil
}
