// Package selector provides the per-cell kernel selector: a "Run:" label
// followed by a dropdown of kernels.
package selector

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/ilegend/legendnb/internal/directive"
	"github.com/ilegend/legendnb/internal/keys"
	"github.com/ilegend/legendnb/internal/ui/styles"
)

const caret = "▾"

// SelectedMsg is sent when an option is chosen. Value is the option value;
// the placeholder has the empty value.
type SelectedMsg struct {
	CellID string
	Value  string
}

// ClosedMsg is sent when the menu closes without a choice.
type ClosedMsg struct {
	CellID string
}

// Model holds the selector state of one cell.
type Model struct {
	cellID  string
	options []directive.SelectorOption
	value   string
	open    bool
	cursor  int
	keys    keys.SelectorKeyMap
}

// New creates a closed selector showing m.
func New(cellID string, m directive.Mode) Model {
	return Model{
		cellID:  cellID,
		options: directive.SelectorOptions(),
		value:   m.String(),
		keys:    keys.DefaultSelectorKeyMap(),
	}
}

// CellID returns the id of the cell the selector belongs to.
func (m Model) CellID() string { return m.cellID }

// Value returns the displayed option value.
func (m Model) Value() string { return m.value }

// IsOpen reports whether the menu is expanded.
func (m Model) IsOpen() bool { return m.open }

// SetMode updates the displayed value. It never emits SelectedMsg.
func (m Model) SetMode(mode directive.Mode) Model {
	m.value = mode.String()
	return m
}

// Open expands the menu with the cursor on the displayed value.
func (m Model) Open() Model {
	m.open = true
	m.cursor = FindIndexByValue(m.options, m.value)
	return m
}

// Close collapses the menu.
func (m Model) Close() Model {
	m.open = false
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.open {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Confirm):
			return m.choose(m.cursor)
		case key.Matches(msg, m.keys.Cancel):
			m.open = false
			id := m.cellID
			return m, func() tea.Msg { return ClosedMsg{CellID: id} }
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if !m.open {
			if z := zone.Get(m.zoneID()); z != nil && z.InBounds(msg) {
				return m.Open(), nil
			}
			return m, nil
		}
		for i := range m.options {
			if z := zone.Get(m.optionZoneID(i)); z != nil && z.InBounds(msg) {
				return m.choose(i)
			}
		}
	}
	return m, nil
}

func (m Model) choose(i int) (Model, tea.Cmd) {
	if i < 0 || i >= len(m.options) {
		return m, nil
	}
	m.open = false
	m.value = m.options[i].Value
	selected := SelectedMsg{CellID: m.cellID, Value: m.value}
	return m, func() tea.Msg { return selected }
}

// View renders the selector. Zones are marked for mouse hit testing; the
// caller is expected to zone.Scan the final frame.
func (m Model) View() string {
	width := m.labelWidth()

	current := m.options[FindIndexByValue(m.options, m.value)]
	label := styles.SelectorLabelStyle.Render(styles.SelectorLabel) + " " +
		styles.KernelStyle(current.Value).Render(runewidth.FillRight(current.Label, width)) +
		" " + styles.PlaceholderKernelStyle.Render(caret)
	header := zone.Mark(m.zoneID(), label)
	if !m.open {
		return header
	}

	indent := strings.Repeat(" ", runewidth.StringWidth(styles.SelectorLabel))
	var b strings.Builder
	b.WriteString(header)
	for i, opt := range m.options {
		b.WriteString("\n")
		marker := " "
		if i == m.cursor {
			marker = styles.SelectionIndicatorStyle.Render(">")
		}
		line := indent + marker + styles.KernelStyle(opt.Value).Render(runewidth.FillRight(opt.Label, width))
		b.WriteString(zone.Mark(m.optionZoneID(i), line))
	}
	return b.String()
}

func (m Model) labelWidth() int {
	w := 0
	for _, opt := range m.options {
		w = max(w, runewidth.StringWidth(opt.Label))
	}
	return w
}

func (m Model) zoneID() string {
	return "selector:" + m.cellID
}

func (m Model) optionZoneID(i int) string {
	return "selector:" + m.cellID + ":" + strconv.Itoa(i)
}

// FindIndexByValue returns the index of the option with the given value, or
// 0 (the placeholder) when there is none.
func FindIndexByValue(options []directive.SelectorOption, value string) int {
	for i, opt := range options {
		if opt.Value == value {
			return i
		}
	}
	return 0
}
