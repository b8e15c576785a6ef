// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the notebook view.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Cells
	Edit       key.Binding
	StopEdit   key.Binding
	Kernel     key.Binding
	UsePython  key.Binding
	UseLegend  key.Binding
	Save       key.Binding
	Reload     key.Binding
	ThemeCycle key.Binding

	// General
	Help     key.Binding
	ShowLogs key.Binding
	Quit     key.Binding
}

// SelectorKeyMap defines the keybindings of an open kernel selector.
type SelectorKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "previous cell"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next cell"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "scroll down"),
		),

		// Cells
		Edit: key.NewBinding(
			key.WithKeys("enter", "i"),
			key.WithHelp("enter", "edit cell"),
		),
		StopEdit: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop editing"),
		),
		Kernel: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "choose kernel"),
		),
		UsePython: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "run in Python"),
		),
		UseLegend: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "run in Legend"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save notebook"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload from disk"),
		),
		ThemeCycle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle theme"),
		),

		// General
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		ShowLogs: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "toggle logs"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// DefaultSelectorKeyMap returns the keybindings of an open kernel selector.
func DefaultSelectorKeyMap() SelectorKeyMap {
	return SelectorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up", "ctrl+p"),
			key.WithHelp("k/↑", "previous kernel"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down", "ctrl+n"),
			key.WithHelp("j/↓", "next kernel"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "close"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Kernel, k.Save, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Edit, k.StopEdit, k.Kernel, k.UsePython, k.UseLegend},
		{k.Save, k.Reload, k.ThemeCycle},
		{k.Help, k.ShowLogs, k.Quit},
	}
}
