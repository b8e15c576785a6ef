package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/ilegend/legendnb/internal/config"
	"github.com/ilegend/legendnb/internal/directive"
	"github.com/ilegend/legendnb/internal/flags"
	"github.com/ilegend/legendnb/internal/log"
	"github.com/ilegend/legendnb/internal/notebook"
	"github.com/ilegend/legendnb/internal/pubsub"
	"github.com/ilegend/legendnb/internal/theme"
	"github.com/ilegend/legendnb/internal/ui/selector"
)

// frameMsg flushes work deferred to the next frame.
type frameMsg struct{}

// reloadMsg reports that the notebook file changed on disk.
type reloadMsg struct{}

func (m Model) requestFrame() tea.Cmd {
	if m.s.frameRequested || m.s.sched.Pending() == 0 {
		return nil
	}
	m.s.frameRequested = true
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m Model) waitForReload() tea.Cmd {
	ch := m.s.reloads
	if ch == nil {
		return nil
	}
	ctx := m.s.ctx
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return reloadMsg{}
		}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case frameMsg:
		m.s.frameRequested = false
		n := m.s.sched.Flush()
		log.Debug(log.CatUI, "frame flushed", "tasks", n)

	case reloadMsg:
		cmds = append(cmds, m.waitForReload())
		if m.s.dirty {
			m = m.setStatus("notebook changed on disk; press r to discard your edits and reload", true)
			break
		}
		m = m.reload()

	case pubsub.Event[theme.Change]:
		m.s.hl.Invalidate(m.s.ctx)
		m = m.setStatus("theme: "+msg.Payload.Name, false)
		cmds = append(cmds, m.s.themeListener.Listen())

	case log.LogEvent:
		m.logLines = append(m.logLines, strings.TrimRight(msg.Payload, "\n"))
		if len(m.logLines) > maxLogLines {
			m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
		}
		cmds = append(cmds, m.s.logListener.Listen())

	case selector.SelectedMsg:
		m = m.handleSelected(msg)

	case selector.ClosedMsg:
		// Nothing to do; the selector already collapsed.

	case tea.MouseMsg:
		var cmd tea.Cmd
		m, cmd = m.handleMouse(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		var cmd tea.Cmd
		var quit bool
		m, cmd, quit = m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
		cmds = append(cmds, cmd)

	default:
		if m.editing != "" {
			var cmd tea.Cmd
			m.editor, cmd = m.editor.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m = m.afterUpdate()
	cmds = append(cmds, m.requestFrame())
	return m, tea.Batch(cmds...)
}

// afterUpdate reconciles the view with the document after any message.
func (m Model) afterUpdate() Model {
	m.s.syncViews()

	if m.editing != "" {
		cell, ok := m.s.doc.CellByID(m.editing)
		if !ok {
			m = m.stopEditing()
		} else {
			if m.editor.Value() != cell.Source() {
				line := m.editor.Line()
				m.editor.SetValue(cell.Source())
				moveCaret(&m.editor, line, 0)
			}
			if pos, ok := m.s.carets[m.editing]; ok {
				delete(m.s.carets, m.editing)
				moveCaret(&m.editor, pos.line, pos.col)
			}
		}
	}

	m.refresh()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if v := m.s.openSelector(); v != nil {
		var cmd tea.Cmd
		v.sel, cmd = v.sel.Update(msg)
		return m, cmd, false
	}

	if m.editing != "" {
		switch {
		case key.Matches(msg, m.keys.StopEdit):
			return m.stopEditing(), nil, false
		case key.Matches(msg, m.keys.Save):
			return m.save(), nil, false
		case msg.Type == tea.KeyCtrlC:
			return m, nil, true
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		m = m.commitEditor()
		return m, cmd, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, nil, true

	case key.Matches(msg, m.keys.Up):
		m = m.moveActive(-1)

	case key.Matches(msg, m.keys.Down):
		m = m.moveActive(1)

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ScrollUp(max(m.viewport.Height/2, 1))

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ScrollDown(max(m.viewport.Height/2, 1))

	case key.Matches(msg, m.keys.Edit):
		var cmd tea.Cmd
		m, cmd = m.startEditing()
		return m, cmd, false

	case key.Matches(msg, m.keys.Kernel):
		cell := m.s.doc.Active()
		if cell == nil {
			break
		}
		v, ok := m.s.views[cell.ID()]
		if !ok {
			m = m.setStatus("this cell has no kernel selector", true)
			break
		}
		m.s.closeSelectors()
		v.sel = v.sel.Open()

	case key.Matches(msg, m.keys.UsePython):
		m = m.switchActive(directive.Python)

	case key.Matches(msg, m.keys.UseLegend):
		m = m.switchActive(directive.Legend)

	case key.Matches(msg, m.keys.Save):
		m = m.save()

	case key.Matches(msg, m.keys.Reload):
		m = m.reload()

	case key.Matches(msg, m.keys.ThemeCycle):
		m = m.toggleTheme()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, m.keys.ShowLogs):
		if m.debug {
			m.showLogs = !m.showLogs
		}
	}
	return m, nil, false
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if !m.s.flags.Enabled(flags.FlagMouse) {
		return m, nil
	}

	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	for _, v := range m.s.views {
		wasOpen := v.sel.IsOpen()
		var cmd tea.Cmd
		v.sel, cmd = v.sel.Update(msg)
		if !wasOpen && v.sel.IsOpen() {
			// One menu at a time.
			for _, other := range m.s.views {
				if other != v {
					other.sel = other.sel.Close()
				}
			}
			if cell, ok := m.s.doc.CellByID(v.sel.CellID()); ok {
				_ = m.s.doc.SetActive(m.s.doc.IndexOf(cell))
			}
		}
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleSelected(msg selector.SelectedMsg) Model {
	v, ok := m.s.views[msg.CellID]
	if !ok {
		return m
	}
	cell, ok := m.s.doc.CellByID(msg.CellID)
	if !ok {
		return m
	}
	before := cell.Source()
	if err := v.binding.Select(m.s.ctx, msg.Value); err != nil {
		return m.setStatus(err.Error(), true)
	}
	if cell.Source() != before {
		m.s.dirty = true
		return m.setStatus(fmt.Sprintf("cell %d runs in %s", m.s.doc.IndexOf(cell)+1, v.binding.Value()), false)
	}
	return m
}

func (m Model) switchActive(mode directive.Mode) Model {
	cell := m.s.doc.Active()
	if cell == nil || !cell.IsCode() {
		return m.setStatus("select a code cell first", true)
	}
	if m.s.ctrl.Binding(cell) == nil {
		return m.setStatus("this cell has no kernel selector", true)
	}
	changed, err := m.s.applyMode(cell, mode)
	if err != nil {
		return m.setStatus(err.Error(), true)
	}
	if !changed {
		return m.setStatus(fmt.Sprintf("cell %d already runs in %s", m.s.doc.ActiveIndex()+1, mode), false)
	}
	return m.setStatus(fmt.Sprintf("cell %d runs in %s", m.s.doc.ActiveIndex()+1, mode), false)
}

func (m Model) moveActive(delta int) Model {
	n := m.s.doc.Len()
	if n == 0 {
		return m
	}
	i := min(max(m.s.doc.ActiveIndex()+delta, 0), n-1)
	_ = m.s.doc.SetActive(i)
	return m
}

func (m Model) startEditing() (Model, tea.Cmd) {
	cell := m.s.doc.Active()
	if cell == nil {
		return m, nil
	}
	if cell.ReadOnly() {
		return m.setStatus("cell is read-only", true), nil
	}
	m.s.closeSelectors()
	m.editing = cell.ID()
	m.editor.SetValue(cell.Source())
	moveCaret(&m.editor, 0, 0)
	if pos, ok := m.s.carets[cell.ID()]; ok {
		delete(m.s.carets, cell.ID())
		moveCaret(&m.editor, pos.line, pos.col)
	}
	cmd := m.editor.Focus()
	return m, cmd
}

func (m Model) stopEditing() Model {
	m.editor.Blur()
	m.editing = ""
	return m
}

// commitEditor writes the editor text back to the cell as an ordinary edit,
// so a hand-typed directive is projected onto the selector.
func (m Model) commitEditor() Model {
	cell, ok := m.s.doc.CellByID(m.editing)
	if !ok {
		return m
	}
	value := m.editor.Value()
	if value == cell.Source() {
		return m
	}
	if err := cell.SetSource(value); err != nil {
		return m.setStatus(err.Error(), true)
	}
	m.s.dirty = true
	return m
}

func (m Model) save() Model {
	if m.s.doc.Path() == "" {
		return m.setStatus("notebook has no file name", true)
	}
	if err := notebook.Save(m.s.doc); err != nil {
		log.ErrorErr(log.CatNotebook, "save failed", err, "path", m.s.doc.Path())
		return m.setStatus(err.Error(), true)
	}
	m.s.dirty = false
	return m.setStatus("saved "+filepath.Base(m.s.doc.Path()), false)
}

func (m Model) reload() Model {
	path := m.s.doc.Path()
	if path == "" {
		return m
	}
	fresh, err := notebook.Load(path, ReadOptions(m.s.ctrl.Identities()))
	if err != nil {
		log.ErrorErr(log.CatNotebook, "reload failed", err, "path", path)
		return m.setStatus(err.Error(), true)
	}
	m.s.doc.Sync(fresh)
	m.s.dirty = false
	if m.s.doc.ActiveIndex() < 0 && m.s.doc.Len() > 0 {
		_ = m.s.doc.SetActive(0)
	}
	log.Info(log.CatNotebook, "notebook reloaded", "path", path, "cells", m.s.doc.Len())
	return m.setStatus("reloaded "+filepath.Base(path), false)
}

func (m Model) toggleTheme() Model {
	name := m.s.themes.Toggle()
	if m.s.configPath != "" {
		tc := config.ThemeConfig{Name: name, Mode: m.s.cfg.Theme.Mode}
		if err := config.SaveTheme(m.s.configPath, tc); err != nil {
			log.ErrorErr(log.CatConfig, "saving theme failed", err, "path", m.s.configPath)
			return m.setStatus(err.Error(), true)
		}
		m.s.cfg.Theme = tc
	}
	m.s.hl.Invalidate(m.s.ctx)
	return m.setStatus("theme: "+name, false)
}

func (m Model) setStatus(msg string, isErr bool) Model {
	m.status = ansi.Strip(msg)
	m.statusErr = isErr
	return m
}
