package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/ilegend/legendnb/internal/flags"
	"github.com/ilegend/legendnb/internal/log"
	"github.com/ilegend/legendnb/internal/notebook"
	"github.com/ilegend/legendnb/internal/ui/markdown"
	"github.com/ilegend/legendnb/internal/ui/styles"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	logPaneHeight = 8
)

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// refresh re-renders the cells into the viewport and scrolls the active
// cell into view.
func (m *Model) refresh() {
	width, height := m.size()

	chrome := lipgloss.Height(m.headerView()) + lipgloss.Height(m.footerView())
	if m.showLogs {
		chrome += logPaneHeight
	}
	m.viewport.Width = width
	m.viewport.Height = max(height-chrome, 1)

	var b strings.Builder
	activeTop, activeBottom := -1, -1
	line := 0
	for i, cell := range m.s.doc.Cells() {
		frame := m.renderCell(i, cell, width)
		h := lipgloss.Height(frame)
		if i == m.s.doc.ActiveIndex() {
			activeTop, activeBottom = line, line+h
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(frame)
		line += h
	}
	if m.s.doc.Len() == 0 {
		b.WriteString(styles.PromptStyle.Render("empty notebook"))
	}
	m.viewport.SetContent(b.String())

	if activeTop >= 0 {
		switch {
		case activeTop < m.viewport.YOffset:
			m.viewport.SetYOffset(activeTop)
		case activeBottom > m.viewport.YOffset+m.viewport.Height:
			m.viewport.SetYOffset(min(activeTop, activeBottom-m.viewport.Height))
		}
	}
}

func (m *Model) renderCell(i int, cell *notebook.Cell, width int) string {
	innerWidth := max(width-2, 1)

	title := styles.PromptStyle.Render(fmt.Sprintf("[%d]", i+1))
	switch cell.Kind() {
	case notebook.KindMarkdown:
		title += styles.PromptStyle.Render(" markdown")
	case notebook.KindRaw:
		title += styles.PromptStyle.Render(" raw")
	}
	if cell.ReadOnly() {
		title += styles.PromptStyle.Render(" read-only")
	}

	state := styles.FrameIdle
	switch {
	case cell.ID() == m.editing:
		state = styles.FrameEditing
	case i == m.s.doc.ActiveIndex():
		state = styles.FrameActive
	}

	var body string
	switch cell.Kind() {
	case notebook.KindCode:
		body = m.renderCode(cell, innerWidth)
	case notebook.KindMarkdown:
		body = m.renderMarkdown(cell, innerWidth)
	default:
		body = styles.PromptStyle.Render(cell.Source())
	}
	return styles.RenderCellFrame(body, title, width, state)
}

func (m *Model) renderCode(cell *notebook.Cell, innerWidth int) string {
	var head string
	if v, ok := m.s.views[cell.ID()]; ok {
		head = v.sel.View()
	} else {
		identity := cell.LanguageIdentity()
		if identity == "" {
			identity = "no language"
		}
		head = styles.PromptStyle.Render(identity)
	}

	if cell.ID() == m.editing {
		m.editor.SetWidth(innerWidth)
		m.editor.SetHeight(max(m.editor.LineCount(), 1))
		return head + "\n" + m.editor.View()
	}
	return head + "\n" + m.s.hl.Render(m.s.ctx, cell.LanguageIdentity(), cell.Source())
}

func (m *Model) renderMarkdown(cell *notebook.Cell, innerWidth int) string {
	if !m.s.flags.Enabled(flags.FlagRenderMarkdown) || cell.ID() == m.editing {
		if cell.ID() == m.editing {
			m.editor.SetWidth(innerWidth)
			m.editor.SetHeight(max(m.editor.LineCount(), 1))
			return m.editor.View()
		}
		return cell.Source()
	}

	wrap := innerWidth
	if m.s.cfg.UI.WordWrap > 0 {
		wrap = min(m.s.cfg.UI.WordWrap, innerWidth)
	}
	style := markdown.StyleFor(m.s.cfg.UI.MarkdownStyle, m.s.themes.IsDark())
	r, err := m.s.md.Get(wrap, style)
	if err != nil {
		log.ErrorErr(log.CatUI, "markdown renderer unavailable", err)
		return cell.Source()
	}
	out, err := r.Render(cell.Source())
	if err != nil {
		log.ErrorErr(log.CatUI, "markdown render failed", err, "cell", cell.ID())
		return cell.Source()
	}
	return out
}

func (m Model) headerView() string {
	width, _ := m.size()

	name := "untitled"
	if p := m.s.doc.Path(); p != "" {
		name = filepath.Base(p)
	}
	left := lipgloss.NewStyle().Bold(true).Render("legendnb") + " " + name
	if m.s.dirty {
		left += " " + styles.DirtyStyle.Render("*")
	}
	themeName, _ := m.s.themes.Theme()
	right := styles.PromptStyle.Render(themeName)

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return styles.StatusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) footerView() string {
	width, _ := m.size()

	status := m.status
	switch {
	case status == "":
	case m.statusErr:
		status = styles.StatusErrorStyle.Render(status)
	default:
		status = styles.StatusSuccessStyle.Render(status)
	}
	statusLine := styles.StatusBarStyle.Render(styles.FitLine(status, max(width-2, 1)))
	return statusLine + "\n" + styles.StatusBarStyle.Render(m.help.View(m.keys))
}

func (m Model) logsView() string {
	width, _ := m.size()

	start := max(len(m.logLines)-(logPaneHeight-1), 0)
	lines := []string{styles.PromptStyle.Render(strings.Repeat("─", width))}
	for _, l := range m.logLines[start:] {
		lines = append(lines, styles.FitLine(l, width))
	}
	for len(lines) < logPaneHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// View implements tea.Model.
func (m Model) View() string {
	parts := []string{m.headerView(), m.viewport.View()}
	if m.showLogs {
		parts = append(parts, m.logsView())
	}
	parts = append(parts, m.footerView())
	return zone.Scan(strings.Join(parts, "\n"))
}

// moveCaret puts the editor caret at line and column, clamped to the text.
// Cursor movement steps over soft-wrapped rows, so the step limit is the
// text length rather than the line count.
func moveCaret(ta *textarea.Model, line, col int) {
	line = min(max(line, 0), max(ta.LineCount()-1, 0))
	limit := len(ta.Value()) + ta.LineCount()
	for i := 0; ta.Line() > line && i < limit; i++ {
		ta.CursorUp()
	}
	for i := 0; ta.Line() < line && i < limit; i++ {
		ta.CursorDown()
	}
	ta.SetCursor(col)
}
