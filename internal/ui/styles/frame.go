package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

const ellipsis = "…"

// FrameState selects the border color of a cell frame.
type FrameState int

const (
	FrameIdle FrameState = iota
	FrameActive
	FrameEditing
)

func (s FrameState) color() lipgloss.TerminalColor {
	switch s {
	case FrameActive:
		return BorderFocusColor
	case FrameEditing:
		return BorderEditColor
	default:
		return BorderDefaultColor
	}
}

// RenderCellFrame draws body inside a rounded frame of the given outer
// width with title embedded in the top border: ╭─ [2] ─────╮. The frame is
// as tall as body; lines wider than the frame are cut with an ellipsis.
// title may carry its own styling.
func RenderCellFrame(body, title string, width int, state FrameState) string {
	borderStyle := lipgloss.NewStyle().Foreground(state.color())

	innerWidth := max(width-2, 1)

	var b strings.Builder
	b.WriteString(topBorder(title, innerWidth, borderStyle))
	b.WriteString("\n")

	side := borderStyle.Render(borderVertical)
	for _, line := range strings.Split(body, "\n") {
		line = FitLine(line, innerWidth)
		b.WriteString(side)
		b.WriteString(line)
		b.WriteString(side)
		b.WriteString("\n")
	}

	b.WriteString(borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight))
	return b.String()
}

// FitLine truncates or pads s (which may contain ANSI sequences) to exactly
// width cells.
func FitLine(s string, width int) string {
	if width < 1 {
		return ""
	}
	if lipgloss.Width(s) > width {
		s = truncate.StringWithTail(s, uint(width), ellipsis)
	}
	if w := lipgloss.Width(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

func topBorder(title string, innerWidth int, borderStyle lipgloss.Style) string {
	// "─ " + title + " " needs at least 4 cells.
	if title == "" || innerWidth < 4 {
		return borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	}

	available := innerWidth - 4
	if lipgloss.Width(title) > available {
		title = truncate.StringWithTail(title, uint(available), ellipsis)
	}
	remaining := max(innerWidth-3-lipgloss.Width(title), 0)

	return borderStyle.Render(borderTopLeft+borderHorizontal+" ") +
		title +
		borderStyle.Render(" "+strings.Repeat(borderHorizontal, remaining)+borderTopRight)
}
