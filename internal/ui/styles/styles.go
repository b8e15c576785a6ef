// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

// SelectorLabel prefixes every kernel selector.
const SelectorLabel = "Run:"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#212121", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#616161", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#9E9E9E", Dark: "#696969"} // hints, help text, footers

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#1976D2", Dark: "#54A0FF"}
	BorderEditColor    = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Kernel selector colors. Both are fixed regardless of the background.
	PythonKernelColor = lipgloss.Color("#25EB25") // rgb(37,235,37)
	LegendKernelColor = lipgloss.Color("#1511E0") // rgb(21,17,224)

	// Selection indicator color (used for ">" prefix in the selector menu)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#212121", Dark: "#FFFFFF"}

	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	SelectorLabelStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)

	PlaceholderKernelStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	PythonKernelStyle = lipgloss.NewStyle().Bold(true).Foreground(PythonKernelColor)

	LegendKernelStyle = lipgloss.NewStyle().Bold(true).Foreground(LegendKernelColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(StatusErrorColor).
				Bold(true)

	StatusSuccessStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)

	// Dirty marker next to the notebook name
	DirtyStyle = lipgloss.NewStyle().Foreground(StatusWarningColor).Bold(true)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)

	// Cell prompt, "[3]"
	PromptStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
)

// KernelStyle returns the style of a selector option value. The empty
// placeholder value is muted.
func KernelStyle(value string) lipgloss.Style {
	switch value {
	case "Python":
		return PythonKernelStyle
	case "Legend":
		return LegendKernelStyle
	default:
		return PlaceholderKernelStyle
	}
}
