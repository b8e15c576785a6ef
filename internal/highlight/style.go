package highlight

import "github.com/charmbracelet/lipgloss"

// TagStyle is the presentation of one tag.
type TagStyle struct {
	Color  string
	Bold   bool
	Italic bool
}

// StyleTable assigns a TagStyle to each tag for one theme flavor.
type StyleTable struct {
	dark   bool
	styles map[Tag]TagStyle
}

// ResolveStyle returns the table for a dark or light theme. Each call
// builds a fresh table.
func ResolveStyle(dark bool) StyleTable {
	if dark {
		return StyleTable{dark: true, styles: map[Tag]TagStyle{
			TagKeyword:    {Color: "#c678dd", Bold: true},
			TagNumber:     {Color: "#d19a66"},
			TagOperator:   {Color: "#56b6c2"},
			TagIdentifier: {Color: "#e5e5e5"},
			TagParen:      {Color: "#e5c07b"},
			TagString:     {Color: "#98c379"},
			TagComment:    {Color: "#7f848e", Italic: true},
			TagArrow:      {Color: "#61dafb", Bold: true},
			TagVariable:   {Color: "#ffb86c", Bold: true},
		}}
	}
	return StyleTable{styles: map[Tag]TagStyle{
		TagKeyword:    {Color: "#008000", Bold: true},
		TagNumber:     {Color: "#098658"},
		TagOperator:   {Color: "#aa22ff"},
		TagIdentifier: {Color: "#212121"},
		TagParen:      {Color: "#0431fa"},
		TagString:     {Color: "#ba2121"},
		TagComment:    {Color: "#408080", Italic: true},
		TagArrow:      {Color: "#0c4a87", Bold: true},
		TagVariable:   {Color: "#8B4513", Bold: true},
	}}
}

// Dark reports which flavor the table is.
func (t StyleTable) Dark() bool { return t.dark }

// Get returns the style of tag.
func (t StyleTable) Get(tag Tag) (TagStyle, bool) {
	s, ok := t.styles[tag]
	return s, ok
}

// Style returns the lipgloss style of tag; unstyled tags get a plain style.
func (t StyleTable) Style(tag Tag) lipgloss.Style {
	s, ok := t.styles[tag]
	if !ok {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.Color)).
		Bold(s.Bold).
		Italic(s.Italic)
}
