package notebook

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingEditor struct {
	line, column int
	calls        int
	err          error
}

func (e *recordingEditor) SetCursorPosition(line, column int) error {
	e.calls++
	e.line, e.column = line, column
	return e.err
}

func TestCell_SetSourceEmitsOnlyOnChange(t *testing.T) {
	c := NewCodeCell("x = 1", "text/x-ilegend")
	emitted := 0
	c.OnContentChanged(func() { emitted++ })

	require.NoError(t, c.SetSource("x = 1"))
	require.Zero(t, emitted)

	require.NoError(t, c.SetSource("x = 2"))
	require.Equal(t, 1, emitted)
	require.Equal(t, "x = 2", c.Source())
}

func TestCell_Lines(t *testing.T) {
	require.Equal(t, []string{""}, NewCodeCell("", "").Lines())
	require.Equal(t, []string{"a", "b", ""}, NewCodeCell("a\nb\n", "").Lines())
}

func TestCell_ReadOnlyRejectsWrites(t *testing.T) {
	c := NewCodeCell("x", "text/x-ilegend")
	c.SetReadOnly(true)

	err := c.SetSource("y")
	require.ErrorIs(t, err, ErrReadOnly)
	require.Equal(t, "x", c.Source())
}

func TestCell_SetLanguageIdentityReportsTransition(t *testing.T) {
	c := NewCodeCell("", "text/x-ilegend")
	var seen []LanguageChange
	c.LanguageChanged().Connect(func(ch LanguageChange) { seen = append(seen, ch) })

	require.NoError(t, c.SetLanguageIdentity("text/x-ilegend"))
	require.NoError(t, c.SetLanguageIdentity("text/x-python"))

	require.Len(t, seen, 1)
	require.Equal(t, "text/x-ilegend", seen[0].Old)
	require.Equal(t, "text/x-python", seen[0].New)
	require.Same(t, c, seen[0].Cell)
}

func TestCell_OnLanguageChanged(t *testing.T) {
	c := NewCodeCell("", "a")
	var old, new string
	unsubscribe := c.OnLanguageChanged(func(o, n string) { old, new = o, n })

	_ = c.SetLanguageIdentity("b")
	require.Equal(t, "a", old)
	require.Equal(t, "b", new)

	unsubscribe()
	_ = c.SetLanguageIdentity("c")
	require.Equal(t, "b", new)
}

func TestCell_SetCursorPosition(t *testing.T) {
	c := NewCodeCell("", "")
	require.ErrorIs(t, c.SetCursorPosition(0, 0), ErrNotRendered)

	ed := &recordingEditor{}
	c.SetEditor(ed)
	require.NoError(t, c.SetCursorPosition(2, 0))
	require.Equal(t, 2, ed.line)

	ed.err = errors.New("not laid out")
	require.Error(t, c.SetCursorPosition(0, 0))
}

func TestNewMarkdownCell(t *testing.T) {
	c := NewMarkdownCell("# Title")
	require.False(t, c.IsCode())
	require.Equal(t, KindMarkdown, c.Kind())
	require.NotEmpty(t, c.ID())
	require.False(t, c.Attached())
}
