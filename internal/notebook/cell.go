// Package notebook is the document model the directive and highlight
// packages operate on: ordered cells with a source text, a language
// identity, synchronous change signals and an optional caret host.
package notebook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Errors returned by cell and document operations.
var (
	ErrCellNotFound      = errors.New("cell not found")
	ErrReadOnly          = errors.New("cell is read-only")
	ErrNotRendered       = errors.New("cell has no editor")
	ErrUnsupportedFormat = errors.New("unsupported notebook format")
)

// Kind is the nbformat cell_type.
type Kind string

const (
	KindCode     Kind = "code"
	KindMarkdown Kind = "markdown"
	KindRaw      Kind = "raw"
)

// Editor is the view-side host of a cell that can place a caret.
type Editor interface {
	SetCursorPosition(line, column int) error
}

// LanguageChange describes an identity transition on a cell.
type LanguageChange struct {
	Cell *Cell
	Old  string
	New  string
}

// Cell is one unit of a notebook.
type Cell struct {
	id       string
	kind     Kind
	source   string
	identity string
	readOnly bool

	// extra carries nbformat fields this package does not interpret
	// (outputs, execution_count, attachments, foreign metadata).
	extra cellExtra

	editor Editor
	doc    *Document

	contentChanged  Signal[*Cell]
	languageChanged Signal[LanguageChange]
}

// NewCodeCell creates a detached code cell with a fresh id.
func NewCodeCell(source, identity string) *Cell {
	return &Cell{
		id:       uuid.NewString(),
		kind:     KindCode,
		source:   source,
		identity: identity,
	}
}

// NewMarkdownCell creates a detached markdown cell with a fresh id.
func NewMarkdownCell(source string) *Cell {
	return &Cell{
		id:       uuid.NewString(),
		kind:     KindMarkdown,
		source:   source,
		identity: "text/x-markdown",
	}
}

// ID returns the nbformat cell id.
func (c *Cell) ID() string { return c.id }

// Kind returns the cell type.
func (c *Cell) Kind() Kind { return c.kind }

// IsCode reports whether the cell is a code cell.
func (c *Cell) IsCode() bool { return c.kind == KindCode }

// Source returns the full cell text.
func (c *Cell) Source() string { return c.source }

// Lines returns the cell body split on "\n". An empty source is one empty line.
func (c *Cell) Lines() []string { return strings.Split(c.source, "\n") }

// LanguageIdentity returns the cell's mime type.
func (c *Cell) LanguageIdentity() string { return c.identity }

// ReadOnly reports whether the cell rejects source writes.
func (c *Cell) ReadOnly() bool { return c.readOnly }

// SetReadOnly marks the cell as (not) editable, mirroring nbformat
// metadata.editable.
func (c *Cell) SetReadOnly(readOnly bool) { c.readOnly = readOnly }

// SetSource replaces the cell text and emits ContentChanged when the text
// actually changed.
func (c *Cell) SetSource(source string) error {
	if c.readOnly {
		return fmt.Errorf("set source on %s: %w", c.id, ErrReadOnly)
	}
	if source == c.source {
		return nil
	}
	c.source = source
	c.contentChanged.Emit(c)
	return nil
}

// SetLanguageIdentity replaces the cell's mime type and emits
// LanguageChanged when it actually changed.
func (c *Cell) SetLanguageIdentity(identity string) error {
	if identity == c.identity {
		return nil
	}
	old := c.identity
	c.identity = identity
	c.languageChanged.Emit(LanguageChange{Cell: c, Old: old, New: identity})
	return nil
}

// ContentChanged is emitted after every source change.
func (c *Cell) ContentChanged() *Signal[*Cell] { return &c.contentChanged }

// LanguageChanged is emitted after every identity change.
func (c *Cell) LanguageChanged() *Signal[LanguageChange] { return &c.languageChanged }

// OnContentChanged connects fn to ContentChanged.
func (c *Cell) OnContentChanged(fn func()) func() {
	return c.contentChanged.Connect(func(*Cell) { fn() })
}

// OnLanguageChanged connects fn to LanguageChanged.
func (c *Cell) OnLanguageChanged(fn func(old, new string)) func() {
	return c.languageChanged.Connect(func(ch LanguageChange) { fn(ch.Old, ch.New) })
}

// SetEditor attaches (or with nil, detaches) the view-side caret host.
func (c *Cell) SetEditor(e Editor) { c.editor = e }

// Editor returns the caret host, nil when the cell is not rendered.
func (c *Cell) Editor() Editor { return c.editor }

// SetCursorPosition forwards to the editor. Returns ErrNotRendered when the
// cell has no editor.
func (c *Cell) SetCursorPosition(line, column int) error {
	if c.editor == nil {
		return ErrNotRendered
	}
	return c.editor.SetCursorPosition(line, column)
}

// Document returns the owning document, nil for a detached cell.
func (c *Cell) Document() *Document { return c.doc }

// Attached reports whether the cell currently belongs to a document.
func (c *Cell) Attached() bool { return c.doc != nil }
