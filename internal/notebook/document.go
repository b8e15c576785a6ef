package notebook

import "fmt"

// CellsChange describes cells added to, removed from or moved within a
// document. Moved cells stay attached; Index is 0 for a move.
type CellsChange struct {
	Index   int
	Added   []*Cell
	Removed []*Cell
	Moved   []*Cell
}

// Document is an ordered list of cells plus notebook-level metadata.
type Document struct {
	path   string
	cells  []*Cell
	active int
	ready  bool

	// extra carries nbformat fields this package does not interpret.
	extra docExtra

	cellsChanged      Signal[CellsChange]
	activeCellChanged Signal[*Cell]
	readySignal       Signal[*Document]
}

// New creates an empty document.
func New() *Document {
	return &Document{active: -1, extra: newDocExtra()}
}

// Path returns the file the document was loaded from, if any.
func (d *Document) Path() string { return d.path }

// SetPath records the file the document should be saved to.
func (d *Document) SetPath(path string) { d.path = path }

// Len returns the number of cells.
func (d *Document) Len() int { return len(d.cells) }

// Cells returns a copy of the cell list.
func (d *Document) Cells() []*Cell {
	out := make([]*Cell, len(d.cells))
	copy(out, d.cells)
	return out
}

// Cell returns the cell at index i.
func (d *Document) Cell(i int) (*Cell, error) {
	if i < 0 || i >= len(d.cells) {
		return nil, fmt.Errorf("index %d of %d: %w", i, len(d.cells), ErrCellNotFound)
	}
	return d.cells[i], nil
}

// CellByID looks a cell up by its nbformat id.
func (d *Document) CellByID(id string) (*Cell, bool) {
	for _, c := range d.cells {
		if c.id == id {
			return c, true
		}
	}
	return nil, false
}

// IndexOf returns the position of c, or -1.
func (d *Document) IndexOf(c *Cell) int {
	for i, cell := range d.cells {
		if cell == c {
			return i
		}
	}
	return -1
}

// Append adds c at the end of the document.
func (d *Document) Append(c *Cell) {
	_ = d.Insert(len(d.cells), c)
}

// Insert adds c at index i and emits CellsChanged.
func (d *Document) Insert(i int, c *Cell) error {
	if i < 0 || i > len(d.cells) {
		return fmt.Errorf("insert at %d of %d: %w", i, len(d.cells), ErrCellNotFound)
	}
	if c.doc != nil && c.doc != d {
		return fmt.Errorf("cell %s already belongs to another document", c.id)
	}
	c.doc = d
	d.cells = append(d.cells, nil)
	copy(d.cells[i+1:], d.cells[i:])
	d.cells[i] = c
	if d.active >= i {
		d.active++
	}
	d.cellsChanged.Emit(CellsChange{Index: i, Added: []*Cell{c}})
	return nil
}

// Remove detaches the cell at index i and emits CellsChanged.
func (d *Document) Remove(i int) (*Cell, error) {
	c, err := d.Cell(i)
	if err != nil {
		return nil, err
	}
	d.cells = append(d.cells[:i], d.cells[i+1:]...)
	c.doc = nil
	c.editor = nil

	activeMoved := false
	switch {
	case d.active == i:
		d.active = min(i, len(d.cells)-1)
		activeMoved = true
	case d.active > i:
		d.active--
	}

	d.cellsChanged.Emit(CellsChange{Index: i, Removed: []*Cell{c}})
	if activeMoved {
		d.activeCellChanged.Emit(d.Active())
	}
	return c, nil
}

// SetActive makes the cell at index i active and emits ActiveCellChanged
// when the active cell changed.
func (d *Document) SetActive(i int) error {
	if _, err := d.Cell(i); err != nil {
		return err
	}
	if d.active == i {
		return nil
	}
	d.active = i
	d.activeCellChanged.Emit(d.cells[i])
	return nil
}

// Active returns the active cell, nil when there is none.
func (d *Document) Active() *Cell {
	if d.active < 0 || d.active >= len(d.cells) {
		return nil
	}
	return d.cells[d.active]
}

// ActiveIndex returns the active cell index, -1 when there is none.
func (d *Document) ActiveIndex() int { return d.active }

// MarkReady flags the document as fully loaded and emits Ready once.
func (d *Document) MarkReady() {
	if d.ready {
		return
	}
	d.ready = true
	d.readySignal.Emit(d)
}

// Ready reports whether MarkReady has been called.
func (d *Document) Ready() bool { return d.ready }

// OnReady runs fn once the document is ready; immediately if it already is.
func (d *Document) OnReady(fn func(*Document)) {
	if d.ready {
		fn(d)
		return
	}
	var disconnect func()
	disconnect = d.readySignal.Connect(func(doc *Document) {
		disconnect()
		fn(doc)
	})
}

// CellsChanged is emitted after cells are inserted or removed.
func (d *Document) CellsChanged() *Signal[CellsChange] { return &d.cellsChanged }

// ActiveCellChanged is emitted after the active cell changes.
func (d *Document) ActiveCellChanged() *Signal[*Cell] { return &d.activeCellChanged }

// Sync brings d in line with other, typically a fresh read of the same file
// after an external edit. Cells are matched by id: matching cells receive
// the new source and identity through their setters (so their signals fire
// as for any external edit), unmatched cells are removed, new cells are
// inserted, and the result follows other's order. When other came from a
// file without cell ids, cells are matched by position and kind instead.
func (d *Document) Sync(other *Document) {
	if other.extra.mintedIDs {
		d.adoptIDs(other)
	}

	keep := make(map[string]bool, len(other.cells))
	for _, c := range other.cells {
		keep[c.id] = true
	}
	for i := len(d.cells) - 1; i >= 0; i-- {
		if !keep[d.cells[i].id] {
			_, _ = d.Remove(i)
		}
	}

	for i, incoming := range other.cells {
		existing, ok := d.CellByID(incoming.id)
		if !ok {
			fresh := &Cell{
				id:       incoming.id,
				kind:     incoming.kind,
				source:   incoming.source,
				identity: incoming.identity,
				readOnly: incoming.readOnly,
				extra:    incoming.extra,
			}
			_ = d.Insert(min(i, len(d.cells)), fresh)
			continue
		}
		existing.extra = incoming.extra
		existing.readOnly = false
		_ = existing.SetSource(incoming.source)
		existing.readOnly = incoming.readOnly
		_ = existing.SetLanguageIdentity(incoming.identity)
	}
	d.reorder(other)
	d.extra = other.extra
}

// adoptIDs gives other's generated ids the ids of d's cells at the same
// position, as long as the kinds agree.
func (d *Document) adoptIDs(other *Document) {
	for i, incoming := range other.cells {
		if i < len(d.cells) && d.cells[i].kind == incoming.kind {
			incoming.id = d.cells[i].id
		}
	}
}

// reorder permutes d.cells into other's order and emits one CellsChanged
// listing the cells whose index changed. Both documents must hold the
// same ids.
func (d *Document) reorder(other *Document) {
	if len(d.cells) != len(other.cells) {
		return
	}
	ordered := make([]*Cell, 0, len(other.cells))
	for _, incoming := range other.cells {
		c, ok := d.CellByID(incoming.id)
		if !ok {
			return
		}
		ordered = append(ordered, c)
	}

	var moved []*Cell
	for i, c := range ordered {
		if d.cells[i] != c {
			moved = append(moved, c)
		}
	}
	if len(moved) == 0 {
		return
	}

	active := d.Active()
	d.cells = ordered
	if active != nil {
		d.active = d.IndexOf(active)
	}
	d.cellsChanged.Emit(CellsChange{Moved: moved})
}
