package directive

import "errors"

// ErrPrecondition reports a collaborator that cannot report or accept cell
// text. It is the only error the state machine surfaces.
var ErrPrecondition = errors.New("cell precondition violated")

// Cell is the view of a notebook cell the state machine needs. It is
// satisfied by *notebook.Cell.
type Cell interface {
	ID() string
	IsCode() bool

	Source() string
	SetSource(source string) error
	LanguageIdentity() string
	SetLanguageIdentity(identity string) error

	// OnContentChanged and OnLanguageChanged deliver notifications
	// synchronously from within the setters above. Both return an
	// unsubscribe function.
	OnContentChanged(fn func()) func()
	OnLanguageChanged(fn func(old, new string)) func()

	// SetCursorPosition places the caret; it fails when the cell is not
	// rendered. Attached reports whether the cell still exists in its
	// document.
	SetCursorPosition(line, column int) error
	Attached() bool
}
