package directive

import "errors"

type caretCall struct {
	line, column int
}

// fakeCell is a Cell that counts writes and dispatches notifications
// synchronously, like the notebook model does.
type fakeCell struct {
	id       string
	code     bool
	source   string
	identity string
	attached bool

	sourceWrites   int
	identityWrites int
	failSource     error
	failIdentity   error
	panicOnSource  bool

	next        int
	contentSubs map[int]func()
	langSubs    map[int]func(old, new string)

	carets   []caretCall
	caretErr error
}

func newFakeCell(id, source, identity string) *fakeCell {
	return &fakeCell{
		id:          id,
		code:        true,
		source:      source,
		identity:    identity,
		attached:    true,
		contentSubs: make(map[int]func()),
		langSubs:    make(map[int]func(old, new string)),
	}
}

func (f *fakeCell) ID() string               { return f.id }
func (f *fakeCell) IsCode() bool             { return f.code }
func (f *fakeCell) Source() string           { return f.source }
func (f *fakeCell) LanguageIdentity() string { return f.identity }
func (f *fakeCell) Attached() bool           { return f.attached }

func (f *fakeCell) SetSource(source string) error {
	if f.panicOnSource {
		panic("editor exploded")
	}
	if f.failSource != nil {
		return f.failSource
	}
	f.sourceWrites++
	if source == f.source {
		return nil
	}
	f.source = source
	for _, fn := range f.contentSnapshot() {
		fn()
	}
	return nil
}

func (f *fakeCell) SetLanguageIdentity(identity string) error {
	if f.failIdentity != nil {
		return f.failIdentity
	}
	f.identityWrites++
	if identity == f.identity {
		return nil
	}
	old := f.identity
	f.identity = identity
	for _, fn := range f.langSnapshot() {
		fn(old, identity)
	}
	return nil
}

// edit simulates the user typing: a source change that does not come from
// the controller and is not counted as a controller write.
func (f *fakeCell) edit(source string) {
	f.source = source
	for _, fn := range f.contentSnapshot() {
		fn()
	}
}

func (f *fakeCell) OnContentChanged(fn func()) func() {
	id := f.next
	f.next++
	f.contentSubs[id] = fn
	return func() { delete(f.contentSubs, id) }
}

func (f *fakeCell) OnLanguageChanged(fn func(old, new string)) func() {
	id := f.next
	f.next++
	f.langSubs[id] = fn
	return func() { delete(f.langSubs, id) }
}

func (f *fakeCell) SetCursorPosition(line, column int) error {
	if f.caretErr != nil {
		return f.caretErr
	}
	f.carets = append(f.carets, caretCall{line: line, column: column})
	return nil
}

func (f *fakeCell) writes() int { return f.sourceWrites + f.identityWrites }

func (f *fakeCell) contentSnapshot() []func() {
	out := make([]func(), 0, len(f.contentSubs))
	for _, fn := range f.contentSubs {
		out = append(out, fn)
	}
	return out
}

func (f *fakeCell) langSnapshot() []func(old, new string) {
	out := make([]func(old, new string), 0, len(f.langSubs))
	for _, fn := range f.langSubs {
		out = append(out, fn)
	}
	return out
}

var errEditorGone = errors.New("editor gone")
