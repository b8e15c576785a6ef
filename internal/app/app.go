// Package app contains the root application model: a notebook view whose
// code cells carry a kernel selector kept in sync with their directive.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/trace"

	"github.com/ilegend/legendnb/internal/config"
	"github.com/ilegend/legendnb/internal/directive"
	"github.com/ilegend/legendnb/internal/flags"
	"github.com/ilegend/legendnb/internal/highlight"
	"github.com/ilegend/legendnb/internal/keys"
	"github.com/ilegend/legendnb/internal/log"
	"github.com/ilegend/legendnb/internal/notebook"
	"github.com/ilegend/legendnb/internal/pubsub"
	"github.com/ilegend/legendnb/internal/theme"
	"github.com/ilegend/legendnb/internal/ui/markdown"
	"github.com/ilegend/legendnb/internal/watcher"
)

// frameInterval paces deferred work such as caret placement.
const frameInterval = 16 * time.Millisecond

// maxLogLines bounds the log pane.
const maxLogLines = 200

// Options wires the collaborators of the notebook view.
type Options struct {
	Config config.Config
	// ConfigPath receives theme changes. Empty disables saving them.
	ConfigPath  string
	Highlighter *highlight.Highlighter
	Themes      *theme.Manager
	Flags       *flags.Registry
	// Tracer records mode switches. Nil disables tracing.
	Tracer trace.Tracer
	// Debug shows the log pane toggle.
	Debug bool
}

// Model is the root application state.
type Model struct {
	s *session

	keys     keys.KeyMap
	help     help.Model
	viewport viewport.Model
	editor   textarea.Model

	// editing is the id of the cell whose text is in the editor.
	editing string

	width  int
	height int

	status    string
	statusErr bool
	showHelp  bool
	showLogs  bool
	debug     bool
	logLines  []string
}

// New creates the view for doc and marks the document ready, which injects
// a selector into every code cell. The file watcher starts when enabled in
// the config and the document has a path.
func New(doc *notebook.Document, opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	sched := directive.NewFrameScheduler()
	themes := opts.Themes
	if themes == nil {
		themes = theme.NewManager(opts.Config.Theme, nil)
	}
	hl := opts.Highlighter
	if hl == nil {
		reg := highlight.NewRegistry()
		if err := highlight.RegisterDefaults(reg, themes); err != nil {
			log.ErrorErr(log.CatHighlight, "registering languages failed", err)
		}
		k := opts.Config.Kernels
		if err := highlight.RegisterIdentities(reg, k.DefaultIdentity, k.AlternateIdentity); err != nil {
			log.ErrorErr(log.CatHighlight, "registering kernel identities failed", err)
		}
		hl = highlight.NewHighlighter(reg, nil, 0)
	}
	fl := opts.Flags
	if fl == nil {
		fl = flags.New(opts.Config.Flags)
	}

	s := &session{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		doc:        doc,
		sched:      sched,
		hl:         hl,
		themes:     themes,
		flags:      fl,
		md:         markdown.NewCache(),
		views:      make(map[string]*cellView),
		carets:     make(map[string]caretPos),
	}
	s.ctrl = directive.NewController(directive.Options{
		Identities: IdentitiesFromConfig(opts.Config.Kernels),
		Managed:    opts.Config.Kernels.Managed,
		Scheduler:  sched,
		Tracer:     opts.Tracer,
	})

	s.wire()
	if doc.Len() > 0 && doc.ActiveIndex() < 0 {
		_ = doc.SetActive(0)
	}
	doc.MarkReady()
	s.syncViews()

	if opts.Config.Watch.Enabled && doc.Path() != "" {
		s.startWatcher()
	}
	s.themeListener = pubsub.NewContinuousListener(ctx, themes.Broker())
	if opts.Debug {
		s.logListener = log.NewListener(ctx)
	}

	m := Model{
		s:        s,
		keys:     keys.DefaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(0, 0),
		editor:   newEditor(),
		debug:    opts.Debug,
	}
	m.viewport.MouseWheelEnabled = true
	m.refresh()
	return m
}

func newEditor() textarea.Model {
	ta := textarea.New()
	ta.Prompt = ""
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Blur()
	return ta
}

func (s *session) startWatcher() {
	cfg := watcher.DefaultConfig(s.doc.Path())
	if s.cfg.Watch.Debounce > 0 {
		cfg.Debounce = s.cfg.Watch.Debounce
	}
	w, err := watcher.New(cfg)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "creating watcher failed", err)
		return
	}
	ch, err := w.Start()
	if err != nil {
		// The view works without live reload.
		log.ErrorErr(log.CatWatcher, "starting watcher failed", err)
		_ = w.Stop()
		return
	}
	s.watcher = w
	s.reloads = ch
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.waitForReload(),
		m.s.themeListener.Listen(),
		m.s.logListener.Listen(),
		m.requestFrame(),
	}
	return tea.Batch(cmds...)
}

// Document returns the document being shown.
func (m Model) Document() *notebook.Document { return m.s.doc }

// Controller returns the directive controller owning the selectors.
func (m Model) Controller() *directive.Controller { return m.s.ctrl }

// Dirty reports whether there are unsaved changes.
func (m Model) Dirty() bool { return m.s.dirty }

// Close releases the watcher, the listeners and every selector binding.
func (m *Model) Close() error {
	return m.s.close()
}
