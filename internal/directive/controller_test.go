package directive

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ilegend/legendnb/internal/tracing"
)

func newTestController() (*Controller, *FrameScheduler) {
	sched := NewFrameScheduler()
	return NewController(Options{Scheduler: sched}), sched
}

func TestApplyMode_SwitchToPython(t *testing.T) {
	ctrl, sched := newTestController()
	cell := newFakeCell("c1", "print(1)", LegendIdentity)

	mutated, err := ctrl.ApplyMode(context.Background(), cell, Python)
	require.NoError(t, err)
	require.True(t, mutated)

	require.Equal(t, PythonDirective+"\n"+PythonHeader+"\nprint(1)", cell.Source())
	require.Equal(t, PythonIdentity, cell.LanguageIdentity())

	require.Empty(t, cell.carets, "caret moves only after the frame")
	require.Equal(t, 1, sched.Flush())
	require.Equal(t, []caretCall{{line: 2, column: 0}}, cell.carets)
}

func TestApplyMode_SwitchToLegend(t *testing.T) {
	ctrl, sched := newTestController()
	cell := newFakeCell("c1", PythonDirective+"\n"+PythonHeader+"\nprint(1)", PythonIdentity)

	mutated, err := ctrl.ApplyMode(context.Background(), cell, Legend)
	require.NoError(t, err)
	require.True(t, mutated)

	require.Equal(t, "print(1)", cell.Source())
	require.Equal(t, LegendIdentity, cell.LanguageIdentity())
	sched.Flush()
	require.Equal(t, []caretCall{{line: 0, column: 0}}, cell.carets)
}

func TestApplyMode_AlreadyAppliedIsNoop(t *testing.T) {
	ctrl, sched := newTestController()
	cell := newFakeCell("c1", "print(1)", LegendIdentity)

	mutated, err := ctrl.ApplyMode(context.Background(), cell, Legend)
	require.NoError(t, err)
	require.False(t, mutated)
	require.Zero(t, cell.writes())
	require.Zero(t, sched.Pending())
}

func TestApplyMode_LowercaseDirectiveIsRewritten(t *testing.T) {
	ctrl, _ := newTestController()
	cell := newFakeCell("c1", "#Kernel: python\nx=1", LegendIdentity)

	require.Equal(t, Legend, DeriveMode(SplitLines(cell.Source())))

	mutated, err := ctrl.ApplyMode(context.Background(), cell, Python)
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, PythonDirective+"\n"+PythonHeader+"\nx=1", cell.Source())
}

func TestApplyMode_CustomIdentities(t *testing.T) {
	ctrl := NewController(Options{Identities: Identities{Python: "text/x-ipython"}})
	cell := newFakeCell("c1", "x", LegendIdentity)

	_, err := ctrl.ApplyMode(context.Background(), cell, Python)
	require.NoError(t, err)
	require.Equal(t, "text/x-ipython", cell.LanguageIdentity())
	require.True(t, ctrl.IsManaged("text/x-ipython"))
	require.Equal(t, Identities{Legend: LegendIdentity, Python: "text/x-ipython"}, ctrl.Identities())
}

func TestApplyMode_NilCell(t *testing.T) {
	ctrl, _ := newTestController()
	_, err := ctrl.ApplyMode(context.Background(), nil, Python)
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestApplyMode_WriteFailure(t *testing.T) {
	ctrl, sched := newTestController()
	cell := newFakeCell("c1", "x", LegendIdentity)
	cell.failSource = errors.New("read-only")

	mutated, err := ctrl.ApplyMode(context.Background(), cell, Python)
	require.False(t, mutated)
	require.ErrorIs(t, err, ErrPrecondition)
	require.ErrorIs(t, err, cell.failSource)
	require.False(t, ctrl.Mutating(cell))
	require.Zero(t, sched.Pending())
}

func TestApplyMode_IdentityFailure(t *testing.T) {
	ctrl, _ := newTestController()
	cell := newFakeCell("c1", "x", LegendIdentity)
	cell.failIdentity = errors.New("identity locked")

	_, err := ctrl.ApplyMode(context.Background(), cell, Python)
	require.ErrorIs(t, err, ErrPrecondition)
	require.False(t, ctrl.Mutating(cell))
	require.Equal(t, "x", cell.Source(), "source is rolled back")
	require.Equal(t, LegendIdentity, cell.LanguageIdentity())
	require.Equal(t, 2, cell.sourceWrites)
}

func TestApplyMode_GuardReleasedOnPanic(t *testing.T) {
	ctrl, _ := newTestController()
	cell := newFakeCell("c1", "x", LegendIdentity)
	cell.panicOnSource = true

	require.Panics(t, func() {
		_, _ = ctrl.ApplyMode(context.Background(), cell, Python)
	})
	require.False(t, ctrl.Mutating(cell))
}

func TestApplyMode_CaretTargetVanished(t *testing.T) {
	ctrl, sched := newTestController()
	cell := newFakeCell("c1", "x", LegendIdentity)

	_, err := ctrl.ApplyMode(context.Background(), cell, Python)
	require.NoError(t, err)

	cell.attached = false
	require.NotPanics(t, func() { sched.Flush() })
	require.Empty(t, cell.carets)
}

func TestApplyMode_CaretFailureIgnored(t *testing.T) {
	ctrl, sched := newTestController()
	cell := newFakeCell("c1", "x", LegendIdentity)
	cell.caretErr = errEditorGone

	mutated, err := ctrl.ApplyMode(context.Background(), cell, Python)
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, 1, sched.Flush())
	require.Equal(t, PythonIdentity, cell.LanguageIdentity())
}

func TestApplyMode_TwoSwitchesBeforeFrame(t *testing.T) {
	ctrl, sched := newTestController()
	cell := newFakeCell("c1", "x", LegendIdentity)

	_, err := ctrl.ApplyMode(context.Background(), cell, Python)
	require.NoError(t, err)
	_, err = ctrl.ApplyMode(context.Background(), cell, Legend)
	require.NoError(t, err)

	require.Equal(t, 2, sched.Flush())
	require.Equal(t, []caretCall{{2, 0}, {0, 0}}, cell.carets)
	require.Equal(t, "x", cell.Source())
}

func TestApplyMode_RecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctrl := NewController(Options{Tracer: tp.Tracer("test")})
	cell := newFakeCell("c1", "x", LegendIdentity)

	_, err := ctrl.ApplyMode(context.Background(), cell, Python)
	require.NoError(t, err)
	_, err = ctrl.ApplyMode(context.Background(), cell, Python)
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1, "a no-op switch opens no span")
	require.Equal(t, tracing.SpanApplyMode, spans[0].Name())

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	require.Equal(t, "c1", attrs[tracing.AttrCellID].AsString())
	require.Equal(t, "Legend", attrs[tracing.AttrModeFrom].AsString())
	require.Equal(t, "Python", attrs[tracing.AttrModeTo].AsString())
	require.True(t, attrs[tracing.AttrMutated].AsBool())
}

func TestInjectSelector_Twice(t *testing.T) {
	ctrl, _ := newTestController()
	cell := newFakeCell("c1", "x", LegendIdentity)

	first, ok := ctrl.InjectSelector(cell)
	require.True(t, ok)
	require.NotNil(t, first)

	second, ok := ctrl.InjectSelector(cell)
	require.False(t, ok)
	require.Same(t, first, second)
	require.Equal(t, 1, ctrl.Len())
	require.Len(t, cell.contentSubs, 1)
	require.Len(t, cell.langSubs, 1)
}

func TestInjectSelector_InitialSync(t *testing.T) {
	ctrl, _ := newTestController()
	cell := newFakeCell("c1", PythonDirective+"\nx", PythonIdentity)

	b, ok := ctrl.InjectSelector(cell)
	require.True(t, ok)
	require.Equal(t, Python, b.Value())
	require.Zero(t, cell.writes(), "injection never writes")
}

func TestInjectSelector_Ineligible(t *testing.T) {
	ctrl, _ := newTestController()

	markdown := newFakeCell("m", "# title", "text/x-markdown")
	markdown.code = false
	b, ok := ctrl.InjectSelector(markdown)
	require.Nil(t, b)
	require.False(t, ok)

	other := newFakeCell("r", "x <- 1", "text/x-rsrc")
	b, ok = ctrl.InjectSelector(other)
	require.Nil(t, b)
	require.False(t, ok)

	b, ok = ctrl.InjectSelector(nil)
	require.Nil(t, b)
	require.False(t, ok)
	require.Zero(t, ctrl.Len())
}

func TestInjectSelector_ExtraManagedIdentity(t *testing.T) {
	ctrl := NewController(Options{Managed: []string{"text/x-pylegend"}})
	cell := newFakeCell("c1", "x", "text/x-pylegend")

	_, ok := ctrl.InjectSelector(cell)
	require.True(t, ok)
	require.True(t, ctrl.IsManaged(LegendIdentity))
	require.True(t, ctrl.IsManaged(PythonIdentity))
}

func TestTeardownSelector(t *testing.T) {
	ctrl, _ := newTestController()
	cell := newFakeCell("c1", "x", LegendIdentity)
	b, _ := ctrl.InjectSelector(cell)

	require.True(t, ctrl.TeardownSelector(cell))
	require.False(t, ctrl.TeardownSelector(cell))
	require.False(t, b.Live())
	require.Nil(t, ctrl.Binding(cell))
	require.Empty(t, cell.contentSubs)
	require.Empty(t, cell.langSubs)

	cell.edit(PythonDirective)
	require.Equal(t, Legend, b.Value(), "dead binding ignores edits")
}

func TestTeardownOnUnmanagedIdentity(t *testing.T) {
	ctrl, _ := newTestController()
	cell := newFakeCell("c1", "x", LegendIdentity)
	ctrl.InjectSelector(cell)

	require.NoError(t, cell.SetLanguageIdentity("text/x-sql"))
	require.Nil(t, ctrl.Binding(cell))
	require.Zero(t, ctrl.Len())
}

func TestSwitchToPythonKeepsSelector(t *testing.T) {
	ctrl, _ := newTestController()
	cell := newFakeCell("c1", "x", LegendIdentity)
	b, _ := ctrl.InjectSelector(cell)

	require.NoError(t, b.OnSelectorChanged(context.Background(), Python))
	require.Same(t, b, ctrl.Binding(cell))
	require.True(t, b.Live())
	require.Equal(t, Python, b.Value())
}

func TestTrack_ReinjectsWhenManagedAgain(t *testing.T) {
	ctrl, _ := newTestController()
	cell := newFakeCell("c1", "x", LegendIdentity)

	first := ctrl.Track(cell)
	require.NotNil(t, first)
	require.Same(t, first, ctrl.Track(cell))

	require.NoError(t, cell.SetLanguageIdentity("text/x-sql"))
	require.Nil(t, ctrl.Binding(cell))

	require.NoError(t, cell.SetLanguageIdentity(LegendIdentity))
	second := ctrl.Binding(cell)
	require.NotNil(t, second)
	require.NotSame(t, first, second)
	require.Equal(t, 1, ctrl.Len())

	ctrl.Forget(cell)
	require.Nil(t, ctrl.Binding(cell))
	require.Empty(t, cell.langSubs)
	require.Empty(t, cell.contentSubs)
}

func TestTrack_SelectorAppearsOnceManaged(t *testing.T) {
	ctrl, _ := newTestController()
	cell := newFakeCell("r", "x", "text/x-sql")

	require.Nil(t, ctrl.Track(cell))
	require.NoError(t, cell.SetLanguageIdentity(LegendIdentity))
	require.NotNil(t, ctrl.Binding(cell))
}

func TestController_Close(t *testing.T) {
	ctrl, _ := newTestController()
	a := newFakeCell("a", "x", LegendIdentity)
	b := newFakeCell("b", "y", PythonIdentity)
	ctrl.Track(a)
	ctrl.InjectSelector(b)

	ctrl.Close()
	require.Zero(t, ctrl.Len())
	require.Empty(t, a.langSubs)
	require.Empty(t, b.contentSubs)
}
