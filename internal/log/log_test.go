package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ilegend/legendnb/internal/pubsub"
)

func TestFormatEntry(t *testing.T) {
	ts := time.Date(2025, 12, 6, 10, 45, 0, 0, time.UTC)

	got := formatEntry(ts, LevelWarn, CatDirective, "rewrite skipped", "cell", "c1", "mode", "Python")
	require.Equal(t, "2025-12-06T10:45:00 [WARN] [directive] rewrite skipped cell=c1 mode=Python\n", got)
}

func TestFormatEntry_OddFields(t *testing.T) {
	ts := time.Date(2025, 12, 6, 10, 45, 0, 0, time.UTC)

	got := formatEntry(ts, LevelInfo, CatTheme, "theme", "name")
	require.Equal(t, "2025-12-06T10:45:00 [INFO] [theme] theme name=<missing>\n", got)
}

func TestLog_RespectsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelInfo)
	t.Cleanup(Reset)

	Debug(CatUI, "hidden")
	Info(CatUI, "shown")
	ErrorErr(CatNotebook, "save failed", errors.New("disk full"))

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "[INFO] [ui] shown")
	require.Contains(t, out, "error=disk full")
}

func TestLog_DisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	SetEnabled(false)
	Error(CatConfig, "nope")
	require.Empty(t, buf.String())
}

func TestLog_NoLoggerIsSafe(t *testing.T) {
	Reset()
	require.NotPanics(t, func() {
		Info(CatCache, "no logger")
	})
	require.Nil(t, NewListener(context.Background()))
}

func TestNewListener_ReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Info(CatHighlight, "loaded pylegend", "style", "dark")

	event, ok := listener.Listen()().(pubsub.Event[string])
	require.True(t, ok)
	require.Equal(t, pubsub.LogEntryEvent, event.Type)
	require.Contains(t, event.Payload, "loaded pylegend style=dark")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel(" error "))
	require.Equal(t, LevelInfo, ParseLevel("bogus"))
}
