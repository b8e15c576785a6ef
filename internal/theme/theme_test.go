package theme

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ilegend/legendnb/internal/config"
	"github.com/ilegend/legendnb/internal/highlight"
	"github.com/ilegend/legendnb/internal/pubsub"
)

var _ highlight.ThemeProvider = (*Manager)(nil)

func always(v bool) func() bool { return func() bool { return v } }

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.ThemeConfig
		detect func() bool
		want   string
	}{
		{"explicit name", config.ThemeConfig{Name: "Solarized Dark", Mode: "light"}, always(false), "Solarized Dark"},
		{"forced dark", config.ThemeConfig{Mode: "dark"}, always(false), Dark},
		{"forced light", config.ThemeConfig{Mode: "light"}, always(true), Light},
		{"detected dark", config.ThemeConfig{}, always(true), Dark},
		{"detected light", config.ThemeConfig{}, always(false), Light},
		{"no detector", config.ThemeConfig{}, nil, Light},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Resolve(tt.cfg, tt.detect))
		})
	}
}

func TestManager_SetPublishes(t *testing.T) {
	m := NewManager(config.ThemeConfig{Mode: "light"}, nil)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := m.Subscribe(ctx)

	require.False(t, m.Set(Light), "same theme is not a change")
	require.True(t, m.Set("Nord Dark"))

	select {
	case ev := <-ch:
		require.Equal(t, pubsub.ThemeChangedEvent, ev.Type)
		require.Equal(t, Change{Name: "Nord Dark", Dark: true}, ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("no theme change published")
	}

	name, ok := m.Theme()
	require.True(t, ok)
	require.Equal(t, "Nord Dark", name)
	require.True(t, m.IsDark())
}

func TestManager_Toggle(t *testing.T) {
	m := NewManager(config.ThemeConfig{Name: "Legend Light"}, nil)
	defer m.Close()

	require.Equal(t, Dark, m.Toggle())
	require.True(t, m.IsDark())
	require.Equal(t, Light, m.Toggle())
	require.False(t, m.IsDark())
}

func TestManager_DrivesHighlightLoader(t *testing.T) {
	m := NewManager(config.ThemeConfig{}, always(false))
	defer m.Close()

	reg := highlight.NewRegistry()
	require.NoError(t, highlight.RegisterLanguage(reg, m))

	support, err := reg.Load(context.Background(), highlight.PylegendMime)
	require.NoError(t, err)
	require.False(t, support.Dark())

	m.Toggle()
	support, err = reg.Load(context.Background(), highlight.PylegendMime)
	require.NoError(t, err)
	require.True(t, support.Dark())
}

func TestPresets(t *testing.T) {
	presets := Presets()
	require.Contains(t, presets, Light)
	require.Contains(t, presets, Dark)
}
