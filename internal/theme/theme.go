// Package theme tracks the active highlighting theme and announces changes.
package theme

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/ilegend/legendnb/internal/config"
	"github.com/ilegend/legendnb/internal/highlight"
	"github.com/ilegend/legendnb/internal/log"
	"github.com/ilegend/legendnb/internal/pubsub"
)

// Built-in theme names.
const (
	Light = "JupyterLab Light"
	Dark  = "JupyterLab Dark"
)

// Presets returns the theme names offered by the theme picker.
func Presets() []string {
	return []string{Light, Dark, "Legend Light", "Legend Dark"}
}

// Change is published when the theme changes.
type Change struct {
	Name string
	Dark bool
}

// Manager holds the current theme. It satisfies highlight.ThemeProvider and
// is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	name   string
	broker *pubsub.Broker[Change]
}

// DetectDark reports whether the terminal background is dark.
func DetectDark() bool {
	return lipgloss.HasDarkBackground()
}

// Resolve picks the initial theme: an explicit name wins, then a forced
// mode, then detect.
func Resolve(cfg config.ThemeConfig, detect func() bool) string {
	if name := strings.TrimSpace(cfg.Name); name != "" {
		return name
	}
	switch cfg.Mode {
	case "dark":
		return Dark
	case "light":
		return Light
	}
	if detect != nil && detect() {
		return Dark
	}
	return Light
}

// NewManager starts with the theme Resolve picks.
func NewManager(cfg config.ThemeConfig, detect func() bool) *Manager {
	m := &Manager{
		name:   Resolve(cfg, detect),
		broker: pubsub.NewBroker[Change](),
	}
	log.Debug(log.CatTheme, "theme resolved", "name", m.name)
	return m
}

// Theme implements highlight.ThemeProvider.
func (m *Manager) Theme() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name, m.name != ""
}

// IsDark reports whether the current theme is dark.
func (m *Manager) IsDark() bool {
	name, _ := m.Theme()
	return highlight.IsDarkTheme(name)
}

// Set switches to name and publishes a Change when it differs from the
// current theme.
func (m *Manager) Set(name string) bool {
	m.mu.Lock()
	if name == m.name {
		m.mu.Unlock()
		return false
	}
	m.name = name
	m.mu.Unlock()

	log.Info(log.CatTheme, "theme changed", "name", name)
	m.broker.Publish(pubsub.ThemeChangedEvent, Change{Name: name, Dark: highlight.IsDarkTheme(name)})
	return true
}

// Toggle flips between the built-in light and dark themes and returns the
// new name.
func (m *Manager) Toggle() string {
	next := Dark
	if m.IsDark() {
		next = Light
	}
	m.Set(next)
	return next
}

// Subscribe returns theme changes until ctx ends.
func (m *Manager) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return m.broker.Subscribe(ctx)
}

// Broker exposes the change broker for tea listeners.
func (m *Manager) Broker() *pubsub.Broker[Change] {
	return m.broker
}

// Close ends all subscriptions.
func (m *Manager) Close() {
	m.broker.Close()
}
