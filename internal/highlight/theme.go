package highlight

import "strings"

// ThemeProvider reports the current theme name. ok is false when no theme
// is known.
type ThemeProvider interface {
	Theme() (name string, ok bool)
}

// ThemeFunc adapts a function to ThemeProvider.
type ThemeFunc func() (string, bool)

// Theme implements ThemeProvider.
func (f ThemeFunc) Theme() (string, bool) { return f() }

// StaticTheme is a ThemeProvider with a fixed name; empty means unknown.
type StaticTheme string

// Theme implements ThemeProvider.
func (s StaticTheme) Theme() (string, bool) { return string(s), s != "" }

// IsDarkTheme reports whether a theme name denotes a dark theme: it
// contains "dark" in any case.
func IsDarkTheme(name string) bool {
	return strings.Contains(strings.ToLower(name), "dark")
}

// ThemeIsDark resolves provider to a flag; a nil provider or unknown theme
// is light.
func ThemeIsDark(provider ThemeProvider) bool {
	if provider == nil {
		return false
	}
	name, ok := provider.Theme()
	return ok && IsDarkTheme(name)
}
