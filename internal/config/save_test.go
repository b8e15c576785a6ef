package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveTheme_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveTheme(path, ThemeConfig{Name: "JupyterLab Dark"}))

	cfg, err := loadConfigFromYAML(t, readFile(t, path))
	require.NoError(t, err)
	require.Equal(t, "JupyterLab Dark", cfg.Theme.Name)
}

func TestSaveTheme_PreservesOtherSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`# my settings
watch:
  debounce: 2s # slow disk
theme:
  name: JupyterLab Light
`), 0o600))

	require.NoError(t, SaveTheme(path, ThemeConfig{Name: "JupyterLab Dark", Mode: "dark"}))

	content := readFile(t, path)
	require.Contains(t, content, "# my settings")
	require.Contains(t, content, "# slow disk")
	require.NotContains(t, content, "JupyterLab Light")

	cfg, err := loadConfigFromYAML(t, content)
	require.NoError(t, err)
	require.Equal(t, ThemeConfig{Name: "JupyterLab Dark", Mode: "dark"}, cfg.Theme)
	require.Equal(t, "2s", cfg.Watch.Debounce.String())
}

func TestSaveTheme_AppendsMissingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl: 1m\n"), 0o600))

	require.NoError(t, SaveTheme(path, ThemeConfig{Mode: "light"}))

	cfg, err := loadConfigFromYAML(t, readFile(t, path))
	require.NoError(t, err)
	require.Equal(t, "light", cfg.Theme.Mode)
	require.Equal(t, "1m0s", cfg.Cache.TTL.String())
}

func TestSaveTheme_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.Error(t, SaveTheme(path, ThemeConfig{Mode: "sepia"}))

	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))
	require.Error(t, SaveTheme(path, ThemeConfig{}))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
