// Package config provides configuration types, defaults and validation for
// legendnb.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/ilegend/legendnb/internal/log"
	"github.com/ilegend/legendnb/internal/tracing"
)

// Config holds all configuration options for legendnb.
type Config struct {
	Theme   ThemeConfig     `mapstructure:"theme"`
	Kernels KernelsConfig   `mapstructure:"kernels"`
	Watch   WatchConfig     `mapstructure:"watch"`
	Cache   CacheConfig     `mapstructure:"cache"`
	UI      UIConfig        `mapstructure:"ui"`
	Tracing tracing.Config  `mapstructure:"tracing"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// ThemeConfig selects the highlighting theme.
type ThemeConfig struct {
	// Name is a theme name such as "JupyterLab Dark". Any name containing
	// "dark" selects the dark palette. Empty means detect from the terminal.
	Name string `mapstructure:"name"`

	// Mode forces "light" or "dark" when Name is empty.
	Mode string `mapstructure:"mode"`
}

// KernelsConfig maps kernel modes to cell language identities.
type KernelsConfig struct {
	DefaultIdentity   string   `mapstructure:"default_identity"`
	AlternateIdentity string   `mapstructure:"alternate_identity"`
	Managed           []string `mapstructure:"managed"`
}

// WatchConfig controls reloading the open notebook when it changes on disk.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// CacheConfig controls the highlight line cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// UIConfig holds user interface options.
type UIConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style"` // "auto" (default), "dark" or "light"
	WordWrap      int    `mapstructure:"word_wrap"`      // markdown wrap width, 0 = window width
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	trace := tracing.DefaultConfig()
	trace.FilePath = DefaultTracesFilePath()
	return Config{
		Kernels: KernelsConfig{
			DefaultIdentity:   "text/x-ilegend",
			AlternateIdentity: "text/x-python",
			Managed:           []string{"text/x-ilegend", "text/x-python"},
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 300 * time.Millisecond,
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		UI: UIConfig{
			MarkdownStyle: "auto",
		},
		Tracing: trace,
	}
}

// Load decodes v on top of Defaults and validates the result.
func Load(v *viper.Viper) (Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func Validate(cfg Config) error {
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	if err := ValidateKernels(cfg.Kernels); err != nil {
		return err
	}
	if err := ValidateWatch(cfg.Watch); err != nil {
		return err
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %v", cfg.Cache.TTL)
	}
	switch cfg.UI.MarkdownStyle {
	case "", "auto", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"auto\", \"dark\" or \"light\", got %q", cfg.UI.MarkdownStyle)
	}
	if err := cfg.Tracing.Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateTheme checks theme configuration for errors.
func ValidateTheme(theme ThemeConfig) error {
	switch theme.Mode {
	case "", "light", "dark":
		return nil
	default:
		return fmt.Errorf("theme.mode must be \"light\", \"dark\" or empty, got %q", theme.Mode)
	}
}

// ValidateKernels checks kernel identities. Empty identities fall back to
// the built-in ones.
func ValidateKernels(k KernelsConfig) error {
	if k.DefaultIdentity != "" && k.DefaultIdentity == k.AlternateIdentity {
		return fmt.Errorf("kernels.default_identity and kernels.alternate_identity must differ, both are %q", k.DefaultIdentity)
	}
	if slices.Contains(k.Managed, "") {
		return fmt.Errorf("kernels.managed must not contain empty identities")
	}
	return nil
}

// ValidateWatch checks file watch configuration.
func ValidateWatch(w WatchConfig) error {
	if w.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %v", w.Debounce)
	}
	return nil
}

// DefaultTracesFilePath returns ~/.config/legendnb/traces/traces.jsonl, or
// empty when the home directory is unknown.
func DefaultTracesFilePath() string {
	dir := UserConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// UserConfigDir returns ~/.config/legendnb, or empty when the home
// directory is unknown.
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "legendnb")
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	tmpl, err := DefaultConfigTemplate()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(tmpl), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
