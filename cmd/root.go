package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ilegend/legendnb/internal/app"
	"github.com/ilegend/legendnb/internal/config"
	"github.com/ilegend/legendnb/internal/directive"
	"github.com/ilegend/legendnb/internal/flags"
	"github.com/ilegend/legendnb/internal/log"
	"github.com/ilegend/legendnb/internal/notebook"
	"github.com/ilegend/legendnb/internal/paths"
	"github.com/ilegend/legendnb/internal/theme"
	"github.com/ilegend/legendnb/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the cell editor.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is checked before the user config directory.
const localConfigPath = ".legendnb/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
	cfgErr    error
)

var rootCmd = &cobra.Command{
	Use:   "legendnb [notebook.ipynb]",
	Short: "A terminal notebook view with per-cell Python/Legend kernel selection",
	Long: `legendnb opens a Jupyter notebook in the terminal. Every code cell carries a
"Run:" selector choosing between Python and Legend; switching rewrites the
"#Kernel: Python" directive at the top of the cell, and editing the directive
by hand moves the selector.

With no argument the single notebook in the current directory is opened.`,
	Version:      version,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runOpen,
}

var openCmd = &cobra.Command{
	Use:   "open [notebook.ipynb]",
	Short: "Open a notebook in the terminal view",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOpen,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/legendnb/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs to $LEGENDNB_LOG (default: debug.log)")
	rootCmd.PersistentFlags().Bool("no-watch", false,
		"do not reload the notebook when it changes on disk")

	_ = viper.BindPFlag("no_watch", rootCmd.PersistentFlags().Lookup("no-watch"))

	rootCmd.AddCommand(openCmd)
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("theme.name", defaults.Theme.Name)
	viper.SetDefault("theme.mode", defaults.Theme.Mode)
	viper.SetDefault("watch.enabled", defaults.Watch.Enabled)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)

	viper.SetEnvPrefix("LEGENDNB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .legendnb/config.yaml (current directory)
		// 2. ~/.config/legendnb/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else if dir := config.UserConfigDir(); dir != "" {
			viper.AddConfigPath(dir)
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	cfgErr = nil
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			cfgErr = fmt.Errorf("reading config: %w", err)
			return
		}
		log.Debug(log.CatConfig, "No config file, using defaults")
	}

	cfg, cfgErr = config.Load(viper.GetViper())
	if cfgErr == nil && viper.GetBool("no_watch") {
		cfg.Watch.Enabled = false
	}
}

// loadedConfig returns the configuration read by initConfig.
func loadedConfig() (config.Config, error) {
	if cfgErr != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", cfgErr)
	}
	return cfg, nil
}

// setupLogging enables the file logger for --debug or LEGENDNB_DEBUG. The
// returned cleanup is never nil.
func setupLogging(prefix string) (func(), error) {
	if !debugFlag && os.Getenv("LEGENDNB_DEBUG") == "" {
		return func() {}, nil
	}
	logPath := os.Getenv("LEGENDNB_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return func() {}, fmt.Errorf("initializing logging: %w", err)
	}
	return cleanup, nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}

	cleanup, err := setupLogging("legendnb")
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	ids := app.IdentitiesFromConfig(cfg.Kernels)
	doc, err := openOrCreate(target, ids)
	if err != nil {
		return err
	}

	themes := theme.NewManager(cfg.Theme, theme.DetectDark)
	defer themes.Close()
	hl := newHighlighter(cfg, themes, provider)
	fl := flags.New(cfg.Flags)

	zone.NewGlobal()
	model := app.New(doc, app.Options{
		Config:      cfg,
		ConfigPath:  themeConfigPath(),
		Highlighter: hl,
		Themes:      themes,
		Flags:       fl,
		Tracer:      provider.Tracer(),
		Debug:       debugFlag || os.Getenv("LEGENDNB_DEBUG") != "",
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if fl.Enabled(flags.FlagMouse) {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, opts...)

	_, err = p.Run()

	// Stops the file watcher and releases every selector binding.
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// openOrCreate loads the notebook target resolves to. A missing .ipynb path
// opens an empty notebook that is created on the first save.
func openOrCreate(target string, ids directive.Identities) (*notebook.Document, error) {
	path, err := paths.ResolveNotebook(target)
	if err != nil {
		return nil, err
	}
	doc, err := notebook.Load(path, app.ReadOptions(ids))
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	log.Info(log.CatNotebook, "Starting new notebook", "path", path)
	doc = notebook.New()
	doc.SetPath(path)
	doc.Append(notebook.NewCodeCell("", ids.For(directive.Legend)))
	return doc, nil
}

// themeConfigPath is where theme changes are saved: the config file in use,
// else the user config, which is created with defaults when missing.
func themeConfigPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			return used
		}
	}
	dir := config.UserConfigDir()
	if dir == "" {
		return ""
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := config.WriteDefaultConfig(path); err != nil {
			// Theme changes are then kept for this session only.
			return ""
		}
	}
	return path
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
