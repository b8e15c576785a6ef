package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/ilegend/legendnb/internal/app"
	"github.com/ilegend/legendnb/internal/highlight"
	"github.com/ilegend/legendnb/internal/notebook"
	"github.com/ilegend/legendnb/internal/theme"
	"github.com/ilegend/legendnb/internal/tracing"
)

var (
	highlightCell  int
	highlightTheme string
	highlightColor string
)

var highlightCmd = &cobra.Command{
	Use:   "highlight [notebook.ipynb]",
	Short: "Print code cells with syntax highlighting",
	Long: `Print the code cells of a notebook with ANSI syntax highlighting, using the
grammar of each cell's language. Any theme name containing "dark" selects the
dark palette.

Examples:
  legendnb highlight demo.ipynb
  legendnb highlight demo.ipynb --cell 3 --theme "JupyterLab Dark"
  legendnb highlight demo.ipynb --color always | less -R`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHighlight,
}

func init() {
	highlightCmd.Flags().IntVarP(&highlightCell, "cell", "n", 0, "Only print the cell with this one-based index")
	highlightCmd.Flags().StringVar(&highlightTheme, "theme", "", "Theme name (default: from config, else the terminal background)")
	highlightCmd.Flags().StringVar(&highlightColor, "color", "auto", "Color output: auto, always or never")
	rootCmd.AddCommand(highlightCmd)
}

func runHighlight(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	profile, err := colorProfile(out, highlightColor)
	if err != nil {
		return err
	}
	lipgloss.SetColorProfile(profile)

	var provider highlight.ThemeProvider = highlight.StaticTheme(highlightTheme)
	if highlightTheme == "" {
		themes := theme.NewManager(cfg.Theme, theme.DetectDark)
		defer themes.Close()
		provider = themes
	}

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	doc, err := loadNotebook(target, app.IdentitiesFromConfig(cfg.Kernels))
	if err != nil {
		return err
	}

	hl := highlight.NewHighlighter(newRegistry(cfg.Kernels, provider, tracing.NoopProvider()), nil, 0)

	if highlightCell > 0 {
		cell, err := cellAt(doc, highlightCell)
		if err != nil {
			return err
		}
		return writeHighlighted(cmd, out, hl, highlightCell, cell)
	}
	for i, cell := range doc.Cells() {
		if !cell.IsCode() {
			continue
		}
		if err := writeHighlighted(cmd, out, hl, i+1, cell); err != nil {
			return err
		}
	}
	return nil
}

func writeHighlighted(cmd *cobra.Command, w io.Writer, hl *highlight.Highlighter, n int, cell *notebook.Cell) error {
	label := cell.LanguageIdentity()
	if !cell.IsCode() {
		label = string(cell.Kind())
	}
	header := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("[%d] %s", n, label))

	body := cell.Source()
	if cell.IsCode() {
		body = hl.Render(cmd.Context(), cell.LanguageIdentity(), body)
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n\n", header, strings.TrimRight(body, "\n"))
	return err
}

// colorProfile maps --color to a termenv profile. auto follows the output
// and the NO_COLOR / CLICOLOR_FORCE environment.
func colorProfile(w io.Writer, mode string) (termenv.Profile, error) {
	switch mode {
	case "auto", "":
		return termenv.NewOutput(w).EnvColorProfile(), nil
	case "always":
		return termenv.TrueColor, nil
	case "never":
		return termenv.Ascii, nil
	default:
		return termenv.Ascii, fmt.Errorf("--color must be auto, always or never, got %q", mode)
	}
}
