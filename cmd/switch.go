package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/ilegend/legendnb/internal/app"
	"github.com/ilegend/legendnb/internal/directive"
	"github.com/ilegend/legendnb/internal/notebook"
	"github.com/ilegend/legendnb/internal/presentation"
	"github.com/ilegend/legendnb/internal/tracing"
)

var (
	switchCell   int
	switchKernel string
	switchDryRun bool
	switchJSON   bool
)

var switchCmd = &cobra.Command{
	Use:   "switch [notebook.ipynb]",
	Short: "Switch the kernel of one code cell",
	Long: `Rewrite the directive of one code cell for the given kernel and save the
notebook. Python cells start with

  #Kernel: Python
  #Code in Python below. Don't Remove this Header!!

Legend cells carry no directive. Switching to the kernel a cell already runs
in leaves the file untouched.

Examples:
  # Run the second cell in Python
  legendnb switch demo.ipynb --cell 2 --kernel python

  # Show what would change without saving
  legendnb switch demo.ipynb -n 2 -k legend --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSwitch,
}

func init() {
	switchCmd.Flags().IntVarP(&switchCell, "cell", "n", 0, "One-based index of the cell, as listed by 'legendnb kernels'")
	switchCmd.Flags().StringVarP(&switchKernel, "kernel", "k", "", "Kernel to switch to: python or legend")
	switchCmd.Flags().BoolVar(&switchDryRun, "dry-run", false, "Print a diff of the cell instead of saving")
	switchCmd.Flags().BoolVar(&switchJSON, "json", false, "Print the result as JSON")
	_ = switchCmd.MarkFlagRequired("cell")
	_ = switchCmd.MarkFlagRequired("kernel")
	rootCmd.AddCommand(switchCmd)
}

func runSwitch(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	mode, err := directive.ParseModeFold(switchKernel)
	if err != nil {
		return err
	}

	cleanup, err := setupLogging("legendnb-switch")
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
	doc, err := loadNotebook(target, app.IdentitiesFromConfig(cfg.Kernels))
	if err != nil {
		return err
	}
	cell, err := cellAt(doc, switchCell)
	if err != nil {
		return err
	}
	if !cell.IsCode() {
		return fmt.Errorf("cell %d is a %s cell, only code cells have a kernel", switchCell, cell.Kind())
	}

	ctrl := newController(cfg, provider)
	defer ctrl.Close()

	before := cell.Source()
	from := directive.DeriveMode(cell.Lines())
	changed, err := ctrl.ApplyMode(cmd.Context(), cell, mode)
	if err != nil {
		return err
	}

	result := presentation.SwitchResultDTO{
		Index:   switchCell,
		ID:      cell.ID(),
		From:    from.String(),
		To:      mode.String(),
		Changed: changed,
		DryRun:  switchDryRun,
	}
	if changed && switchDryRun {
		result.Diff = lineDiff(before, cell.Source(),
			fmt.Sprintf("cell %d (%s)", switchCell, from),
			fmt.Sprintf("cell %d (%s)", switchCell, mode))
	}
	if changed && !switchDryRun {
		if err := notebook.Save(doc); err != nil {
			return err
		}
	}

	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	if switchJSON {
		formatter = presentation.NewJSONFormatter(cmd.OutOrStdout())
	}
	return formatter.FormatSwitchResult(result)
}

// lineDiff renders a line-oriented diff of two cell bodies in unified style,
// without hunk headers since a cell is always shown whole.
func lineDiff(before, after, fromLabel, toLabel string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before+"\n", after+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", fromLabel, toLabel)
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
		}
	}
	return sb.String()
}
