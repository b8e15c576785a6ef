package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ilegend/legendnb/internal/app"
	"github.com/ilegend/legendnb/internal/presentation"
	"github.com/ilegend/legendnb/internal/tracing"
)

var (
	kernelsJSON bool
	kernelsAll  bool
)

var kernelsCmd = &cobra.Command{
	Use:   "kernels [notebook.ipynb]",
	Short: "List the kernel of every code cell",
	Long: `List the kernel each code cell runs in, as derived from its directive line.

A mode marked with * belongs to a cell whose language is not managed, so the
notebook view shows no selector for it.

Examples:
  # Table of code cells
  legendnb kernels demo.ipynb

  # Include markdown and raw cells
  legendnb kernels demo.ipynb --all

  # Parse specific fields with jq
  legendnb kernels demo.ipynb --json | jq '.[] | select(.mode == "Python") | .index'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadedConfig()
		if err != nil {
			return err
		}
		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		doc, err := loadNotebook(target, app.IdentitiesFromConfig(cfg.Kernels))
		if err != nil {
			return err
		}

		ctrl := newController(cfg, tracing.NoopProvider())
		defer ctrl.Close()
		dtos := presentation.FromDocument(doc, ctrl.IsManaged, !kernelsAll)

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if kernelsJSON {
			formatter = presentation.NewJSONFormatter(cmd.OutOrStdout())
		}
		return formatter.FormatCells(dtos)
	},
}

func init() {
	kernelsCmd.Flags().BoolVar(&kernelsJSON, "json", false, "Print JSON instead of a table")
	kernelsCmd.Flags().BoolVarP(&kernelsAll, "all", "a", false, "Include markdown and raw cells")
	rootCmd.AddCommand(kernelsCmd)
}
