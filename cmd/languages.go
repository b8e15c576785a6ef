package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ilegend/legendnb/internal/highlight"
	"github.com/ilegend/legendnb/internal/presentation"
	"github.com/ilegend/legendnb/internal/tracing"
)

var languagesJSON bool

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages the highlighter knows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadedConfig()
		if err != nil {
			return err
		}
		// Loaders are never invoked here, so the theme does not matter.
		reg := newRegistry(cfg.Kernels, highlight.StaticTheme(""), tracing.NoopProvider())

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if languagesJSON {
			formatter = presentation.NewJSONFormatter(cmd.OutOrStdout())
		}
		return formatter.FormatLanguages(presentation.FromLanguages(reg.Languages()))
	},
}

func init() {
	languagesCmd.Flags().BoolVar(&languagesJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(languagesCmd)
}
