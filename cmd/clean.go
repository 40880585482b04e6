package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// newCleanCmd creates and returns the clean command.
func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalize the message text of a raw transcript",
		Long: `Normalize the message text of a raw transcript export.

The command repairs export artifacts such as stray leading characters, quoted
reactions and control characters. Exports using the message and sent_at columns
are renamed to message_text and message_date. All other columns are kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, map[string]string{
				"paths.input":   "input",
				"paths.cleaned": "output",
			})
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg, afero.NewOsFs())
			if err != nil {
				return err
			}

			report, err := p.clean(cmd.Context(), cfg.Paths.Input, cfg.Paths.Cleaned)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Processed %d rows (%d changed, %d discarded) into %s\n",
				report.Rows, report.Changed, report.Discarded, cfg.Paths.Cleaned)
			return err
		},
	}

	cmd.Flags().String("input", "", "Raw transcript CSV (default from paths.input)")
	cmd.Flags().String("output", "", "Cleaned transcript CSV (default from paths.cleaned)")
	return cmd
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newCleanCmd())
}
