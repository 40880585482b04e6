package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// newExtractCmd creates and returns the extract command.
func newExtractCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Classify a cleaned transcript into the request ledger",
		Long: `Classify the messages of tracked senders in a cleaned transcript into requests.

The ledger is written to the output directory as requests_by_month.csv, the
requests_summary.json summary and the monthly and category summary tables.
When enabled in the configuration, requests are also stored in PostgreSQL and
published to NATS JetStream. Malformed rows are skipped unless --strict is set.
The command fails when no request is found.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, map[string]string{
				"paths.cleaned":    "input",
				"paths.output_dir": "output-dir",
			})
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg, afero.NewOsFs())
			if err != nil {
				return err
			}

			extracted, err := p.extract(cmd.Context(), cfg.Paths.Cleaned, cfg.Paths.OutputDir, strict)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report := extracted.result.Report
			if _, err := fmt.Fprintf(out, "Extracted %d requests from %d messages (%d malformed rows skipped)\n",
				report.Requests, report.Messages, len(report.Failures)); err != nil {
				return err
			}
			for _, file := range extracted.files {
				if _, err := fmt.Fprintf(out, "  wrote %s\n", file); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().String("input", "", "Cleaned transcript CSV (default from paths.cleaned)")
	cmd.Flags().String("output-dir", "", "Ledger output directory (default from paths.output_dir)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on the first malformed row")
	return cmd
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newExtractCmd())
}
