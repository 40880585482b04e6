package cmd

import (
	"fmt"
	"path/filepath"

	"chatledger/internal/adapter/outbound/export"
	"chatledger/internal/application/report"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// newRunCmd creates and returns the run command.
func newRunCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline from raw transcript to final table",
		Long: `Run the full ledger pipeline.

The pipeline creates the working directories, cleans the raw transcript,
extracts the request ledger, prints the analysis summary and stages the final
request table in the final directory and in <frontend_dir>/public when present.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, map[string]string{
				"paths.input":      "input",
				"paths.output_dir": "output-dir",
			})
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg, afero.NewOsFs())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			paths := cfg.Paths

			if err := p.exporter.SetupDirectories(workingDirectories(paths)...); err != nil {
				return err
			}

			cleaned, err := p.clean(ctx, paths.Input, paths.Cleaned)
			if err != nil {
				return fmt.Errorf("clean step failed: %w", err)
			}
			if _, err := fmt.Fprintf(out, "Step 1: cleaned %d rows\n", cleaned.Rows); err != nil {
				return err
			}

			extracted, err := p.extract(ctx, paths.Cleaned, paths.OutputDir, strict)
			if err != nil {
				return fmt.Errorf("extract step failed: %w", err)
			}
			if _, err := fmt.Fprintf(out, "Step 2: extracted %d requests\n", extracted.result.Report.Requests); err != nil {
				return err
			}

			summary, err := p.exporter.ReadSummary(filepath.Join(paths.OutputDir, export.SummaryFile))
			if err != nil {
				return fmt.Errorf("summary step failed: %w", err)
			}
			if err := report.Print(out, summary); err != nil {
				return err
			}

			staged, err := p.exporter.StageFinalTable(ctx, paths.OutputDir, paths.FinalDir, paths.FrontendDir)
			if err != nil {
				return fmt.Errorf("stage step failed: %w", err)
			}
			for _, path := range staged {
				if _, err := fmt.Fprintf(out, "Staged %s\n", path); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().String("input", "", "Raw transcript CSV (default from paths.input)")
	cmd.Flags().String("output-dir", "", "Ledger output directory (default from paths.output_dir)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on the first malformed row")
	return cmd
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newRunCmd())
}
