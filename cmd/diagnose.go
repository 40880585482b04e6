package cmd

import (
	"fmt"
	"path/filepath"

	"chatledger/internal/adapter/outbound/csvio"
	"chatledger/internal/adapter/outbound/export"
	"chatledger/internal/application/report"
	"chatledger/internal/domain/errors/domain"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// newDiagnoseCmd creates and returns the diagnose command group.
func newDiagnoseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Run diagnostics on generated ledger files",
	}
	cmd.AddCommand(newDiagnoseTruncationCmd())
	return cmd
}

// newDiagnoseTruncationCmd creates the diagnose truncation command.
func newDiagnoseTruncationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "truncation",
		Short: "Report request descriptions that look cut off",
		Long: `Scan a request table and report descriptions that look truncated.

A description is reported when it is exactly 150 characters long, or longer than
145 characters without ending in a sentence mark. The default table is the
staged requests_table.csv in the final directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}

			path, err := cmd.Flags().GetString("file")
			if err != nil {
				return err
			}
			if path == "" {
				path = filepath.Join(cfg.Paths.FinalDir, export.FinalTableFile)
			}

			store := csvio.NewTranscriptStore(afero.NewOsFs())
			table, err := store.ReadTranscript(cmd.Context(), path)
			if err != nil {
				return err
			}

			rows, err := descriptionRows(table.Header, table.Records)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return report.PrintTruncation(cmd.OutOrStdout(), len(rows), report.FindTruncated(rows))
		},
	}

	cmd.Flags().String("file", "", "Request table CSV (default <final_dir>/requests_table.csv)")
	return cmd
}

// descriptionRows picks the date and description columns of a request table.
func descriptionRows(header []string, records [][]string) ([]report.DescriptionRow, error) {
	dateIdx, descIdx := -1, -1
	for i, name := range header {
		switch name {
		case "date":
			dateIdx = i
		case "description":
			descIdx = i
		}
	}
	if descIdx < 0 {
		return nil, fmt.Errorf("%w: request table has no description column", domain.ErrMalformedInput)
	}

	rows := make([]report.DescriptionRow, 0, len(records))
	for _, record := range records {
		var row report.DescriptionRow
		if descIdx < len(record) {
			row.Description = record[descIdx]
		}
		if dateIdx >= 0 && dateIdx < len(record) {
			row.Date = record[dateIdx]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newDiagnoseCmd())
}
