// Package export writes the ledger outputs of an extraction run and stages the final table.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"chatledger/internal/adapter/outbound/csvio"
	"chatledger/internal/application/common/slogger"
	"chatledger/internal/application/report"
	"chatledger/internal/domain/entity"

	"github.com/spf13/afero"
)

// Output file names.
const (
	RequestTableFile    = "requests_by_month.csv"
	SummaryFile         = "requests_summary.json"
	MonthlySummaryFile  = "monthly_summary.csv"
	CategorySummaryFile = "category_summary.csv"
	FinalTableFile      = "requests_table.csv"
)

// Exporter implements outbound.LedgerExporter on an afero filesystem.
type Exporter struct {
	fs     afero.Fs
	tables *csvio.RequestTableWriter
}

// NewExporter creates an exporter. A nil fs selects the OS filesystem.
func NewExporter(fs afero.Fs) *Exporter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Exporter{fs: fs, tables: csvio.NewRequestTableWriter(fs)}
}

// ExportLedger writes the request table, the JSON summary and both summary tables into dir.
func (e *Exporter) ExportLedger(ctx context.Context, dir string, requests []*entity.Request) ([]string, error) {
	tablePath := filepath.Join(dir, RequestTableFile)
	if err := e.tables.WriteRequests(ctx, tablePath, requests); err != nil {
		return nil, err
	}

	summaryPath := filepath.Join(dir, SummaryFile)
	if err := e.WriteSummary(summaryPath, report.Summarize(requests)); err != nil {
		return nil, err
	}

	monthlyPath := filepath.Join(dir, MonthlySummaryFile)
	if err := e.WriteMonthlySummary(ctx, monthlyPath, report.MonthlySummary(requests)); err != nil {
		return nil, err
	}

	categoryPath := filepath.Join(dir, CategorySummaryFile)
	if err := e.WriteCategorySummary(ctx, categoryPath, report.CategorySummary(requests)); err != nil {
		return nil, err
	}

	files := []string{tablePath, summaryPath, monthlyPath, categoryPath}
	slogger.Info(ctx, "Ledger exported", slogger.Fields{
		"requests": len(requests),
		"files":    files,
	})
	return files, nil
}

// WriteSummary writes summary as indented JSON.
func (e *Exporter) WriteSummary(path string, summary report.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := e.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := afero.WriteFile(e.fs, path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadSummary reads a summary written by WriteSummary.
func (e *Exporter) ReadSummary(path string) (report.Summary, error) {
	var summary report.Summary
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return summary, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return summary, nil
}

// WriteMonthlySummary writes the month by category table.
func (e *Exporter) WriteMonthlySummary(ctx context.Context, path string, rows []report.MonthlyRow) error {
	header := []string{"month", "category", "total_requests", "high_urgency_count", "small", "medium", "large"}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Month,
			row.Category,
			strconv.Itoa(row.TotalRequests),
			strconv.Itoa(row.HighUrgencyCount),
			strconv.Itoa(row.Small),
			strconv.Itoa(row.Medium),
			strconv.Itoa(row.Large),
		})
	}
	return csvio.WriteTable(ctx, e.fs, path, header, records)
}

// WriteCategorySummary writes the category urgency table.
func (e *Exporter) WriteCategorySummary(ctx context.Context, path string, rows []report.CategoryRow) error {
	header := []string{"category", "total_count", "high", "medium", "low"}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Category,
			strconv.Itoa(row.TotalCount),
			strconv.Itoa(row.High),
			strconv.Itoa(row.Medium),
			strconv.Itoa(row.Low),
		})
	}
	return csvio.WriteTable(ctx, e.fs, path, header, records)
}

// StageFinalTable copies the request table from outputDir to finalDir and, when
// frontendDir/public exists, into it as well. It returns the staged paths.
func (e *Exporter) StageFinalTable(ctx context.Context, outputDir, finalDir, frontendDir string) ([]string, error) {
	src := filepath.Join(outputDir, RequestTableFile)
	data, err := afero.ReadFile(e.fs, src)
	if err != nil {
		return nil, fmt.Errorf("request table not found: %w", err)
	}

	targets := []string{filepath.Join(finalDir, FinalTableFile)}
	if frontendDir != "" {
		public := filepath.Join(frontendDir, "public")
		if isDir, err := afero.IsDir(e.fs, public); err == nil && isDir {
			targets = append(targets, filepath.Join(public, FinalTableFile))
		}
	}

	for _, target := range targets {
		if err := e.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", target, err)
		}
		if err := afero.WriteFile(e.fs, target, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to stage %s: %w", target, err)
		}
	}

	slogger.Info(ctx, "Final table staged", slogger.Fields{"source": src, "targets": targets})
	return targets, nil
}

// SetupDirectories creates the working directories of the pipeline.
func (e *Exporter) SetupDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := e.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
