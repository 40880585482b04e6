package service

import (
	"context"
	"fmt"
	"time"

	"chatledger/internal/application/common/slogger"
	"chatledger/internal/domain/errors/domain"
	"chatledger/internal/domain/normalization"
	"chatledger/internal/port/outbound"
)

// Transcript column names.
const (
	ColumnMessageText = "message_text"
	ColumnMessageDate = "message_date"
	ColumnSender      = "sender"

	legacyTextColumn = "message"
	legacyDateColumn = "sent_at"
)

// CleanReport summarizes one cleaning run.
type CleanReport struct {
	Rows      int  `json:"rows"`
	Changed   int  `json:"changed"`
	Discarded int  `json:"discarded"`
	Renamed   bool `json:"renamed_columns"`
}

// CleaningService normalizes the message text column of a transcript.
type CleaningService struct {
	normalizer  *normalization.MessageNormalizer
	concurrency int
	metrics     *LedgerMetrics
}

// NewCleaningService creates a cleaning service. A nil normalizer selects the default one
// and a nil metrics recorder disables metrics.
func NewCleaningService(normalizer *normalization.MessageNormalizer, concurrency int, metrics *LedgerMetrics) *CleaningService {
	if normalizer == nil {
		normalizer = normalization.GetDefaultNormalizer()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &CleaningService{normalizer: normalizer, concurrency: concurrency, metrics: metrics}
}

// Clean returns a copy of transcript with every message text normalized. The export format
// with message and sent_at columns is renamed to message_text and message_date. All other
// columns and every row are kept; discarded messages keep an empty text.
func (s *CleaningService) Clean(ctx context.Context, transcript *outbound.Transcript) (*outbound.Transcript, CleanReport, error) {
	start := time.Now()
	cleaned, report, err := s.clean(ctx, transcript)
	s.metrics.RecordBatch(ctx, "clean", time.Since(start), err)
	if err != nil {
		return nil, CleanReport{}, err
	}

	slogger.Info(ctx, "Transcript cleaned", slogger.Fields{
		"rows":            report.Rows,
		"changed":         report.Changed,
		"discarded":       report.Discarded,
		"renamed_columns": report.Renamed,
		"duration":        time.Since(start).String(),
	})
	return cleaned, report, nil
}

func (s *CleaningService) clean(ctx context.Context, transcript *outbound.Transcript) (*outbound.Transcript, CleanReport, error) {
	if transcript == nil || len(transcript.Header) == 0 {
		return nil, CleanReport{}, fmt.Errorf("%w: transcript has no header", domain.ErrMalformedInput)
	}

	header, renamed := NormalizeHeader(transcript.Header)
	out := &outbound.Transcript{Header: header}
	textIdx := out.ColumnIndex(ColumnMessageText)
	if textIdx < 0 {
		return nil, CleanReport{}, fmt.Errorf("%w: transcript has no %s or %s column",
			domain.ErrMalformedInput, ColumnMessageText, legacyTextColumn)
	}

	records := make([][]string, len(transcript.Records))
	changed := make([]bool, len(transcript.Records))
	discarded := make([]bool, len(transcript.Records))

	err := parallelEach(ctx, len(transcript.Records), s.concurrency, func(ctx context.Context, i int) error {
		record := padRecord(transcript.Records[i], len(header))
		raw := record[textIdx]
		text := s.normalizer.Normalize(raw)
		record[textIdx] = text

		records[i] = record
		changed[i] = text != raw
		discarded[i] = text == "" && raw != ""
		if discarded[i] {
			s.metrics.RecordDiscard(ctx)
		}
		return nil
	})
	if err != nil {
		return nil, CleanReport{}, fmt.Errorf("cleaning interrupted: %w", err)
	}
	out.Records = records

	report := CleanReport{Rows: len(records), Renamed: renamed}
	for i := range records {
		if changed[i] {
			report.Changed++
		}
		if discarded[i] {
			report.Discarded++
		}
	}
	return out, report, nil
}

// NormalizeHeader maps the message/sent_at export format onto message_text/message_date.
// It reports whether any column was renamed.
func NormalizeHeader(header []string) ([]string, bool) {
	out := append([]string(nil), header...)
	if indexOf(out, legacyTextColumn) < 0 || indexOf(out, ColumnMessageText) >= 0 {
		return out, false
	}
	for i, column := range out {
		switch column {
		case legacyTextColumn:
			out[i] = ColumnMessageText
		case legacyDateColumn:
			out[i] = ColumnMessageDate
		}
	}
	return out, true
}

// padRecord copies record and pads it with empty fields up to width.
func padRecord(record []string, width int) []string {
	size := width
	if len(record) > size {
		size = len(record)
	}
	out := make([]string, size)
	copy(out, record)
	return out
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
