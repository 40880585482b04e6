package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"chatledger/internal/application/common/slogger"
	"chatledger/internal/domain/classification"
	"chatledger/internal/domain/entity"
	"chatledger/internal/domain/errors/domain"
	"chatledger/internal/domain/valueobject"
	"chatledger/internal/port/outbound"
)

// ErrNoRequests is returned by callers that treat an empty ledger as a failed extraction.
var ErrNoRequests = errors.New("no requests extracted")

// RowFailure is a malformed transcript row. Line is the 1-based data row.
type RowFailure struct {
	Line int
	Err  error
}

func (f RowFailure) Error() string {
	return fmt.Sprintf("row %d: %v", f.Line, f.Err)
}

func (f RowFailure) Unwrap() error {
	return f.Err
}

// ExtractionConfig configures an ExtractionService.
type ExtractionConfig struct {
	Concurrency int
	// Strict aborts the batch on the first malformed row instead of skipping it.
	Strict bool
}

// ExtractionReport summarizes one extraction run.
type ExtractionReport struct {
	Messages int                                `json:"messages"`
	Requests int                                `json:"requests"`
	Outcomes map[valueobject.MessageOutcome]int `json:"outcomes"`
	Failures []RowFailure                       `json:"-"`
}

// ExtractionResult holds the extracted requests in timestamp order.
type ExtractionResult struct {
	Requests []*entity.Request
	Report   ExtractionReport
}

// ExtractionService classifies transcript messages into requests.
type ExtractionService struct {
	classifier *classification.Classifier
	config     ExtractionConfig
	metrics    *LedgerMetrics
}

// NewExtractionService creates an extraction service. A nil metrics recorder disables metrics.
func NewExtractionService(
	classifier *classification.Classifier,
	config ExtractionConfig,
	metrics *LedgerMetrics,
) *ExtractionService {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &ExtractionService{classifier: classifier, config: config, metrics: metrics}
}

type messageResult struct {
	outcome valueobject.MessageOutcome
	request *entity.Request
	failure *RowFailure
}

// Extract classifies every row of a cleaned transcript.
func (s *ExtractionService) Extract(ctx context.Context, transcript *outbound.Transcript) (*ExtractionResult, error) {
	if transcript == nil {
		return nil, fmt.Errorf("%w: transcript is nil", domain.ErrMalformedInput)
	}
	header, _ := NormalizeHeader(transcript.Header)
	columns := &outbound.Transcript{Header: header}
	senderIdx := columns.ColumnIndex(ColumnSender)
	textIdx := columns.ColumnIndex(ColumnMessageText)
	dateIdx := columns.ColumnIndex(ColumnMessageDate)
	if senderIdx < 0 || textIdx < 0 || dateIdx < 0 {
		return nil, fmt.Errorf("%w: transcript needs %s, %s and %s columns",
			domain.ErrMalformedInput, ColumnSender, ColumnMessageText, ColumnMessageDate)
	}

	return s.run(ctx, len(transcript.Records), func(i int) messageResult {
		record := padRecord(transcript.Records[i], len(header))
		return s.evaluateRow(i+1, record[senderIdx], record[textIdx], record[dateIdx])
	})
}

// ExtractMessages classifies messages whose timestamps are already parsed.
func (s *ExtractionService) ExtractMessages(ctx context.Context, messages []entity.RawMessage) (*ExtractionResult, error) {
	return s.run(ctx, len(messages), func(i int) messageResult {
		msg := messages[i]
		line := msg.Line
		if line == 0 {
			line = i + 1
		}
		return s.evaluate(line, msg.Text, msg.Sender, msg.Timestamp)
	})
}

func (s *ExtractionService) run(ctx context.Context, n int, evaluate func(i int) messageResult) (*ExtractionResult, error) {
	start := time.Now()
	result, err := s.collect(ctx, n, evaluate)
	s.metrics.RecordBatch(ctx, "extract", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	slogger.Info(ctx, "Requests extracted", slogger.Fields{
		"messages": result.Report.Messages,
		"requests": result.Report.Requests,
		"failures": len(result.Report.Failures),
		"duration": time.Since(start).String(),
	})
	return result, nil
}

func (s *ExtractionService) collect(ctx context.Context, n int, evaluate func(i int) messageResult) (*ExtractionResult, error) {
	results := make([]messageResult, n)
	err := parallelEach(ctx, n, s.config.Concurrency, func(ctx context.Context, i int) error {
		results[i] = evaluate(i)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("extraction interrupted: %w", err)
	}

	report := ExtractionReport{Messages: n, Outcomes: make(map[valueobject.MessageOutcome]int)}
	requests := make([]*entity.Request, 0)
	for _, r := range results {
		if r.failure != nil {
			if s.config.Strict {
				return nil, fmt.Errorf("extraction aborted: %w", *r.failure)
			}
			report.Failures = append(report.Failures, *r.failure)
			s.metrics.RecordRowFailure(ctx, "extract")
			slogger.Warn(ctx, "Skipping malformed row", slogger.Fields{
				"line":  r.failure.Line,
				"error": r.failure.Err.Error(),
			})
			continue
		}
		report.Outcomes[r.outcome]++
		s.metrics.RecordOutcome(ctx, r.outcome)
		if r.request != nil {
			requests = append(requests, r.request)
			s.metrics.RecordRequest(ctx, r.request)
		}
	}

	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].Timestamp().Before(requests[j].Timestamp())
	})
	report.Requests = len(requests)
	return &ExtractionResult{Requests: requests, Report: report}, nil
}

// evaluateRow filters on sender and text before parsing the timestamp, so rows that are
// never classified cannot fail on their date.
func (s *ExtractionService) evaluateRow(line int, sender, text, rawTimestamp string) messageResult {
	if strings.TrimSpace(sender) == "" {
		return failed(line, fmt.Errorf("%w: %w", domain.ErrMalformedInput, domain.ErrMissingSender))
	}
	if !s.classifier.IsTracked(sender) {
		return messageResult{outcome: valueobject.OutcomeSkippedSender}
	}
	if strings.TrimSpace(text) == "" {
		return messageResult{outcome: valueobject.OutcomeDiscarded}
	}

	timestamp, err := valueobject.ParseMessageTimestamp(rawTimestamp)
	if err != nil {
		return failed(line, fmt.Errorf("%w: %w: %w", domain.ErrMalformedInput, domain.ErrMissingTimestamp, err))
	}
	return s.evaluate(line, text, sender, timestamp)
}

func (s *ExtractionService) evaluate(line int, text, sender string, timestamp time.Time) messageResult {
	decision, err := s.classifier.Evaluate(text, sender, timestamp)
	if err != nil {
		return failed(line, err)
	}
	return messageResult{outcome: decision.Outcome, request: decision.Request}
}

func failed(line int, err error) messageResult {
	return messageResult{failure: &RowFailure{Line: line, Err: err}}
}
