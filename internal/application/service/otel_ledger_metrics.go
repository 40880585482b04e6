package service

import (
	"context"
	"time"

	"chatledger/internal/domain/entity"
	"chatledger/internal/domain/valueobject"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names following OpenTelemetry semantic conventions.
const (
	MessagesCounterName          = "ledger_messages_total"
	RequestsCounterName          = "ledger_requests_total"
	NormalizerDiscardCounterName = "ledger_normalizer_discards_total"
	RowFailureCounterName        = "ledger_row_failures_total"
	BatchDurationHistogramName   = "ledger_batch_duration_seconds"
)

// Attribute keys for consistent labeling.
const (
	AttrOutcome   = "outcome"
	AttrCategory  = "category"
	AttrUrgency   = "urgency"
	AttrEffort    = "effort"
	AttrStage     = "stage"
	AttrOperation = "operation"
	AttrResult    = "result"
)

// getBatchDurationBuckets returns bucket boundaries for whole-file batch runs (10ms to 5min).
func getBatchDurationBuckets() []float64 {
	return []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 15.0, 60.0, 300.0}
}

// LedgerMetrics provides OpenTelemetry-based metrics for the cleaning and extraction pipeline.
// A nil *LedgerMetrics records nothing.
type LedgerMetrics struct {
	messagesCounter   metric.Int64Counter
	requestsCounter   metric.Int64Counter
	discardCounter    metric.Int64Counter
	rowFailureCounter metric.Int64Counter
	batchDuration     metric.Float64Histogram
}

// instrumentCreator provides helpers for creating metric instruments with consistent patterns.
type instrumentCreator struct {
	meter metric.Meter
	err   error
}

func newInstrumentCreator(meter metric.Meter) *instrumentCreator {
	return &instrumentCreator{meter: meter}
}

// counter creates an Int64Counter unless an earlier instrument failed.
func (ic *instrumentCreator) counter(name, description, unit string) metric.Int64Counter {
	if ic.err != nil {
		return nil
	}
	c, err := ic.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	ic.err = err
	return c
}

// histogram creates a Float64Histogram in seconds unless an earlier instrument failed.
func (ic *instrumentCreator) histogram(name, description string, buckets []float64) metric.Float64Histogram {
	if ic.err != nil {
		return nil
	}
	h, err := ic.meter.Float64Histogram(
		name,
		metric.WithDescription(description),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	ic.err = err
	return h
}

// NewLedgerMetrics creates ledger metrics on the global meter provider.
func NewLedgerMetrics() (*LedgerMetrics, error) {
	return NewLedgerMetricsWithProvider(otel.GetMeterProvider())
}

// NewLedgerMetricsWithProvider creates ledger metrics on a specific meter provider.
func NewLedgerMetricsWithProvider(provider metric.MeterProvider) (*LedgerMetrics, error) {
	meter := provider.Meter("chatledger/service", metric.WithInstrumentationVersion("1.0.0"))
	creator := newInstrumentCreator(meter)

	m := &LedgerMetrics{
		messagesCounter:   creator.counter(MessagesCounterName, "Messages evaluated by the classifier, by outcome", "{message}"),
		requestsCounter:   creator.counter(RequestsCounterName, "Requests extracted, by category, urgency and effort", "{request}"),
		discardCounter:    creator.counter(NormalizerDiscardCounterName, "Messages the normalizer reduced to nothing", "{message}"),
		rowFailureCounter: creator.counter(RowFailureCounterName, "Rows rejected as malformed", "{row}"),
		batchDuration:     creator.histogram(BatchDurationHistogramName, "Duration of a cleaning or extraction batch", getBatchDurationBuckets()),
	}
	if creator.err != nil {
		return nil, creator.err
	}
	return m, nil
}

// RecordOutcome counts one classified message.
func (m *LedgerMetrics) RecordOutcome(ctx context.Context, outcome valueobject.MessageOutcome) {
	if m == nil {
		return
	}
	m.messagesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrOutcome, outcome.String())))
}

// RecordRequest counts one extracted request.
func (m *LedgerMetrics) RecordRequest(ctx context.Context, request *entity.Request) {
	if m == nil || request == nil {
		return
	}
	m.requestsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrCategory, request.Category()),
		attribute.String(AttrUrgency, request.Urgency().String()),
		attribute.String(AttrEffort, request.Effort().String()),
	))
}

// RecordDiscard counts one message emptied by the normalizer.
func (m *LedgerMetrics) RecordDiscard(ctx context.Context) {
	if m == nil {
		return
	}
	m.discardCounter.Add(ctx, 1)
}

// RecordRowFailure counts one malformed row in the given pipeline stage.
func (m *LedgerMetrics) RecordRowFailure(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.rowFailureCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStage, stage)))
}

// RecordBatch records the duration of one batch operation.
func (m *LedgerMetrics) RecordBatch(ctx context.Context, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.batchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrOperation, operation),
		attribute.String(AttrResult, result),
	))
}
