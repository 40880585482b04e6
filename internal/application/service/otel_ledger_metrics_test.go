package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatledger/internal/domain/valueobject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

func newTestLedgerMetrics(t *testing.T) (*LedgerMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(resource.NewWithAttributes("test")),
	)
	metrics, err := NewLedgerMetricsWithProvider(provider)
	require.NoError(t, err)
	return metrics, reader
}

func collectMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var data metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &data))
	for _, scopeMetric := range data.ScopeMetrics {
		for _, m := range scopeMetric.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func sumFor(t *testing.T, m metricdata.Metrics, attr attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum[int64] data type")
	var total int64
	for _, dp := range sum.DataPoints {
		if value, found := dp.Attributes.Value(attr.Key); found && value.Emit() == attr.Value.Emit() {
			total += dp.Value
		}
	}
	return total
}

func TestLedgerMetrics_RecordOutcome(t *testing.T) {
	metrics, reader := newTestLedgerMetrics(t)
	ctx := context.Background()

	metrics.RecordOutcome(ctx, valueobject.OutcomeExcluded)
	metrics.RecordOutcome(ctx, valueobject.OutcomeExcluded)
	metrics.RecordOutcome(ctx, valueobject.OutcomeMatchedPattern)

	m, found := collectMetric(t, reader, MessagesCounterName)
	require.True(t, found, "Expected to find messages counter")
	assert.Equal(t, int64(2), sumFor(t, m, attribute.String(AttrOutcome, "excluded")))
	assert.Equal(t, int64(1), sumFor(t, m, attribute.String(AttrOutcome, "matched_pattern")))
}

func TestLedgerMetrics_RecordRequest(t *testing.T) {
	metrics, reader := newTestLedgerMetrics(t)
	ctx := context.Background()

	metrics.RecordRequest(ctx, newTestRequest(t, "Can you fix the site?"))
	metrics.RecordRequest(ctx, nil)

	m, found := collectMetric(t, reader, RequestsCounterName)
	require.True(t, found, "Expected to find requests counter")
	assert.Equal(t, int64(1), sumFor(t, m, attribute.String(AttrCategory, "Support")))
	assert.Equal(t, int64(1), sumFor(t, m, attribute.String(AttrUrgency, "Medium")))
	assert.Equal(t, int64(1), sumFor(t, m, attribute.String(AttrEffort, "Medium")))
}

func TestLedgerMetrics_RecordRowFailure(t *testing.T) {
	metrics, reader := newTestLedgerMetrics(t)

	metrics.RecordRowFailure(context.Background(), "extract")

	m, found := collectMetric(t, reader, RowFailureCounterName)
	require.True(t, found, "Expected to find row failure counter")
	assert.Equal(t, int64(1), sumFor(t, m, attribute.String(AttrStage, "extract")))
}

func TestLedgerMetrics_RecordBatch(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantResult string
	}{
		{name: "successful batch", wantResult: "success"},
		{name: "failed batch", err: errors.New("boom"), wantResult: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, reader := newTestLedgerMetrics(t)

			metrics.RecordBatch(context.Background(), "clean", 250*time.Millisecond, tt.err)

			m, found := collectMetric(t, reader, BatchDurationHistogramName)
			require.True(t, found, "Expected to find batch duration histogram")
			histogram, ok := m.Data.(metricdata.Histogram[float64])
			require.True(t, ok, "Expected Histogram[float64] data type")
			require.Len(t, histogram.DataPoints, 1)

			dp := histogram.DataPoints[0]
			assert.Equal(t, uint64(1), dp.Count)
			assert.InEpsilon(t, 0.25, dp.Sum, 0.001)
			assert.Equal(t, getBatchDurationBuckets(), dp.Bounds)
			assert.Contains(t, dp.Attributes.ToSlice(), attribute.String(AttrOperation, "clean"))
			assert.Contains(t, dp.Attributes.ToSlice(), attribute.String(AttrResult, tt.wantResult))
		})
	}
}

func TestLedgerMetrics_PipelineRecordsDiscards(t *testing.T) {
	metrics, reader := newTestLedgerMetrics(t)
	svc := NewCleaningService(nil, 2, metrics)

	_, report, err := svc.Clean(context.Background(), outboundTranscript(
		[]string{"message_text"},
		[]string{`Emphasized "the form"`},
		[]string{"Can you check the form?"},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Discarded)

	m, found := collectMetric(t, reader, NormalizerDiscardCounterName)
	require.True(t, found, "Expected to find discard counter")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestLedgerMetrics_NilIsNoop(t *testing.T) {
	var metrics *LedgerMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordOutcome(ctx, valueobject.OutcomeDiscarded)
		metrics.RecordRequest(ctx, newTestRequest(t, "Can you fix the site?"))
		metrics.RecordDiscard(ctx)
		metrics.RecordRowFailure(ctx, "clean")
		metrics.RecordBatch(ctx, "extract", time.Second, nil)
	})
}

func TestLedgerMetrics_DefaultProvider(t *testing.T) {
	metrics, err := NewLedgerMetrics()
	require.NoError(t, err)
	assert.NotNil(t, metrics.messagesCounter)
	assert.NotNil(t, metrics.batchDuration)
}
