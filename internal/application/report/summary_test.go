package report

import (
	"testing"
	"time"

	"chatledger/internal/domain/entity"
	"chatledger/internal/domain/valueobject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(
	t *testing.T,
	sentAt string,
	category string,
	urgency valueobject.Urgency,
	effort valueobject.Effort,
) *entity.Request {
	t.Helper()
	ts, err := time.Parse(time.DateTime, sentAt)
	require.NoError(t, err)
	request, err := entity.NewRequest(entity.RequestSpec{
		Timestamp:   ts,
		RequestType: "General Request",
		Category:    category,
		Urgency:     urgency,
		Effort:      effort,
		Text:        "Can you check the site?",
	})
	require.NoError(t, err)
	return request
}

func sampleLedger(t *testing.T) []*entity.Request {
	t.Helper()
	return []*entity.Request{
		newRequest(t, "2024-03-15 10:30:00", "Forms", valueobject.UrgencyHigh, valueobject.EffortSmall),
		newRequest(t, "2024-03-02 08:00:00", "Support", valueobject.UrgencyMedium, valueobject.EffortMedium),
		newRequest(t, "2024-03-20 17:45:00", "Forms", valueobject.UrgencyLow, valueobject.EffortSmall),
		newRequest(t, "2024-04-01 09:15:00", "Hosting", valueobject.UrgencyHigh, valueobject.EffortLarge),
		newRequest(t, "2024-04-11 12:00:00", "Forms", valueobject.UrgencyMedium, valueobject.EffortMedium),
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(sampleLedger(t))

	assert.Equal(t, 5, summary.TotalRequests)
	assert.Equal(t, DateRange{Start: "2024-03-02", End: "2024-04-11"}, summary.DateRange)
	assert.Equal(t, map[string]int{"2024-03": 3, "2024-04": 2}, summary.ByMonth)
	assert.Equal(t, map[string]int{"Forms": 3, "Support": 1, "Hosting": 1}, summary.ByCategory)
	assert.Equal(t, map[string]int{"High": 2, "Medium": 2, "Low": 1}, summary.ByUrgency)
	assert.Equal(t, map[string]int{"Small": 2, "Medium": 2, "Large": 1}, summary.ByEffort)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Zero(t, summary.TotalRequests)
	assert.Equal(t, DateRange{}, summary.DateRange)
	assert.NotNil(t, summary.ByMonth)
	assert.Empty(t, summary.ByCategory)
}

func TestMonthlySummary(t *testing.T) {
	rows := MonthlySummary(sampleLedger(t))

	assert.Equal(t, []MonthlyRow{
		{Month: "2024-03", Category: "Forms", TotalRequests: 2, HighUrgencyCount: 1, Small: 2},
		{Month: "2024-03", Category: "Support", TotalRequests: 1, Medium: 1},
		{Month: "2024-04", Category: "Forms", TotalRequests: 1, Medium: 1},
		{Month: "2024-04", Category: "Hosting", TotalRequests: 1, HighUrgencyCount: 1, Large: 1},
	}, rows)
}

func TestCategorySummary(t *testing.T) {
	rows := CategorySummary(sampleLedger(t))

	assert.Equal(t, []CategoryRow{
		{Category: "Forms", TotalCount: 3, High: 1, Medium: 1, Low: 1},
		{Category: "Hosting", TotalCount: 1, High: 1},
		{Category: "Support", TotalCount: 1, Medium: 1},
	}, rows)
	assert.Empty(t, CategorySummary(nil))
}
