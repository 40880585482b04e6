// Package report aggregates extracted requests into the ledger summaries.
package report

import (
	"sort"

	"chatledger/internal/domain/entity"
	"chatledger/internal/domain/valueobject"
)

// DateRange is the first and last request date, formatted as entity.DateLayout.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary holds the ledger totals written to requests_summary.json.
type Summary struct {
	TotalRequests int            `json:"total_requests"`
	DateRange     DateRange      `json:"date_range"`
	ByMonth       map[string]int `json:"by_month"`
	ByCategory    map[string]int `json:"by_category"`
	ByUrgency     map[string]int `json:"by_urgency"`
	ByEffort      map[string]int `json:"by_effort"`
}

// MonthlyRow is one month and category line of the monthly summary.
type MonthlyRow struct {
	Month            string
	Category         string
	TotalRequests    int
	HighUrgencyCount int
	Small            int
	Medium           int
	Large            int
}

// CategoryRow is one line of the category summary.
type CategoryRow struct {
	Category   string
	TotalCount int
	High       int
	Medium     int
	Low        int
}

// Summarize computes the ledger totals. An empty ledger yields zero counts and an empty date range.
func Summarize(requests []*entity.Request) Summary {
	summary := Summary{
		TotalRequests: len(requests),
		ByMonth:       make(map[string]int),
		ByCategory:    make(map[string]int),
		ByUrgency:     make(map[string]int),
		ByEffort:      make(map[string]int),
	}

	for _, request := range requests {
		summary.ByMonth[request.Month()]++
		summary.ByCategory[request.Category()]++
		summary.ByUrgency[request.Urgency().String()]++
		summary.ByEffort[request.Effort().String()]++

		date := request.Date()
		if summary.DateRange.Start == "" || date < summary.DateRange.Start {
			summary.DateRange.Start = date
		}
		if date > summary.DateRange.End {
			summary.DateRange.End = date
		}
	}
	return summary
}

type monthCategory struct {
	month    string
	category string
}

// MonthlySummary groups requests by month and category, ordered by month then category.
func MonthlySummary(requests []*entity.Request) []MonthlyRow {
	rows := make(map[monthCategory]*MonthlyRow)
	for _, request := range requests {
		key := monthCategory{month: request.Month(), category: request.Category()}
		row, ok := rows[key]
		if !ok {
			row = &MonthlyRow{Month: key.month, Category: key.category}
			rows[key] = row
		}

		row.TotalRequests++
		if request.IsHighUrgency() {
			row.HighUrgencyCount++
		}
		switch request.Effort() {
		case valueobject.EffortSmall:
			row.Small++
		case valueobject.EffortMedium:
			row.Medium++
		case valueobject.EffortLarge:
			row.Large++
		}
	}

	out := make([]MonthlyRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CategorySummary groups requests by category with an urgency breakdown, ordered by category.
func CategorySummary(requests []*entity.Request) []CategoryRow {
	rows := make(map[string]*CategoryRow)
	for _, request := range requests {
		row, ok := rows[request.Category()]
		if !ok {
			row = &CategoryRow{Category: request.Category()}
			rows[request.Category()] = row
		}

		row.TotalCount++
		switch request.Urgency() {
		case valueobject.UrgencyHigh:
			row.High++
		case valueobject.UrgencyMedium:
			row.Medium++
		case valueobject.UrgencyLow:
			row.Low++
		}
	}

	out := make([]CategoryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
