package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"chatledger/internal/domain/valueobject"
)

// Share is one labelled count with its percentage of the total.
type Share struct {
	Label   string
	Count   int
	Percent float64
}

// RankedShares orders counts by descending count, then label.
func RankedShares(counts map[string]int, total int) []Share {
	shares := collectShares(counts, total)
	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Label < shares[j].Label
	})
	return shares
}

// ChronologicalShares orders counts by label, which sorts months chronologically.
func ChronologicalShares(counts map[string]int, total int) []Share {
	shares := collectShares(counts, total)
	sort.Slice(shares, func(i, j int) bool { return shares[i].Label < shares[j].Label })
	return shares
}

// LeveledShares reports counts in the given label order, including zero counts.
func LeveledShares(counts map[string]int, total int, labels []string) []Share {
	out := make([]Share, 0, len(labels))
	for _, label := range labels {
		out = append(out, Share{Label: label, Count: counts[label], Percent: percent(counts[label], total)})
	}
	return out
}

func collectShares(counts map[string]int, total int) []Share {
	out := make([]Share, 0, len(counts))
	for label, count := range counts {
		out = append(out, Share{Label: label, Count: count, Percent: percent(count, total)})
	}
	return out
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// Print writes the human-readable ledger summary.
func Print(w io.Writer, summary Summary) error {
	rule := strings.Repeat("=", 60)
	p := &printer{w: w}

	p.printf("\n%s\nANALYSIS SUMMARY\n%s\n", rule, rule)
	if summary.TotalRequests == 0 {
		p.printf("\nNo requests found\n%s\n", rule)
		return p.err
	}

	p.printf("\nTotal Requests: %d\n", summary.TotalRequests)
	p.printf("Date Range: %s to %s\n", summary.DateRange.Start, summary.DateRange.End)

	total := summary.TotalRequests
	p.section("Requests by Category", RankedShares(summary.ByCategory, total))
	p.section("Urgency Distribution", LeveledShares(summary.ByUrgency, total, urgencyLabels()))
	p.section("Effort Distribution", LeveledShares(summary.ByEffort, total, effortLabels()))
	p.section("Monthly Breakdown", ChronologicalShares(summary.ByMonth, total))
	p.printf("\n%s\n", rule)
	return p.err
}

// printer keeps the first write error so Print can stay linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string, shares []Share) {
	p.printf("\n%s:\n", title)
	for _, s := range shares {
		p.printf("  %s: %d (%.1f%%)\n", s.Label, s.Count, s.Percent)
	}
}

func urgencyLabels() []string {
	levels := valueobject.AllUrgencies()
	labels := make([]string, len(levels))
	for i, level := range levels {
		labels[i] = level.String()
	}
	return labels
}

func effortLabels() []string {
	sizes := valueobject.AllEfforts()
	labels := make([]string, len(sizes))
	for i, size := range sizes {
		labels[i] = size.String()
	}
	return labels
}
