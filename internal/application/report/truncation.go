package report

import (
	"io"
	"strings"
	"unicode/utf8"
)

// A description of exactly legacyTruncationLimit runes was cut by the old fixed-width
// description column; longer ones without a closing mark are suspicious.
const (
	legacyTruncationLimit = 150
	suspiciousLength      = 145
	sentenceEndings       = `.!?"`
	tailLength            = 30
)

// DescriptionRow is the part of a request table row the truncation check reads.
type DescriptionRow struct {
	Date        string
	Description string
}

// TruncationFinding is a description that looks cut off. Row is the 1-based data row.
type TruncationFinding struct {
	Row    int
	Date   string
	Length int
	// Exact is set when the length equals the legacy limit.
	Exact bool
	Tail  string
}

// FindTruncated returns the rows whose description looks cut off.
func FindTruncated(rows []DescriptionRow) []TruncationFinding {
	var findings []TruncationFinding
	for i, row := range rows {
		length := utf8.RuneCountInString(row.Description)
		exact := length == legacyTruncationLimit
		if !exact && !(length > suspiciousLength && !endsSentence(row.Description)) {
			continue
		}
		findings = append(findings, TruncationFinding{
			Row:    i + 1,
			Date:   row.Date,
			Length: length,
			Exact:  exact,
			Tail:   tail(row.Description, tailLength),
		})
	}
	return findings
}

func endsSentence(text string) bool {
	last, _ := utf8.DecodeLastRuneInString(text)
	return strings.ContainsRune(sentenceEndings, last)
}

func tail(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}

// PrintTruncation writes the truncation report for a table of total rows.
func PrintTruncation(w io.Writer, total int, findings []TruncationFinding) error {
	p := &printer{w: w}
	p.printf("=== Text Truncation Analysis ===\n\nTotal requests: %d\n\n", total)
	for _, f := range findings {
		if f.Exact {
			p.printf("Row %d: TRUNCATED at exactly %d chars\n", f.Row, legacyTruncationLimit)
		} else {
			p.printf("Row %d: LIKELY TRUNCATED (length: %d)\n", f.Row, f.Length)
		}
		p.printf("  Date: %s\n  Text: ...%s\n\n", f.Date, f.Tail)
	}
	p.printf("=== Summary ===\nFound %d truncated descriptions out of %d total\n", len(findings), total)
	p.printf("Truncation rate: %.1f%%\n", percent(len(findings), total))
	return p.err
}
