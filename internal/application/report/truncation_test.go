package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTruncated(t *testing.T) {
	exact := strings.Repeat("a", 150)
	suspicious := strings.Repeat("b", 146)
	closed := strings.Repeat("c", 160) + "."
	quoted := strings.Repeat("d", 160) + `"`
	short := "Can you fix the site"
	multibyte := strings.Repeat("é", 150)

	findings := FindTruncated([]DescriptionRow{
		{Date: "2024-03-01", Description: short},
		{Date: "2024-03-02", Description: exact},
		{Date: "2024-03-03", Description: suspicious},
		{Date: "2024-03-04", Description: closed},
		{Date: "2024-03-05", Description: quoted},
		{Date: "2024-03-06", Description: multibyte},
		{Date: "2024-03-07", Description: strings.Repeat("e", 145)},
	})

	require.Len(t, findings, 3)
	assert.Equal(t, TruncationFinding{
		Row: 2, Date: "2024-03-02", Length: 150, Exact: true, Tail: strings.Repeat("a", 30),
	}, findings[0])
	assert.Equal(t, 3, findings[1].Row)
	assert.False(t, findings[1].Exact)
	assert.Equal(t, 146, findings[1].Length)
	assert.Equal(t, 6, findings[2].Row, "length counts runes, not bytes")
	assert.Equal(t, strings.Repeat("é", 30), findings[2].Tail)
}

func TestFindTruncated_ExactLimitEndingInPeriod(t *testing.T) {
	findings := FindTruncated([]DescriptionRow{{Description: strings.Repeat("a", 149) + "."}})
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Exact)
}

func TestPrintTruncation(t *testing.T) {
	var buf bytes.Buffer
	findings := []TruncationFinding{
		{Row: 2, Date: "2024-03-02", Length: 150, Exact: true, Tail: "the tag"},
		{Row: 5, Date: "2024-03-05", Length: 170, Tail: "and th"},
	}

	require.NoError(t, PrintTruncation(&buf, 10, findings))
	out := buf.String()

	assert.Contains(t, out, "Total requests: 10\n")
	assert.Contains(t, out, "Row 2: TRUNCATED at exactly 150 chars\n  Date: 2024-03-02\n  Text: ...the tag\n")
	assert.Contains(t, out, "Row 5: LIKELY TRUNCATED (length: 170)\n")
	assert.Contains(t, out, "Found 2 truncated descriptions out of 10 total\n")
	assert.Contains(t, out, "Truncation rate: 20.0%\n")
}

func TestPrintTruncation_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTruncation(&buf, 0, nil))
	assert.Contains(t, buf.String(), "Truncation rate: 0.0%")
}
