package valueobject

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// messageTimestampLayouts lists the layouts seen in chat exports, most specific first.
var messageTimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseMessageTimestamp parses an export timestamp. Timestamps without a zone are read as UTC.
func ParseMessageTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, errors.New("message timestamp cannot be empty")
	}

	for _, layout := range messageTimestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable message timestamp: %q", raw)
}
