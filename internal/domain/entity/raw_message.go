package entity

import (
	"time"
)

// RawMessage is one transcript row as it came out of the chat export.
// Line is the 1-based data row in the source file and is only used for error reporting.
type RawMessage struct {
	Line      int
	Text      string
	Sender    string
	Timestamp time.Time
}
