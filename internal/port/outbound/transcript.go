package outbound

import (
	"context"

	"chatledger/internal/domain/entity"
)

// Transcript is a tabular chat export. Records keep every source column in header order.
type Transcript struct {
	Header  []string
	Records [][]string
}

// ColumnIndex returns the position of column in the header, or -1.
func (t *Transcript) ColumnIndex(column string) int {
	for i, name := range t.Header {
		if name == column {
			return i
		}
	}
	return -1
}

// TranscriptStore reads and writes transcript files.
type TranscriptStore interface {
	ReadTranscript(ctx context.Context, path string) (*Transcript, error)
	WriteTranscript(ctx context.Context, path string, transcript *Transcript) error
}

// RequestTableWriter writes the request ledger table.
type RequestTableWriter interface {
	WriteRequests(ctx context.Context, path string, requests []*entity.Request) error
}

// LedgerExporter writes the ledger outputs of one extraction run into dir and returns the
// paths it wrote.
type LedgerExporter interface {
	ExportLedger(ctx context.Context, dir string, requests []*entity.Request) ([]string, error)
}
