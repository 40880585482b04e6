package csvio

import (
	"context"

	"chatledger/internal/domain/entity"

	"github.com/spf13/afero"
)

// RequestTableColumns is the header of the request ledger table.
var RequestTableColumns = []string{ //nolint:gochecknoglobals // fixed table layout
	"date", "time", "month", "request_type", "category", "description", "urgency", "effort",
}

// RequestTableWriter implements outbound.RequestTableWriter on an afero filesystem.
type RequestTableWriter struct {
	fs afero.Fs
}

// NewRequestTableWriter creates a writer. A nil fs selects the OS filesystem.
func NewRequestTableWriter(fs afero.Fs) *RequestTableWriter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &RequestTableWriter{fs: fs}
}

// WriteRequests writes one row per request, in the given order.
func (w *RequestTableWriter) WriteRequests(ctx context.Context, path string, requests []*entity.Request) error {
	rows := make([][]string, 0, len(requests)+1)
	rows = append(rows, RequestTableColumns)
	for _, request := range requests {
		rows = append(rows, RequestRow(request))
	}
	return writeCSV(ctx, w.fs, path, rows)
}

// RequestRow formats request as a request table row. The description is never truncated.
func RequestRow(request *entity.Request) []string {
	return []string{
		request.Date(),
		request.Time(),
		request.Month(),
		request.RequestType(),
		request.Category(),
		request.Description(),
		request.Urgency().String(),
		request.Effort().String(),
	}
}

// WriteTable writes a header and rows to path.
func WriteTable(ctx context.Context, fs afero.Fs, path string, header []string, rows [][]string) error {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	all := make([][]string, 0, len(rows)+1)
	all = append(all, header)
	all = append(all, rows...)
	return writeCSV(ctx, fs, path, all)
}
