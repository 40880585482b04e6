// Package csvio reads and writes transcript and request table CSV files.
package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"chatledger/internal/domain/errors/domain"
	"chatledger/internal/port/outbound"

	"github.com/spf13/afero"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644

	utf8BOM = "\uFEFF"
)

// TranscriptStore implements outbound.TranscriptStore on an afero filesystem.
type TranscriptStore struct {
	fs afero.Fs
}

// NewTranscriptStore creates a store. A nil fs selects the OS filesystem.
func NewTranscriptStore(fs afero.Fs) *TranscriptStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &TranscriptStore{fs: fs}
}

// ReadTranscript reads a CSV file with a header row. Rows may have fewer or more fields
// than the header; a leading byte order mark is dropped.
func (s *TranscriptStore) ReadTranscript(ctx context.Context, path string) (*outbound.Transcript, error) {
	file, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: transcript %s is empty", domain.ErrMalformedInput, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header of %s: %w", domain.ErrMalformedInput, path, err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	transcript := &outbound.Transcript{Header: header}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %w", domain.ErrMalformedInput, path, err)
		}
		transcript.Records = append(transcript.Records, record)
	}
	return transcript, nil
}

// WriteTranscript writes transcript to path, creating parent directories.
func (s *TranscriptStore) WriteTranscript(ctx context.Context, path string, transcript *outbound.Transcript) error {
	if transcript == nil {
		return fmt.Errorf("%w: transcript is nil", domain.ErrInvalidInput)
	}
	rows := make([][]string, 0, len(transcript.Records)+1)
	rows = append(rows, transcript.Header)
	rows = append(rows, transcript.Records...)
	return writeCSV(ctx, s.fs, path, rows)
}

// writeCSV writes rows to a temporary file next to path and renames it into place.
func writeCSV(ctx context.Context, fs afero.Fs, path string, rows [][]string) error {
	if err := fs.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmp := path + ".tmp"
	file, err := fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	writer := csv.NewWriter(file)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			_ = file.Close()
			_ = fs.Remove(tmp)
			return err
		}
		if err := writer.Write(row); err != nil {
			_ = file.Close()
			_ = fs.Remove(tmp)
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	writer.Flush()
	if err := errors.Join(writer.Error(), file.Close()); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
