package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"engcli/internal/table"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteTable replaces filePath with the contents of t, one column per field in
// table order. Times use the canonical timestamp layout and nulls are empty
// fields. It returns the number of data rows written.
func (w *CSVWriter) WriteTable(ctx context.Context, filePath string, t *table.Table) (int, error) {
	if t == nil {
		t = table.Empty()
	}

	w.logger.InfoContext(ctx, "Writing table",
		slog.String("file_path", filePath),
		slog.Int("rows", t.Len()),
		slog.Int("columns", t.Width()))

	stream, err := newStreamWriter(filePath, t.Names())
	if err != nil {
		return 0, err
	}

	columns := t.Columns()
	record := make([]string, len(columns))
	for row := 0; row < t.Len(); row++ {
		if row%10000 == 0 && ctx.Err() != nil {
			stream.Abort()
			return 0, ctx.Err()
		}
		for i, col := range columns {
			record[i] = table.FormatValue(col.Values[row])
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Abort()
			return 0, fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	if err := stream.Close(); err != nil {
		return 0, err
	}
	return t.Len(), nil
}

// StreamWriter provides streaming CSV writing into a temporary file that
// replaces the target on Close
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
	target string
}

// newStreamWriter creates a streaming CSV writer for filePath
func newStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.CreateTemp(dir, filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}

	s := &StreamWriter{
		file:   file,
		writer: csv.NewWriter(file),
		target: filePath,
	}

	if len(headers) > 0 {
		if err := s.writer.Write(headers); err != nil {
			s.Abort()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return s, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes the stream and moves it over the target file
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.Abort()
		return fmt.Errorf("failed to flush %s: %w", s.target, err)
	}
	if err := s.file.Close(); err != nil {
		os.Remove(s.file.Name())
		return fmt.Errorf("failed to close %s: %w", s.target, err)
	}
	if err := os.Rename(s.file.Name(), s.target); err != nil {
		os.Remove(s.file.Name())
		return fmt.Errorf("failed to replace %s: %w", s.target, err)
	}
	return nil
}

// Abort discards the stream, leaving the target untouched
func (s *StreamWriter) Abort() {
	s.file.Close()
	os.Remove(s.file.Name())
}
