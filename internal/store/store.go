package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"engcli/internal/cleaning"
	"engcli/internal/dataprocessing"
	apperrors "engcli/internal/errors"
	"engcli/internal/exporter"
	"engcli/internal/table"
)

// Options configures a Store
type Options struct {
	// Path of the CSV file backing the store
	Path string
	// Columns of the table returned when the file does not exist
	Columns []string
	// RetentionDays bounds the loaded history; zero keeps every row
	RetentionDays int
	// SortKeys order the rows before saving
	SortKeys []string
}

// Store persists one output table as a CSV file that is read once at the
// start of a run and fully replaced at the end
type Store struct {
	opts   Options
	writer *exporter.CSVWriter
	logger *slog.Logger
}

// New creates a store
func New(opts Options, writer *exporter.CSVWriter, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if writer == nil {
		writer = exporter.NewCSVWriter(logger)
	}
	return &Store{opts: opts, writer: writer, logger: logger}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.opts.Path
}

// Load reads the stored table, types its columns and applies retention. A
// missing file yields an empty table with the configured columns.
func (s *Store) Load(ctx context.Context) (*table.Table, error) {
	if _, err := os.Stat(s.opts.Path); errors.Is(err, fs.ErrNotExist) {
		s.logger.InfoContext(ctx, "No prior table, starting empty",
			slog.String("path", s.opts.Path))
		return table.Empty(s.opts.Columns...), nil
	}

	raw, err := dataprocessing.ReadLogFile(s.opts.Path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to load %s", s.opts.Path), err)
	}

	typed := cleaning.DefineTypes(raw, raw.Names())
	retained := Retain(typed, s.opts.RetentionDays)

	s.logger.InfoContext(ctx, "Loaded prior table",
		slog.String("path", s.opts.Path),
		slog.Int("rows", typed.Len()),
		slog.Int("retained", retained.Len()))

	return retained, nil
}

// Save sorts t by the configured keys and replaces the backing file. It
// returns the number of rows written.
func (s *Store) Save(ctx context.Context, t *table.Table) (int, error) {
	var keys []string
	for _, k := range s.opts.SortKeys {
		if t.Has(k) {
			keys = append(keys, k)
		}
	}

	rows, err := s.writer.WriteTable(ctx, s.opts.Path, t.SortBy(keys...))
	if err != nil {
		return 0, apperrors.NewStorageError(fmt.Sprintf("failed to save %s", s.opts.Path), err)
	}
	return rows, nil
}
