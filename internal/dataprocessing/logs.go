package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "engcli/internal/errors"
	"engcli/internal/table"
)

// ReadLogFile reads a raw engine log export from path
func ReadLogFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewNotFoundError(path)
	}
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	t, err := ReadLog(f)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read %s", path), err)
	}
	return t, nil
}

// ReadLog parses a comma separated table with a header row. Every column is
// read as text and empty fields are null. The input may be UTF-16 with a byte
// order mark, UTF-16LE without one, or UTF-8.
func ReadLog(r io.Reader) (*table.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	decoded, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return table.Empty(), nil
	}

	header := uniqueHeader(records[0])
	columns := make([]*table.Column, len(header))
	for j, name := range header {
		cells := make([]string, len(records)-1)
		for i, record := range records[1:] {
			if j < len(record) {
				cells[i] = record[j]
			}
		}
		columns[j] = table.TextColumn(name, cells)
	}

	return table.New(columns...)
}

// decode converts the input to UTF-8. A byte order mark selects the
// encoding; without one, a zero second byte marks UTF-16LE text.
func decode(data []byte) ([]byte, error) {
	var fallback transform.Transformer = unicode.UTF8.NewDecoder()
	if len(data) >= 2 && data[1] == 0 {
		fallback = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	return out, err
}
