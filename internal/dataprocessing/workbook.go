package dataprocessing

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"engcli/internal/cleaning"
	apperrors "engcli/internal/errors"
	"engcli/internal/table"
)

// Workbook is an open .xlsx file
type Workbook struct {
	file *excelize.File
	path string
}

// OpenWorkbook opens the workbook at path. A missing file is a not-found error.
func OpenWorkbook(path string) (*Workbook, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewNotFoundError(path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	return &Workbook{file: f, path: path}, nil
}

// Path returns the file the workbook was opened from
func (w *Workbook) Path() string {
	return w.path
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames lists the worksheets in workbook order
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// HasSheet reports whether the workbook contains the named sheet
func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// Rows returns the unformatted cell values of a sheet, header row first
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	if !w.HasSheet(sheet) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q in %s", sheet, w.path))
	}
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q of %s", sheet, w.path), err)
	}
	return rows, nil
}

// Table reads a sheet whose first row is the header into a table. A column
// whose non-empty cells are all numeric becomes a float column; any other
// column stays text. Empty cells are null.
func (w *Workbook) Table(sheet string) (*table.Table, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return table.Empty(), nil
	}

	header := uniqueHeader(rows[0])
	columns := make([]*table.Column, len(header))
	for j, name := range header {
		cells := make([]string, len(rows)-1)
		for i, row := range rows[1:] {
			if j < len(row) {
				cells[i] = row[j]
			}
		}
		columns[j] = inferColumn(name, cells)
	}

	t, err := table.New(columns...)
	if err != nil {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("sheet %q of %s", sheet, w.path), err)
	}
	return t, nil
}

// ColumnValues returns the data cells of the first column of a sheet, typed
// per cell: text cells as string, numeric cells as int64 when integral and
// float64 otherwise. Empty cells are skipped.
func (w *Workbook) ColumnValues(sheet string) ([]any, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, err
	}

	var values []any
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) == 0 || rows[i][0] == "" {
			continue
		}
		raw := rows[i][0]
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		cellType, err := w.file.GetCellType(sheet, cell)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read cell %s of sheet %q", cell, sheet), err)
		}
		values = append(values, typedCell(raw, cellType))
	}
	return values, nil
}

func typedCell(raw string, cellType excelize.CellType) any {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool:
		return raw
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return f
}

func inferColumn(name string, cells []string) *table.Column {
	values := make([]any, len(cells))
	numeric := true
	for i, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		f, err := strconv.ParseFloat(c, 64)
		if err != nil {
			numeric = false
			break
		}
		values[i] = f
	}
	if numeric {
		return table.NewColumn(name, table.KindFloat, values)
	}
	return table.TextColumn(name, cells)
}

// uniqueHeader trims header names and suffixes repeated ones
func uniqueHeader(raw []string) []string {
	seen := make(map[string]int, len(raw))
	header := make([]string, len(raw))
	for i, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_duplicated_%d", name, n)
		} else {
			seen[name] = 0
		}
		header[i] = name
	}
	return header
}

// requireColumns returns a schema error naming every absent column
func requireColumns(t *table.Table, source string, names ...string) error {
	var missing []string
	for _, name := range names {
		if !t.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewSchemaError(
			fmt.Sprintf("%s is missing columns %s", source, strings.Join(missing, ", ")), nil)
	}
	return nil
}

// dateLayouts are the date-only forms accepted in date cells stored as text
var dateLayouts = []string{"2006-01-02", "1/2/2006", "1/2/06"}

// CellTime converts a spreadsheet cell to a time: Excel serial dates from
// numeric cells, or any accepted timestamp layout from text cells
func CellTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case float64:
		ts, err := excelize.ExcelDateToTime(x, false)
		if err != nil {
			return time.Time{}, false
		}
		return ts.Round(time.Second), true
	case int64:
		return CellTime(float64(x))
	case string:
		if ts, ok := cleaning.ParseTimestamp(x); ok {
			return ts, true
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, strings.TrimSpace(x)); err == nil {
				return ts, true
			}
		}
	case time.Time:
		return x, true
	}
	return time.Time{}, false
}

// cellText returns the trimmed text of a cell; numbers are formatted without
// a trailing fraction
func cellText(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(table.FormatValue(v))
}

// cellFloat returns a numeric cell, parsing text cells
func cellFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}
