package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

// Sheet is one worksheet of a fixture workbook. The first row is the header.
type Sheet struct {
	Name string
	Rows [][]any
}

// WriteWorkbook creates an .xlsx file at path holding sheets in order
func WriteWorkbook(t *testing.T, path string, sheets ...Sheet) {
	t.Helper()
	require.NotEmpty(t, sheets)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.Name))
		} else {
			_, err := f.NewSheet(sheet.Name)
			require.NoError(t, err)
		}
		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet.Name, cell, &row))
		}
	}

	require.NoError(t, f.SaveAs(path))
}

// WriteUTF16CSV writes lines as a UTF-16LE file with a byte order mark, the
// encoding produced by the engine telemetry loggers
func WriteUTF16CSV(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := encoder.Bytes([]byte(strings.Join(lines, "\r\n") + "\r\n"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, encoded, 0644))
}

// WriteText writes content to path, creating parent directories
func WriteText(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// ReadLines returns the lines of a text file without the trailing newline
func ReadLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.TrimPrefix(content, []byte("\xEF\xBB\xBF"))
	return strings.Split(strings.TrimRight(string(content), "\r\n"), "\n")
}
