package dataprocessing

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"engcli/internal/config"
	apperrors "engcli/internal/errors"
	"engcli/internal/harmonize"
	"engcli/internal/shared/testutil"
	"engcli/internal/table"
)

func TestReadLogEncodings(t *testing.T) {
	content := "Sample Time,Engine Speed [rpm],Note\r\n2024-03-01 08:00:00,1500,\r\n2024-03-01 08:01:00,,ok\r\n"

	utf16le := func(bom unicode.BOMPolicy) []byte {
		b, err := unicode.UTF16(unicode.LittleEndian, bom).NewEncoder().Bytes([]byte(content))
		require.NoError(t, err)
		return b
	}
	utf16be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(content))
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "utf-16le with bom", data: utf16le(unicode.UseBOM)},
		{name: "utf-16le without bom", data: utf16le(unicode.IgnoreBOM)},
		{name: "utf-16be with bom", data: utf16be},
		{name: "utf-8", data: []byte(content)},
		{name: "utf-8 with bom", data: append([]byte{0xEF, 0xBB, 0xBF}, content...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ReadLog(strings.NewReader(string(tt.data)))
			require.NoError(t, err)

			assert.Equal(t, []string{"Sample Time", "Engine Speed [rpm]", "Note"}, tbl.Names())
			require.Equal(t, 2, tbl.Len())
			assert.Equal(t, "2024-03-01 08:00:00", tbl.Value("Sample Time", 0))
			assert.Equal(t, "1500", tbl.Value("Engine Speed [rpm]", 0))
			assert.Nil(t, tbl.Value("Engine Speed [rpm]", 1), "empty fields are null")
			assert.Equal(t, table.KindText, tbl.Column("Note").Kind)
		})
	}
}

func TestReadLogDuplicateHeaders(t *testing.T) {
	tbl, err := ReadLog(strings.NewReader("a,a,b\n1,2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a_duplicated_0", "b"}, tbl.Names())
}

func TestReadLogShortRows(t *testing.T) {
	tbl, err := ReadLog(strings.NewReader("a,b,c\n1\n1,2,3\n"))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Nil(t, tbl.Value("c", 0))
}

func TestReadLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ABC12345.csv")
	testutil.WriteUTF16CSV(t, path, "Sample Time,SMH", "2024-03-01 08:00:00,100")

	tbl, err := ReadLogFile(path)
	require.NoError(t, err)
	assert.Equal(t, "100", tbl.Value("SMH", 0))

	_, err = ReadLogFile(filepath.Join(dir, "missing.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func writeConfigScript(t *testing.T, path string) {
	t.Helper()
	testutil.WriteWorkbook(t, path,
		testutil.Sheet{Name: config.SheetRenameList, Rows: [][]any{
			{"SN", "Nome da coluna", "Renomear para"},
			{"ABC12345", "Horimetro", "SMH"},
			{"ABC12345", "Consumo Total", "Total_Fuel"},
			{"XYZ00001", "Carga", "Load"},
			{"", "ignored", "x"},
		}},
		testutil.Sheet{Name: config.SheetInvalidData, Rows: [][]any{
			{"Valor"}, {"N/A"}, {9999}, {-1.5}, {"Error"},
		}},
		testutil.Sheet{Name: config.SheetInvalidEvents, Rows: [][]any{
			{"Valor"}, {"Test Alert"},
		}},
		testutil.Sheet{Name: config.SheetSharedPaths, Rows: [][]any{
			{"Nome", "Caminho"},
			{"maintanance_plan", "/shared/plan.xlsx"},
		}},
	)
}

func TestReadConfigScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ConfigScript.xlsx")
	writeConfigScript(t, path)

	script, err := ReadConfigScript(path, DefaultConfigSheets())
	require.NoError(t, err)

	assert.Equal(t, []harmonize.Override{
		{Raw: "Horimetro", Canonical: "SMH"},
		{Raw: "Consumo Total", Canonical: "Total_Fuel"},
	}, script.Overrides["ABC12345"])
	assert.Len(t, script.Overrides["XYZ00001"], 1)
	assert.Len(t, script.Overrides, 2)

	assert.ElementsMatch(t, []string{"N/A", "Error"}, script.ReadingsDenylist.Text)
	assert.Contains(t, script.ReadingsDenylist.Ints, int64(9999))
	assert.Contains(t, script.ReadingsDenylist.Floats, 9999.0)
	assert.Contains(t, script.ReadingsDenylist.Floats, -1.5)
	assert.Contains(t, script.ReadingsDenylist.Ints, int64(-1))

	assert.Equal(t, []string{"Test Alert"}, script.EventsDenylist.Text)
	assert.Equal(t, []config.SharedPath{{Name: "maintanance_plan", Path: "/shared/plan.xlsx"}}, script.SharedPaths)
}

func TestReadConfigScriptMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ConfigScript.xlsx")
	testutil.WriteWorkbook(t, path, testutil.Sheet{Name: "Other", Rows: [][]any{{"x"}}})

	_, err := ReadConfigScript(path, DefaultConfigSheets())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestReadAssetRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ASSET_INFO.xlsx")
	testutil.WriteWorkbook(t, path, testutil.Sheet{Name: config.SheetAssetList, Rows: [][]any{
		{"Serial", "Model", "Vessel"},
		{"ABC12345", "C32", "Boat A"},
		{"XYZ00001", "3516C", "Boat B"},
		{nil, "C18", ""},
	}})

	reg, err := ReadAssetRegistry(path, config.SheetAssetList)
	require.NoError(t, err)

	assert.Equal(t, []string{"ABC12345", "XYZ00001"}, reg.Serials())
	model, ok := reg.Model("XYZ00001")
	assert.True(t, ok)
	assert.Equal(t, "3516C", model)
}

func TestReadAssetRegistryMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ASSET_INFO.xlsx")
	testutil.WriteWorkbook(t, path, testutil.Sheet{Name: config.SheetAssetList, Rows: [][]any{
		{"Serial"}, {"ABC12345"},
	}})

	_, err := ReadAssetRegistry(path, config.SheetAssetList)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	assert.Contains(t, err.Error(), "Model")
}

func TestReadMaintenancePlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	testutil.WriteWorkbook(t, path, testutil.Sheet{Name: config.SheetPlanByModel, Rows: [][]any{
		{"Model", "Maintenance Name", "Maintenance Type", "Target SMH", "Target Fuel (L)"},
		{"C32", "PM1", "Preventive", 250, 20000},
		{"C32", "PM2", "Preventive", 500, nil},
	}})

	plan, err := ReadMaintenancePlan(path, config.SheetPlanByModel)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "PM1", plan[0].Name)
	assert.Equal(t, "Preventive", plan[0].Type)
	assert.Equal(t, 250.0, plan[0].TargetHours)
	assert.Equal(t, 20000.0, plan[0].TargetFuel)
	assert.Zero(t, plan[1].TargetFuel)
}

func TestReadMaintenanceShifts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MAINTENANCE_SHIFT.xlsx")
	testutil.WriteWorkbook(t, path, testutil.Sheet{Name: config.SheetShiftBySerial, Rows: [][]any{
		{"SN", "Maintenance Name", "Run Hours", "Total Fuel (L)", "Date"},
		{"ABC12345", "PM1", 1240, nil, "2024-02-10"},
		{"XYZ00001", "PM2", nil, nil, nil},
	}})

	shifts, err := ReadMaintenanceShifts(path, config.SheetShiftBySerial)
	require.NoError(t, err)
	require.Len(t, shifts, 2)

	require.NotNil(t, shifts[0].RunHours)
	assert.Equal(t, 1240.0, *shifts[0].RunHours)
	assert.Nil(t, shifts[0].TotalFuel)
	require.NotNil(t, shifts[0].Date)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), *shifts[0].Date)

	assert.Nil(t, shifts[1].RunHours)
	assert.Nil(t, shifts[1].Date)
}

func TestCellTime(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Time
		ok    bool
	}{
		{name: "excel serial", value: 45352.5, want: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), ok: true},
		{name: "timestamp text", value: "2024-03-01 08:30:00", want: time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), ok: true},
		{name: "date text", value: "3/1/2024", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "garbage", value: "soon", ok: false},
		{name: "null", value: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CellTime(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestOpenWorkbookMissing(t *testing.T) {
	_, err := OpenWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}
