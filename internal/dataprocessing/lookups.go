package dataprocessing

import (
	"fmt"
	"time"

	"engcli/internal/cleaning"
	"engcli/internal/config"
	"engcli/internal/harmonize"
	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

// Lookup table headers
const (
	HeaderSerial          = "Serial"
	HeaderModel           = "Model"
	HeaderSN              = "SN"
	HeaderRawColumn       = "Nome da coluna"
	HeaderRenameTo        = "Renomear para"
	HeaderPathName        = "Nome"
	HeaderPath            = "Caminho"
	HeaderMaintenanceName = "Maintenance Name"
	HeaderMaintenanceType = "Maintenance Type"
	HeaderTargetSMH       = "Target SMH"
	HeaderTargetFuel      = "Target Fuel (L)"
	HeaderRunHours        = "Run Hours"
	HeaderTotalFuel       = "Total Fuel (L)"
	HeaderDate            = "Date"
)

// ConfigSheets names the sheets of the configuration workbook
type ConfigSheets struct {
	Overrides     string
	InvalidData   string
	InvalidEvents string
	SharedPaths   string
}

// DefaultConfigSheets returns the sheet names used by ConfigScript.xlsx
func DefaultConfigSheets() ConfigSheets {
	return ConfigSheets{
		Overrides:     config.SheetRenameList,
		InvalidData:   config.SheetInvalidData,
		InvalidEvents: config.SheetInvalidEvents,
		SharedPaths:   config.SheetSharedPaths,
	}
}

// ConfigScript holds every lookup table of the configuration workbook
type ConfigScript struct {
	Overrides        harmonize.Overrides
	ReadingsDenylist cleaning.Denylist
	EventsDenylist   cleaning.Denylist
	SharedPaths      []config.SharedPath
}

// ReadConfigScript reads the override, denylist and shared path sheets
func ReadConfigScript(path string, sheets ConfigSheets) (*ConfigScript, error) {
	wb, err := OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	script := &ConfigScript{}

	if script.Overrides, err = readOverrides(wb, sheets.Overrides); err != nil {
		return nil, err
	}
	if script.ReadingsDenylist, err = readDenylist(wb, sheets.InvalidData); err != nil {
		return nil, err
	}
	if script.EventsDenylist, err = readDenylist(wb, sheets.InvalidEvents); err != nil {
		return nil, err
	}
	if script.SharedPaths, err = readSharedPaths(wb, sheets.SharedPaths); err != nil {
		return nil, err
	}

	return script, nil
}

func readOverrides(wb *Workbook, sheet string) (harmonize.Overrides, error) {
	t, err := wb.Table(sheet)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(t, source(wb, sheet), HeaderSN, HeaderRawColumn, HeaderRenameTo); err != nil {
		return nil, err
	}

	overrides := harmonize.Overrides{}
	sn, raw, rename := t.Column(HeaderSN), t.Column(HeaderRawColumn), t.Column(HeaderRenameTo)
	for i := 0; i < t.Len(); i++ {
		asset, from, to := cellText(sn.Values[i]), cellText(raw.Values[i]), cellText(rename.Values[i])
		if asset == "" || from == "" || to == "" {
			continue
		}
		overrides.Add(asset, from, to)
	}
	return overrides, nil
}

func readDenylist(wb *Workbook, sheet string) (cleaning.Denylist, error) {
	values, err := wb.ColumnValues(sheet)
	if err != nil {
		return cleaning.Denylist{}, err
	}
	return cleaning.NewDenylist(values), nil
}

func readSharedPaths(wb *Workbook, sheet string) ([]config.SharedPath, error) {
	t, err := wb.Table(sheet)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(t, source(wb, sheet), HeaderPathName, HeaderPath); err != nil {
		return nil, err
	}

	var paths []config.SharedPath
	name, path := t.Column(HeaderPathName), t.Column(HeaderPath)
	for i := 0; i < t.Len(); i++ {
		n, p := cellText(name.Values[i]), cellText(path.Values[i])
		if n == "" || p == "" {
			continue
		}
		paths = append(paths, config.SharedPath{Name: n, Path: p})
	}
	return paths, nil
}

// ReadAssetRegistry reads the registered assets and their models
func ReadAssetRegistry(path, sheet string) (*domain.AssetRegistry, error) {
	t, wbSource, err := readSheet(path, sheet)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(t, wbSource, HeaderSerial, HeaderModel); err != nil {
		return nil, err
	}

	serial, model := t.Column(HeaderSerial), t.Column(HeaderModel)
	assets := make([]domain.Asset, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		s := cellText(serial.Values[i])
		if s == "" {
			continue
		}
		assets = append(assets, domain.Asset{Serial: s, Model: cellText(model.Values[i])})
	}
	return domain.NewAssetRegistry(assets), nil
}

// ReadMaintenancePlan reads the plan entries in sheet order. Missing targets
// are zero.
func ReadMaintenancePlan(path, sheet string) ([]domain.PlanEntry, error) {
	t, wbSource, err := readSheet(path, sheet)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(t, wbSource,
		HeaderModel, HeaderMaintenanceName, HeaderMaintenanceType, HeaderTargetSMH, HeaderTargetFuel); err != nil {
		return nil, err
	}

	model, name, kind := t.Column(HeaderModel), t.Column(HeaderMaintenanceName), t.Column(HeaderMaintenanceType)
	hours, fuel := t.Column(HeaderTargetSMH), t.Column(HeaderTargetFuel)

	plan := make([]domain.PlanEntry, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		entry := domain.PlanEntry{
			Model: cellText(model.Values[i]),
			Name:  cellText(name.Values[i]),
			Type:  cellText(kind.Values[i]),
		}
		if entry.Model == "" || entry.Name == "" {
			continue
		}
		entry.TargetHours, _ = cellFloat(hours.Values[i])
		entry.TargetFuel, _ = cellFloat(fuel.Values[i])
		plan = append(plan, entry)
	}
	return plan, nil
}

// ReadMaintenanceShifts reads the last completed maintenance per asset.
// Blank metric or date cells stay nil.
func ReadMaintenanceShifts(path, sheet string) ([]domain.ShiftEntry, error) {
	t, wbSource, err := readSheet(path, sheet)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(t, wbSource,
		HeaderSN, HeaderMaintenanceName, HeaderRunHours, HeaderTotalFuel, HeaderDate); err != nil {
		return nil, err
	}

	sn, name := t.Column(HeaderSN), t.Column(HeaderMaintenanceName)
	hours, fuel, date := t.Column(HeaderRunHours), t.Column(HeaderTotalFuel), t.Column(HeaderDate)

	shifts := make([]domain.ShiftEntry, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		entry := domain.ShiftEntry{
			Asset: cellText(sn.Values[i]),
			Name:  cellText(name.Values[i]),
		}
		if entry.Asset == "" {
			continue
		}
		if v, ok := cellFloat(hours.Values[i]); ok {
			entry.RunHours = domain.Float(v)
		}
		if v, ok := cellFloat(fuel.Values[i]); ok {
			entry.TotalFuel = domain.Float(v)
		}
		if ts, ok := CellTime(date.Values[i]); ok {
			day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
			entry.Date = &day
		}
		shifts = append(shifts, entry)
	}
	return shifts, nil
}

func readSheet(path, sheet string) (*table.Table, string, error) {
	wb, err := OpenWorkbook(path)
	if err != nil {
		return nil, "", err
	}
	defer wb.Close()

	t, err := wb.Table(sheet)
	if err != nil {
		return nil, "", err
	}
	return t, source(wb, sheet), nil
}

func source(wb *Workbook, sheet string) string {
	return fmt.Sprintf("sheet %q of %s", sheet, wb.Path())
}
