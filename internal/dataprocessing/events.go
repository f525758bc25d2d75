package dataprocessing

import (
	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

// Event workbook headers
const (
	HeaderUnitName       = "Unit Name"
	HeaderHighSeverity   = "High Severity Count"
	HeaderMediumSeverity = "Medium Severity Count"
	HeaderLowSeverity    = "Low Severity Count"
	HeaderSampleTime     = "Sample Time"

	// TotalsUnit is the summary row that aggregates every unit
	TotalsUnit = "Totals"
)

// ReadEventUnits returns the unit sheet names listed on the summary sheet
// that raised at least one alert, in sheet order
func ReadEventUnits(wb *Workbook, summarySheet string) ([]string, error) {
	t, err := wb.Table(summarySheet)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(t, source(wb, summarySheet),
		HeaderUnitName, HeaderHighSeverity, HeaderMediumSeverity, HeaderLowSeverity); err != nil {
		return nil, err
	}

	counts := []*table.Column{
		t.Column(HeaderHighSeverity),
		t.Column(HeaderMediumSeverity),
		t.Column(HeaderLowSeverity),
	}
	var units []string
	for i := 0; i < t.Len(); i++ {
		name := cellText(t.Value(HeaderUnitName, i))
		if name == "" || name == TotalsUnit {
			continue
		}
		alerts := 0.0
		for _, c := range counts {
			if v, ok := cellFloat(c.Values[i]); ok {
				alerts += v
			}
		}
		if alerts > 0 {
			units = append(units, name)
		}
	}
	return units, nil
}

// ReadEventSheet reads one unit sheet, replacing its Sample Time column with
// a typed Timestamp column
func ReadEventSheet(wb *Workbook, sheet string) (*table.Table, error) {
	t, err := wb.Table(sheet)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(t, source(wb, sheet), HeaderSampleTime); err != nil {
		return nil, err
	}

	sample := t.Column(HeaderSampleTime)

	stamps := make([]any, sample.Len())
	for i, v := range sample.Values {
		if ts, ok := CellTime(v); ok {
			stamps[i] = ts
		}
	}
	t = t.Drop(domain.EventColTimestamp).MustWith(table.NewColumn(HeaderSampleTime, table.KindTime, stamps))
	return t.Rename(map[string]string{HeaderSampleTime: domain.EventColTimestamp})
}
