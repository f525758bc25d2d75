package cleaning

import (
	"math"
	"strconv"
	"time"

	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

// DefineTypes keeps the listed columns that exist, in list order, and types
// them. Timestamp becomes a time column with unparseable cells set to null.
// Every other column except Asset becomes float when all of its non-null
// cells parse as numbers and stays text otherwise.
func DefineTypes(t *table.Table, keep []string) *table.Table {
	out := t.Select(keep)
	for _, col := range out.Columns() {
		switch col.Name {
		case domain.ColAsset:
			continue
		case domain.ColTimestamp:
			out = out.MustWith(timestampColumn(col))
		default:
			if numeric, ok := numericColumn(col); ok {
				out = out.MustWith(numeric)
			}
		}
	}
	return out
}

func timestampColumn(col *table.Column) *table.Column {
	if col.Kind == table.KindTime {
		return col
	}
	values := make([]any, col.Len())
	for i := range values {
		switch v := col.Values[i].(type) {
		case time.Time:
			values[i] = v
		case string:
			if ts, ok := ParseTimestamp(v); ok {
				values[i] = ts
			}
		}
	}
	return table.NewColumn(col.Name, table.KindTime, values)
}

// numericColumn converts col to float. It fails when any non-null cell is
// not a number.
func numericColumn(col *table.Column) (*table.Column, bool) {
	switch col.Kind {
	case table.KindFloat:
		return col, true
	case table.KindTime:
		return nil, false
	}
	values := make([]float64, col.Len())
	for i, v := range col.Values {
		switch x := v.(type) {
		case nil:
			values[i] = math.NaN()
		case float64:
			values[i] = x
		case int64:
			values[i] = float64(x)
		case string:
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, false
			}
			values[i] = f
		default:
			return nil, false
		}
	}
	return table.FloatColumn(col.Name, values), true
}
