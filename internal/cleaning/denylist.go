package cleaning

import (
	"math"

	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

// Denylist holds sentinel values that mark invalid readings, partitioned by
// the physical type they are compared against.
type Denylist struct {
	Text   []string
	Ints   []int64
	Floats []float64
}

// NewDenylist partitions raw sentinel values. Integers are also matched as
// floats and floats are also matched, truncated, as integers.
func NewDenylist(values []any) Denylist {
	var d Denylist
	for _, v := range values {
		switch x := v.(type) {
		case string:
			d.Text = append(d.Text, x)
		case int64:
			d.Ints = append(d.Ints, x)
			d.Floats = append(d.Floats, float64(x))
		case int:
			d.Ints = append(d.Ints, int64(x))
			d.Floats = append(d.Floats, float64(x))
		case float64:
			if math.IsNaN(x) || math.IsInf(x, 0) {
				continue
			}
			d.Floats = append(d.Floats, x)
			d.Ints = append(d.Ints, int64(x))
		}
	}
	return d
}

// IsEmpty reports whether the denylist has no values
func (d Denylist) IsEmpty() bool {
	return len(d.Text) == 0 && len(d.Ints) == 0 && len(d.Floats) == 0
}

// Scrub nulls every cell equal to a denylisted value of the column's own
// kind, then drops the rows whose columns other than Timestamp are all null.
// Time columns are never scrubbed.
func Scrub(t *table.Table, deny Denylist) *table.Table {
	texts := make(map[string]bool, len(deny.Text))
	for _, s := range deny.Text {
		texts[s] = true
	}
	ints := make(map[int64]bool, len(deny.Ints))
	for _, n := range deny.Ints {
		ints[n] = true
	}
	floats := make(map[float64]bool, len(deny.Floats))
	for _, f := range deny.Floats {
		floats[f] = true
	}

	out := t
	for _, col := range t.Columns() {
		var hit func(v any) bool
		switch col.Kind {
		case table.KindText:
			hit = func(v any) bool { return texts[v.(string)] }
		case table.KindInt:
			hit = func(v any) bool { return ints[v.(int64)] }
		case table.KindFloat:
			hit = func(v any) bool { return floats[v.(float64)] }
		default:
			continue
		}
		values := make([]any, col.Len())
		changed := false
		for i, v := range col.Values {
			if v != nil && hit(v) {
				changed = true
				continue
			}
			values[i] = v
		}
		if changed {
			out = out.MustWith(table.NewColumn(col.Name, col.Kind, values))
		}
	}

	var data []*table.Column
	for _, col := range out.Columns() {
		if col.Name != domain.ColTimestamp {
			data = append(data, col)
		}
	}
	return out.Filter(func(i int) bool {
		for _, col := range data {
			if !col.IsNull(i) {
				return true
			}
		}
		return false
	})
}
