package table

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Table is an ordered set of equally long columns.
//
// Tables are values: every transforming method returns a new Table and
// leaves the receiver untouched. Columns may be shared between tables.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a table from columns. All columns must have the same length
// and distinct names.
func New(columns ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for i, col := range columns {
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", col.Name, col.Len(), t.rows)
		}
		t.index[col.Name] = i
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustNew is like New but panics on error. Use it where column shapes are
// known to be consistent.
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Empty returns a zero-row table with null-typed columns of the given names
func Empty(names ...string) *Table {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		cols = append(cols, NullColumn(name, 0))
	}
	return MustNew(cols...)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.columns)
}

// IsEmpty reports whether the table has no rows
func (t *Table) IsEmpty() bool {
	return t.rows == 0
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column or nil
func (t *Table) Column(name string) *Column {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.columns[i]
}

// Columns returns the columns in order
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Value returns the raw cell value, or nil when the column is missing
func (t *Table) Value(name string, row int) any {
	c := t.Column(name)
	if c == nil {
		return nil
	}
	return c.Values[row]
}

// With returns a table where col replaces the column of the same name, or is
// appended when no such column exists.
func (t *Table) With(col *Column) (*Table, error) {
	if len(t.columns) > 0 && col.Len() != t.rows {
		return nil, fmt.Errorf("column %q has %d rows, want %d", col.Name, col.Len(), t.rows)
	}
	cols := t.Columns()
	if i, ok := t.index[col.Name]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	return New(cols...)
}

// MustWith is like With but panics on a length mismatch
func (t *Table) MustWith(col *Column) *Table {
	out, err := t.With(col)
	if err != nil {
		panic(err)
	}
	return out
}

// Select keeps the named columns that exist, in the given order.
func (t *Table) Select(names []string) *Table {
	cols := make([]*Column, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		if c := t.Column(name); c != nil {
			cols = append(cols, c)
			seen[name] = true
		}
	}
	out := MustNew(cols...)
	if len(cols) == 0 {
		out.rows = t.rows
	}
	return out
}

// Drop removes the named columns
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	keep := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if !drop[c.Name] {
			keep = append(keep, c.Name)
		}
	}
	return t.Select(keep)
}

// Rename renames columns by mapping old name to new name. Names absent from
// the table are ignored. Renaming two columns onto one name is an error.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		if to, ok := mapping[c.Name]; ok && to != c.Name {
			cols[i] = c.Renamed(to)
		} else {
			cols[i] = c
		}
	}
	return New(cols...)
}

// Take returns the rows at the given indices, in that order
func (t *Table) Take(indices []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Take(indices)
	}
	out := MustNew(cols...)
	out.rows = len(indices)
	return out
}

// Filter keeps the rows for which keep returns true
func (t *Table) Filter(keep func(row int) bool) *Table {
	indices := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	return t.Take(indices)
}

// SortBy returns the rows stably sorted by the given key columns, ascending,
// nulls first. Missing key columns are ignored.
func (t *Table) SortBy(keys ...string) *Table {
	keyCols := make([]*Column, 0, len(keys))
	for _, k := range keys {
		if c := t.Column(k); c != nil {
			keyCols = append(keyCols, c)
		}
	}
	indices := make([]int, t.rows)
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		for _, c := range keyCols {
			if cmp := CompareValues(c.Values[indices[a]], c.Values[indices[b]]); cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return t.Take(indices)
}

// Unique returns the distinct non-null text values of a column in order of
// first appearance.
func (t *Table) Unique(name string) []string {
	c := t.Column(name)
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for i := range c.Values {
		s, ok := c.Text(i)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// CompareValues orders two cell values of the same kind. Nulls sort first.
func CompareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case string:
		return strings.Compare(x, FormatValue(b))
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case float64, int64:
		fa := toFloat(a)
		fb := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(FormatValue(a), FormatValue(b))
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	default:
		return 0
	}
}

// Concat stacks tables vertically. Every table must have the same column
// names; column order follows the first table. Kinds are widened with
// Supertype; an incompatible pair returns an error wrapping ErrIncompatible.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return MustNew(), nil
	}
	first := tables[0]
	names := first.Names()
	cols := make([]*Column, len(names))
	for i, name := range names {
		kind := KindNull
		total := 0
		for _, t := range tables {
			c := t.Column(name)
			if c == nil {
				return nil, fmt.Errorf("concat: column %q missing from a table", name)
			}
			k, ok := Supertype(kind, c.Kind)
			if !ok {
				return nil, fmt.Errorf("concat: column %q: %s and %s: %w", name, kind, c.Kind, ErrIncompatible)
			}
			kind = k
			total += c.Len()
		}
		values := make([]any, 0, total)
		for _, t := range tables {
			c, err := t.Column(name).Cast(kind)
			if err != nil {
				return nil, fmt.Errorf("concat: %w", err)
			}
			values = append(values, c.Values...)
		}
		cols[i] = NewColumn(name, kind, values)
	}
	for _, t := range tables[1:] {
		if t.Width() != len(names) {
			return nil, fmt.Errorf("concat: tables have %d and %d columns", len(names), t.Width())
		}
	}
	if len(cols) == 0 {
		out := MustNew()
		for _, t := range tables {
			out.rows += t.rows
		}
		return out, nil
	}
	return New(cols...)
}
