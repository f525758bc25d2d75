package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrIncompatible is returned when two column kinds have no common supertype.
var ErrIncompatible = errors.New("incompatible column kinds")

// TimestampLayout is the canonical text form of a timestamp cell.
const TimestampLayout = "2006-01-02 15:04:05"

// Kind is the physical type of a column.
type Kind int

const (
	// KindNull marks a column holding only nulls whose type is not yet known.
	KindNull Kind = iota
	KindText
	KindInt
	KindFloat
	KindTime
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a named, typed, nullable vector.
//
// Values holds nil for a null cell, otherwise a string, int64, float64 or
// time.Time matching Kind. Values is never modified after construction;
// transformations build a new slice.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// NewColumn creates a column from already-typed values
func NewColumn(name string, kind Kind, values []any) *Column {
	if values == nil {
		values = []any{}
	}
	return &Column{Name: name, Kind: kind, Values: values}
}

// NullColumn creates an all-null column of n rows
func NullColumn(name string, n int) *Column {
	return &Column{Name: name, Kind: KindNull, Values: make([]any, n)}
}

// TextColumn creates a text column; empty strings become nulls.
func TextColumn(name string, values []string) *Column {
	out := make([]any, len(values))
	for i, v := range values {
		if v != "" {
			out[i] = v
		}
	}
	return &Column{Name: name, Kind: KindText, Values: out}
}

// FloatColumn creates a float column; NaN values become nulls.
func FloatColumn(name string, values []float64) *Column {
	out := make([]any, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			out[i] = v
		}
	}
	return &Column{Name: name, Kind: KindFloat, Values: out}
}

// TimeColumn creates a time column; zero times become nulls.
func TimeColumn(name string, values []time.Time) *Column {
	out := make([]any, len(values))
	for i, v := range values {
		if !v.IsZero() {
			out[i] = v
		}
	}
	return &Column{Name: name, Kind: KindTime, Values: out}
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.Values)
}

// IsNull reports whether cell i is null
func (c *Column) IsNull(i int) bool {
	return c.Values[i] == nil
}

// NullCount returns the number of null cells
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// Float returns cell i as a float64 for int and float columns.
func (c *Column) Float(i int) (float64, bool) {
	switch v := c.Values[i].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Time returns cell i as a time for time columns.
func (c *Column) Time(i int) (time.Time, bool) {
	v, ok := c.Values[i].(time.Time)
	return v, ok
}

// Text returns the canonical text form of cell i. Null cells return false.
func (c *Column) Text(i int) (string, bool) {
	if c.Values[i] == nil {
		return "", false
	}
	return FormatValue(c.Values[i]), true
}

// Renamed returns a copy of the column header with a new name; values are shared.
func (c *Column) Renamed(name string) *Column {
	return &Column{Name: name, Kind: c.Kind, Values: c.Values}
}

// Take returns a column made of the cells at the given indices
func (c *Column) Take(indices []int) *Column {
	out := make([]any, len(indices))
	for j, i := range indices {
		out[j] = c.Values[i]
	}
	return &Column{Name: c.Name, Kind: c.Kind, Values: out}
}

// Cast converts the column to kind. Conversion is strict: any non-null cell
// that cannot be represented in the target kind fails the whole cast.
func (c *Column) Cast(kind Kind) (*Column, error) {
	if c.Kind == kind {
		return c, nil
	}
	out := make([]any, len(c.Values))
	for i, v := range c.Values {
		if v == nil {
			continue
		}
		converted, err := convertValue(v, kind)
		if err != nil {
			return nil, fmt.Errorf("cast column %q from %s to %s at row %d: %w", c.Name, c.Kind, kind, i, err)
		}
		out[i] = converted
	}
	return &Column{Name: c.Name, Kind: kind, Values: out}, nil
}

func convertValue(v any, kind Kind) (any, error) {
	switch kind {
	case KindText:
		return FormatValue(v), nil
	case KindFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		case string:
			return strconv.ParseFloat(x, 64)
		}
	case KindInt:
		switch x := v.(type) {
		case int64:
			return x, nil
		case float64:
			if x != math.Trunc(x) {
				return nil, fmt.Errorf("non-integral value %v", x)
			}
			return int64(x), nil
		case string:
			return strconv.ParseInt(x, 10, 64)
		}
	case KindTime:
		switch x := v.(type) {
		case time.Time:
			return x, nil
		case string:
			return time.Parse(TimestampLayout, x)
		}
	case KindNull:
		return nil, fmt.Errorf("value %v cannot be null-typed", v)
	}
	return nil, fmt.Errorf("unsupported conversion of %T to %s", v, kind)
}

// FormatValue renders a cell the way it is written to CSV outputs; null is empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.Format(TimestampLayout)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// Supertype returns the kind both a and b can be widened to without loss of
// meaning. Null widens to anything, int and float widen to float, numbers
// and text widen to text. Time only combines with time.
func Supertype(a, b Kind) (Kind, bool) {
	switch {
	case a == b:
		return a, true
	case a == KindNull:
		return b, true
	case b == KindNull:
		return a, true
	case a == KindTime || b == KindTime:
		return KindNull, false
	case a == KindText || b == KindText:
		return KindText, true
	default:
		return KindFloat, true
	}
}
