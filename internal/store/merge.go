package store

import (
	"errors"
	"fmt"
	"time"

	apperrors "engcli/internal/errors"
	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

// ErrIncompatibleSchema is wrapped by the schema error Merge returns when the
// prior table cannot be recast to the incoming column kinds
var ErrIncompatibleSchema = errors.New("incompatible history schema")

// Merge stacks incoming below existing. The result has the union of both
// column sets, existing columns first; a column missing on one side is
// null-filled there. Kinds are widened where possible. When a pair of kinds
// cannot be widened, the existing columns are cast to the incoming kinds and
// the concatenation is retried once.
func Merge(existing, incoming *table.Table) (*table.Table, error) {
	if existing == nil {
		existing = table.Empty()
	}
	if incoming == nil {
		incoming = table.Empty()
	}

	names := unionNames(existing, incoming)
	left, right := align(existing, names), align(incoming, names)

	merged, err := table.Concat(left, right)
	if err == nil {
		return merged, nil
	}
	if !errors.Is(err, table.ErrIncompatible) {
		return nil, apperrors.NewSchemaError("failed to merge tables", err)
	}

	recast, castErr := recastTo(left, right)
	if castErr != nil {
		return nil, apperrors.NewSchemaError("failed to recast prior history to incoming types",
			fmt.Errorf("%w: %v", ErrIncompatibleSchema, castErr))
	}

	merged, err = table.Concat(recast, right)
	if err != nil {
		return nil, apperrors.NewSchemaError("failed to merge tables after recast",
			fmt.Errorf("%w: %v", ErrIncompatibleSchema, err))
	}
	return merged, nil
}

func unionNames(a, b *table.Table) []string {
	names := a.Names()
	for _, name := range b.Names() {
		if !a.Has(name) {
			names = append(names, name)
		}
	}
	return names
}

// align returns t with exactly names, in order, null-filling absent columns
func align(t *table.Table, names []string) *table.Table {
	cols := make([]*table.Column, len(names))
	for i, name := range names {
		if c := t.Column(name); c != nil {
			cols[i] = c
		} else {
			cols[i] = table.NullColumn(name, t.Len())
		}
	}
	if len(cols) == 0 {
		return t
	}
	return table.MustNew(cols...)
}

// recastTo casts every column of t to the kind of the same column in like.
// All-null columns of like impose no kind.
func recastTo(t, like *table.Table) (*table.Table, error) {
	out := t
	for _, target := range like.Columns() {
		if target.Kind == table.KindNull {
			continue
		}
		cast, err := t.Column(target.Name).Cast(target.Kind)
		if err != nil {
			return nil, err
		}
		out = out.MustWith(cast)
	}
	return out, nil
}

// Dedup drops rows repeating an earlier (Asset, Timestamp) pair, keeping the
// last occurrence. Timestamps are compared in their canonical text form.
func Dedup(t *table.Table) *table.Table {
	asset, ts := t.Column(domain.ColAsset), t.Column(domain.ColTimestamp)
	return dedupBy(t, func(i int) string {
		var a, s string
		if asset != nil {
			a = table.FormatValue(asset.Values[i])
		}
		if ts != nil {
			s = table.FormatValue(ts.Values[i])
		}
		return a + "\x00" + s
	})
}

// DedupRows drops rows identical in every column to a later row
func DedupRows(t *table.Table) *table.Table {
	cols := t.Columns()
	return dedupBy(t, func(i int) string {
		key := make([]byte, 0, 64)
		for _, c := range cols {
			key = append(key, table.FormatValue(c.Values[i])...)
			if c.Values[i] == nil {
				key = append(key, '\x01')
			}
			key = append(key, '\x00')
		}
		return string(key)
	})
}

// dedupBy keeps the last row of every key, in original row order
func dedupBy(t *table.Table, key func(i int) string) *table.Table {
	n := t.Len()
	seen := make(map[string]struct{}, n)
	keep := make([]bool, n)
	for i := n - 1; i >= 0; i-- {
		k := key(i)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep[i] = true
	}
	return t.Filter(func(i int) bool { return keep[i] })
}

// Retain keeps the rows whose Timestamp is within days of the table's latest
// Timestamp. Rows without a timestamp are dropped. An empty table, a table
// without a Timestamp column, or days <= 0 returns t unchanged.
func Retain(t *table.Table, days int) *table.Table {
	ts := t.Column(domain.ColTimestamp)
	if t.IsEmpty() || ts == nil || days <= 0 {
		return t
	}

	var latest time.Time
	found := false
	for i := range ts.Values {
		if v, ok := ts.Time(i); ok && (!found || v.After(latest)) {
			latest, found = v, true
		}
	}

	cutoff := latest.Add(-time.Duration(days) * 24 * time.Hour)
	return t.Filter(func(i int) bool {
		v, ok := ts.Time(i)
		return ok && !v.Before(cutoff)
	})
}
