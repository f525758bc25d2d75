package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "engcli/internal/errors"
	"engcli/internal/shared/testutil"
	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func readings(asset string, offsets []int, load []float64) *table.Table {
	ts := make([]time.Time, len(offsets))
	assets := make([]string, len(offsets))
	for i, h := range offsets {
		ts[i] = t0.Add(time.Duration(h) * time.Hour)
		assets[i] = asset
	}
	return table.MustNew(
		table.TextColumn(domain.ColAsset, assets),
		table.TimeColumn(domain.ColTimestamp, ts),
		table.FloatColumn(domain.ColLoad, load),
	)
}

func TestMergeDisjointSchemas(t *testing.T) {
	existing := table.MustNew(
		table.TextColumn(domain.ColAsset, []string{"A"}),
		table.FloatColumn("X", []float64{1}),
	)
	incoming := table.MustNew(
		table.TextColumn(domain.ColAsset, []string{"B"}),
		table.FloatColumn("Y", []float64{2}),
	)

	merged, err := Merge(existing, incoming)
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ColAsset, "X", "Y"}, merged.Names())
	require.Equal(t, 2, merged.Len())
	assert.Equal(t, 1.0, merged.Value("X", 0))
	assert.Nil(t, merged.Value("Y", 0))
	assert.Nil(t, merged.Value("X", 1))
	assert.Equal(t, 2.0, merged.Value("Y", 1))
}

func TestMergeWidensKinds(t *testing.T) {
	existing := table.MustNew(table.NewColumn("v", table.KindInt, []any{int64(1)}))
	incoming := table.MustNew(table.FloatColumn("v", []float64{2.5}))

	merged, err := Merge(existing, incoming)
	require.NoError(t, err)
	assert.Equal(t, table.KindFloat, merged.Column("v").Kind)
	assert.Equal(t, []any{1.0, 2.5}, merged.Column("v").Values)

	incoming = table.MustNew(table.TextColumn("v", []string{"n/a"}))
	merged, err = Merge(existing, incoming)
	require.NoError(t, err)
	assert.Equal(t, table.KindText, merged.Column("v").Kind)
	assert.Equal(t, []any{"1", "n/a"}, merged.Column("v").Values)
}

func TestMergeRecastsExisting(t *testing.T) {
	existing := table.MustNew(table.TextColumn(domain.ColTimestamp, []string{"2024-03-01 08:00:00"}))
	incoming := table.MustNew(table.TimeColumn(domain.ColTimestamp, []time.Time{t0.Add(time.Hour)}))

	merged, err := Merge(existing, incoming)
	require.NoError(t, err)
	assert.Equal(t, table.KindTime, merged.Column(domain.ColTimestamp).Kind)
	assert.Equal(t, t0, merged.Value(domain.ColTimestamp, 0))
}

func TestMergeRecastFailure(t *testing.T) {
	existing := table.MustNew(table.TextColumn(domain.ColTimestamp, []string{"yesterday"}))
	incoming := table.MustNew(table.TimeColumn(domain.ColTimestamp, []time.Time{t0}))

	_, err := Merge(existing, incoming)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	assert.True(t, errors.Is(err, ErrIncompatibleSchema))
}

func TestMergeWithEmpty(t *testing.T) {
	incoming := readings("A", []int{0, 1}, []float64{10, 20})

	merged, err := Merge(table.Empty(domain.ColAsset, domain.ColTimestamp, domain.ColLoad, domain.ColSMH), incoming)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Len())
	assert.Equal(t, table.KindTime, merged.Column(domain.ColTimestamp).Kind)
	assert.True(t, merged.Has(domain.ColSMH))

	merged, err = Merge(nil, incoming)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Len())
}

func TestDedupKeepsLaterRow(t *testing.T) {
	prior := readings("A", []int{0, 1}, []float64{10, 20})
	current := readings("A", []int{1, 2}, []float64{99, 30})

	merged, err := Merge(prior, current)
	require.NoError(t, err)
	deduped := Dedup(merged).SortBy(domain.ColAsset, domain.ColTimestamp)

	require.Equal(t, 3, deduped.Len())
	assert.Equal(t, []any{10.0, 99.0, 30.0}, deduped.Column(domain.ColLoad).Values)
	assert.Equal(t, merged.Names(), deduped.Names(), "no key column left behind")
}

func TestDedupSeparatesAssets(t *testing.T) {
	merged, err := Merge(readings("A", []int{0}, []float64{1}), readings("B", []int{0}, []float64{2}))
	require.NoError(t, err)
	assert.Equal(t, 2, Dedup(merged).Len())
}

func TestDedupRows(t *testing.T) {
	events := table.MustNew(
		table.TextColumn("Code", []string{"E1", "E1", "E2", "E1"}),
		table.NewColumn("Severity", table.KindText, []any{"High", "High", "Low", nil}),
	)

	out := DedupRows(events)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, []any{"E1", "E2", "E1"}, out.Column("Code").Values)
	assert.Equal(t, []any{"High", "Low", nil}, out.Column("Severity").Values)
}

func TestRetain(t *testing.T) {
	hours := []int{0, 24 * 10, 24 * 200, 24 * 250}
	tbl := readings("A", hours, []float64{1, 2, 3, 4})
	tbl = tbl.MustWith(table.NewColumn(domain.ColTimestamp, table.KindTime, append(tbl.Column(domain.ColTimestamp).Values[:3:3], nil)))

	out := Retain(tbl, 180)
	assert.Equal(t, []any{3.0}, out.Column(domain.ColLoad).Values, "older rows and null timestamps dropped")

	assert.Equal(t, 4, Retain(tbl, 0).Len())
	assert.Equal(t, 0, Retain(table.Empty(domain.ColTimestamp), 180).Len())
}

func TestRetainBoundaryIsInclusive(t *testing.T) {
	tbl := readings("A", []int{0, 24 * 180}, []float64{1, 2})
	assert.Equal(t, 2, Retain(tbl, 180).Len())
}

func TestStoreRoundTrip(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "db", "history_output.csv")
	s := New(Options{
		Path:          path,
		Columns:       []string{domain.ColAsset, domain.ColTimestamp, domain.ColLoad},
		RetentionDays: 180,
		SortKeys:      []string{domain.ColAsset, domain.ColTimestamp},
	}, nil, logger)

	ctx := context.Background()
	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.ColAsset, domain.ColTimestamp, domain.ColLoad}, empty.Names())
	assert.Zero(t, empty.Len())

	unsorted, err := Merge(readings("B", []int{1}, []float64{5}), readings("A", []int{2, 0}, []float64{7, 6}))
	require.NoError(t, err)

	rows, err := s.Save(ctx, unsorted)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, []string{
		"Asset,Timestamp,Load",
		"A,2024-03-01 08:00:00,6",
		"A,2024-03-01 10:00:00,7",
		"B,2024-03-01 09:00:00,5",
	}, testutil.ReadLines(t, path))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())
	assert.Equal(t, table.KindTime, loaded.Column(domain.ColTimestamp).Kind)
	assert.Equal(t, table.KindFloat, loaded.Column(domain.ColLoad).Kind)
	assert.Equal(t, table.KindText, loaded.Column(domain.ColAsset).Kind)
}

func TestStoreLoadAppliesRetention(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "history_output.csv")
	testutil.WriteText(t, path, "Asset,Timestamp,Load\nA,2023-01-01 00:00:00,1\nA,2024-03-01 00:00:00,2\n")

	loaded, err := New(Options{Path: path, RetentionDays: 180}, nil, logger).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{2.0}, loaded.Column(domain.ColLoad).Values)
}
