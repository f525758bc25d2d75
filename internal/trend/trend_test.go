package trend

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engcli/internal/shared/testutil"
	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

func ptr(v float64) *float64 { return &v }

func at(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 12, 0, 0, 0, time.UTC)
}

// readings has two assets: A spans two months and two load intervals, B has
// no load reading and one row without a timestamp
func readings() *table.Table {
	return table.MustNew(
		table.NewColumn(domain.ColAsset, table.KindText, []any{"B", "A", "A", "A", "A", "B"}),
		table.NewColumn(domain.ColTimestamp, table.KindTime, []any{
			at(time.January, 1), at(time.January, 10), at(time.January, 20),
			at(time.February, 5), at(time.February, 6), nil,
		}),
		table.NewColumn(domain.ColLoad, table.KindFloat, []any{nil, 45.0, 47.0, 45.0, 62.0, nil}),
		table.NewColumn(domain.ColBatt, table.KindFloat, []any{5.0, 10.0, 14.0, 30.0, nil, 7.0}),
	)
}

func TestLoadInterval(t *testing.T) {
	tests := []struct {
		load float64
		ok   bool
		want string
	}{
		{45, true, "40-50"},
		{40, true, "40-50"},
		{9.99, true, "0-10"},
		{0, true, "0-10"},
		{100, true, "100-110"},
		{-5, true, "-10-0"},
		{math.NaN(), true, ""},
		{50, false, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LoadInterval(tt.load, tt.ok), "load %v", tt.load)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		baseline *float64
		monthly  *float64
		want     domain.DeviationStatus
	}{
		{"exactly upper bound", ptr(100), ptr(110), domain.DeviationWithin},
		{"above", ptr(100), ptr(111), domain.DeviationAbove},
		{"exactly lower bound", ptr(100), ptr(90), domain.DeviationWithin},
		{"below", ptr(100), ptr(89), domain.DeviationBelow},
		{"equal", ptr(100), ptr(100), domain.DeviationWithin},
		{"missing baseline", nil, ptr(500), domain.DeviationWithin},
		{"missing monthly", ptr(100), nil, domain.DeviationWithin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.baseline, tt.monthly))
		})
	}
}

func TestSummarize(t *testing.T) {
	s := summarize([]float64{30, 10, 14})
	require.NotNil(t, s.mean)
	assert.InDelta(t, 18, *s.mean, 1e-9)
	assert.InDelta(t, 14, *s.median, 1e-9)
	assert.InDelta(t, math.Sqrt(112), *s.std, 1e-9)
	assert.Equal(t, 3, s.count)

	even := summarize([]float64{4, 1, 3, 2})
	assert.InDelta(t, 2.5, *even.median, 1e-9)

	single := summarize([]float64{7})
	assert.Nil(t, single.std)
	assert.InDelta(t, 7, *single.mean, 1e-9)

	empty := summarize(nil)
	assert.Nil(t, empty.mean)
	assert.Nil(t, empty.median)
	assert.Zero(t, empty.count)
}

func TestRun(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	e := NewEngine([]string{domain.ColBatt, domain.ColOilPress}, logger)

	res := e.Run(context.Background(), readings())

	t.Run("baseline", func(t *testing.T) {
		require.Len(t, res.Baseline, 3)

		a := res.Baseline[0]
		assert.Equal(t, "A", a.Asset)
		assert.Equal(t, "40-50", a.LoadInterval)
		assert.True(t, a.Month.IsZero())
		assert.Equal(t, 3, a.Count)
		assert.InDelta(t, 18, *a.Mean, 1e-9)
		assert.InDelta(t, 14, *a.Median, 1e-9)
		assert.InDelta(t, math.Sqrt(112), *a.StdDev, 1e-9)

		empty := res.Baseline[1]
		assert.Equal(t, "60-70", empty.LoadInterval)
		assert.Zero(t, empty.Count)
		assert.Nil(t, empty.Mean)

		b := res.Baseline[2]
		assert.Equal(t, "B", b.Asset)
		assert.Equal(t, "", b.LoadInterval)
		assert.Equal(t, 2, b.Count)
		assert.InDelta(t, 6, *b.Mean, 1e-9)
	})

	t.Run("monthly", func(t *testing.T) {
		require.Len(t, res.Monthly, 4)
		jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		feb := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

		assert.Equal(t, jan, res.Monthly[0].Month)
		assert.Equal(t, "40-50", res.Monthly[0].LoadInterval)
		assert.InDelta(t, 12, *res.Monthly[0].Mean, 1e-9)

		assert.Equal(t, feb, res.Monthly[1].Month)
		assert.Equal(t, "40-50", res.Monthly[1].LoadInterval)
		assert.Nil(t, res.Monthly[1].StdDev)

		assert.Equal(t, feb, res.Monthly[2].Month)
		assert.Equal(t, "60-70", res.Monthly[2].LoadInterval)

		assert.Equal(t, "B", res.Monthly[3].Asset)
		assert.Equal(t, 1, res.Monthly[3].Count, "the row without a timestamp has no month")
	})

	t.Run("comments", func(t *testing.T) {
		require.Len(t, res.Comments, 3)
		got := make([]domain.DeviationStatus, 0, 3)
		for _, c := range res.Comments {
			got = append(got, c.Status)
		}
		assert.Equal(t, []domain.DeviationStatus{
			domain.DeviationBelow, domain.DeviationAbove, domain.DeviationBelow,
		}, got)
		assert.InDelta(t, 18, *res.Comments[0].BaselineMean, 1e-9)
		assert.InDelta(t, 12, *res.Comments[0].MonthlyMean, 1e-9)
		assert.Equal(t, "B", res.Comments[2].Asset)
	})

	assert.True(t, handler.ContainsMessage("Trend parameter not in history"))
}

func TestWeightedMeanUsesCounts(t *testing.T) {
	stats := []domain.ParameterStat{
		{Mean: ptr(10), Count: 9},
		{Mean: ptr(100), Count: 1},
		{Count: 0},
	}
	got := weightedMean(stats)
	require.NotNil(t, got)
	assert.InDelta(t, 19, *got, 1e-9)
	assert.Nil(t, weightedMean([]domain.ParameterStat{{Count: 0}}))
}

func TestTables(t *testing.T) {
	e := NewEngine([]string{domain.ColBatt}, nil)
	res := e.Run(context.Background(), readings())

	baseline := BaselineTable(res.Baseline)
	assert.Equal(t, []string{ColAsset, ColLoadInterval, ColMean, ColMedian, ColStdDev, ColCount, ColParameter}, baseline.Names())
	assert.Equal(t, 3, baseline.Len())

	monthly := MonthlyTable(res.Monthly)
	assert.Equal(t, []string{ColAsset, ColDate, ColLoadInterval, ColMean, ColMedian, ColStdDev, ColCount, ColParameter}, monthly.Names())
	assert.Equal(t, table.KindTime, monthly.Column(ColDate).Kind)
	assert.Equal(t, "2024-01-01 00:00:00", table.FormatValue(monthly.Value(ColDate, 0)))
	assert.Nil(t, monthly.Value(ColStdDev, 1))

	comments := CommentsTable(res.Comments)
	assert.Equal(t, []string{ColDate, ColAsset, ColParameter, ColBaselineMean, ColMonthlyMean, ColStatus}, comments.Names())
	assert.Equal(t, table.KindTime, comments.Column(ColDate).Kind)
	assert.Equal(t, "2024-01-01 00:00:00", table.FormatValue(comments.Value(ColDate, 0)))
	assert.Equal(t, "below", comments.Value(ColStatus, 0))
}

func TestRunEmptyHistory(t *testing.T) {
	res := NewEngine(nil, nil).Run(context.Background(), table.Empty(domain.ColAsset, domain.ColTimestamp))
	assert.Empty(t, res.Baseline)
	assert.Empty(t, res.Monthly)
	assert.Empty(t, res.Comments)
}
