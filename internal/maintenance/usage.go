package maintenance

import (
	"math"
	"sort"
	"time"

	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

// assetUsage is what the history tells about one asset
type assetUsage struct {
	HoursRate    *float64
	FuelRate     *float64
	HoursCurrent *float64
	FuelCurrent  *float64
	LastSeen     *time.Time
}

// groupRows returns the row indices of every asset in first-seen order
func groupRows(history *table.Table) map[string][]int {
	groups := map[string][]int{}
	asset := history.Column(domain.ColAsset)
	if asset == nil {
		return groups
	}
	for i := range asset.Values {
		if a, ok := asset.Text(i); ok {
			groups[a] = append(groups[a], i)
		}
	}
	return groups
}

// measureUsage computes the usage rates and current readings of the rows
func measureUsage(history *table.Table, rows []int) assetUsage {
	ts := history.Column(domain.ColTimestamp)
	var u assetUsage
	u.HoursRate, u.HoursCurrent = metricUsage(history.Column(domain.ColSMH), ts, rows)
	u.FuelRate, u.FuelCurrent = metricUsage(history.Column(domain.ColTotalFuel), ts, rows)

	if ts != nil {
		for _, i := range rows {
			if v, ok := ts.Time(i); ok && (u.LastSeen == nil || v.After(*u.LastSeen)) {
				u.LastSeen = domain.Time(v)
			}
		}
	}
	return u
}

// metricUsage returns the median of the per-day spreads (max - min) of a
// cumulative metric and its maximum. Days without a value do not count.
func metricUsage(metric, ts *table.Column, rows []int) (rate, current *float64) {
	if metric == nil {
		return nil, nil
	}

	type span struct{ lo, hi float64 }
	days := map[time.Time]*span{}

	for _, i := range rows {
		v, ok := metric.Float(i)
		if !ok || math.IsNaN(v) {
			continue
		}
		if current == nil || v > *current {
			current = domain.Float(v)
		}
		if ts == nil {
			continue
		}
		at, ok := ts.Time(i)
		if !ok {
			continue
		}
		day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
		if s, seen := days[day]; seen {
			s.lo = math.Min(s.lo, v)
			s.hi = math.Max(s.hi, v)
		} else {
			days[day] = &span{lo: v, hi: v}
		}
	}

	if len(days) == 0 {
		return nil, current
	}
	deltas := make([]float64, 0, len(days))
	for _, s := range days {
		deltas = append(deltas, s.hi-s.lo)
	}
	m := median(deltas)
	return &m, current
}

// median of a non-empty slice; the slice is sorted in place
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
