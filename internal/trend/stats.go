package trend

import (
	"fmt"
	"math"
	"sort"

	"engcli/internal/config"
	"engcli/pkg/contracts/domain"
)

// LoadInterval buckets an engine load percentage into a width-10 interval
// such as "40-50". A missing load falls into the empty interval.
func LoadInterval(load float64, ok bool) string {
	if !ok || math.IsNaN(load) || math.IsInf(load, 0) {
		return ""
	}
	lo := math.Floor(load/10) * 10
	return fmt.Sprintf("%.0f-%.0f", lo, lo+10)
}

// summary holds the statistics of one group of values
type summary struct {
	mean, median, std *float64
	count             int
}

// summarize computes mean, median and sample standard deviation. values is
// sorted in place.
func summarize(values []float64) summary {
	s := summary{count: len(values)}
	if s.count == 0 {
		return s
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(s.count)
	s.mean = &mean

	sort.Float64s(values)
	var median float64
	if s.count%2 == 1 {
		median = values[s.count/2]
	} else {
		median = (values[s.count/2-1] + values[s.count/2]) / 2
	}
	s.median = &median

	if s.count > 1 {
		sq := 0.0
		for _, v := range values {
			sq += (v - mean) * (v - mean)
		}
		std := math.Sqrt(sq / float64(s.count-1))
		s.std = &std
	}
	return s
}

// Classify compares a monthly mean against its baseline. Strictly more than
// the baseline plus the tolerance band is above, strictly less than the
// baseline minus the band is below, anything else (including a missing
// mean) is within.
func Classify(baseline, monthly *float64) domain.DeviationStatus {
	if baseline == nil || monthly == nil {
		return domain.DeviationWithin
	}
	switch {
	case *monthly > *baseline*(1+config.TrendTolerance):
		return domain.DeviationAbove
	case *monthly < *baseline*(1-config.TrendTolerance):
		return domain.DeviationBelow
	default:
		return domain.DeviationWithin
	}
}

// weightedMean returns Σ mean×count / Σ count over stats, ignoring groups
// without a mean; nil when no group has values
func weightedMean(stats []domain.ParameterStat) *float64 {
	sum, count := 0.0, 0
	for _, s := range stats {
		if s.Mean == nil || s.Count == 0 {
			continue
		}
		sum += *s.Mean * float64(s.Count)
		count += s.Count
	}
	if count == 0 {
		return nil
	}
	m := sum / float64(count)
	return &m
}
