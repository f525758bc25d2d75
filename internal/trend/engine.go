package trend

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

// DefaultParameters are the readings tracked against their baseline
var DefaultParameters = []string{
	domain.ColBatt,
	domain.ColBoost,
	domain.ColCoolantTemp,
	domain.ColCrankPress,
	domain.ColExhDiff,
	domain.ColExhLeft,
	domain.ColExhRight,
	domain.ColFuelPress,
	domain.ColFuelRate,
	domain.ColInletAirTemp,
	domain.ColOilPress,
	domain.ColOilTemp,
}

// Result holds the three trend products of a run
type Result struct {
	Baseline []domain.ParameterStat
	Monthly  []domain.ParameterStat
	Comments []domain.DeviationComment
}

// Engine computes per-parameter baselines by load interval and compares
// each month against them
type Engine struct {
	parameters []string
	logger     *slog.Logger
}

// NewEngine creates an engine over parameters; nil selects DefaultParameters
func NewEngine(parameters []string, logger *slog.Logger) *Engine {
	if parameters == nil {
		parameters = DefaultParameters
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{parameters: parameters, logger: logger}
}

// groupKey identifies a baseline group (Month zero) or a monthly group
type groupKey struct {
	asset    string
	month    time.Time
	interval string
}

// Run computes the baseline, monthly statistics and deviation comments of
// history. Parameters absent from history are skipped.
func (e *Engine) Run(ctx context.Context, history *table.Table) Result {
	baselineGroups, monthlyGroups := e.group(history)

	var res Result
	for _, param := range e.parameters {
		col := history.Column(param)
		if col == nil {
			e.logger.DebugContext(ctx, "Trend parameter not in history", slog.String("parameter", param))
			continue
		}
		res.Baseline = append(res.Baseline, statsFor(col, param, baselineGroups)...)
		res.Monthly = append(res.Monthly, statsFor(col, param, monthlyGroups)...)
	}

	res.Comments = comments(res.Baseline, res.Monthly)

	sort.SliceStable(res.Baseline, func(i, j int) bool {
		a, b := res.Baseline[i], res.Baseline[j]
		return less(
			compare(a.Asset, b.Asset),
			compare(a.Parameter, b.Parameter),
			compare(a.LoadInterval, b.LoadInterval))
	})
	sort.SliceStable(res.Monthly, func(i, j int) bool {
		a, b := res.Monthly[i], res.Monthly[j]
		return less(
			compare(a.Asset, b.Asset),
			compare(a.Parameter, b.Parameter),
			a.Month.Compare(b.Month),
			compare(a.LoadInterval, b.LoadInterval))
	})
	sort.SliceStable(res.Comments, func(i, j int) bool {
		a, b := res.Comments[i], res.Comments[j]
		return less(
			compare(a.Asset, b.Asset),
			compare(a.Parameter, b.Parameter),
			a.Month.Compare(b.Month))
	})

	e.logger.InfoContext(ctx, "Trend baseline complete",
		slog.Int("baseline", len(res.Baseline)),
		slog.Int("monthly", len(res.Monthly)),
		slog.Int("comments", len(res.Comments)))

	return res
}

// group assigns every row to its baseline group and, when it has a
// timestamp, to its monthly group
func (e *Engine) group(history *table.Table) (baseline, monthly map[groupKey][]int) {
	baseline = map[groupKey][]int{}
	monthly = map[groupKey][]int{}

	asset := history.Column(domain.ColAsset)
	load := history.Column(domain.ColLoad)
	ts := history.Column(domain.ColTimestamp)

	for i := 0; i < history.Len(); i++ {
		var key groupKey
		if asset != nil {
			key.asset, _ = asset.Text(i)
		}
		if load != nil {
			key.interval = LoadInterval(load.Float(i))
		}
		baseline[key] = append(baseline[key], i)

		if ts == nil {
			continue
		}
		if at, ok := ts.Time(i); ok {
			key.month = time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
			monthly[key] = append(monthly[key], i)
		}
	}
	return baseline, monthly
}

func statsFor(col *table.Column, param string, groups map[groupKey][]int) []domain.ParameterStat {
	stats := make([]domain.ParameterStat, 0, len(groups))
	for key, rows := range groups {
		values := make([]float64, 0, len(rows))
		for _, i := range rows {
			if v, ok := col.Float(i); ok {
				values = append(values, v)
			}
		}
		s := summarize(values)
		stats = append(stats, domain.ParameterStat{
			Asset:        key.asset,
			Parameter:    param,
			LoadInterval: key.interval,
			Month:        key.month,
			Mean:         s.mean,
			Median:       s.median,
			StdDev:       s.std,
			Count:        s.count,
		})
	}
	return stats
}

// comments classifies the count-weighted monthly mean of every (month,
// asset, parameter) against the count-weighted baseline mean
func comments(baseline, monthly []domain.ParameterStat) []domain.DeviationComment {
	type paramKey struct{ asset, param string }
	type monthKey struct {
		month time.Time
		asset string
		param string
	}

	byParam := map[paramKey][]domain.ParameterStat{}
	for _, s := range baseline {
		k := paramKey{s.Asset, s.Parameter}
		byParam[k] = append(byParam[k], s)
	}
	byMonth := map[monthKey][]domain.ParameterStat{}
	for _, s := range monthly {
		k := monthKey{s.Month, s.Asset, s.Parameter}
		byMonth[k] = append(byMonth[k], s)
	}

	out := make([]domain.DeviationComment, 0, len(byMonth))
	for k, stats := range byMonth {
		base := weightedMean(byParam[paramKey{k.asset, k.param}])
		month := weightedMean(stats)
		out = append(out, domain.DeviationComment{
			Month:        k.month,
			Asset:        k.asset,
			Parameter:    k.param,
			BaselineMean: base,
			MonthlyMean:  month,
			Status:       Classify(base, month),
		})
	}
	return out
}

func compare(a, b string) int {
	return strings.Compare(a, b)
}

// less folds comparison results in key order
func less(results ...int) bool {
	for _, r := range results {
		if r != 0 {
			return r < 0
		}
	}
	return false
}
