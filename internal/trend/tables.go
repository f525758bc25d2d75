package trend

import (
	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

// Output column names
const (
	ColAsset        = "Asset"
	ColDate         = "Date"
	ColLoadInterval = "Load Interval"
	ColMean         = "Mean"
	ColMedian       = "Median"
	ColStdDev       = "STD Deviation"
	ColCount        = "Count"
	ColParameter    = "Parameter"
	ColBaselineMean = "Weighted_Mean_Baseline"
	ColMonthlyMean  = "Weighted_Mean_Monthly"
	ColStatus       = "Status"
)

// BaselineTable renders baseline statistics in output column order
func BaselineTable(stats []domain.ParameterStat) *table.Table {
	return statTable(stats, false)
}

// MonthlyTable renders monthly statistics in output column order. Date is the
// first day of the month as a time, written like history timestamps.
func MonthlyTable(stats []domain.ParameterStat) *table.Table {
	return statTable(stats, true)
}

func statTable(stats []domain.ParameterStat, monthly bool) *table.Table {
	n := len(stats)
	asset := make([]any, n)
	date := make([]any, n)
	interval := make([]any, n)
	mean := make([]any, n)
	median := make([]any, n)
	std := make([]any, n)
	count := make([]any, n)
	param := make([]any, n)

	for i, s := range stats {
		asset[i] = s.Asset
		date[i] = s.Month
		interval[i] = s.LoadInterval
		mean[i] = floatOrNil(s.Mean)
		median[i] = floatOrNil(s.Median)
		std[i] = floatOrNil(s.StdDev)
		count[i] = int64(s.Count)
		param[i] = s.Parameter
	}

	cols := []*table.Column{table.NewColumn(ColAsset, table.KindText, asset)}
	if monthly {
		cols = append(cols, table.NewColumn(ColDate, table.KindTime, date))
	}
	cols = append(cols,
		table.NewColumn(ColLoadInterval, table.KindText, interval),
		table.NewColumn(ColMean, table.KindFloat, mean),
		table.NewColumn(ColMedian, table.KindFloat, median),
		table.NewColumn(ColStdDev, table.KindFloat, std),
		table.NewColumn(ColCount, table.KindInt, count),
		table.NewColumn(ColParameter, table.KindText, param),
	)
	return table.MustNew(cols...)
}

// CommentsTable renders deviation comments in output column order
func CommentsTable(comments []domain.DeviationComment) *table.Table {
	n := len(comments)
	date := make([]any, n)
	asset := make([]any, n)
	param := make([]any, n)
	base := make([]any, n)
	month := make([]any, n)
	status := make([]any, n)

	for i, c := range comments {
		date[i] = c.Month
		asset[i] = c.Asset
		param[i] = c.Parameter
		base[i] = floatOrNil(c.BaselineMean)
		month[i] = floatOrNil(c.MonthlyMean)
		status[i] = string(c.Status)
	}

	return table.MustNew(
		table.NewColumn(ColDate, table.KindTime, date),
		table.NewColumn(ColAsset, table.KindText, asset),
		table.NewColumn(ColParameter, table.KindText, param),
		table.NewColumn(ColBaselineMean, table.KindFloat, base),
		table.NewColumn(ColMonthlyMean, table.KindFloat, month),
		table.NewColumn(ColStatus, table.KindText, status),
	)
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
