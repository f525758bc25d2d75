package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

// Output column names of the forecast table
const (
	ColMaintenanceName = "Maintenance Name"
	ColMaintenanceType = "Maintenance Type"
	ColDueByHours      = "Dias estimados SMH"
	ColDueByFuel       = "Dias estimados Fuel"
	ColHoursPerDay     = "smh_by_day"
	ColFuelPerDay      = "fuel_by_day"
)

// DateLayout formats projected due dates
const DateLayout = "2006-01-02"

// maxProjectionDays keeps day counts inside the range of time.Duration
const maxProjectionDays = 100000

// Result is the outcome of one forecast
type Result struct {
	Records     []domain.ForecastRecord
	Diagnostics []domain.Diagnostic
}

// Engine projects maintenance due dates from cumulative run-hours and fuel
type Engine struct {
	boundYears int
	now        func() time.Time
	logger     *slog.Logger
}

// NewEngine creates an engine that nulls projected dates farther than
// boundYears from the current time
func NewEngine(boundYears int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{boundYears: boundYears, now: time.Now, logger: logger}
}

// metric is one cumulative counter the forecast runs on
type metric struct {
	name    string
	rate    *float64
	current *float64
	target  func(domain.PlanEntry) float64
	logged  func(domain.ShiftEntry) *float64
}

// Forecast projects one record per (asset, plan item) for every registered
// asset it has enough data for. Assets that cannot be forecast are reported
// as diagnostics. Records are ordered by asset, then plan order.
func (e *Engine) Forecast(ctx context.Context, history *table.Table, assets *domain.AssetRegistry,
	plan []domain.PlanEntry, shifts []domain.ShiftEntry) Result {

	var res Result
	groups := groupRows(history)

	for _, asset := range history.Unique(domain.ColAsset) {
		if !assets.Contains(asset) {
			e.diagnose(ctx, &res, asset, "asset not in registry")
		}
	}

	for _, asset := range assets.Serials() {
		if err := ctx.Err(); err != nil {
			return res
		}

		rows := groups[asset]
		if len(rows) == 0 {
			e.diagnose(ctx, &res, asset, "no history")
			continue
		}

		model, _ := assets.Model(asset)
		items := planFor(plan, model)
		if len(items) == 0 {
			e.diagnose(ctx, &res, asset, fmt.Sprintf("no maintenance plan for model %q", model))
			continue
		}

		usage := measureUsage(history, rows)
		if usage.HoursCurrent == nil && usage.FuelCurrent == nil {
			e.diagnose(ctx, &res, asset, "no current run-hours or fuel reading")
			continue
		}

		hours := metric{
			name:    "run-hours",
			rate:    usage.HoursRate,
			current: usage.HoursCurrent,
			target:  func(p domain.PlanEntry) float64 { return p.TargetHours },
			logged:  func(s domain.ShiftEntry) *float64 { return s.RunHours },
		}
		fuel := metric{
			name:    "fuel",
			rate:    usage.FuelRate,
			current: usage.FuelCurrent,
			target:  func(p domain.PlanEntry) float64 { return p.TargetFuel },
			logged:  func(s domain.ShiftEntry) *float64 { return s.TotalFuel },
		}

		shift, hasShift := lastShift(shifts, asset)
		hoursDates, hoursReason := e.project(hours, items, usage.LastSeen, shift, hasShift)
		fuelDates, fuelReason := e.project(fuel, items, usage.LastSeen, shift, hasShift)

		// Neither metric projects: the asset is skipped rather than
		// emitted with empty dates.
		if hoursDates == nil && fuelDates == nil {
			e.diagnose(ctx, &res, asset, hoursReason+"; "+fuelReason)
			continue
		}
		for _, reason := range []string{hoursReason, fuelReason} {
			if reason != "" {
				e.diagnose(ctx, &res, asset, reason)
			}
		}

		for i, item := range items {
			rec := domain.ForecastRecord{
				Asset:           asset,
				MaintenanceName: item.Name,
				MaintenanceType: item.Type,
				HoursPerDay:     usage.HoursRate,
				FuelPerDay:      usage.FuelRate,
			}
			if hoursDates != nil {
				rec.DueByHours = hoursDates[i]
			}
			if fuelDates != nil {
				rec.DueByFuel = fuelDates[i]
			}
			res.Records = append(res.Records, rec)
		}
	}

	sort.SliceStable(res.Records, func(i, j int) bool {
		return res.Records[i].Asset < res.Records[j].Asset
	})

	e.logger.InfoContext(ctx, "Maintenance forecast complete",
		slog.Int("records", len(res.Records)),
		slog.Int("diagnostics", len(res.Diagnostics)))

	return res
}

// project returns one due date per plan item for a metric, or a reason why
// the metric cannot be projected for this asset
func (e *Engine) project(m metric, items []domain.PlanEntry, lastSeen *time.Time,
	shift domain.ShiftEntry, hasShift bool) ([]*time.Time, string) {

	if m.current == nil {
		return nil, "no current " + m.name + " reading"
	}
	if m.rate == nil || *m.rate == 0 {
		return nil, "no " + m.name + " usage rate"
	}
	if lastSeen == nil {
		return nil, "no timestamp for " + m.name
	}

	final := finalTarget(items, m.target)
	if final <= 0 {
		return nil, "no positive final " + m.name + " target"
	}

	cycle := math.Floor(*m.current / final)

	offset, ok := shiftOffset(m, items, *lastSeen, shift, hasShift, cycle)
	if !ok {
		return nil, "unknown " + m.name + " shift for last maintenance " + fmt.Sprintf("%q", shift.Name)
	}

	corrected := *m.current - final*cycle - offset
	dates := make([]*time.Time, len(items))
	for i, item := range items {
		dates[i] = e.dueDate(corrected, m.target(item), *m.rate, *lastSeen)
	}
	return dates, ""
}

// shiftOffset corrects the cycle start for a maintenance done off schedule.
// Without a recorded maintenance the offset is zero.
func shiftOffset(m metric, items []domain.PlanEntry, lastSeen time.Time,
	shift domain.ShiftEntry, hasShift bool, cycle float64) (float64, bool) {

	if !hasShift {
		return 0, true
	}

	var target float64
	found := false
	for _, item := range items {
		if item.Name == shift.Name {
			target, found = m.target(item), true
			break
		}
	}
	if !found || target == 0 {
		return 0, false
	}

	value := m.logged(shift)
	if shift.Date != nil && (value == nil || *value == 0) {
		value = nil
		if m.rate != nil && *m.rate != 0 {
			elapsed := lastSeen.Sub(*shift.Date).Hours() / 24
			value = domain.Float(*m.current - elapsed**m.rate)
		}
	}
	if value == nil {
		return 0, false
	}

	return *value - *value*cycle - target, true
}

// dueDate projects the day the remaining amount of an item's cycle is used up
func (e *Engine) dueDate(corrected, target, rate float64, lastSeen time.Time) *time.Time {
	if target <= 0 {
		return nil
	}
	remaining := math.Abs(corrected - target*math.Floor(corrected/target) - target)
	days := remaining / rate
	if math.IsNaN(days) || math.IsInf(days, 0) || math.Abs(days) > maxProjectionDays {
		return nil
	}

	due := lastSeen.Add(time.Duration(days * float64(24*time.Hour)))
	due = time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())

	now := e.now()
	if due.Before(now.AddDate(-e.boundYears, 0, 0)) || due.After(now.AddDate(e.boundYears, 0, 0)) {
		return nil
	}
	return &due
}

func (e *Engine) diagnose(ctx context.Context, res *Result, asset, reason string) {
	res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
		Asset:  asset,
		Stage:  domain.StageMaintenance,
		Reason: reason,
	})
	e.logger.WarnContext(ctx, "Maintenance data gap",
		slog.String("asset", asset),
		slog.String("reason", reason))
}

func planFor(plan []domain.PlanEntry, model string) []domain.PlanEntry {
	var items []domain.PlanEntry
	for _, p := range plan {
		if p.Model == model {
			items = append(items, p)
		}
	}
	return items
}

func finalTarget(items []domain.PlanEntry, target func(domain.PlanEntry) float64) float64 {
	final := 0.0
	for _, item := range items {
		final = math.Max(final, target(item))
	}
	return final
}

// lastShift returns the first shift entry recorded for the asset
func lastShift(shifts []domain.ShiftEntry, asset string) (domain.ShiftEntry, bool) {
	for _, s := range shifts {
		if s.Asset == asset {
			return s, true
		}
	}
	return domain.ShiftEntry{}, false
}

// Table renders forecast records as the maintenance output table
func Table(records []domain.ForecastRecord) *table.Table {
	n := len(records)
	asset := make([]any, n)
	name := make([]any, n)
	kind := make([]any, n)
	byHours := make([]any, n)
	byFuel := make([]any, n)
	hoursRate := make([]any, n)
	fuelRate := make([]any, n)

	for i, r := range records {
		asset[i] = r.Asset
		name[i] = r.MaintenanceName
		kind[i] = nullable(r.MaintenanceType)
		if r.DueByHours != nil {
			byHours[i] = r.DueByHours.Format(DateLayout)
		}
		if r.DueByFuel != nil {
			byFuel[i] = r.DueByFuel.Format(DateLayout)
		}
		if r.HoursPerDay != nil {
			hoursRate[i] = *r.HoursPerDay
		}
		if r.FuelPerDay != nil {
			fuelRate[i] = *r.FuelPerDay
		}
	}

	return table.MustNew(
		table.NewColumn(domain.ColAsset, table.KindText, asset),
		table.NewColumn(ColMaintenanceName, table.KindText, name),
		table.NewColumn(ColMaintenanceType, table.KindText, kind),
		table.NewColumn(ColDueByHours, table.KindText, byHours),
		table.NewColumn(ColDueByFuel, table.KindText, byFuel),
		table.NewColumn(ColHoursPerDay, table.KindFloat, hoursRate),
		table.NewColumn(ColFuelPerDay, table.KindFloat, fuelRate),
	)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
