package domain

import "time"

// PlanEntry is one scheduled maintenance item of an engine model.
// A zero target means the item has no target on that metric.
type PlanEntry struct {
	Model       string  `json:"model" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Type        string  `json:"type"`
	TargetHours float64 `json:"target_hours" validate:"gte=0"`
	TargetFuel  float64 `json:"target_fuel" validate:"gte=0"`
}

// ShiftEntry records an out-of-schedule maintenance that shifts the
// cycle of an asset. Nil fields were not recorded.
type ShiftEntry struct {
	Asset     string     `json:"asset" validate:"required"`
	Name      string     `json:"name" validate:"required"`
	RunHours  *float64   `json:"run_hours,omitempty"`
	TotalFuel *float64   `json:"total_fuel,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
}

// ForecastRecord is the projected due date of one maintenance item on one
// asset. Nil dates mean the projection was not possible or out of bounds.
type ForecastRecord struct {
	Asset           string     `json:"asset"`
	MaintenanceName string     `json:"maintenance_name"`
	MaintenanceType string     `json:"maintenance_type"`
	DueByHours      *time.Time `json:"due_by_hours,omitempty"`
	DueByFuel       *time.Time `json:"due_by_fuel,omitempty"`
	HoursPerDay     *float64   `json:"hours_per_day,omitempty"`
	FuelPerDay      *float64   `json:"fuel_per_day,omitempty"`
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// Time returns a pointer to v
func Time(v time.Time) *time.Time {
	return &v
}
