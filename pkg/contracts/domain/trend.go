package domain

import "time"

// ParameterStat summarizes one parameter over one group of readings.
// Month is zero for baseline statistics.
type ParameterStat struct {
	Asset        string    `json:"asset"`
	Parameter    string    `json:"parameter"`
	LoadInterval string    `json:"load_interval"`
	Month        time.Time `json:"month,omitempty"`
	Mean         *float64  `json:"mean,omitempty"`
	Median       *float64  `json:"median,omitempty"`
	StdDev       *float64  `json:"std_dev,omitempty"`
	Count        int       `json:"count"`
}

// DeviationStatus classifies a monthly mean against its baseline
type DeviationStatus string

const (
	DeviationAbove  DeviationStatus = "above"
	DeviationBelow  DeviationStatus = "below"
	DeviationWithin DeviationStatus = "within"
)

// DeviationComment compares the weighted monthly mean of a parameter with
// its weighted baseline mean.
type DeviationComment struct {
	Month        time.Time       `json:"month"`
	Asset        string          `json:"asset"`
	Parameter    string          `json:"parameter"`
	BaselineMean *float64        `json:"baseline_mean,omitempty"`
	MonthlyMean  *float64        `json:"monthly_mean,omitempty"`
	Status       DeviationStatus `json:"status"`
}
