package domain

import (
	"time"
)

// Run is one batch invocation of the processor, as recorded in the run journal.
type Run struct {
	ID          string     `json:"id" db:"id" validate:"required,uuid"`
	Mode        RunMode    `json:"mode" db:"mode" validate:"required,oneof=concatenate replace"`
	Status      RunStatus  `json:"status" db:"status"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Metrics     RunMetrics `json:"metrics" db:"metrics"`
	Error       string     `json:"error,omitempty" db:"error"`
}

// RunMode selects whether prior history is merged or replaced
type RunMode string

const (
	RunModeConcatenate RunMode = "concatenate"
	RunModeReplace     RunMode = "replace"
)

// RunStatus represents the status of a run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunMetrics counts what a run processed and produced
type RunMetrics struct {
	LogFiles        int `json:"log_files" db:"log_files"`
	AssetsProcessed int `json:"assets_processed" db:"assets_processed"`
	AssetsSkipped   int `json:"assets_skipped" db:"assets_skipped"`
	HistoryRows     int `json:"history_rows" db:"history_rows"`
	EventRows       int `json:"event_rows" db:"event_rows"`
	ForecastRecords int `json:"forecast_records" db:"forecast_records"`
	Comments        int `json:"comments" db:"comments"`
	Diagnostics     int `json:"diagnostics" db:"diagnostics"`
}

// StepStatus represents the status of a step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// Step identifiers
const (
	StepIDIngest      = "ingest"
	StepIDMerge       = "merge"
	StepIDMaintenance = "maintenance"
	StepIDTrend       = "trend"
	StepIDEvents      = "events"
	StepIDWrite       = "write"
)

// Step names
const (
	StepNameIngest      = "Log Ingestion"
	StepNameMerge       = "History Merge"
	StepNameMaintenance = "Maintenance Forecast"
	StepNameTrend       = "Trend Baseline"
	StepNameEvents      = "Events Processing"
	StepNameWrite       = "Output Emission"
)

// Diagnostic stages
const (
	StageHarmonize   = "harmonize"
	StageIngest      = "ingest"
	StageMaintenance = "maintenance"
	StageEvents      = "events"
)

// Diagnostic is a non-fatal data gap found while processing one asset.
type Diagnostic struct {
	Asset  string `json:"asset"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}
