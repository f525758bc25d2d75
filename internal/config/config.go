package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "engcli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Layout    LayoutConfig    `yaml:"layout" envconfig:"LAYOUT"`
	Journal   JournalConfig   `yaml:"journal" envconfig:"JOURNAL"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PipelineConfig tunes the processing stages
type PipelineConfig struct {
	// RetentionDays bounds how far back the merged history reaches
	RetentionDays int `yaml:"retention_days" envconfig:"RETENTION_DAYS" validate:"min=1"`
	// EssentialColumns are the canonical columns whose absence is reported per asset
	EssentialColumns []string `yaml:"essential_columns" envconfig:"ESSENTIAL_COLUMNS" validate:"dive,required"`
	// ForecastBoundYears limits projected due dates to now plus or minus this many years
	ForecastBoundYears int `yaml:"forecast_bound_years" envconfig:"FORECAST_BOUND_YEARS" validate:"min=1"`
	// TrendParameters are the columns summarized by the trend baseline
	TrendParameters []string `yaml:"trend_parameters" envconfig:"TREND_PARAMETERS" validate:"min=1,dive,required"`
}

// LayoutConfig names the folders, workbooks and output files around the
// database directory.
type LayoutConfig struct {
	InfoDir         string `yaml:"info_dir" envconfig:"INFO_DIR" validate:"required"`
	TrendDir        string `yaml:"trend_dir" envconfig:"TREND_DIR" validate:"required"`
	AssetInfoFile   string `yaml:"asset_info_file" envconfig:"ASSET_INFO_FILE" validate:"required"`
	ConfigFile      string `yaml:"config_file" envconfig:"CONFIG_FILE" validate:"required"`
	ShiftFile       string `yaml:"shift_file" envconfig:"SHIFT_FILE" validate:"required"`
	HistoryFile     string `yaml:"history_file" envconfig:"HISTORY_FILE" validate:"required"`
	EventsFile      string `yaml:"events_file" envconfig:"EVENTS_FILE" validate:"required"`
	MaintenanceFile string `yaml:"maintenance_file" envconfig:"MAINTENANCE_FILE" validate:"required"`
	BaselineFile    string `yaml:"baseline_file" envconfig:"BASELINE_FILE" validate:"required"`
	MonthlyFile     string `yaml:"monthly_file" envconfig:"MONTHLY_FILE" validate:"required"`
	CommentsFile    string `yaml:"comments_file" envconfig:"COMMENTS_FILE" validate:"required"`
	PlanPathKey     string `yaml:"plan_path_key" envconfig:"PLAN_PATH_KEY" validate:"required"`
	SharedRoot      string `yaml:"shared_root" envconfig:"SHARED_ROOT"`
}

// JournalConfig controls the SQLite run journal
type JournalConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"ENABLED"`
	FileName string `yaml:"file_name" envconfig:"FILE_NAME" validate:"required_if=Enabled true"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	// Tracing selects the span exporter
	Tracing string `yaml:"tracing" envconfig:"TRACING" validate:"oneof=none stdout"`
	// MetricsFile is the Prometheus textfile written after each run; empty disables it
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and
// ENGCLI_* environment variables, in increasing precedence, then validates it.
// An empty path skips the file; a path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).
				WithContext("path", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the fields present in a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/engcli.log",
		},
		Pipeline: PipelineConfig{
			RetentionDays:      DefaultRetentionDays,
			EssentialColumns:   []string{"Timestamp", "Load", "SMH", "Total_Fuel"},
			ForecastBoundYears: DefaultForecastBoundYears,
			TrendParameters: []string{
				"Batt", "Boost", "Coolant_Temp", "Crank_Press", "EXH_DIFF", "EXH_L",
				"EXH_R", "Fuel_Press", "Fuel_Rate", "Inlet_Air_Temp", "Oil_Press", "Oil_Temp",
			},
		},
		Layout: LayoutConfig{
			InfoDir:         InfoDirName,
			TrendDir:        TrendDirName,
			AssetInfoFile:   AssetInfoFileName,
			ConfigFile:      ConfigScriptFileName,
			ShiftFile:       MaintenanceShiftFileName,
			HistoryFile:     HistoryOutputFileName,
			EventsFile:      EventsOutputFileName,
			MaintenanceFile: MaintenanceOutputFileName,
			BaselineFile:    BaselineFileName,
			MonthlyFile:     MonthlyFileName,
			CommentsFile:    CommentsFileName,
			PlanPathKey:     MaintenancePlanPathKey,
			SharedRoot:      SharedRootName,
		},
		Journal: JournalConfig{
			Enabled:  true,
			FileName: JournalFileName,
		},
		Telemetry: TelemetryConfig{
			Tracing: "none",
		},
	}
}

// String implements fmt.Stringer for log output
func (c *Config) String() string {
	return fmt.Sprintf("Config{log=%s/%s retention=%dd journal=%t tracing=%s}",
		c.Logging.Level, c.Logging.Output, c.Pipeline.RetentionDays, c.Journal.Enabled, c.Telemetry.Tracing)
}
