package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "engcli/internal/errors"
)

// Paths contains every file location of one run. It is derived from the
// database directory and is the single source of truth for file paths.
type Paths struct {
	DatabaseDir string
	InfoDir     string
	TrendDir    string

	// Lookup workbooks
	AssetInfo        string
	ConfigScript     string
	MaintenanceShift string
	MaintenancePlan  string

	// Outputs
	HistoryOutput     string
	EventsOutput      string
	MaintenanceOutput string
	Baseline          string
	Monthly           string
	Comments          string
	Journal           string

	// Shared holds the resolved shared paths by entry name
	Shared map[string]string

	layout LayoutConfig
}

// SharedPath is one named path of the shared paths sheet
type SharedPath struct {
	Name string
	Path string
}

// NewPaths derives the layout around a database directory. Lookup workbooks
// and the trend folder are siblings of the database directory.
func NewPaths(databaseDir string, layout LayoutConfig, journal JournalConfig) *Paths {
	databaseDir = filepath.Clean(databaseDir)
	parent := filepath.Dir(databaseDir)
	infoDir := filepath.Join(parent, layout.InfoDir)
	trendDir := filepath.Join(parent, layout.TrendDir)

	p := &Paths{
		DatabaseDir: databaseDir,
		InfoDir:     infoDir,
		TrendDir:    trendDir,

		AssetInfo:        filepath.Join(infoDir, layout.AssetInfoFile),
		ConfigScript:     filepath.Join(infoDir, layout.ConfigFile),
		MaintenanceShift: filepath.Join(infoDir, layout.ShiftFile),

		HistoryOutput:     filepath.Join(databaseDir, layout.HistoryFile),
		EventsOutput:      filepath.Join(databaseDir, layout.EventsFile),
		MaintenanceOutput: filepath.Join(databaseDir, layout.MaintenanceFile),
		Baseline:          filepath.Join(trendDir, layout.BaselineFile),
		Monthly:           filepath.Join(trendDir, layout.MonthlyFile),
		Comments:          filepath.Join(trendDir, layout.CommentsFile),

		Shared: make(map[string]string),
		layout: layout,
	}
	if journal.Enabled {
		p.Journal = filepath.Join(databaseDir, journal.FileName)
	}
	return p
}

// ResolveShared resolves the shared path entries. A path that exists is used
// as is. Otherwise the part after the shared root folder is re-rooted under
// this operator's copy of that folder, taken from the database directory.
// Any entry that resolves to nothing is a configuration error.
func (p *Paths) ResolveShared(entries []SharedPath) error {
	for _, e := range entries {
		resolved, err := p.resolveShared(e)
		if err != nil {
			return err
		}
		p.Shared[e.Name] = resolved
	}
	if plan, ok := p.Shared[p.layout.PlanPathKey]; ok {
		p.MaintenancePlan = plan
	}
	return nil
}

func (p *Paths) resolveShared(e SharedPath) (string, error) {
	if FileExists(e.Path) {
		return e.Path, nil
	}
	root := p.layout.SharedRoot
	configErr := func(final string) error {
		return apperrors.NewConfigError(fmt.Sprintf("shared path %q could not be resolved", e.Name), nil).
			WithContext("configured", e.Path).
			WithContext("resolved", final)
	}
	if root == "" {
		return "", configErr("")
	}

	_, rel, inPath := strings.Cut(filepath.ToSlash(e.Path), root)
	userPrefix, _, inDB := strings.Cut(filepath.ToSlash(p.DatabaseDir), root)
	if !inPath || !inDB {
		return "", configErr("")
	}
	final := filepath.FromSlash(userPrefix + root + rel)
	if !FileExists(final) {
		return "", configErr(final)
	}
	return final, nil
}

// RequireMaintenancePlan returns the plan workbook path or a configuration
// error when the shared paths did not name one.
func (p *Paths) RequireMaintenancePlan() (string, error) {
	if p.MaintenancePlan == "" {
		return "", apperrors.NewConfigError(
			fmt.Sprintf("shared path %q for the maintenance plan is not configured", p.layout.PlanPathKey), nil)
	}
	return p.MaintenancePlan, nil
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DatabaseDir, p.TrendDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to create directory %s", dir), err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved layout for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("database", p.DatabaseDir),
			slog.String("info", p.InfoDir),
			slog.String("trend", p.TrendDir),
		),
		slog.Group("lookups",
			slog.String("asset_info", p.AssetInfo),
			slog.String("config_script", p.ConfigScript),
			slog.String("maintenance_shift", p.MaintenanceShift),
			slog.String("maintenance_plan", p.MaintenancePlan),
		),
		slog.Group("outputs",
			slog.String("history", p.HistoryOutput),
			slog.String("events", p.EventsOutput),
			slog.String("maintenance", p.MaintenanceOutput),
			slog.String("trend_dir", p.TrendDir),
			slog.String("journal", p.Journal),
		))
}
