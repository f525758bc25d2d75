package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"engcli/internal/config"
	apperrors "engcli/internal/errors"
	"engcli/internal/infrastructure"
	"engcli/internal/journal"
	"engcli/internal/operations"
	"engcli/internal/validation"
	"engcli/pkg/contracts/domain"
)

// Request names the inputs of one run
type Request struct {
	// StorePath is the database directory holding the history outputs
	StorePath string `validate:"required"`
	// BundlePath is a zip archive or directory of raw log files
	BundlePath string `validate:"required"`
	// EventsPath is the events workbook; empty skips event ingestion
	EventsPath string
	// Concatenate merges with prior outputs instead of replacing them
	Concatenate bool
	// ConfigFile is an optional YAML configuration file
	ConfigFile string
}

// Mode returns the run mode selected by the request
func (r Request) Mode() domain.RunMode {
	if r.Concatenate {
		return domain.RunModeConcatenate
	}
	return domain.RunModeReplace
}

// Result describes a finished run
type Result struct {
	Run         *domain.Run
	Diagnostics []domain.Diagnostic
	Operation   *operations.OperationResponse
}

// Application holds the process-wide dependencies of the engine
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry

	validate *validator.Validate
}

// New creates an application. A nil telemetry disables metrics and traces
// through the global no-op provider.
func New(cfg *config.Config, logger *slog.Logger, telemetry *infrastructure.Telemetry) *Application {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry,
		validate:  validator.New(),
	}
}

// Run loads the configuration, initializes logging and telemetry and
// processes req
func Run(ctx context.Context, req Request) (*Result, error) {
	cfg, err := config.Load(req.ConfigFile)
	if err != nil {
		return nil, err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize logger", err)
	}
	defer infrastructure.CloseLogFile()

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize telemetry", err)
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Starting engcli",
		slog.String("version", config.AppVersion),
		slog.String("config", cfg.String()))

	return New(cfg, logger, telemetry).Process(ctx, req)
}

// Process runs the pipeline once for req. The returned result is non-nil
// whenever the run got far enough to be journaled, including failed runs.
func (a *Application) Process(ctx context.Context, req Request) (*Result, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("invalid run request", err)
	}

	check := validation.NewFileValidator(a.Logger)
	if err := check.ValidateBundle(req.BundlePath); err != nil {
		return nil, err
	}
	if req.EventsPath != "" {
		if err := check.ValidateExcelFile(req.EventsPath); err != nil {
			return nil, err
		}
	}

	paths := config.NewPaths(req.StorePath, a.Config.Layout, a.Config.Journal)
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}
	if err := check.ValidateOutputDirectory(paths.DatabaseDir); err != nil {
		return nil, err
	}

	lk, err := loadLookups(ctx, paths, a.Logger)
	if err != nil {
		return nil, err
	}
	paths.LogPathResolution(a.Logger)

	run := &domain.Run{
		ID:        infrastructure.GenerateRunID(),
		Mode:      req.Mode(),
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	ctx = infrastructure.WithRunID(ctx, run.ID)

	p := newPipeline(req, a.Config, paths, lk, a.Logger, a.Telemetry)
	steps, err := p.registry()
	if err != nil {
		return nil, err
	}

	var jr *journal.Journal
	if paths.Journal != "" {
		jr, err = journal.Open(paths.Journal, a.Logger)
		if err != nil {
			return nil, err
		}
		defer jr.Close()
		if err := jr.StartRun(ctx, run); err != nil {
			return nil, err
		}
	}

	resp, runErr := operations.NewManager(steps, a.Telemetry, a.Logger).Execute(ctx, run.ID)

	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.Metrics = p.metrics
	run.Metrics.Diagnostics = len(p.diagnostics)
	run.Metrics.AssetsSkipped = p.skippedAssets()
	run.Status = domain.RunStatusCompleted
	if runErr != nil {
		run.Status = domain.RunStatusFailed
		run.Error = runErr.Error()
	}
	a.Telemetry.RecordRun(ctx, run)

	if jr != nil {
		if err := a.finishJournal(ctx, jr, run, p.diagnostics); err != nil && runErr == nil {
			runErr = err
		}
	}

	a.Logger.InfoContext(ctx, "Run finished",
		slog.String("status", string(run.Status)),
		slog.Int("assets_processed", run.Metrics.AssetsProcessed),
		slog.Int("history_rows", run.Metrics.HistoryRows),
		slog.Int("diagnostics", run.Metrics.Diagnostics),
		slog.Duration("duration", completed.Sub(run.StartedAt)))

	return &Result{Run: run, Diagnostics: p.diagnostics, Operation: resp}, runErr
}

func (a *Application) finishJournal(ctx context.Context, jr *journal.Journal, run *domain.Run, diags []domain.Diagnostic) error {
	// a cancelled run is still recorded
	ctx = context.WithoutCancel(ctx)
	if err := jr.AddDiagnostics(ctx, run.ID, diags); err != nil {
		return fmt.Errorf("journal diagnostics: %w", err)
	}
	if err := jr.FinishRun(ctx, run); err != nil {
		return fmt.Errorf("journal finish: %w", err)
	}
	return nil
}
