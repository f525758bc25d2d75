package app

import (
	"context"
	"fmt"
	"log/slog"

	"engcli/internal/cleaning"
	"engcli/internal/config"
	"engcli/internal/dataprocessing"
	"engcli/internal/derived"
	"engcli/internal/events"
	"engcli/internal/exporter"
	"engcli/internal/files"
	"engcli/internal/harmonize"
	"engcli/internal/infrastructure"
	"engcli/internal/maintenance"
	"engcli/internal/operations"
	"engcli/internal/store"
	"engcli/internal/table"
	"engcli/internal/trend"
	"engcli/pkg/contracts/domain"
)

// historyKeys order every emitted reading and event table
var historyKeys = []string{domain.ColAsset, domain.ColTimestamp}

// pipeline holds the inputs, collaborators and intermediate tables of one run.
// Steps run one at a time, so its fields need no locking.
type pipeline struct {
	req       Request
	cfg       *config.Config
	paths     *config.Paths
	lookups   *lookups
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry

	harmonizer *harmonize.Harmonizer
	rules      *derived.Registry
	splitter   derived.Splitter
	writer     *exporter.CSVWriter
	history    *store.Store
	eventStore *store.Store

	current     *table.Table
	merged      *table.Table
	forecast    maintenance.Result
	trends      trend.Result
	events      *table.Table
	metrics     domain.RunMetrics
	diagnostics []domain.Diagnostic
}

func newPipeline(req Request, cfg *config.Config, paths *config.Paths, lk *lookups,
	logger *slog.Logger, telemetry *infrastructure.Telemetry) *pipeline {

	writer := exporter.NewCSVWriter(infrastructure.WithComponent(logger, "exporter"))
	return &pipeline{
		req:       req,
		cfg:       cfg,
		paths:     paths,
		lookups:   lk,
		logger:    logger,
		telemetry: telemetry,

		harmonizer: harmonize.New(harmonize.DefaultSynonyms(), lk.script.Overrides,
			cfg.Pipeline.EssentialColumns, infrastructure.WithComponent(logger, "harmonize")),
		rules:    derived.DefaultRegistry(),
		splitter: derived.DefaultSplitter(),
		writer:   writer,
		history: store.New(store.Options{
			Path:          paths.HistoryOutput,
			Columns:       historyKeys,
			RetentionDays: cfg.Pipeline.RetentionDays,
			SortKeys:      historyKeys,
		}, writer, infrastructure.WithComponent(logger, "history")),
		eventStore: store.New(store.Options{
			Path:     paths.EventsOutput,
			Columns:  domain.EventColumns,
			SortKeys: historyKeys,
		}, writer, infrastructure.WithComponent(logger, "events")),
	}
}

// registry declares the steps of a run and their dependencies
func (p *pipeline) registry() (*operations.Registry, error) {
	r := operations.NewRegistry()
	steps := []operations.Step{
		operations.NewStep(domain.StepIDIngest, domain.StepNameIngest, nil, p.ingest),
		operations.NewStep(domain.StepIDMerge, domain.StepNameMerge,
			[]string{domain.StepIDIngest}, p.merge),
		operations.NewStep(domain.StepIDMaintenance, domain.StepNameMaintenance,
			[]string{domain.StepIDMerge}, p.forecastMaintenance),
		operations.NewStep(domain.StepIDTrend, domain.StepNameTrend,
			[]string{domain.StepIDMerge}, p.computeTrend),
		operations.NewStep(domain.StepIDEvents, domain.StepNameEvents, nil, p.processEvents),
		operations.NewStep(domain.StepIDWrite, domain.StepNameWrite,
			[]string{domain.StepIDMaintenance, domain.StepIDTrend, domain.StepIDEvents}, p.write),
	}
	for _, s := range steps {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// diagnose records a data gap of one asset
func (p *pipeline) diagnose(ctx context.Context, asset, stage, reason string) {
	p.diagnostics = append(p.diagnostics, domain.Diagnostic{Asset: asset, Stage: stage, Reason: reason})
	p.telemetry.RecordSkip(ctx, stage)
	p.logger.WarnContext(ctx, "Asset data gap",
		slog.String("asset", asset),
		slog.String("stage", stage),
		slog.String("reason", reason))
}

func (p *pipeline) addDiagnostics(ctx context.Context, diags []domain.Diagnostic) {
	p.diagnostics = append(p.diagnostics, diags...)
	for _, d := range diags {
		p.telemetry.RecordSkip(ctx, d.Stage)
	}
}

// ingest reads every log of the bundle into the canonical current batch
func (p *pipeline) ingest(ctx context.Context, _ *operations.OperationState) error {
	bundle, err := files.OpenBundle(p.req.BundlePath)
	if err != nil {
		return err
	}
	defer bundle.Close()

	for _, name := range bundle.Skipped() {
		p.diagnose(ctx, name, domain.StageIngest, "no serial in log file name")
	}

	current := table.Empty()
	for _, f := range bundle.Files() {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := p.readLog(bundle, f)
		if err != nil {
			p.diagnose(ctx, f.Serial, domain.StageIngest, fmt.Sprintf("unreadable log %s: %v", f.Name, err))
			continue
		}
		p.metrics.LogFiles++

		for _, part := range p.splitter.Split(f.Serial, raw) {
			prepared, ok, err := p.prepare(ctx, part.Asset, part.Table)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if current, err = store.Merge(current, prepared); err != nil {
				return fmt.Errorf("batch asset %s: %w", part.Asset, err)
			}
		}
	}

	p.current = current
	if current.Has(domain.ColAsset) {
		p.metrics.AssetsProcessed = len(current.Unique(domain.ColAsset))
	}
	p.logger.InfoContext(ctx, "Logs ingested",
		slog.Int("files", p.metrics.LogFiles),
		slog.Int("assets", p.metrics.AssetsProcessed),
		slog.Int("rows", current.Len()))
	return nil
}

func (p *pipeline) readLog(bundle *files.Bundle, f files.FileInfo) (*table.Table, error) {
	r, err := bundle.Open(f)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return dataprocessing.ReadLog(r)
}

// prepare turns one asset's raw log into canonical typed rows tagged with
// the asset. It reports false when the asset is skipped.
func (p *pipeline) prepare(ctx context.Context, asset string, raw *table.Table) (*table.Table, bool, error) {
	if !p.lookups.assets.Contains(asset) {
		p.diagnose(ctx, asset, domain.StageIngest, "asset not in registry")
		return nil, false, nil
	}

	harmonized, report, err := p.harmonizer.Harmonize(ctx, raw, asset)
	if err != nil {
		return nil, false, err
	}
	for _, missing := range report.Missing {
		p.diagnose(ctx, asset, domain.StageHarmonize, "missing essential column "+missing)
	}

	keep := p.rules.AdditionalColumns(p.harmonizer.Canonical(), asset)
	typed := cleaning.DefineTypes(harmonized, keep)
	if ts := typed.Column(domain.ColTimestamp); ts == nil || ts.NullCount() == ts.Len() {
		p.diagnose(ctx, asset, domain.StageIngest, "no parseable timestamps")
		return nil, false, nil
	}

	scrubbed := cleaning.Scrub(typed, p.lookups.script.ReadingsDenylist)
	assets := make([]string, scrubbed.Len())
	for i := range assets {
		assets[i] = asset
	}
	tagged := scrubbed.MustWith(table.TextColumn(domain.ColAsset, assets))
	return tagged.Select(append([]string{domain.ColAsset}, scrubbed.Names()...)), true, nil
}

// merge derives the current-period columns and folds the batch into the
// retained prior history
func (p *pipeline) merge(ctx context.Context, _ *operations.OperationState) error {
	current, err := p.rules.RunCurrent(p.current)
	if err != nil {
		return err
	}
	current = derived.BankSpread(current)

	prior := table.Empty(historyKeys...)
	if p.req.Concatenate {
		if prior, err = p.history.Load(ctx); err != nil {
			return err
		}
	}

	merged, err := store.Merge(prior, current)
	if err != nil {
		return err
	}
	p.merged = store.Dedup(merged).SortBy(historyKeys...)

	p.logger.InfoContext(ctx, "History merged",
		slog.Int("prior_rows", prior.Len()),
		slog.Int("batch_rows", current.Len()),
		slog.Int("rows", p.merged.Len()))
	return nil
}

func (p *pipeline) forecastMaintenance(ctx context.Context, _ *operations.OperationState) error {
	engine := maintenance.NewEngine(p.cfg.Pipeline.ForecastBoundYears,
		infrastructure.WithComponent(p.logger, "maintenance"))
	p.forecast = engine.Forecast(ctx, p.merged, p.lookups.assets, p.lookups.plan, p.lookups.shifts)
	p.addDiagnostics(ctx, p.forecast.Diagnostics)
	p.metrics.ForecastRecords = len(p.forecast.Records)
	return ctx.Err()
}

func (p *pipeline) computeTrend(ctx context.Context, _ *operations.OperationState) error {
	engine := trend.NewEngine(p.cfg.Pipeline.TrendParameters, infrastructure.WithComponent(p.logger, "trend"))
	p.trends = engine.Run(ctx, p.merged)
	p.metrics.Comments = len(p.trends.Comments)
	return ctx.Err()
}

// processEvents merges the events workbook into the prior events. Without a
// workbook the prior events are carried over unchanged.
func (p *pipeline) processEvents(ctx context.Context, _ *operations.OperationState) error {
	prior := table.Empty(domain.EventColumns...)
	if p.req.Concatenate {
		var err error
		if prior, err = p.eventStore.Load(ctx); err != nil {
			return err
		}
	}

	if p.req.EventsPath == "" {
		p.logger.InfoContext(ctx, "No events workbook, keeping prior events",
			slog.Int("rows", prior.Len()))
		p.events = prior
		return nil
	}

	proc := events.NewProcessor(config.SheetEventSummary, p.lookups.script.EventsDenylist,
		infrastructure.WithComponent(p.logger, "events"))
	res, err := proc.Process(ctx, p.req.EventsPath, p.lookups.assets, prior)
	if err != nil {
		return err
	}
	p.addDiagnostics(ctx, res.Diagnostics)
	p.events = res.Events
	return nil
}

// write replaces every output file. It runs only after all computing steps
// succeeded.
func (p *pipeline) write(ctx context.Context, _ *operations.OperationState) error {
	var err error
	if p.metrics.HistoryRows, err = p.history.Save(ctx, p.merged); err != nil {
		return err
	}
	p.telemetry.RecordRows(ctx, "history", p.metrics.HistoryRows)

	if p.metrics.EventRows, err = p.eventStore.Save(ctx, p.events); err != nil {
		return err
	}
	p.telemetry.RecordRows(ctx, "events", p.metrics.EventRows)

	outputs := []struct {
		name  string
		path  string
		table *table.Table
	}{
		{"maintenance", p.paths.MaintenanceOutput, maintenance.Table(p.forecast.Records)},
		{"baseline", p.paths.Baseline, trend.BaselineTable(p.trends.Baseline)},
		{"monthly", p.paths.Monthly, trend.MonthlyTable(p.trends.Monthly)},
		{"comments", p.paths.Comments, trend.CommentsTable(p.trends.Comments)},
	}
	for _, out := range outputs {
		rows, err := p.writer.WriteTable(ctx, out.path, out.table)
		if err != nil {
			return err
		}
		p.telemetry.RecordRows(ctx, out.name, rows)
	}
	return nil
}

// skippedAssets counts the distinct assets dropped by a stage. Missing
// essential columns are reported without dropping the asset.
func (p *pipeline) skippedAssets() int {
	skipped := make(map[string]bool)
	for _, d := range p.diagnostics {
		if d.Stage != domain.StageHarmonize {
			skipped[d.Asset] = true
		}
	}
	return len(skipped)
}
