package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engcli/internal/config"
	apperrors "engcli/internal/errors"
	"engcli/internal/journal"
	"engcli/internal/shared/testutil"
	"engcli/pkg/contracts/domain"
)

const (
	assetA = "AAAA0001"
	assetB = "BBBB0002"
)

const logHeader = "Sample Time,Engine Load Factor [%],Run Hours [Hrs],Total Fuel [L]," +
	"Battery Voltage [volts],Left Exhaust Temperature [Deg. C],Right Exhaust Temperature [Deg. C]"

// site is a database directory with its sibling lookup folder
type site struct {
	root    string
	db      string
	logs    string
	events  string
	plan    string
	history string
}

// newSite lays out two registered assets. Only assetA's model has a plan.
func newSite(t *testing.T, withPlanPath bool) site {
	t.Helper()
	root := t.TempDir()
	s := site{
		root:   root,
		db:     filepath.Join(root, "DB"),
		logs:   filepath.Join(root, "logs"),
		events: filepath.Join(root, "events.xlsx"),
		plan:   filepath.Join(root, "shared", "plan.xlsx"),
	}
	s.history = filepath.Join(s.db, config.HistoryOutputFileName)
	info := filepath.Join(root, config.InfoDirName)

	testutil.WriteWorkbook(t, filepath.Join(info, config.AssetInfoFileName),
		testutil.Sheet{Name: config.SheetAssetList, Rows: [][]any{
			{"Serial", "Model", "Vessel"},
			{assetA, "3512C", "Boat 1"},
			{assetB, "C18", "Boat 2"},
		}})

	shared := [][]any{{"Nome", "Caminho"}}
	if withPlanPath {
		shared = append(shared, []any{config.MaintenancePlanPathKey, s.plan})
	}
	testutil.WriteWorkbook(t, filepath.Join(info, config.ConfigScriptFileName),
		testutil.Sheet{Name: config.SheetRenameList, Rows: [][]any{{"SN", "Nome da coluna", "Renomear para"}}},
		testutil.Sheet{Name: config.SheetInvalidData, Rows: [][]any{{"Valor"}, {-9999}}},
		testutil.Sheet{Name: config.SheetInvalidEvents, Rows: [][]any{{"Valor"}, {"Test Alert"}}},
		testutil.Sheet{Name: config.SheetSharedPaths, Rows: shared},
	)

	testutil.WriteWorkbook(t, s.plan,
		testutil.Sheet{Name: config.SheetPlanByModel, Rows: [][]any{
			{"Model", "Maintenance Name", "Maintenance Type", "Target SMH", "Target Fuel (L)"},
			{"3512C", "PM 250", "Oil", 250, 50000},
		}})

	testutil.WriteWorkbook(t, filepath.Join(info, config.MaintenanceShiftFileName),
		testutil.Sheet{Name: config.SheetShiftBySerial, Rows: [][]any{
			{"SN", "Maintenance Name", "Run Hours", "Total Fuel (L)", "Date"},
		}})

	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -10)
	writeLog(t, filepath.Join(s.logs, "ENG_"+assetA+".csv"), start, 800)
	writeLog(t, filepath.Join(s.logs, "ENG_"+assetB+".csv"), start, 4000)
	testutil.WriteText(t, filepath.Join(s.logs, "notes.csv"), "not a log\n")

	testutil.WriteWorkbook(t, s.events,
		testutil.Sheet{Name: config.SheetEventSummary, Rows: [][]any{
			{"Unit Name", "High Severity Count", "Medium Severity Count", "Low Severity Count"},
			{"Boat 1 - " + assetA, 1, 0, 0},
			{"Totals", 1, 0, 0},
		}},
		testutil.Sheet{Name: "Boat 1 - " + assetA, Rows: [][]any{
			{"Sample Time", "Type", "Source", "Code", "Severity", "Description"},
			{start.Add(9 * time.Hour).Format("2006-01-02 15:04:05"), "Event", "ECM", 111, "High", "Overspeed"},
			{start.Add(10 * time.Hour).Format("2006-01-02 15:04:05"), "Event", "ECM", 222, "Low", "Test Alert"},
		}},
	)
	return s
}

// writeLog writes ten days of two readings each; run-hours grow 5 per day
func writeLog(t *testing.T, path string, start time.Time, smh float64) {
	t.Helper()
	lines := []string{logHeader}
	for d := 0; d < 10; d++ {
		day := start.AddDate(0, 0, d)
		for i, hour := range []int{8, 13} {
			ts := day.Add(time.Duration(hour) * time.Hour).Format("2006-01-02 15:04:05")
			hours := smh + float64(10*d+5*i)
			fuel := 20000 + float64(400*d+200*i)
			lines = append(lines, fmt.Sprintf("%s,%d,%.1f,%.1f,24.1,%d,%d", ts, 40+5*i, hours, fuel, 410+i, 400))
		}
	}
	testutil.WriteUTF16CSV(t, path, lines...)
}

func newApp(t *testing.T) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return New(config.Default(), logger, nil)
}

func hasDiagnostic(diags []domain.Diagnostic, asset, stage, reason string) bool {
	for _, d := range diags {
		if d.Asset == asset && d.Stage == stage && strings.Contains(d.Reason, reason) {
			return true
		}
	}
	return false
}

func TestProcessTwoAssets(t *testing.T) {
	s := newSite(t, true)
	ctx := context.Background()

	res, err := newApp(t).Process(ctx, Request{
		StorePath:  s.db,
		BundlePath: s.logs,
		EventsPath: s.events,
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, domain.RunStatusCompleted, res.Run.Status)
	assert.Equal(t, domain.RunModeReplace, res.Run.Mode)
	assert.Equal(t, 2, res.Run.Metrics.LogFiles)
	assert.Equal(t, 2, res.Run.Metrics.AssetsProcessed)
	assert.Equal(t, 40, res.Run.Metrics.HistoryRows)
	assert.Equal(t, 1, res.Run.Metrics.ForecastRecords)

	t.Run("forecast", func(t *testing.T) {
		lines := testutil.ReadLines(t, filepath.Join(s.db, config.MaintenanceOutputFileName))
		require.Len(t, lines, 2)
		fields := strings.Split(lines[1], ",")
		assert.Equal(t, []string{assetA, "PM 250", "Oil"}, fields[:3])
		assert.NotEmpty(t, fields[3], "hours-based due date")

		assert.True(t, hasDiagnostic(res.Diagnostics, assetB, domain.StageMaintenance, "no maintenance plan"))
	})

	t.Run("history", func(t *testing.T) {
		lines := testutil.ReadLines(t, s.history)
		require.Len(t, lines, 41)
		header := strings.Split(lines[0], ",")
		assert.Equal(t, []string{domain.ColAsset, domain.ColTimestamp}, header[:2])
		assert.Contains(t, header, domain.ColExhDiff)
		assert.True(t, strings.HasPrefix(lines[1], assetA+","))
		assert.True(t, strings.HasPrefix(lines[40], assetB+","))
	})

	t.Run("events", func(t *testing.T) {
		lines := testutil.ReadLines(t, filepath.Join(s.db, config.EventsOutputFileName))
		require.Len(t, lines, 3)
		assert.Contains(t, lines[1], "Overspeed")
		assert.NotContains(t, lines[2], "Test Alert")
	})

	t.Run("trend", func(t *testing.T) {
		trendDir := filepath.Join(s.root, config.TrendDirName)
		for _, name := range []string{config.BaselineFileName, config.MonthlyFileName, config.CommentsFileName} {
			assert.FileExists(t, filepath.Join(trendDir, name))
		}
		assert.Greater(t, len(testutil.ReadLines(t, filepath.Join(trendDir, config.BaselineFileName))), 1)
	})

	t.Run("diagnostics", func(t *testing.T) {
		assert.True(t, hasDiagnostic(res.Diagnostics, "notes.csv", domain.StageIngest, "no serial"))
		assert.Equal(t, len(res.Diagnostics), res.Run.Metrics.Diagnostics)
	})

	t.Run("journal", func(t *testing.T) {
		jr, err := journal.Open(filepath.Join(s.db, config.JournalFileName), nil)
		require.NoError(t, err)
		defer jr.Close()

		run, err := jr.Run(ctx, res.Run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RunStatusCompleted, run.Status)
		assert.Equal(t, 40, run.Metrics.HistoryRows)

		diags, err := jr.Diagnostics(ctx, res.Run.ID)
		require.NoError(t, err)
		assert.Len(t, diags, len(res.Diagnostics))
	})
}

func TestProcessConcatenateDeduplicates(t *testing.T) {
	s := newSite(t, true)
	app := newApp(t)
	req := Request{StorePath: s.db, BundlePath: s.logs, EventsPath: s.events, Concatenate: true}

	for i := 0; i < 2; i++ {
		res, err := app.Process(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, domain.RunModeConcatenate, res.Run.Mode)
	}

	assert.Len(t, testutil.ReadLines(t, s.history), 41)
	assert.Len(t, testutil.ReadLines(t, filepath.Join(s.db, config.EventsOutputFileName)), 3)
}

func TestProcessFailedRunKeepsOutputs(t *testing.T) {
	s := newSite(t, true)
	app := newApp(t)
	ctx := context.Background()

	_, err := app.Process(ctx, Request{StorePath: s.db, BundlePath: s.logs})
	require.NoError(t, err)
	before, err := os.ReadFile(s.history)
	require.NoError(t, err)

	corrupt := filepath.Join(s.root, "corrupt.zip")
	testutil.WriteText(t, corrupt, "not a zip archive")

	res, err := app.Process(ctx, Request{StorePath: s.db, BundlePath: corrupt})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	require.NotNil(t, res)
	assert.Equal(t, domain.RunStatusFailed, res.Run.Status)
	assert.Equal(t, domain.StepStatusSkipped, res.Operation.Steps[domain.StepIDWrite].GetStatus())

	after, err := os.ReadFile(s.history)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	runs, err := app.History(ctx, s.db, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, domain.RunStatusFailed, runs[0].Status)
	assert.NotEmpty(t, runs[0].Error)
	assert.Equal(t, domain.RunStatusCompleted, runs[1].Status)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("no journal yet", func(t *testing.T) {
		db := filepath.Join(t.TempDir(), "DB")
		_, err := newApp(t).History(ctx, db, 5)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
		assert.NoFileExists(t, filepath.Join(db, config.JournalFileName))
	})

	t.Run("journal disabled", func(t *testing.T) {
		cfg := config.Default()
		cfg.Journal.Enabled = false
		logger, _ := testutil.NewTestLogger(t)
		_, err := New(cfg, logger, nil).History(ctx, t.TempDir(), 5)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	})

	t.Run("limit", func(t *testing.T) {
		s := newSite(t, true)
		a := newApp(t)
		for i := 0; i < 3; i++ {
			_, err := a.Process(ctx, Request{StorePath: s.db, BundlePath: s.logs, Concatenate: true})
			require.NoError(t, err)
		}
		runs, err := a.History(ctx, s.db, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, domain.RunModeConcatenate, runs[0].Mode)
		assert.False(t, runs[0].StartedAt.Before(runs[1].StartedAt))
	})
}

func TestProcessRejectsBrokenSetup(t *testing.T) {
	t.Run("plan path not configured", func(t *testing.T) {
		s := newSite(t, false)
		_, err := newApp(t).Process(context.Background(), Request{StorePath: s.db, BundlePath: s.logs})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
		assert.NoFileExists(t, s.history)
	})

	t.Run("missing asset registry", func(t *testing.T) {
		s := newSite(t, true)
		require.NoError(t, os.Remove(filepath.Join(s.root, config.InfoDirName, config.AssetInfoFileName)))
		_, err := newApp(t).Process(context.Background(), Request{StorePath: s.db, BundlePath: s.logs})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	})

	t.Run("missing bundle", func(t *testing.T) {
		s := newSite(t, true)
		_, err := newApp(t).Process(context.Background(), Request{
			StorePath:  s.db,
			BundlePath: filepath.Join(s.root, "missing.zip"),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
		assert.NoFileExists(t, filepath.Join(s.db, config.JournalFileName))
	})

	t.Run("events file is not a workbook", func(t *testing.T) {
		s := newSite(t, true)
		_, err := newApp(t).Process(context.Background(), Request{
			StorePath:  s.db,
			BundlePath: s.logs,
			EventsPath: filepath.Join(s.logs, "notes.csv"),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("invalid request", func(t *testing.T) {
		_, err := newApp(t).Process(context.Background(), Request{})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestRequestMode(t *testing.T) {
	assert.Equal(t, domain.RunModeConcatenate, Request{Concatenate: true}.Mode())
	assert.Equal(t, domain.RunModeReplace, Request{}.Mode())
}
