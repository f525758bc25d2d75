package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "engcli/internal/errors"
)

func TestNewPaths(t *testing.T) {
	root := t.TempDir()
	db := filepath.Join(root, "01 - DB")
	cfg := Default()

	p := NewPaths(db, cfg.Layout, cfg.Journal)

	assert.Equal(t, filepath.Join(root, "00 - INFOS", "ASSET_INFO.xlsx"), p.AssetInfo)
	assert.Equal(t, filepath.Join(root, "00 - INFOS", "ConfigScript.xlsx"), p.ConfigScript)
	assert.Equal(t, filepath.Join(root, "00 - INFOS", "MAINTENANCE_SHIFT.xlsx"), p.MaintenanceShift)
	assert.Equal(t, filepath.Join(db, "history_output.csv"), p.HistoryOutput)
	assert.Equal(t, filepath.Join(db, "events_output.csv"), p.EventsOutput)
	assert.Equal(t, filepath.Join(db, "maintenance_output.csv"), p.MaintenanceOutput)
	assert.Equal(t, filepath.Join(root, "04 - TRENDBOT", "baseline.csv"), p.Baseline)
	assert.Equal(t, filepath.Join(root, "04 - TRENDBOT", "engs_statistics_monthly.csv"), p.Monthly)
	assert.Equal(t, filepath.Join(root, "04 - TRENDBOT", "comments.csv"), p.Comments)
	assert.Equal(t, filepath.Join(db, "run_journal.db"), p.Journal)

	cfg.Journal.Enabled = false
	assert.Empty(t, NewPaths(db, cfg.Layout, cfg.Journal).Journal)
}

func TestResolveSharedExistingPath(t *testing.T) {
	root := t.TempDir()
	plan := filepath.Join(root, "plan.xlsx")
	writeFile(t, plan, "x")

	cfg := Default()
	p := NewPaths(filepath.Join(root, "db"), cfg.Layout, cfg.Journal)
	require.NoError(t, p.ResolveShared([]SharedPath{{Name: "maintanance_plan", Path: plan}}))

	assert.Equal(t, plan, p.MaintenancePlan)
	got, err := p.RequireMaintenancePlan()
	require.NoError(t, err)
	assert.Equal(t, plan, got)
}

func TestResolveSharedRerootsUnderSharedRoot(t *testing.T) {
	home := t.TempDir()
	shared := filepath.Join(home, "operator", SharedRootName)
	db := filepath.Join(shared, "client", "01 - DB")
	plan := filepath.Join(shared, "plans", "plan.xlsx")
	writeFile(t, plan, "x")

	cfg := Default()
	p := NewPaths(db, cfg.Layout, cfg.Journal)
	configured := "/home/someone-else/" + SharedRootName + "/plans/plan.xlsx"

	require.NoError(t, p.ResolveShared([]SharedPath{{Name: "maintanance_plan", Path: configured}}))
	assert.Equal(t, plan, p.MaintenancePlan)
}

func TestResolveSharedFailure(t *testing.T) {
	cfg := Default()
	p := NewPaths(filepath.Join(t.TempDir(), "db"), cfg.Layout, cfg.Journal)

	err := p.ResolveShared([]SharedPath{{Name: "maintanance_plan", Path: "/nowhere/plan.xlsx"}})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))

	_, err = p.RequireMaintenancePlan()
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	p := NewPaths(filepath.Join(root, "db"), cfg.Layout, cfg.Journal)

	require.NoError(t, p.EnsureDirectories())
	for _, dir := range []string{p.DatabaseDir, p.TrendDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
