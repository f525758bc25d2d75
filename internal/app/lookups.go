package app

import (
	"context"
	"log/slog"

	"engcli/internal/config"
	"engcli/internal/dataprocessing"
	apperrors "engcli/internal/errors"
	"engcli/pkg/contracts/domain"
)

// lookups are the static tables read once per run and shared by the steps
type lookups struct {
	script *dataprocessing.ConfigScript
	assets *domain.AssetRegistry
	plan   []domain.PlanEntry
	shifts []domain.ShiftEntry
}

// loadLookups reads the lookup workbooks and resolves the shared paths.
// Every failure is a configuration error except a missing shift workbook,
// which only means no maintenance was recorded yet.
func loadLookups(ctx context.Context, paths *config.Paths, logger *slog.Logger) (*lookups, error) {
	script, err := dataprocessing.ReadConfigScript(paths.ConfigScript, dataprocessing.DefaultConfigSheets())
	if err != nil {
		return nil, asConfigError("failed to read configuration workbook", err)
	}

	if err := paths.ResolveShared(script.SharedPaths); err != nil {
		return nil, err
	}
	planPath, err := paths.RequireMaintenancePlan()
	if err != nil {
		return nil, err
	}

	assets, err := dataprocessing.ReadAssetRegistry(paths.AssetInfo, config.SheetAssetList)
	if err != nil {
		return nil, asConfigError("failed to read asset registry", err)
	}

	plan, err := dataprocessing.ReadMaintenancePlan(planPath, config.SheetPlanByModel)
	if err != nil {
		return nil, asConfigError("failed to read maintenance plan", err)
	}

	shifts, err := dataprocessing.ReadMaintenanceShifts(paths.MaintenanceShift, config.SheetShiftBySerial)
	switch {
	case apperrors.IsType(err, apperrors.ErrTypeNotFound):
		logger.WarnContext(ctx, "No maintenance shift workbook, forecasting without shifts",
			slog.String("path", paths.MaintenanceShift))
	case err != nil:
		return nil, asConfigError("failed to read maintenance shifts", err)
	}

	logger.InfoContext(ctx, "Lookups loaded",
		slog.Int("assets", assets.Len()),
		slog.Int("plan_entries", len(plan)),
		slog.Int("shift_entries", len(shifts)),
		slog.Int("overrides", len(script.Overrides)))

	return &lookups{script: script, assets: assets, plan: plan, shifts: shifts}, nil
}

// asConfigError marks a broken lookup table as a configuration error while
// keeping the original error reachable
func asConfigError(message string, err error) error {
	if apperrors.IsType(err, apperrors.ErrTypeConfig) {
		return err
	}
	return apperrors.NewConfigError(message, err)
}
