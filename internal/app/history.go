package app

import (
	"context"
	"fmt"
	"os"

	"engcli/internal/config"
	apperrors "engcli/internal/errors"
	"engcli/internal/journal"
	"engcli/pkg/contracts/domain"
)

// History loads the configuration and returns the last limit runs recorded
// in the journal of storePath, newest first
func History(ctx context.Context, configFile, storePath string, limit int) ([]domain.Run, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	return New(cfg, nil, nil).History(ctx, storePath, limit)
}

// History returns the last limit journaled runs of storePath. It never
// creates a journal.
func (a *Application) History(ctx context.Context, storePath string, limit int) ([]domain.Run, error) {
	paths := config.NewPaths(storePath, a.Config.Layout, a.Config.Journal)
	if paths.Journal == "" {
		return nil, apperrors.NewConfigError("run journal is disabled", nil)
	}
	if _, err := os.Stat(paths.Journal); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("run journal %s", paths.Journal))
		}
		return nil, apperrors.NewStorageError("failed to stat run journal", err)
	}

	jr, err := journal.Open(paths.Journal, a.Logger)
	if err != nil {
		return nil, err
	}
	defer jr.Close()

	return jr.RecentRuns(ctx, limit)
}
