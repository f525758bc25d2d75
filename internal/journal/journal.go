// Package journal records every processor run and the data gaps it found in
// a SQLite database next to the history files.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	_ "modernc.org/sqlite"

	apperrors "engcli/internal/errors"
	"engcli/pkg/contracts/domain"
)

// timeLayout has a fixed width so that stored times sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal wraps the SQLite connection of the run journal
type Journal struct {
	sql      *sql.DB
	validate *validator.Validate
	logger   *slog.Logger
}

// Open opens or creates the journal at path and migrates its schema
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open run journal", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, apperrors.NewStorageError("failed to open run journal", err)
	}

	j := &Journal{sql: sqlDB, validate: validator.New(), logger: logger}
	if err := j.migrate(); err != nil {
		sqlDB.Close()
		return nil, apperrors.NewStorageError("failed to migrate run journal", err)
	}

	logger.Debug("Run journal opened", slog.String("path", path))
	return j, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	return j.sql.Close()
}

func (j *Journal) migrate() error {
	version := 0
	// a fresh database has no schema_version table yet
	_ = j.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := j.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS runs (
				id           TEXT PRIMARY KEY,
				mode         TEXT NOT NULL,
				status       TEXT NOT NULL,
				started_at   TEXT NOT NULL,
				completed_at TEXT,
				metrics_json TEXT NOT NULL DEFAULT '{}',
				error        TEXT NOT NULL DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

			CREATE TABLE IF NOT EXISTS diagnostics (
				id     INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL REFERENCES runs(id),
				asset  TEXT NOT NULL,
				stage  TEXT NOT NULL,
				reason TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_diagnostics_run ON diagnostics(run_id);
			CREATE INDEX IF NOT EXISTS idx_diagnostics_asset ON diagnostics(asset);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		j.logger.Info("Applied run journal migration", slog.Int("version", 1))
	}

	return nil
}

// StartRun records a run that has just started
func (j *Journal) StartRun(ctx context.Context, run *domain.Run) error {
	if err := j.validate.Struct(run); err != nil {
		return apperrors.NewValidationError("invalid run", err)
	}
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return apperrors.NewStorageError("failed to encode run metrics", err)
	}

	_, err = j.sql.ExecContext(ctx,
		"INSERT INTO runs (id, mode, status, started_at, metrics_json) VALUES (?, ?, ?, ?, ?)",
		run.ID, string(run.Mode), string(run.Status), run.StartedAt.UTC().Format(timeLayout), string(metrics),
	)
	if err != nil {
		return apperrors.NewStorageError("failed to record run start", err)
	}
	return nil
}

// FinishRun stores the final status, metrics and error of a run
func (j *Journal) FinishRun(ctx context.Context, run *domain.Run) error {
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return apperrors.NewStorageError("failed to encode run metrics", err)
	}
	var completed any
	if run.CompletedAt != nil {
		completed = run.CompletedAt.UTC().Format(timeLayout)
	}

	res, err := j.sql.ExecContext(ctx,
		"UPDATE runs SET status = ?, completed_at = ?, metrics_json = ?, error = ? WHERE id = ?",
		string(run.Status), completed, string(metrics), run.Error, run.ID,
	)
	if err != nil {
		return apperrors.NewStorageError("failed to record run completion", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("run %s", run.ID))
	}
	return nil
}

// AddDiagnostics appends the diagnostics of a run in one transaction
func (j *Journal) AddDiagnostics(ctx context.Context, runID string, diags []domain.Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}

	tx, err := j.sql.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("failed to begin diagnostics transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO diagnostics (run_id, asset, stage, reason) VALUES (?, ?, ?, ?)")
	if err != nil {
		return apperrors.NewStorageError("failed to prepare diagnostics insert", err)
	}
	defer stmt.Close()

	for _, d := range diags {
		if _, err := stmt.ExecContext(ctx, runID, d.Asset, d.Stage, d.Reason); err != nil {
			return apperrors.NewStorageError("failed to record diagnostic", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit diagnostics", err)
	}
	return nil
}

// Run returns one recorded run
func (j *Journal) Run(ctx context.Context, id string) (*domain.Run, error) {
	row := j.sql.QueryRowContext(ctx,
		"SELECT id, mode, status, started_at, completed_at, metrics_json, error FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("run %s", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read run", err)
	}
	return run, nil
}

// RecentRuns returns the last limit runs, newest first
func (j *Journal) RecentRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.sql.QueryContext(ctx,
		`SELECT id, mode, status, started_at, completed_at, metrics_json, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list runs", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to read run", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to list runs", err)
	}
	return runs, nil
}

// Diagnostics returns the diagnostics recorded for a run, in insertion order
func (j *Journal) Diagnostics(ctx context.Context, runID string) ([]domain.Diagnostic, error) {
	rows, err := j.sql.QueryContext(ctx,
		"SELECT asset, stage, reason FROM diagnostics WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list diagnostics", err)
	}
	defer rows.Close()

	var diags []domain.Diagnostic
	for rows.Next() {
		var d domain.Diagnostic
		if err := rows.Scan(&d.Asset, &d.Stage, &d.Reason); err != nil {
			return nil, apperrors.NewStorageError("failed to read diagnostic", err)
		}
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to list diagnostics", err)
	}
	return diags, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.Run, error) {
	var (
		run       domain.Run
		mode      string
		status    string
		started   string
		completed sql.NullString
		metrics   string
	)
	if err := s.Scan(&run.ID, &mode, &status, &started, &completed, &metrics, &run.Error); err != nil {
		return nil, err
	}
	run.Mode = domain.RunMode(mode)
	run.Status = domain.RunStatus(status)

	ts, err := time.Parse(timeLayout, started)
	if err != nil {
		return nil, fmt.Errorf("bad started_at %q: %w", started, err)
	}
	run.StartedAt = ts

	if completed.Valid {
		ts, err := time.Parse(timeLayout, completed.String)
		if err != nil {
			return nil, fmt.Errorf("bad completed_at %q: %w", completed.String, err)
		}
		run.CompletedAt = &ts
	}

	if err := json.Unmarshal([]byte(metrics), &run.Metrics); err != nil {
		return nil, fmt.Errorf("bad metrics_json: %w", err)
	}
	return &run, nil
}
