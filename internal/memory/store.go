package memory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"answerbot/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists finished agent runs.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection; SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db, logger: logger}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		prompt      TEXT NOT NULL,
		tool_name   TEXT,
		tool_input  TEXT,
		output      TEXT,
		succeeded   INTEGER NOT NULL DEFAULT 0,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_runs_time ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveRun(ctx context.Context, rec domain.RunRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (prompt, tool_name, tool_input, output, succeeded, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Prompt, rec.ToolName, rec.ToolInput, rec.Output, boolToInt(rec.Succeeded), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, prompt, tool_name, tool_input, output, succeeded, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var recs []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var succeeded int
		if err := rows.Scan(&rec.ID, &rec.Prompt, &rec.ToolName, &rec.ToolInput, &rec.Output, &succeeded, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Succeeded = succeeded != 0
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Prune deletes runs older than retention. A retention of zero disables
// pruning.
func (s *SQLiteStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-retention)
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Info("pruned old runs", "count", n, "cutoff", cutoff.Format(time.RFC3339))
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
