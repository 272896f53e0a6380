// Package audit persists the server's operational trail: one row per
// dispatched tool invocation and one per denylist rejection.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"netmcp/internal/domain"
)

// SQLiteStore implements domain.AuditLogger using SQLite.
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

	// Single connection: SQLite serializes writers anyway.
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
	CREATE TABLE IF NOT EXISTS audit_log (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id        TEXT NOT NULL,
		tool          TEXT NOT NULL,
		device_count  INTEGER DEFAULT 0,
		ok_count      INTEGER DEFAULT 0,
		fail_count    INTEGER DEFAULT 0,
		detail        TEXT,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_time ON audit_log(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_tool ON audit_log(tool, created_at);

	CREATE TABLE IF NOT EXISTS security_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		command     TEXT NOT NULL,
		rule        TEXT NOT NULL,
		match       TEXT,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_security_time ON security_log(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) LogRun(ctx context.Context, rec domain.RunRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (run_id, tool, device_count, ok_count, fail_count, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Tool, rec.DeviceCount, rec.OKCount, rec.FailCount, rec.Detail, rec.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) LogSecurity(ctx context.Context, rec domain.SecurityRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO security_log (command, rule, match, created_at)
		 VALUES (?, ?, ?, ?)`,
		rec.Command, rec.Rule, rec.Match, rec.CreatedAt,
	)
	return err
}

// RecentRuns returns the newest limit audit rows, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, tool, device_count, ok_count, fail_count, detail, created_at
		 FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.RunRecord
	for rows.Next() {
		var r domain.RunRecord
		var detail sql.NullString
		if err := rows.Scan(&r.ID, &r.RunID, &r.Tool, &r.DeviceCount, &r.OKCount,
			&r.FailCount, &detail, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Detail = detail.String
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// RecentSecurity returns the newest limit denylist rejections.
func (s *SQLiteStore) RecentSecurity(ctx context.Context, limit int) ([]domain.SecurityRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, rule, match, created_at
		 FROM security_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.SecurityRecord
	for rows.Next() {
		var r domain.SecurityRecord
		var match sql.NullString
		if err := rows.Scan(&r.ID, &r.Command, &r.Rule, &match, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Match = match.String
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Nop is an AuditLogger that discards everything, used when auditing is
// disabled in config.
type Nop struct{}

func (Nop) LogRun(ctx context.Context, rec domain.RunRecord) error           { return nil }
func (Nop) LogSecurity(ctx context.Context, rec domain.SecurityRecord) error { return nil }
