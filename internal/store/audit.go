package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"orderdesk/internal/logger"
	"orderdesk/internal/model"

	_ "modernc.org/sqlite"
)

// AuditLog stores the mutation trail in its own SQLite file. Writes are
// fire-and-forget from the caller's point of view: a failed insert is logged
// and dropped rather than failing the mutation that produced it.
type AuditLog struct {
	mu sync.Mutex
	db *sql.DB
}

// NewAuditLog opens (and migrates) the audit database at path.
func NewAuditLog(path string) (*AuditLog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("audit log: path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	if err := ensureAuditSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &AuditLog{db: db}, nil
}

func ensureAuditSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS audit_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			trace_id TEXT NOT NULL,
			action TEXT NOT NULL,
			summary TEXT NOT NULL,
			outcome TEXT NOT NULL,
			detail TEXT,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_records_created ON audit_records(created_at DESC, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("initializing audit schema failed: %w", err)
		}
	}
	return nil
}

// Record inserts one audit row. Implements the console audit sink: errors are
// swallowed after logging.
func (a *AuditLog) Record(ctx context.Context, rec model.AuditRecord) {
	if a == nil || a.db == nil {
		return
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO audit_records (trace_id, action, summary, outcome, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.TraceID, rec.Action, rec.Summary, rec.Outcome, rec.Detail, rec.CreatedAt.UnixMilli())
	if err != nil {
		logger.Warnf("audit: insert failed trace=%s: %v", rec.TraceID, err)
	}
}

// List returns the most recent records, newest first. limit <= 0 means 50.
func (a *AuditLog) List(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	if a == nil || a.db == nil {
		return nil, fmt.Errorf("audit log not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, trace_id, action, summary, outcome, detail, created_at
		 FROM audit_records ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AuditRecord{}
	for rows.Next() {
		var rec model.AuditRecord
		var detail sql.NullString
		var createdMilli int64
		if err := rows.Scan(&rec.ID, &rec.TraceID, &rec.Action, &rec.Summary, &rec.Outcome, &detail, &createdMilli); err != nil {
			return nil, err
		}
		rec.Detail = detail.String
		rec.CreatedAt = time.UnixMilli(createdMilli)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (a *AuditLog) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.db.Close()
	a.db = nil
	return err
}
