// Package store persists the desk's local state: the trade draft and the
// mutation audit trail. Both live in SQLite files next to the process so a
// restart picks up where the operator left off.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// draftRecord is the single-row keyed document table backing drafts.
type draftRecord struct {
	ID        uint           `gorm:"primaryKey"`
	Key       string         `gorm:"uniqueIndex;size:64"`
	Payload   datatypes.JSON `gorm:"type:json"`
	UpdatedAt time.Time
}

func (draftRecord) TableName() string { return "drafts" }

// DraftStore persists keyed JSON documents via Gorm + SQLite.
type DraftStore struct {
	db *gorm.DB
}

// NewDraftStore opens (and migrates) the draft database at path.
func NewDraftStore(path string) (*DraftStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("draft store: path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&draftRecord{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: keep contention low, the draft is a single hot row.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &DraftStore{db: db}, nil
}

// SaveDraft upserts the payload under key.
func (s *DraftStore) SaveDraft(ctx context.Context, key string, payload []byte) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("draft store not initialized")
	}
	rec := draftRecord{
		Key:       key,
		Payload:   datatypes.JSON(payload),
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&rec).Error
}

// LoadDraft returns the payload stored under key, or (nil, nil) when absent.
func (s *DraftStore) LoadDraft(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("draft store not initialized")
	}
	var rec draftRecord
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return []byte(rec.Payload), nil
}

// Close closes the underlying database connection.
func (s *DraftStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
