// Package statestore is the durable client-side storage medium: a small
// SQLite-backed key/value table playing the role a browser's localStorage
// plays for the web client. The session token lives here between runs.
package statestore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one persisted key/value pair.
type Entry struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "state_entries"
}

type DB struct {
	db *gorm.DB
}

// Open opens (creating if needed) the state database at path.
func Open(path string) (*DB, error) {
	return open(sqlite.Open(path))
}

// OpenInMemory opens a throwaway in-memory state database.
func OpenInMemory() (*DB, error) {
	return open(sqlite.Open(":memory:"))
}

func open(dialector gorm.Dialector) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}

	return &DB{db: db}, nil
}

// Get returns the value for key; the second result is false when the key
// is absent.
func (d *DB) Get(key string) (string, bool, error) {
	var entry Entry
	err := d.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read state entry %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set stores value under key, overwriting any previous value.
func (d *DB) Set(key, value string) error {
	entry := Entry{Key: key, Value: value}
	err := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write state entry %q: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting an absent key is not an error.
func (d *DB) Delete(key string) error {
	if err := d.db.Delete(&Entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete state entry %q: %w", key, err)
	}
	return nil
}

func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
