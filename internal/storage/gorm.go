package storage

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps values in the kv_entries table
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open, migrated database
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get implements Store
func (s *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.StorageError("failed to read key", err).WithContext("key", key)
	}
	return []byte(entry.Value), true, nil
}

// Set implements Store as a single upsert so a list is replaced atomically
func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC()
	entry := models.KVEntry{
		Key:       key,
		Value:     string(value),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return apperrors.StorageError("failed to write key", err).WithContext("key", key)
	}
	return nil
}

// Remove implements Store
func (s *GormStore) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.KVEntry{}).Error
	if err != nil {
		return apperrors.StorageError("failed to remove key", err).WithContext("key", key)
	}
	return nil
}
