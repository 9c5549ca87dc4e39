package models

import "time"

// FavoriteEntry is a user-selected catalog item, unique by ID
type FavoriteEntry struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Poster    string    `json:"poster"`
	MediaKind MediaKind `json:"mediaType"`
}

// HistoryEntry records a viewing event, unique by ContentID
type HistoryEntry struct {
	ContentID int       `json:"contentId"`
	Title     string    `json:"title"`
	Duration  float64   `json:"duration"`
	Watched   bool      `json:"watched"`
	Timestamp time.Time `json:"timestamp"`
}

// KVEntry is one persisted value of the key-value store. Each favorites or
// history list is stored whole, as a JSON array, under a single key.
type KVEntry struct {
	Key       string    `gorm:"column:storage_key;type:varchar(255);primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for KVEntry
func (KVEntry) TableName() string {
	return "kv_entries"
}
