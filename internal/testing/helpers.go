package testing

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glefebvre/cinevo/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB creates an in-memory SQLite database for testing
func TestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// a named shared-cache DSN keeps every pooled connection on the same database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM kv_entries")
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// NewRecord builds a display record for tests
func NewRecord(id int, overrides ...func(*models.DisplayRecord)) models.DisplayRecord {
	record := models.DisplayRecord{
		ID:          id,
		Title:       fmt.Sprintf("Title %d", id),
		Description: "A test synopsis.",
		Poster:      fmt.Sprintf("https://image.tmdb.org/t/p/w500/poster-%d.jpg", id),
		Backdrop:    fmt.Sprintf("https://image.tmdb.org/t/p/w500/backdrop-%d.jpg", id),
		Rating:      7.5,
		VoteCount:   100,
		ReleaseDate: "2024-01-15",
		MediaKind:   models.MediaKindMovie,
		GenreIDs:    []int{28},
		Popularity:  10,
	}

	for _, override := range overrides {
		override(&record)
	}
	return record
}

// NewFavorite builds a favorite entry for tests
func NewFavorite(id int) models.FavoriteEntry {
	return models.FavoriteEntry{
		ID:        id,
		Title:     fmt.Sprintf("Favorite %d", id),
		Poster:    fmt.Sprintf("https://image.tmdb.org/t/p/w500/fav-%d.jpg", id),
		MediaKind: models.MediaKindMovie,
	}
}

// FixedClock returns a clock function that advances one second per call
func FixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}
}

// ListResponse builds a TMDB list payload from raw result objects
func ListResponse(results ...string) string {
	body := `{"page":1,"total_pages":1,"total_results":` + fmt.Sprint(len(results)) + `,"results":[`
	for i, r := range results {
		if i > 0 {
			body += ","
		}
		body += r
	}
	return body + "]}"
}
