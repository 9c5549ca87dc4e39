// Package history records what the user watched, bounded to the most recent
// entries and persisted as one list.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/logger"
	"github.com/glefebvre/cinevo/internal/models"
	"github.com/glefebvre/cinevo/internal/storage"
)

const defaultMaxSize = 50

// Option customizes a Store
type Option func(*Store)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is the watch history, oldest first
type Store struct {
	mu      sync.RWMutex
	backend storage.Store
	key     string
	max     int
	entries []models.HistoryEntry
	now     func() time.Time
	logger  *logger.Logger
}

// New loads the persisted history. A corrupt stored value is logged and
// treated as an empty history.
func New(ctx context.Context, backend storage.Store, cfg config.HistoryConfig, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		key:     cfg.StorageKey,
		max:     cfg.MaxSize,
		entries: []models.HistoryEntry{},
		now:     time.Now,
		logger:  logger.AppLogger(),
	}
	if s.key == "" {
		s.key = config.Default().History.StorageKey
	}
	if s.max <= 0 {
		s.max = defaultMaxSize
	}
	for _, opt := range opts {
		opt(s)
	}

	var loaded []models.HistoryEntry
	if _, err := storage.LoadJSON(ctx, backend, s.key, &loaded); err != nil {
		if errors.GetErrorCode(err) != errors.CodeParse {
			return nil, err
		}
		s.logger.WithFields(map[string]interface{}{
			"key":   s.key,
			"error": err,
		}).WarnContext(ctx, "discarding unreadable watch history")
		loaded = nil
	}
	s.entries = s.normalize(ctx, loaded)

	return s, nil
}

// normalize drops repeated content ids, keeping the first, and keeps only the
// newest max entries
func (s *Store) normalize(ctx context.Context, loaded []models.HistoryEntry) []models.HistoryEntry {
	seen := make(map[int]bool, len(loaded))
	out := make([]models.HistoryEntry, 0, len(loaded))
	for _, e := range loaded {
		if seen[e.ContentID] {
			continue
		}
		seen[e.ContentID] = true
		out = append(out, e)
	}

	if len(out) > s.max {
		s.logger.WithFields(map[string]interface{}{
			"key":    s.key,
			"stored": len(out),
			"max":    s.max,
		}).InfoContext(ctx, "trimming stored watch history")
		out = append([]models.HistoryEntry(nil), out[len(out)-s.max:]...)
	}
	return out
}

// Record upserts the entry for contentID. An existing entry is overwritten
// in place; a new one is appended. When the history then exceeds its bound
// the oldest entry is evicted.
func (s *Store) Record(ctx context.Context, contentID int, title string, duration float64, watched bool) (models.HistoryEntry, error) {
	entry := models.HistoryEntry{
		ContentID: contentID,
		Title:     title,
		Duration:  duration,
		Watched:   watched,
		Timestamp: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.HistoryEntry, len(s.entries), len(s.entries)+1)
	copy(next, s.entries)

	replaced := false
	for i := range next {
		if next[i].ContentID == contentID {
			next[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, entry)
	}
	if len(next) > s.max {
		next = next[1:]
	}

	if err := storage.SaveJSON(ctx, s.backend, s.key, next); err != nil {
		return models.HistoryEntry{}, err
	}
	s.entries = next

	s.logger.WithFields(map[string]interface{}{
		"content_id": contentID,
		"watched":    watched,
		"entries":    len(next),
	}).DebugContext(ctx, "watch recorded")

	return entry, nil
}

// List returns the whole history, oldest first
func (s *Store) List() []models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// MostRecent returns up to limit entries, newest position first. A limit of
// zero or less returns everything.
func (s *Store) MostRecent(limit int) []models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.entries)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]models.HistoryEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

// Len returns the number of entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear empties the history and deletes its persisted value
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Remove(ctx, s.key); err != nil {
		return err
	}
	s.entries = []models.HistoryEntry{}

	s.logger.InfoContext(ctx, "watch history cleared")
	return nil
}
