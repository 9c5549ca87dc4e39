// Package favorites keeps the user's favorite titles as one persisted list.
package favorites

import (
	"context"
	"sync"

	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/logger"
	"github.com/glefebvre/cinevo/internal/models"
	"github.com/glefebvre/cinevo/internal/storage"
)

// Store holds favorites in insertion order, unique by id. Every mutation
// rewrites the whole list under one storage key.
type Store struct {
	mu      sync.RWMutex
	backend storage.Store
	key     string
	max     int
	entries []models.FavoriteEntry
	logger  *logger.Logger
}

// New loads the persisted list. A corrupt stored value is logged and
// treated as an empty list.
func New(ctx context.Context, backend storage.Store, cfg config.FavoritesConfig) (*Store, error) {
	s := &Store{
		backend: backend,
		key:     cfg.StorageKey,
		max:     cfg.MaxFavorites,
		entries: []models.FavoriteEntry{},
		logger:  logger.AppLogger(),
	}
	if s.key == "" {
		s.key = config.Default().Favorites.StorageKey
	}

	var loaded []models.FavoriteEntry
	if _, err := storage.LoadJSON(ctx, backend, s.key, &loaded); err != nil {
		if errors.GetErrorCode(err) != errors.CodeParse {
			return nil, err
		}
		s.logger.WithFields(map[string]interface{}{
			"key":   s.key,
			"error": err,
		}).WarnContext(ctx, "discarding unreadable favorites")
		loaded = nil
	}

	seen := make(map[int]bool, len(loaded))
	for _, e := range loaded {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		s.entries = append(s.entries, e)
	}

	return s, nil
}

// Toggle adds entry when its id is absent and removes it when present,
// persisting the full list. It returns the new membership state. Adding past
// the configured maximum fails with a limit error.
func (s *Store) Toggle(ctx context.Context, entry models.FavoriteEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.entries
	next := make([]models.FavoriteEntry, 0, len(previous)+1)
	removed := false
	for _, e := range previous {
		if e.ID == entry.ID {
			removed = true
			continue
		}
		next = append(next, e)
	}

	if !removed {
		if s.max > 0 && len(previous) >= s.max {
			return false, errors.LimitError("favorites", s.max)
		}
		next = append(next, entry)
	}

	if err := storage.SaveJSON(ctx, s.backend, s.key, next); err != nil {
		return removed, err
	}
	s.entries = next

	s.logger.WithFields(map[string]interface{}{
		"id":        entry.ID,
		"favorite":  !removed,
		"favorites": len(next),
	}).DebugContext(ctx, "favorite toggled")

	return !removed, nil
}

// Contains reports whether id is a favorite
func (s *Store) Contains(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// List returns favorites in insertion order
func (s *Store) List() []models.FavoriteEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FavoriteEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of favorites
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
