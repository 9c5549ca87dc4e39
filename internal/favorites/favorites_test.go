package favorites

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/models"
	"github.com/glefebvre/cinevo/internal/storage"
	testutil "github.com/glefebvre/cinevo/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, backend storage.Store, max int) *Store {
	t.Helper()
	s, err := New(context.Background(), backend, config.FavoritesConfig{
		Enabled:      true,
		MaxFavorites: max,
		StorageKey:   "cinevoFavorites",
	})
	require.NoError(t, err)
	return s
}

func persisted(t *testing.T, backend storage.Store) []models.FavoriteEntry {
	t.Helper()
	var out []models.FavoriteEntry
	_, err := storage.LoadJSON(context.Background(), backend, "cinevoFavorites", &out)
	require.NoError(t, err)
	return out
}

func TestToggle_AddThenRemove(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	s := newStore(t, backend, 0)

	on, err := s.Toggle(ctx, testutil.NewFavorite(550))
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, s.Contains(550))
	assert.Len(t, persisted(t, backend), 1)

	off, err := s.Toggle(ctx, testutil.NewFavorite(550))
	require.NoError(t, err)
	assert.False(t, off)
	assert.False(t, s.Contains(550))
	assert.Empty(t, persisted(t, backend))
	assert.Equal(t, 2, backend.Writes(), "one full write per mutation")
}

func TestToggle_PairRestoresLength(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	s := newStore(t, backend, 0)

	_, _ = s.Toggle(ctx, testutil.NewFavorite(1))
	_, _ = s.Toggle(ctx, testutil.NewFavorite(2))
	before := len(persisted(t, backend))

	_, _ = s.Toggle(ctx, testutil.NewFavorite(3))
	_, _ = s.Toggle(ctx, testutil.NewFavorite(3))

	assert.Equal(t, before, len(persisted(t, backend)))
	assert.False(t, s.Contains(3))
}

func TestList_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemoryStore(), 0)

	for _, id := range []int{3, 1, 2} {
		_, err := s.Toggle(ctx, testutil.NewFavorite(id))
		require.NoError(t, err)
	}
	_, _ = s.Toggle(ctx, testutil.NewFavorite(1))

	ids := []int{}
	for _, e := range s.List() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int{3, 2}, ids)
}

func TestToggle_Limit(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	s := newStore(t, backend, 2)

	_, _ = s.Toggle(ctx, testutil.NewFavorite(1))
	_, _ = s.Toggle(ctx, testutil.NewFavorite(2))

	on, err := s.Toggle(ctx, testutil.NewFavorite(3))
	assert.False(t, on)
	assert.Equal(t, errors.CodeLimitReached, errors.GetErrorCode(err))
	assert.Equal(t, 2, s.Len())

	off, err := s.Toggle(ctx, testutil.NewFavorite(1))
	require.NoError(t, err, "removal is allowed at the limit")
	assert.False(t, off)
}

func TestNew_LoadsPersistedList(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewGormStore(testutil.TestDB(t))

	first := newStore(t, backend, 0)
	_, _ = first.Toggle(ctx, testutil.NewFavorite(10))
	_, _ = first.Toggle(ctx, testutil.NewFavorite(20))

	second := newStore(t, backend, 0)
	assert.Equal(t, first.List(), second.List())
	assert.True(t, second.Contains(20))
}

func TestNew_DropsDuplicateIDs(t *testing.T) {
	backend := storage.NewMemoryStore()
	data, _ := json.Marshal([]models.FavoriteEntry{testutil.NewFavorite(1), testutil.NewFavorite(1)})
	require.NoError(t, backend.Set(context.Background(), "cinevoFavorites", data))

	s := newStore(t, backend, 0)
	assert.Equal(t, 1, s.Len())
}

func TestNew_CorruptValueStartsEmpty(t *testing.T) {
	backend := storage.NewMemoryStore()
	require.NoError(t, backend.Set(context.Background(), "cinevoFavorites", []byte("{oops")))

	s := newStore(t, backend, 0)
	assert.Equal(t, 0, s.Len())
}

func TestFavoriteEntry_JSONShape(t *testing.T) {
	data, err := json.Marshal(testutil.NewFavorite(7))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mediaType":"movie"`)
}
