package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glefebvre/cinevo/internal/catalog"
	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/external/tmdb"
	"github.com/glefebvre/cinevo/internal/favorites"
	"github.com/glefebvre/cinevo/internal/history"
	"github.com/glefebvre/cinevo/internal/logger"
	"github.com/glefebvre/cinevo/internal/storage"
	"github.com/glefebvre/cinevo/internal/subtitle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.SetAppLogger(logger.New(logger.Config{Output: &bytes.Buffer{}, MinLevel: logger.LevelError}))
	os.Exit(m.Run())
}

type fakeSource struct {
	detailsErr error
}

func (f *fakeSource) list() (*tmdb.ListResponse, error) {
	out := &tmdb.ListResponse{Page: 1}
	for i := 1; i <= 8; i++ {
		poster := fmt.Sprintf("/p%d.jpg", i)
		out.Results = append(out.Results, tmdb.ListItem{
			ID:         i,
			Title:      fmt.Sprintf("Movie %d", i),
			PosterPath: &poster,
			MediaType:  "movie",
		})
	}
	return out, nil
}

func (f *fakeSource) PopularMovies(context.Context, int) (*tmdb.ListResponse, error) { return f.list() }
func (f *fakeSource) PopularTV(context.Context, int) (*tmdb.ListResponse, error)     { return f.list() }
func (f *fakeSource) Trending(context.Context, string, string) (*tmdb.ListResponse, error) {
	return f.list()
}
func (f *fakeSource) DiscoverMovies(context.Context, string, int, string) (*tmdb.ListResponse, error) {
	return f.list()
}
func (f *fakeSource) SearchMulti(context.Context, string) (*tmdb.ListResponse, error) {
	return f.list()
}

func (f *fakeSource) MovieDetails(_ context.Context, id int) (*tmdb.DetailsResponse, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	imdb := "tt0137523"
	resp := &tmdb.DetailsResponse{}
	resp.ID = id
	resp.Title = "Fight Club"
	resp.ExternalIDs.IMDBID = &imdb
	return resp, nil
}

func (f *fakeSource) TVDetails(ctx context.Context, id int) (*tmdb.DetailsResponse, error) {
	return f.MovieDetails(ctx, id)
}

type stubLoader struct {
	track *subtitle.Track
	err   error
	lang  string
}

func (s *stubLoader) Load(_ context.Context, externalID, title, lang string) (*subtitle.Track, error) {
	s.lang = lang
	return s.track, s.err
}

type testEnv struct {
	server *Server
	source *fakeSource
	loader *stubLoader
	cfg    *config.Config
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	for _, m := range mutate {
		m(cfg)
	}

	ctx := context.Background()
	backend := storage.NewMemoryStore()
	favs, err := favorites.New(ctx, backend, cfg.Favorites)
	require.NoError(t, err)
	hist, err := history.New(ctx, backend, cfg.History)
	require.NoError(t, err)

	src := &fakeSource{}
	loader := &stubLoader{
		track: subtitle.NewTrack("ar", "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nمرحبا\n"),
	}
	svc := catalog.NewService(cfg, catalog.Deps{Source: src, Favorites: favs, History: hist})

	server := NewServer(cfg, Deps{
		Catalog:   svc,
		Subtitles: loader,
		Health:    func() error { return nil },
	})
	return &testEnv{server: server, source: src, loader: loader, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	env.server.health = func() error { return stderrors.New("database ping failed") }
	w = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unhealthy")
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestPanicRecovery(t *testing.T) {
	env := newTestEnv(t)
	env.server.router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := env.do(t, http.MethodGet, "/boom", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "internal server error", resp.Error)
}

func TestHome(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/home", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view catalog.HomeView
	decode(t, w, &view)
	require.Len(t, view.Grids, 4)
	assert.Len(t, view.Grids[0].Items, 6)
}

func TestMovies_InvalidPageFallsBackToFirst(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/movies?genre=28&page=abc", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view catalog.ListView
	decode(t, w, &view)
	assert.Equal(t, 1, view.Page.Number)
	assert.Equal(t, "28", view.Genre)
}

func TestSearch_BlankQuery(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/search?q=%20", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view catalog.ListView
	decode(t, w, &view)
	assert.Empty(t, view.Items)
	require.Len(t, view.Notices, 1)
	assert.Equal(t, catalog.NoticeWarning, view.Notices[0].Level)
}

func TestDetails(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/details/movie/550", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view catalog.DetailsView
	decode(t, w, &view)
	require.NotNil(t, view.Details)
	assert.Equal(t, "tt0137523", view.Details.ExternalID)
	assert.Len(t, view.Sources, 4)
}

func TestDetails_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"unknown kind", "/api/v1/details/book/1", nil, http.StatusBadRequest},
		{"bad id", "/api/v1/details/movie/abc", nil, http.StatusBadRequest},
		{"upstream not found", "/api/v1/details/movie/1", errors.StatusError("tmdb", 404, ""), http.StatusNotFound},
		{"upstream down", "/api/v1/details/tv/1", errors.StatusError("tmdb", 503, ""), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.source.detailsErr = tt.err

			w := env.do(t, http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.status, w.Code)
			var resp ErrorResponse
			decode(t, w, &resp)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestFavorites_ToggleAndList(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/favorites/toggle", ToggleFavoriteRequest{ID: 550, Title: "Fight Club", MediaType: "movie"})
	require.Equal(t, http.StatusOK, w.Code)
	var toggled ToggleFavoriteResponse
	decode(t, w, &toggled)
	assert.True(t, toggled.Favorite)
	assert.Equal(t, catalog.NoticeSuccess, toggled.Notice.Level)

	w = env.do(t, http.MethodGet, "/api/v1/favorites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list FavoritesResponse
	decode(t, w, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, 550, list.Favorites[0].ID)

	w = env.do(t, http.MethodPost, "/api/v1/favorites/toggle", ToggleFavoriteRequest{ID: 550})
	decode(t, w, &toggled)
	assert.False(t, toggled.Favorite)
}

func TestFavorites_Limit(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Favorites.MaxFavorites = 1 })

	w := env.do(t, http.MethodPost, "/api/v1/favorites/toggle", ToggleFavoriteRequest{ID: 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/favorites/toggle", ToggleFavoriteRequest{ID: 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, string(errors.CodeLimitReached), resp.Code)
}

func TestFavorites_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/favorites/toggle", map[string]interface{}{"title": "no id"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/favorites/toggle", ToggleFavoriteRequest{ID: 1, MediaType: "podcast"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)

	for i := 1; i <= 12; i++ {
		w := env.do(t, http.MethodPost, "/api/v1/history", RecordHistoryRequest{ContentID: i, Title: fmt.Sprintf("T%d", i), Duration: 60})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := env.do(t, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp HistoryResponse
	decode(t, w, &resp)
	assert.Equal(t, 12, resp.Total)
	require.Len(t, resp.Entries, 10)
	assert.Equal(t, 12, resp.Entries[0].ContentID)

	w = env.do(t, http.MethodGet, "/api/v1/history?limit=3", nil)
	decode(t, w, &resp)
	assert.Len(t, resp.Entries, 3)

	w = env.do(t, http.MethodDelete, "/api/v1/history", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/history", nil)
	decode(t, w, &resp)
	assert.Equal(t, 0, resp.Total)
}

func TestHistory_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/history", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubtitleLanguages(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/subtitles/languages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Enabled   bool                `json:"enabled"`
		Languages []subtitle.Language `json:"languages"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.Enabled)
	assert.NotEmpty(t, resp.Languages)
}

func TestSubtitleTrack(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/subtitles/0137523?title=Fight%20Club", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SubtitleTrackResponse
	decode(t, w, &resp)
	assert.Equal(t, "tt0137523", resp.ExternalID)
	assert.Equal(t, "ar", resp.Language)
	require.Len(t, resp.Cues, 1)
	assert.Equal(t, "ar", env.loader.lang)
}

func TestSubtitleTrack_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.loader.err = errors.NotFoundError("subtitle", "tt1/ar")

	w := env.do(t, http.MethodGet, "/api/v1/subtitles/tt1?lang=ar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubtitleTrack_InvalidLanguage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/subtitles/tt1?lang=%21%21", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubtitleTrack_Disabled(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Subtitles.Enabled = false })

	w := env.do(t, http.MethodGet, "/api/v1/subtitles/tt1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadSubtitle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/subtitles/tt0137523/download?lang=ar", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/vtt; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="tt0137523.ar.vtt"`)
	assert.Equal(t, "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nمرحبا\n\n", w.Body.String())
}

func TestStreamingLinks(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/links/tt0944947?kind=tv", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp LinksResponse
	decode(t, w, &resp)
	assert.Equal(t, "tt0944947", resp.ExternalID)
	require.Len(t, resp.Sources, 4)
	assert.Equal(t, "https://vidsrc.to/embed/movie/tt0944947?s=1&e=1", resp.Links["vidsrc"])

	w = env.do(t, http.MethodGet, "/api/v1/links/tt1?kind=radio", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamingLinks_SourceSelection(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Streaming.Default = "superembed" })

	w := env.do(t, http.MethodGet, "/api/v1/links/tt0137523", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp LinksResponse
	decode(t, w, &resp)
	require.NotNil(t, resp.Current)
	assert.Equal(t, "superembed", resp.Current.Key)

	w = env.do(t, http.MethodGet, "/api/v1/links/tt0137523?source=FlixHQ", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = LinksResponse{}
	decode(t, w, &resp)
	require.NotNil(t, resp.Current)
	assert.Equal(t, "flixhq", resp.Current.Key)

	w = env.do(t, http.MethodGet, "/api/v1/links/tt0137523?source=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = LinksResponse{}
	decode(t, w, &resp)
	require.NotNil(t, resp.Current)
	assert.Equal(t, "autoembed", resp.Current.Key)

	for _, bad := range []string{"nowhere", "4", "-1"} {
		w = env.do(t, http.MethodGet, "/api/v1/links/tt0137523?source="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestStreamingLinks_NoSources(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/links/%20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp LinksResponse
	decode(t, w, &resp)
	assert.Empty(t, resp.Sources)
	assert.Nil(t, resp.Current)
}

func TestStreamingLinks_Quality(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		status    int
		quality   string
		qualities []string
	}{
		{"default", "", http.StatusOK, "720p", []string{"1080p", "720p", "480p", "360p"}},
		{"requested", "?quality=1080p", http.StatusOK, "1080p", []string{"1080p", "720p", "480p", "360p"}},
		{"fast downlink keeps request", "?quality=720p&downlink=8", http.StatusOK, "720p", []string{"720p", "480p", "360p"}},
		{"slow downlink lowers quality", "?quality=1080p&downlink=2", http.StatusOK, "480p", []string{"480p", "360p"}},
		{"unknown quality", "?quality=4k", http.StatusBadRequest, "", nil},
		{"bad downlink", "?downlink=fast", http.StatusBadRequest, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.do(t, http.MethodGet, "/api/v1/links/tt1"+tt.query, nil)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status != http.StatusOK {
				return
			}

			var resp LinksResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.quality, resp.Quality)
			assert.Equal(t, tt.qualities, resp.Qualities)
		})
	}
}

func TestSubtitleTrack_VisibilityAndText(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/subtitles/tt1?at=1.5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp SubtitleTrackResponse
	decode(t, w, &resp)
	assert.True(t, resp.Enabled)
	require.NotNil(t, resp.Text)
	assert.Equal(t, "مرحبا", *resp.Text)

	w = env.do(t, http.MethodGet, "/api/v1/subtitles/tt1?at=1.5&enabled=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = SubtitleTrackResponse{}
	decode(t, w, &resp)
	assert.False(t, resp.Enabled)
	require.NotNil(t, resp.Text)
	assert.Empty(t, *resp.Text)
	assert.True(t, env.loader.track.Enabled, "shared track stays visible")

	w = env.do(t, http.MethodGet, "/api/v1/subtitles/tt1?at=soon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.LimitError("favorites", 1)))
	assert.Equal(t, http.StatusNotFound, statusFor(errors.NotFoundError("x", "y")))
	assert.Equal(t, http.StatusBadGateway, statusFor(errors.ExternalServiceError("tmdb", "down", nil)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.StorageError("save", nil)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(stderrors.New("plain")))
}
