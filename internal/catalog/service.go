package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/glefebvre/cinevo/internal/cache"
	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/external/tmdb"
	"github.com/glefebvre/cinevo/internal/favorites"
	"github.com/glefebvre/cinevo/internal/history"
	"github.com/glefebvre/cinevo/internal/links"
	"github.com/glefebvre/cinevo/internal/logger"
	"github.com/glefebvre/cinevo/internal/models"
)

// Source is the subset of the TMDB client the catalog reads from
type Source interface {
	PopularMovies(ctx context.Context, page int) (*tmdb.ListResponse, error)
	PopularTV(ctx context.Context, page int) (*tmdb.ListResponse, error)
	Trending(ctx context.Context, kind, window string) (*tmdb.ListResponse, error)
	DiscoverMovies(ctx context.Context, genre string, page int, sortBy string) (*tmdb.ListResponse, error)
	SearchMulti(ctx context.Context, query string) (*tmdb.ListResponse, error)
	MovieDetails(ctx context.Context, id int) (*tmdb.DetailsResponse, error)
	TVDetails(ctx context.Context, id int) (*tmdb.DetailsResponse, error)
}

// Grid is one titled row of the home view
type Grid struct {
	Key   string                 `json:"key"`
	Title string                 `json:"title"`
	Items []models.DisplayRecord `json:"items"`
}

// HomeView is the landing page
type HomeView struct {
	Grids   []Grid   `json:"grids"`
	Notices []Notice `json:"notices"`
}

// ListView is a paginated or searched list
type ListView struct {
	Items   []models.DisplayRecord `json:"items"`
	Page    Page                   `json:"page"`
	Genre   string                 `json:"genre,omitempty"`
	Query   string                 `json:"query,omitempty"`
	Notices []Notice               `json:"notices"`
}

// DetailsView is a title's detail page with its player sources
type DetailsView struct {
	Details  *models.Details `json:"details"`
	Sources  []links.Link    `json:"sources"`
	Current  *links.Link     `json:"current_source,omitempty"`
	Favorite bool            `json:"favorite"`
	Genres   string          `json:"genre_label,omitempty"`
	Notices  []Notice        `json:"notices"`
}

// Service assembles catalog views. It owns the content cache and, when set,
// the favorites and history stores.
type Service struct {
	source     Source
	cache      *cache.Cache
	links      *links.Builder
	defaultSrc string
	images     Images
	perGrid    int
	excerptLen int
	text       *Localizer
	favorites  *favorites.Store
	history    *history.Store
	logger     *logger.Logger
}

// Deps are the collaborators of a Service. Favorites and History are optional.
type Deps struct {
	Source    Source
	Cache     *cache.Cache
	Links     *links.Builder
	Favorites *favorites.Store
	History   *history.Store
}

// NewService creates a Service from configuration and collaborators
func NewService(cfg *config.Config, deps Deps) *Service {
	c := deps.Cache
	if c == nil {
		c = cache.New(cache.Options{Enabled: cfg.Performance.CacheEnabled, TTL: cfg.CacheTTL()})
	}
	lb := deps.Links
	if lb == nil {
		lb = links.NewBuilder(cfg.EnabledSources())
	}

	return &Service{
		source:     deps.Source,
		cache:      c,
		links:      lb,
		defaultSrc: cfg.Streaming.Default,
		images:     ImagesFrom(cfg),
		perGrid:    cfg.Content.PostersPerGrid,
		excerptLen: cfg.Content.DescriptionMaxLength,
		text:       NewLocalizer(cfg.Site.Language),
		favorites:  deps.Favorites,
		history:    deps.History,
		logger:     logger.AppLogger(),
	}
}

// Localizer returns the site localizer
func (s *Service) Localizer() *Localizer {
	return s.text
}

// Favorites returns the favorites store, nil when disabled
func (s *Service) Favorites() *favorites.Store {
	return s.favorites
}

// History returns the history store, nil when disabled
func (s *Service) History() *history.Store {
	return s.history
}

// Home loads trending, new releases, popular movies and popular TV, in that
// order, each cut to the grid size. A failed grid is left empty and adds a
// notice; Home itself never fails.
func (s *Service) Home(ctx context.Context) HomeView {
	ctx = logger.ContextWithSection(ctx, "home")

	rows := []struct {
		key   string
		kind  models.MediaKind
		ck    cache.Key
		fetch func(ctx context.Context) (*tmdb.ListResponse, error)
	}{
		{GridTrending, models.MediaKindMovie, cache.Key{Category: "trending", Param: "movie/week"},
			func(ctx context.Context) (*tmdb.ListResponse, error) { return s.source.Trending(ctx, "movie", "week") }},
		{GridNewReleases, models.MediaKindMovie, moviesKey("all", 1),
			func(ctx context.Context) (*tmdb.ListResponse, error) { return s.source.PopularMovies(ctx, 1) }},
		{GridPopularMovies, models.MediaKindMovie, moviesKey("all", 1),
			func(ctx context.Context) (*tmdb.ListResponse, error) { return s.source.PopularMovies(ctx, 1) }},
		{GridPopularTV, models.MediaKindShow, tvKey(1),
			func(ctx context.Context) (*tmdb.ListResponse, error) { return s.source.PopularTV(ctx, 1) }},
	}

	view := HomeView{Grids: make([]Grid, 0, len(rows)), Notices: []Notice{}}
	for _, row := range rows {
		items, err := s.cache.GetOrFetch(ctx, row.ck, s.listFetcher(row.kind, row.fetch))
		if err != nil {
			s.logFailure(ctx, row.key, err)
			view.Notices = append(view.Notices, s.text.Notice(NoticeError, MsgLoadFailed))
		}
		view.Grids = append(view.Grids, Grid{
			Key:   row.key,
			Title: s.text.Text(row.key),
			Items: s.cards(truncate(items, s.perGrid)),
		})
	}

	return view
}

// Movies lists popular movies or, for a genre id, discovered movies
func (s *Service) Movies(ctx context.Context, genre string, page int) ListView {
	ctx = logger.ContextWithSection(ctx, "movies")
	genre = strings.TrimSpace(genre)
	if genre == "" {
		genre = "all"
	}
	p := NewPage(page)

	items, err := s.cache.GetOrFetch(ctx, moviesKey(genre, p.Number), s.listFetcher(models.MediaKindMovie,
		func(ctx context.Context) (*tmdb.ListResponse, error) {
			return s.source.DiscoverMovies(ctx, genre, p.Number, "")
		}))

	view := ListView{Items: s.cards(items), Page: p, Genre: genre, Notices: []Notice{}}
	if err != nil {
		s.logFailure(ctx, "movies", err)
		view.Notices = append(view.Notices, s.text.Notice(NoticeError, MsgLoadFailed))
	}
	return view
}

// TV lists popular shows
func (s *Service) TV(ctx context.Context, page int) ListView {
	ctx = logger.ContextWithSection(ctx, "tv")
	p := NewPage(page)

	items, err := s.cache.GetOrFetch(ctx, tvKey(p.Number), s.listFetcher(models.MediaKindShow,
		func(ctx context.Context) (*tmdb.ListResponse, error) {
			return s.source.PopularTV(ctx, p.Number)
		}))

	view := ListView{Items: s.cards(items), Page: p, Notices: []Notice{}}
	if err != nil {
		s.logFailure(ctx, "tv", err)
		view.Notices = append(view.Notices, s.text.Notice(NoticeError, MsgLoadFailed))
	}
	return view
}

// Trending lists this week's trending movies
func (s *Service) Trending(ctx context.Context) ListView {
	ctx = logger.ContextWithSection(ctx, "trending")

	items, err := s.cache.GetOrFetch(ctx, cache.Key{Category: "trending", Param: "movie/week"}, s.listFetcher(models.MediaKindMovie,
		func(ctx context.Context) (*tmdb.ListResponse, error) {
			return s.source.Trending(ctx, "movie", "week")
		}))

	view := ListView{Items: s.cards(items), Page: NewPage(1), Notices: []Notice{}}
	if err != nil {
		s.logFailure(ctx, "trending", err)
		view.Notices = append(view.Notices, s.text.Notice(NoticeError, MsgLoadFailed))
	}
	return view
}

// Search runs a multi search. Only movies and shows are kept, and results
// without a poster are dropped. A blank query returns a warning without
// calling upstream.
func (s *Service) Search(ctx context.Context, query string) ListView {
	ctx = logger.ContextWithSection(ctx, "search")
	query = strings.TrimSpace(query)
	view := ListView{Items: []models.DisplayRecord{}, Page: NewPage(1), Query: query, Notices: []Notice{}}

	if query == "" {
		view.Notices = append(view.Notices, s.text.Notice(NoticeWarning, MsgSearchQueryRequired))
		return view
	}

	items, err := s.cache.GetOrFetch(ctx, cache.Key{Category: "search", Param: strings.ToLower(query)}, func(ctx context.Context) ([]models.DisplayRecord, error) {
		resp, err := s.source.SearchMulti(ctx, query)
		if err != nil {
			return nil, err
		}
		out := make([]models.DisplayRecord, 0, len(resp.Results))
		for _, item := range resp.Results {
			kind := models.MediaKind(item.MediaType)
			if !kind.IsValid() {
				continue
			}
			record := FromListItem(item, kind, s.images)
			if record.Poster == s.images.DefaultPoster {
				continue
			}
			out = append(out, record)
		}
		return out, nil
	})
	if err != nil {
		s.logFailure(ctx, "search", err)
		view.Notices = append(view.Notices, s.text.Notice(NoticeError, MsgSearchFailed))
		return view
	}

	view.Items = s.cards(items)
	if len(view.Items) == 0 {
		view.Notices = append(view.Notices, s.text.Notice(NoticeInfo, MsgNoResults))
	}
	return view
}

// Details loads a movie or show with its streaming links. On failure the
// view carries a notice and the error is returned for status mapping.
func (s *Service) Details(ctx context.Context, id int, kind models.MediaKind) (DetailsView, error) {
	ctx = logger.ContextWithSection(ctx, "details")
	view := DetailsView{Sources: []links.Link{}, Notices: []Notice{}}

	if !kind.IsValid() {
		return view, errors.ValidationError("unknown media kind").WithContext("kind", string(kind))
	}

	var (
		resp *tmdb.DetailsResponse
		err  error
	)
	if kind == models.MediaKindShow {
		resp, err = s.source.TVDetails(ctx, id)
	} else {
		resp, err = s.source.MovieDetails(ctx, id)
	}
	if err != nil {
		s.logFailure(ctx, "details", err)
		view.Notices = append(view.Notices, s.text.Notice(NoticeError, MsgDetailsFailed))
		return view, err
	}

	externalID := resp.IMDBID()
	view.Sources = s.links.Sources(externalID, kind)
	view.Current = s.currentSource(view.Sources)
	details := DetailsFrom(resp, kind, s.images, s.links.BuildLinks(externalID, kind))
	view.Details = &details
	view.Genres = genreLabel(details)

	if len(view.Sources) == 0 {
		view.Notices = append(view.Notices, s.text.Notice(NoticeWarning, MsgNoPlayableSource))
	}
	if s.favorites != nil {
		view.Favorite = s.favorites.Contains(id)
	}

	return view, nil
}

// ToggleFavorite flips a favorite and returns the new state with a notice
func (s *Service) ToggleFavorite(ctx context.Context, entry models.FavoriteEntry) (bool, Notice, error) {
	if s.favorites == nil {
		return false, Notice{}, errors.New(errors.CodeConfig, "favorites are disabled")
	}

	on, err := s.favorites.Toggle(ctx, entry)
	if err != nil {
		if errors.GetErrorCode(err) == errors.CodeLimitReached {
			return on, s.text.Notice(NoticeWarning, MsgFavoritesFull), err
		}
		return on, s.text.Notice(NoticeError, MsgLoadFailed), err
	}

	if on {
		return true, s.text.Notice(NoticeSuccess, MsgFavoriteAdded), nil
	}
	return false, s.text.Notice(NoticeSuccess, MsgFavoriteRemoved), nil
}

// currentSource picks the configured default source, or the first one when
// the default is not among sources
func (s *Service) currentSource(sources []links.Link) *links.Link {
	sel := links.NewSelector()
	sel.Register(sources)
	if s.defaultSrc != "" {
		sel.ByName(s.defaultSrc)
	}
	cur, ok := sel.Current()
	if !ok {
		return nil
	}
	return &cur
}

func (s *Service) listFetcher(kind models.MediaKind, fetch func(ctx context.Context) (*tmdb.ListResponse, error)) cache.Fetcher {
	return func(ctx context.Context) ([]models.DisplayRecord, error) {
		resp, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return FromList(resp, kind, s.images), nil
	}
}

// cards shortens descriptions for grid display
func (s *Service) cards(items []models.DisplayRecord) []models.DisplayRecord {
	if items == nil {
		return []models.DisplayRecord{}
	}
	for i := range items {
		items[i].Description = Excerpt(items[i].Description, s.excerptLen)
	}
	return items
}

func (s *Service) logFailure(ctx context.Context, view string, err error) {
	s.logger.WithFields(map[string]interface{}{
		"view":  view,
		"code":  string(errors.GetErrorCode(err)),
		"error": err,
	}).WarnContext(ctx, "catalog view degraded")
}

func truncate(items []models.DisplayRecord, n int) []models.DisplayRecord {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// genreLabel prefers the names TMDB sent and falls back to the local map
func genreLabel(d models.Details) string {
	if len(d.Genres) == 0 {
		return GenreLabel(d.GenreIDs)
	}
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

func moviesKey(genre string, page int) cache.Key {
	return cache.Key{Category: "movies", Param: genre + "/" + strconv.Itoa(page)}
}

func tvKey(page int) cache.Key {
	return cache.Key{Category: "tv", Param: strconv.Itoa(page)}
}
