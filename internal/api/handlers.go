package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/glefebvre/cinevo/internal/catalog"
	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/links"
	"github.com/glefebvre/cinevo/internal/models"
	"github.com/glefebvre/cinevo/internal/subtitle"
)

const defaultHistoryLimit = 10

func (s *Server) healthCheck(c *gin.Context) {
	if err := s.health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

func (s *Server) home(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Home(c.Request.Context()))
}

func (s *Server) movies(c *gin.Context) {
	genre := c.DefaultQuery("genre", "all")
	c.JSON(http.StatusOK, s.catalog.Movies(c.Request.Context(), genre, queryInt(c, "page", 1)))
}

func (s *Server) tv(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.TV(c.Request.Context(), queryInt(c, "page", 1)))
}

func (s *Server) trending(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Trending(c.Request.Context()))
}

func (s *Server) search(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Search(c.Request.Context(), c.Query("q")))
}

func (s *Server) details(c *gin.Context) {
	kind, err := models.ParseMediaKind(c.Param("kind"))
	if err != nil {
		s.respondError(c, errors.ValidationError(err.Error()), catalog.MsgDetailsFailed)
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		s.respondError(c, errors.ValidationError("invalid id"), catalog.MsgDetailsFailed)
		return
	}

	view, err := s.catalog.Details(c.Request.Context(), id, kind)
	if err != nil {
		s.respondError(c, err, catalog.MsgDetailsFailed)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) listFavorites(c *gin.Context) {
	store := s.catalog.Favorites()
	if store == nil {
		s.respondError(c, errors.NotFoundError("feature", "favorites"), catalog.MsgLoadFailed)
		return
	}

	list := store.List()
	c.JSON(http.StatusOK, FavoritesResponse{Favorites: list, Total: len(list)})
}

func (s *Server) toggleFavorite(c *gin.Context) {
	var req ToggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.Wrap(err, errors.CodeInvalidInput, "invalid favorite"), catalog.MsgLoadFailed)
		return
	}

	kind := models.MediaKindMovie
	if req.MediaType != "" {
		parsed, err := models.ParseMediaKind(req.MediaType)
		if err != nil {
			s.respondError(c, errors.ValidationError(err.Error()), catalog.MsgLoadFailed)
			return
		}
		kind = parsed
	}

	on, notice, err := s.catalog.ToggleFavorite(c.Request.Context(), models.FavoriteEntry{
		ID:        req.ID,
		Title:     req.Title,
		Poster:    req.Poster,
		MediaKind: kind,
	})
	if err != nil {
		if errors.GetErrorCode(err) == errors.CodeLimitReached {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   err.Error(),
				Message: notice.Message,
				Code:    string(errors.CodeLimitReached),
			})
			return
		}
		s.respondError(c, err, catalog.MsgLoadFailed)
		return
	}

	c.JSON(http.StatusOK, ToggleFavoriteResponse{ID: req.ID, Favorite: on, Notice: notice})
}

func (s *Server) listHistory(c *gin.Context) {
	store := s.catalog.History()
	if store == nil {
		s.respondError(c, errors.NotFoundError("feature", "history"), catalog.MsgLoadFailed)
		return
	}

	entries := store.MostRecent(queryInt(c, "limit", defaultHistoryLimit))
	c.JSON(http.StatusOK, HistoryResponse{Entries: entries, Total: store.Len()})
}

func (s *Server) recordHistory(c *gin.Context) {
	store := s.catalog.History()
	if store == nil {
		s.respondError(c, errors.NotFoundError("feature", "history"), catalog.MsgLoadFailed)
		return
	}

	var req RecordHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.Wrap(err, errors.CodeInvalidInput, "invalid history entry"), catalog.MsgLoadFailed)
		return
	}

	entry, err := store.Record(c.Request.Context(), req.ContentID, req.Title, req.Duration, req.Watched)
	if err != nil {
		s.respondError(c, err, catalog.MsgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) clearHistory(c *gin.Context) {
	store := s.catalog.History()
	if store == nil {
		s.respondError(c, errors.NotFoundError("feature", "history"), catalog.MsgLoadFailed)
		return
	}

	if err := store.Clear(c.Request.Context()); err != nil {
		s.respondError(c, err, catalog.MsgLoadFailed)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) subtitleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"enabled":   s.cfg.Subtitles.Enabled,
		"auto_load": s.cfg.Subtitles.AutoLoad,
		"languages": subtitle.Languages(s.cfg.Subtitles),
	})
}

func (s *Server) subtitleTrack(c *gin.Context) {
	track, ok := s.loadTrack(c)
	if !ok {
		return
	}

	// loaded tracks are shared; visibility is decided per request on a copy
	view := *track
	if c.Query("enabled") == "false" && view.Enabled {
		view.Toggle()
	}

	resp := SubtitleTrackResponse{
		ExternalID: links.NormalizeExternalID(c.Param("externalId")),
		Language:   view.Language,
		Enabled:    view.Enabled,
		Cues:       view.Cues,
	}
	if raw := c.Query("at"); raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.respondError(c, errors.Wrap(err, errors.CodeValidation, "invalid playback time"), catalog.MsgSubtitlesMissing)
			return
		}
		text := view.At(seconds)
		resp.Text = &text
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) downloadSubtitle(c *gin.Context) {
	track, ok := s.loadTrack(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("%s.%s.vtt", links.NormalizeExternalID(c.Param("externalId")), track.Language)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/vtt; charset=utf-8", []byte(track.VTT()))
}

func (s *Server) loadTrack(c *gin.Context) (*subtitle.Track, bool) {
	if !s.cfg.Subtitles.Enabled || s.subtitles == nil {
		s.respondError(c, errors.NotFoundError("feature", "subtitles"), catalog.MsgSubtitlesMissing)
		return nil, false
	}

	externalID := links.NormalizeExternalID(c.Param("externalId"))
	if externalID == "" {
		s.respondError(c, errors.ValidationError("external id is required"), catalog.MsgSubtitlesMissing)
		return nil, false
	}

	lang := c.DefaultQuery("lang", s.cfg.Subtitles.DefaultLanguage)
	if strings.TrimSpace(lang) == "" {
		s.respondError(c, errors.ValidationError("subtitle language is required"), catalog.MsgLanguageRequired)
		return nil, false
	}
	code, err := subtitle.Normalize(lang)
	if err != nil {
		s.respondError(c, errors.Wrap(err, errors.CodeValidation, "invalid subtitle language"), catalog.MsgLanguageRequired)
		return nil, false
	}

	track, err := s.subtitles.Load(c.Request.Context(), externalID, c.Query("title"), code)
	if err != nil {
		s.respondError(c, err, catalog.MsgSubtitlesMissing)
		return nil, false
	}
	return track, true
}

func (s *Server) streamingLinks(c *gin.Context) {
	kind := models.MediaKindMovie
	if raw := c.Query("kind"); raw != "" {
		parsed, err := models.ParseMediaKind(raw)
		if err != nil {
			s.respondError(c, errors.ValidationError(err.Error()), catalog.MsgNoPlayableSource)
			return
		}
		kind = parsed
	}

	externalID := links.NormalizeExternalID(c.Param("externalId"))
	sources := s.links.Sources(externalID, kind)
	if c.Query("probe") == "true" && s.prober != nil {
		sources = s.prober.Available(c.Request.Context(), sources)
	}

	sel := links.NewSelector()
	sel.Register(sources)
	if name := c.Query("source"); name != "" {
		if !selectSource(sel, name) {
			s.respondError(c, errors.ValidationError(fmt.Sprintf("unknown source %q", name)), catalog.MsgNoPlayableSource)
			return
		}
	} else if s.cfg.Streaming.Default != "" {
		sel.ByName(s.cfg.Streaming.Default)
	}

	quality, qualities, err := pickQuality(c.Query("quality"), c.Query("downlink"))
	if err != nil {
		s.respondError(c, err, catalog.MsgNoPlayableSource)
		return
	}

	resp := LinksResponse{
		ExternalID: externalID,
		Kind:       kind,
		Links:      s.links.BuildLinks(externalID, kind),
		Sources:    sel.Sources(),
		Quality:    quality,
		Qualities:  qualities,
	}
	if cur, ok := sel.Current(); ok {
		resp.Current = &cur
	}
	c.JSON(http.StatusOK, resp)
}

// selectSource selects by position when name is a number, otherwise by
// source name or key
func selectSource(sel *links.Selector, name string) bool {
	if index, err := strconv.Atoi(name); err == nil {
		_, err := sel.Switch(index)
		return err == nil
	}
	_, ok := sel.ByName(name)
	return ok
}

// pickQuality applies a requested quality and, when a downlink in Mbps is
// given, limits the choice to what that connection sustains. Without an
// explicit request the best sustainable quality below the default wins.
func pickQuality(requested, downlink string) (string, []string, error) {
	q := links.NewQuality()
	if requested != "" {
		if err := q.Set(requested); err != nil {
			return "", nil, errors.Wrap(err, errors.CodeValidation, "invalid quality")
		}
	}

	mbps := 0.0
	if downlink != "" {
		v, err := strconv.ParseFloat(downlink, 64)
		if err != nil {
			return "", nil, errors.Wrap(err, errors.CodeValidation, "invalid downlink")
		}
		mbps = v
	}

	allowed := links.ForDownlink(mbps)
	for _, a := range allowed {
		if a == q.Current() {
			return q.Current(), allowed, nil
		}
	}
	if err := q.Set(allowed[0]); err != nil {
		return "", nil, err
	}
	return q.Current(), allowed, nil
}

// respondError maps an error code to a status and answers with a localized
// message for msgKey
func (s *Server) respondError(c *gin.Context, err error, msgKey string) {
	code := errors.GetErrorCode(err)
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		s.logger.WithFields(map[string]interface{}{
			"path": c.FullPath(),
			"code": string(code),
		}).ErrorContext(c.Request.Context(), "request failed", err)
	}

	c.JSON(status, ErrorResponse{
		Error:   err.Error(),
		Message: s.catalog.Localizer().Text(msgKey),
		Code:    string(code),
	})
}

func statusFor(err error) int {
	switch {
	case errors.IsValidationError(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	}

	switch errors.GetErrorCode(err) {
	case errors.CodeExternalService, errors.CodeServiceUnavailable, errors.CodeServiceTimeout,
		errors.CodeUnauthorized, errors.CodeRateLimited, errors.CodeMalformedData:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
