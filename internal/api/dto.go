package api

import (
	"github.com/glefebvre/cinevo/internal/catalog"
	"github.com/glefebvre/cinevo/internal/links"
	"github.com/glefebvre/cinevo/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ToggleFavoriteRequest is the body of POST /favorites/toggle
type ToggleFavoriteRequest struct {
	ID        int    `json:"id" binding:"required,min=1"`
	Title     string `json:"title"`
	Poster    string `json:"poster"`
	MediaType string `json:"mediaType"`
}

// ToggleFavoriteResponse reports the new favorite state
type ToggleFavoriteResponse struct {
	ID       int            `json:"id"`
	Favorite bool           `json:"favorite"`
	Notice   catalog.Notice `json:"notice"`
}

// FavoritesResponse lists favorites
type FavoritesResponse struct {
	Favorites []models.FavoriteEntry `json:"favorites"`
	Total     int                    `json:"total"`
}

// RecordHistoryRequest is the body of POST /history
type RecordHistoryRequest struct {
	ContentID int     `json:"contentId" binding:"required,min=1"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration" binding:"min=0"`
	Watched   bool    `json:"watched"`
}

// HistoryResponse lists the most recent history entries first
type HistoryResponse struct {
	Entries []models.HistoryEntry `json:"entries"`
	Total   int                   `json:"total"`
}

// SubtitleTrackResponse is a loaded subtitle track
type SubtitleTrackResponse struct {
	ExternalID string       `json:"external_id"`
	Language   string       `json:"language"`
	Enabled    bool         `json:"enabled"`
	Cues       []models.Cue `json:"cues"`
	Text       *string      `json:"text,omitempty"`
}

// LinksResponse holds the streaming links for an external id
type LinksResponse struct {
	ExternalID string            `json:"external_id"`
	Kind       models.MediaKind  `json:"kind"`
	Links      map[string]string `json:"links"`
	Sources    []links.Link      `json:"sources"`
	Current    *links.Link       `json:"current,omitempty"`
	Quality    string            `json:"quality"`
	Qualities  []string          `json:"qualities"`
}
