package models

import (
	"fmt"
	"strings"
)

// MediaKind distinguishes movies from TV shows
type MediaKind string

const (
	MediaKindMovie MediaKind = "movie"
	MediaKindShow  MediaKind = "tv"
)

// ParseMediaKind accepts the API spelling ("movie", "tv") and the long form "show"
func ParseMediaKind(s string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return MediaKindMovie, nil
	case "tv", "show", "shows", "series":
		return MediaKindShow, nil
	default:
		return "", fmt.Errorf("unknown media kind: %q", s)
	}
}

// IsValid reports whether k is one of the known kinds
func (k MediaKind) IsValid() bool {
	return k == MediaKindMovie || k == MediaKindShow
}

// DisplayRecord is the normalized, UI-ready representation of a catalog item.
// Rating always has one fraction digit and Poster/Backdrop are never empty.
type DisplayRecord struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Poster      string    `json:"poster"`
	Backdrop    string    `json:"backdrop"`
	Rating      float64   `json:"rating"`
	VoteCount   int       `json:"vote_count"`
	ReleaseDate string    `json:"release_date,omitempty"`
	MediaKind   MediaKind `json:"media_type"`
	GenreIDs    []int     `json:"genre_ids"`
	Popularity  float64   `json:"popularity"`
}

// Year returns the release year, or 0 when the date is absent
func (r DisplayRecord) Year() int {
	if len(r.ReleaseDate) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(r.ReleaseDate[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}

// Genre is a named genre attached to a details record
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is a billed cast entry
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Video is a trailer or clip reference
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// NamedEntity covers networks, companies, countries and languages
type NamedEntity struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Season summarizes one season of a show
type Season struct {
	Number       int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date,omitempty"`
}

// Details extends a DisplayRecord with the detail-page fields and player links
type Details struct {
	DisplayRecord

	Genres              []Genre           `json:"genres"`
	Status              string            `json:"status,omitempty"`
	Runtime             int               `json:"runtime,omitempty"`
	Budget              int64             `json:"budget,omitempty"`
	Revenue             int64             `json:"revenue,omitempty"`
	NumberOfSeasons     int               `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes    int               `json:"number_of_episodes,omitempty"`
	InProduction        bool              `json:"in_production,omitempty"`
	FirstSeason         *Season           `json:"first_season,omitempty"`
	Networks            []NamedEntity     `json:"networks,omitempty"`
	ProductionCountries []NamedEntity     `json:"production_countries"`
	ProductionCompanies []NamedEntity     `json:"production_companies"`
	SpokenLanguages     []NamedEntity     `json:"spoken_languages"`
	Cast                []CastMember      `json:"cast"`
	Videos              []Video           `json:"videos"`
	ExternalID          string            `json:"imdb_id"`
	StreamingLinks      map[string]string `json:"streaming_links"`
}
