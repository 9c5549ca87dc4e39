// Package catalog turns TMDB payloads into display records and assembles
// the browse, search and detail views.
package catalog

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/external/tmdb"
	"github.com/glefebvre/cinevo/internal/models"
)

const topCast = 5

// Images holds the image URL prefix and the placeholders used when a path
// is missing
type Images struct {
	Base            string
	DefaultPoster   string
	DefaultBackdrop string
}

// ImagesFrom reads image settings from configuration
func ImagesFrom(cfg *config.Config) Images {
	return Images{
		Base:            cfg.TMDB.ImageBase,
		DefaultPoster:   cfg.Content.DefaultPoster,
		DefaultBackdrop: cfg.Content.DefaultBackdrop,
	}
}

func (i Images) url(path *string, placeholder string) string {
	if path == nil || *path == "" {
		return placeholder
	}
	return i.Base + *path
}

// FromListItem maps a list or search item onto a DisplayRecord. Movies take
// title and release_date, shows take name and first_air_date.
func FromListItem(item tmdb.ListItem, kind models.MediaKind, images Images) models.DisplayRecord {
	title, date := item.Title, item.ReleaseDate
	if kind == models.MediaKindShow {
		title, date = item.Name, item.FirstAirDate
	}

	genreIDs := item.GenreIDs
	if genreIDs == nil {
		genreIDs = []int{}
	}

	return models.DisplayRecord{
		ID:          item.ID,
		Title:       title,
		Description: item.Overview,
		Poster:      images.url(item.PosterPath, images.DefaultPoster),
		Backdrop:    images.url(item.BackdropPath, images.DefaultBackdrop),
		Rating:      Rating(item.VoteAverage),
		VoteCount:   max(item.VoteCount, 0),
		ReleaseDate: date,
		MediaKind:   kind,
		GenreIDs:    genreIDs,
		Popularity:  item.Popularity,
	}
}

// FromList maps every item of a list response with one kind
func FromList(resp *tmdb.ListResponse, kind models.MediaKind, images Images) []models.DisplayRecord {
	if resp == nil {
		return []models.DisplayRecord{}
	}
	out := make([]models.DisplayRecord, 0, len(resp.Results))
	for _, item := range resp.Results {
		out = append(out, FromListItem(item, kind, images))
	}
	return out
}

// Rating rounds to one decimal and clamps to [0, 10]
func Rating(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 10 {
		return 10
	}
	return math.Round(v*10) / 10
}

// DetailsFrom maps a details payload, attaching streamingLinks as given
func DetailsFrom(resp *tmdb.DetailsResponse, kind models.MediaKind, images Images, streamingLinks map[string]string) models.Details {
	d := models.Details{
		DisplayRecord:       FromListItem(resp.ListItem, kind, images),
		Genres:              make([]models.Genre, 0, len(resp.Genres)),
		Status:              resp.Status,
		Budget:              resp.Budget,
		Revenue:             resp.Revenue,
		NumberOfSeasons:     resp.NumberOfSeasons,
		NumberOfEpisodes:    resp.NumberOfEpisodes,
		InProduction:        resp.InProduction,
		ProductionCountries: make([]models.NamedEntity, 0, len(resp.ProductionCountries)),
		ProductionCompanies: make([]models.NamedEntity, 0, len(resp.ProductionCompanies)),
		SpokenLanguages:     make([]models.NamedEntity, 0, len(resp.SpokenLanguages)),
		Cast:                make([]models.CastMember, 0, topCast),
		Videos:              make([]models.Video, 0, len(resp.Videos.Results)),
		ExternalID:          resp.IMDBID(),
		StreamingLinks:      streamingLinks,
	}
	if d.StreamingLinks == nil {
		d.StreamingLinks = map[string]string{}
	}
	if resp.Runtime != nil {
		d.Runtime = *resp.Runtime
	}

	for _, g := range resp.Genres {
		d.Genres = append(d.Genres, models.Genre{ID: g.ID, Name: g.Name})
	}
	if len(d.GenreIDs) == 0 {
		for _, g := range resp.Genres {
			d.GenreIDs = append(d.GenreIDs, g.ID)
		}
	}

	for _, c := range resp.ProductionCountries {
		d.ProductionCountries = append(d.ProductionCountries, models.NamedEntity{ID: c.ISO3166, Name: c.Name})
	}
	for _, c := range resp.ProductionCompanies {
		d.ProductionCompanies = append(d.ProductionCompanies, models.NamedEntity{ID: strconv.Itoa(c.ID), Name: c.Name})
	}
	for _, l := range resp.SpokenLanguages {
		name := l.Name
		if name == "" {
			name = l.EnglishName
		}
		d.SpokenLanguages = append(d.SpokenLanguages, models.NamedEntity{ID: l.ISO639, Name: name})
	}

	if kind == models.MediaKindShow {
		d.Networks = make([]models.NamedEntity, 0, len(resp.Networks))
		for _, n := range resp.Networks {
			d.Networks = append(d.Networks, models.NamedEntity{ID: strconv.Itoa(n.ID), Name: n.Name})
		}
		for _, s := range resp.Seasons {
			if s.SeasonNumber == 1 {
				d.FirstSeason = &models.Season{
					Number:       s.SeasonNumber,
					Name:         s.Name,
					EpisodeCount: s.EpisodeCount,
					AirDate:      s.AirDate,
				}
				break
			}
		}
	}

	for i, c := range resp.Credits.Cast {
		if i == topCast {
			break
		}
		member := models.CastMember{ID: c.ID, Name: c.Name, Character: c.Character}
		if c.ProfilePath != nil && *c.ProfilePath != "" {
			member.ProfilePath = images.Base + *c.ProfilePath
		}
		d.Cast = append(d.Cast, member)
	}

	for _, v := range resp.Videos.Results {
		d.Videos = append(d.Videos, models.Video{Key: v.Key, Name: v.Name, Site: v.Site, Type: v.Type})
	}

	return d
}

// Excerpt shortens s to at most limit runes, marking the cut with "...".
// A limit of zero or less leaves s unchanged.
func Excerpt(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
