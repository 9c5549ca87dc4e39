// Package links builds embed-player URLs from an external id and keeps the
// player's current source and quality selection.
package links

import (
	"strings"

	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/models"
)

const (
	externalIDPrefix = "tt"
	showSuffix       = "?s=1&e=1"
)

// Link is one playable source for a title
type Link struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Quality     string `json:"quality,omitempty"`
	Reliability string `json:"reliability,omitempty"`
}

// Builder turns external ids into embed URLs over a fixed set of sources
type Builder struct {
	sources []config.SourceConfig
}

// NewBuilder creates a builder over sources in display order
func NewBuilder(sources []config.SourceConfig) *Builder {
	return &Builder{sources: sources}
}

// NormalizeExternalID trims id and prefixes "tt" when missing. Empty input
// stays empty.
func NormalizeExternalID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.HasPrefix(id, externalIDPrefix) {
		return id
	}
	return externalIDPrefix + id
}

// BuildLinks maps each source key to its embed URL. Shows get the first
// episode suffix. An empty id yields an empty map, meaning nothing is
// playable.
func (b *Builder) BuildLinks(externalID string, kind models.MediaKind) map[string]string {
	out := make(map[string]string, len(b.sources))
	for _, l := range b.Sources(externalID, kind) {
		out[l.Key] = l.URL
	}
	return out
}

// Sources is BuildLinks in configured order, with display metadata
func (b *Builder) Sources(externalID string, kind models.MediaKind) []Link {
	id := NormalizeExternalID(externalID)
	if id == "" {
		return []Link{}
	}

	out := make([]Link, 0, len(b.sources))
	for _, s := range b.sources {
		url := s.URL + id
		if kind == models.MediaKindShow {
			url += showSuffix
		}
		out = append(out, Link{
			Key:         s.Key,
			Name:        displayName(s),
			URL:         url,
			Quality:     s.Quality,
			Reliability: s.Reliability,
		})
	}
	return out
}

func displayName(s config.SourceConfig) string {
	if s.Name != "" {
		return s.Name
	}
	return s.Key
}
