package subtitle

import (
	"github.com/glefebvre/cinevo/internal/models"
)

// Track is a loaded subtitle track for one language
type Track struct {
	Language string       `json:"language"`
	Cues     []models.Cue `json:"cues"`
	Enabled  bool         `json:"enabled"`
}

// NewTrack parses content into an enabled track
func NewTrack(language, content string) *Track {
	return &Track{
		Language: language,
		Cues:     Parse(content),
		Enabled:  true,
	}
}

// Toggle flips visibility and returns the new state
func (t *Track) Toggle() bool {
	t.Enabled = !t.Enabled
	return t.Enabled
}

// At returns the text to display at playback time seconds. A disabled track
// always shows nothing.
func (t *Track) At(seconds float64) string {
	if t == nil || !t.Enabled {
		return ""
	}
	return Lookup(t.Cues, seconds)
}

// VTT renders the track as a downloadable document
func (t *Track) VTT() string {
	return Serialize(t.Cues)
}
