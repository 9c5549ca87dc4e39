package subtitle

import (
	"fmt"
	"math"
	"strings"

	"github.com/glefebvre/cinevo/internal/models"
)

// Lookup returns the text of the first cue containing t, or "" when none does.
// Cues are scanned in order, so overlapping cues resolve to the earliest one.
func Lookup(cues []models.Cue, t float64) string {
	for _, c := range cues {
		if c.Contains(t) {
			return c.Text
		}
	}
	return ""
}

// Serialize renders cues as a WEBVTT document that Parse reads back with the
// same timings, to the millisecond, and the same text.
func Serialize(cues []models.Cue) string {
	var b strings.Builder
	b.WriteString(headerSentinel)
	b.WriteString("\n\n")
	for _, c := range cues {
		b.WriteString(FormatTimestamp(c.Start))
		b.WriteString(" ")
		b.WriteString(arrow)
		b.WriteString(" ")
		b.WriteString(FormatTimestamp(c.End))
		b.WriteString("\n")
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// FormatTimestamp renders seconds as zero-padded HH:MM:SS.mmm
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalMS := int64(math.Round(seconds * 1000))

	hours := totalMS / 3_600_000
	minutes := (totalMS % 3_600_000) / 60_000
	secs := (totalMS % 60_000) / 1000
	ms := totalMS % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, ms)
}
