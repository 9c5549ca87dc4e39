package links

import (
	"fmt"
	"sync"
)

// Available qualities, best first
var Qualities = []string{"1080p", "720p", "480p", "360p"}

const defaultQuality = "720p"

// Quality holds the preferred playback quality
type Quality struct {
	mu      sync.RWMutex
	current string
}

// NewQuality starts at 720p
func NewQuality() *Quality {
	return &Quality{current: defaultQuality}
}

// Current returns the preferred quality
func (q *Quality) Current() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.current
}

// Set changes the preferred quality; unknown values are rejected
func (q *Quality) Set(quality string) error {
	for _, known := range Qualities {
		if known == quality {
			q.mu.Lock()
			q.current = quality
			q.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("unsupported quality %q", quality)
}

// ForDownlink lists the qualities a connection of mbps can sustain. Unknown
// bandwidth (zero or less) allows everything.
func ForDownlink(mbps float64) []string {
	switch {
	case mbps <= 0 || mbps > 10:
		return append([]string(nil), Qualities...)
	case mbps > 5:
		return append([]string(nil), Qualities[1:]...)
	default:
		return append([]string(nil), Qualities[2:]...)
	}
}
