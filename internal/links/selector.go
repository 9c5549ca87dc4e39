package links

import (
	"fmt"
	"sync"
)

// Selector tracks which of the registered sources is playing
type Selector struct {
	mu      sync.RWMutex
	sources []Link
	current int
}

// NewSelector creates an empty selector
func NewSelector() *Selector {
	return &Selector{}
}

// Register replaces the sources and selects the first one
func (s *Selector) Register(links []Link) []Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources = append([]Link(nil), links...)
	s.current = 0
	return s.snapshot()
}

// Current returns the selected source, false when none are registered
func (s *Selector) Current() (Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current < 0 || s.current >= len(s.sources) {
		return Link{}, false
	}
	return s.sources[s.current], true
}

// Switch selects the source at index. Out of range leaves the selection
// unchanged.
func (s *Selector) Switch(index int) (Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.sources) {
		return Link{}, fmt.Errorf("source index %d out of range [0,%d)", index, len(s.sources))
	}
	s.current = index
	return s.sources[index], nil
}

// ByName selects the first source whose display name or key matches
func (s *Selector) ByName(name string) (Link, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.sources {
		if l.Name == name || l.Key == name {
			s.current = i
			return l, true
		}
	}
	return Link{}, false
}

// Sources returns the registered sources
func (s *Selector) Sources() []Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Selector) snapshot() []Link {
	return append([]Link(nil), s.sources...)
}
