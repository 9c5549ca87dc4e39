package models

// Cue is a time-bounded subtitle entry. Start and End are in seconds.
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Contains reports whether t falls inside the cue, bounds inclusive
func (c Cue) Contains(t float64) bool {
	return t >= c.Start && t <= c.End
}
