// Package subtitle parses and renders WebVTT-style cue text and answers
// point-in-time lookups over the resulting cues.
package subtitle

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/glefebvre/cinevo/internal/logger"
	"github.com/glefebvre/cinevo/internal/models"
)

const (
	headerSentinel = "WEBVTT"
	arrow          = "-->"
)

// ParseStats tracks what a parse run saw
type ParseStats struct {
	TotalLines          int
	Cues                int
	DroppedCues         int
	MalformedTimestamps int
}

// Parser turns cue-timing text into cues
type Parser struct {
	logger *logger.Logger
	stats  ParseStats
}

// NewParser creates a parser that logs through the application logger
func NewParser() *Parser {
	return &Parser{logger: logger.AppLogger()}
}

// NewParserWithLogger creates a parser with a custom logger
func NewParserWithLogger(log *logger.Logger) *Parser {
	return &Parser{logger: log}
}

// Parse converts content into cues in input order.
//
// A timing line opens a cue and following non-blank lines are joined with
// single spaces. Only a blank line or end of input commits the open cue, and
// only if it has text. A timing line that arrives while a cue is still open
// replaces it, so that cue is dropped.
func (p *Parser) Parse(content string) []models.Cue {
	p.stats = ParseStats{}
	cues := make([]models.Cue, 0)

	var open *models.Cue
	commit := func() {
		if open == nil {
			return
		}
		if open.Text != "" {
			cues = append(cues, *open)
		} else {
			p.stats.DroppedCues++
		}
		open = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.stats.TotalLines++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, headerSentinel):
			continue

		case strings.Contains(line, arrow):
			if open != nil {
				p.stats.DroppedCues++
			}
			parts := strings.SplitN(line, arrow, 2)
			open = &models.Cue{
				Start: p.timestamp(parts[0]),
				End:   p.timestamp(parts[1]),
			}

		case line == "":
			if open != nil && open.Text != "" {
				commit()
			}

		case open != nil:
			if open.Text != "" {
				open.Text += " "
			}
			open.Text += line
		}
	}
	commit()

	if err := scanner.Err(); err != nil {
		p.logger.WithFields(map[string]interface{}{
			"error": err,
			"cues":  len(cues),
		}).Warn("subtitle input truncated")
	}

	p.stats.Cues = len(cues)
	p.logger.WithFields(map[string]interface{}{
		"lines":     p.stats.TotalLines,
		"cues":      p.stats.Cues,
		"dropped":   p.stats.DroppedCues,
		"malformed": p.stats.MalformedTimestamps,
	}).Debug("subtitle parsing complete")

	return cues
}

// GetStats returns statistics for the last Parse call
func (p *Parser) GetStats() ParseStats {
	return p.stats
}

func (p *Parser) timestamp(operand string) float64 {
	seconds, ok := ParseTimestamp(operand)
	if !ok {
		p.stats.MalformedTimestamps++
	}
	return seconds
}

// ParseTimestamp converts "HH:MM:SS.mmm" or "HH:MM:SS" into seconds. Cue
// settings after the timestamp are ignored and a comma decimal separator is
// accepted. Malformed input yields 0 and false.
func ParseTimestamp(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}

	parts := strings.Split(strings.Replace(fields[0], ",", ".", 1), ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, false
	}
	secs, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || secs < 0 {
		return 0, false
	}

	return float64(hours*3600+minutes*60) + secs, true
}

// Parse parses content with a default parser
func Parse(content string) []models.Cue {
	return NewParser().Parse(content)
}
