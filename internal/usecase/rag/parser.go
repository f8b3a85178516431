package rag

import (
	"regexp"
	"strings"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
)

var timestampLine = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}\.\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}\.\d{3})`)

// ParseVTT converts raw WEBVTT caption text into ordered segments.
//
// The scanner is deliberately forgiving: unknown or malformed lines are
// skipped rather than treated as errors, so a partially broken caption file
// still yields every well-formed cue. A cue whose text trims to empty is
// dropped silently.
func ParseVTT(content string) []entities.Segment {
	lines := strings.Split(content, "\n")
	var segments []entities.Segment
	i := 0

	// skip header lines
	for i < len(lines) && strings.EqualFold(strings.TrimSpace(lines[i]), "WEBVTT") {
		i++
	}

	for i < len(lines) {
		// optional numeric cue index
		if isDigitOnly(strings.TrimSpace(lines[i])) {
			i++
		}

		if i >= len(lines) {
			break
		}

		m := timestampLine.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		start, end := m[1], m[2]
		i++

		// accumulate cue text until a blank line
		var textLines []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			textLines = append(textLines, strings.TrimSpace(lines[i]))
			i++
		}

		if text := strings.Join(textLines, " "); text != "" {
			segments = append(segments, entities.Segment{
				Start: start,
				End:   end,
				Text:  text,
			})
		}

		// skip blank separators
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
	}

	return segments
}

// isDigitOnly checks if a string contains only digits
func isDigitOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
