package rag

import (
	"strings"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
)

// DefaultWindowSeconds is the target duration of one context window
const DefaultWindowSeconds = 45

// AggregateWindows merges consecutive segments into context windows of
// roughly windowSeconds duration.
//
// A window flushes when the incoming segment's end time would extend past the
// open window's start plus windowSeconds. The flushed window spans from its
// first buffered segment's start to its last buffered segment's end, with
// texts joined by single spaces. A single segment longer than windowSeconds
// becomes its own window rather than being split, and the trailing buffer
// always flushes, so window texts concatenate to exactly the segment texts.
func AggregateWindows(segments []entities.Segment, windowSeconds float64) []entities.Window {
	if windowSeconds <= 0 {
		windowSeconds = DefaultWindowSeconds
	}

	var windows []entities.Window
	var buffer []entities.Segment
	windowStart := -1.0

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		texts := make([]string, len(buffer))
		for i, s := range buffer {
			texts[i] = s.Text
		}
		windows = append(windows, entities.Window{
			Start: buffer[0].Start,
			End:   buffer[len(buffer)-1].End,
			Text:  strings.Join(texts, " "),
		})
		buffer = buffer[:0]
	}

	for _, seg := range segments {
		startSec, err := entities.TimestampToSeconds(seg.Start)
		if err != nil {
			continue
		}
		endSec, err := entities.TimestampToSeconds(seg.End)
		if err != nil {
			continue
		}

		if windowStart < 0 {
			windowStart = startSec
		}

		if endSec > windowStart+windowSeconds && len(buffer) > 0 {
			flush()
			windowStart = startSec
		}

		buffer = append(buffer, seg)
	}

	flush()

	return windows
}
