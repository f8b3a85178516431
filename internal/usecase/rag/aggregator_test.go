package rag

import (
	"strings"
	"testing"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
)

func TestAggregateWindows_TwoWindowScenario(t *testing.T) {
	segments := ParseVTT(sampleVTT)

	windows := AggregateWindows(segments, 45)
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d: %+v", len(windows), windows)
	}

	// segment 2 ends at 50s which exceeds 0+45, so segment 1 flushes alone
	if windows[0].Start != "00:00:00.000" || windows[0].End != "00:00:02.000" || windows[0].Text != "Hello world" {
		t.Fatalf("unexpected first window %+v", windows[0])
	}
	if windows[1].Start != "00:00:02.000" || windows[1].End != "00:00:50.000" || windows[1].Text != "Second line" {
		t.Fatalf("unexpected second window %+v", windows[1])
	}
}

func TestAggregateWindows_MergesWithinWindow(t *testing.T) {
	segments := []entities.Segment{
		{Start: "00:00:00.000", End: "00:00:10.000", Text: "one"},
		{Start: "00:00:10.000", End: "00:00:20.000", Text: "two"},
		{Start: "00:00:20.000", End: "00:00:40.000", Text: "three"},
		{Start: "00:00:40.000", End: "00:01:00.000", Text: "four"},
	}

	windows := AggregateWindows(segments, 45)
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d: %+v", len(windows), windows)
	}
	if windows[0].Text != "one two three" {
		t.Fatalf("unexpected first window text %q", windows[0].Text)
	}
	if windows[1].Text != "four" {
		t.Fatalf("unexpected second window text %q", windows[1].Text)
	}
}

func TestAggregateWindows_NoOverlapAndTextPreserved(t *testing.T) {
	segments := []entities.Segment{
		{Start: "00:00:00.000", End: "00:00:30.000", Text: "a"},
		{Start: "00:00:30.000", End: "00:00:44.000", Text: "b"},
		{Start: "00:00:44.000", End: "00:01:20.000", Text: "c"},
		{Start: "00:01:20.000", End: "00:02:30.000", Text: "d"},
		{Start: "00:02:30.000", End: "00:02:31.000", Text: "e"},
	}

	windows := AggregateWindows(segments, 45)

	// windows must be contiguous and ordered with no overlap
	for i := 1; i < len(windows); i++ {
		prevEnd, _ := entities.TimestampToSeconds(windows[i-1].End)
		curStart, _ := entities.TimestampToSeconds(windows[i].Start)
		if curStart < prevEnd {
			t.Fatalf("window %d overlaps previous: %+v %+v", i, windows[i-1], windows[i])
		}
	}

	// concatenated window text equals concatenated segment text
	var segTexts, winTexts []string
	for _, s := range segments {
		segTexts = append(segTexts, s.Text)
	}
	for _, w := range windows {
		winTexts = append(winTexts, w.Text)
	}
	if strings.Join(winTexts, " ") != strings.Join(segTexts, " ") {
		t.Fatalf("text lost during aggregation: %q vs %q",
			strings.Join(winTexts, " "), strings.Join(segTexts, " "))
	}
}

func TestAggregateWindows_OversizedSegmentKeptWhole(t *testing.T) {
	segments := []entities.Segment{
		{Start: "00:00:00.000", End: "00:02:00.000", Text: "a two minute monologue"},
	}

	windows := AggregateWindows(segments, 45)
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].Text != "a two minute monologue" {
		t.Fatalf("oversized segment text lost: %q", windows[0].Text)
	}
	if windows[0].Start != "00:00:00.000" || windows[0].End != "00:02:00.000" {
		t.Fatalf("unexpected window bounds %+v", windows[0])
	}
}

func TestAggregateWindows_Empty(t *testing.T) {
	if windows := AggregateWindows(nil, 45); len(windows) != 0 {
		t.Fatalf("expected no windows, got %+v", windows)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	sec, err := entities.TimestampToSeconds("01:02:03.456")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if sec != 3723.456 {
		t.Fatalf("expected 3723.456, got %f", sec)
	}
	if got := entities.SecondsToTimestamp(sec); got != "01:02:03.456" {
		t.Fatalf("round trip produced %q", got)
	}

	// millisecond carry must roll into the seconds field
	if got := entities.SecondsToTimestamp(1.9996); got != "00:00:02.000" {
		t.Fatalf("expected 00:00:02.000, got %q", got)
	}
	if got := entities.SecondsToTimestamp(3599.9995); got != "01:00:00.000" {
		t.Fatalf("expected 01:00:00.000, got %q", got)
	}

	if _, err := entities.TimestampToSeconds("nonsense"); err == nil {
		t.Fatalf("expected error for malformed timestamp")
	}
}
