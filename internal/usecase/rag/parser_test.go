package rag

import (
	"reflect"
	"testing"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
)

const sampleVTT = "WEBVTT\n\n1\n00:00:00.000 --> 00:00:02.000\nHello world\n\n2\n00:00:02.000 --> 00:00:50.000\nSecond line\n"

func TestParseVTT_WellFormed(t *testing.T) {
	segments := ParseVTT(sampleVTT)

	want := []entities.Segment{
		{Start: "00:00:00.000", End: "00:00:02.000", Text: "Hello world"},
		{Start: "00:00:02.000", End: "00:00:50.000", Text: "Second line"},
	}
	if !reflect.DeepEqual(segments, want) {
		t.Fatalf("got %+v want %+v", segments, want)
	}
}

func TestParseVTT_OrderAndInvariants(t *testing.T) {
	content := "WEBVTT\n\n" +
		"1\n00:00:00.000 --> 00:00:03.500\nfirst cue\nspans two lines\n\n" +
		"2\n00:00:03.500 --> 00:00:07.250\nsecond cue\n\n" +
		"3\n00:01:00.000 --> 00:01:05.000\nthird cue\n"

	segments := ParseVTT(content)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}

	var prevStart float64 = -1
	for i, s := range segments {
		start, err := entities.TimestampToSeconds(s.Start)
		if err != nil {
			t.Fatalf("segment %d bad start: %v", i, err)
		}
		end, err := entities.TimestampToSeconds(s.End)
		if err != nil {
			t.Fatalf("segment %d bad end: %v", i, err)
		}
		if start > end {
			t.Fatalf("segment %d start %f after end %f", i, start, end)
		}
		if s.Text == "" {
			t.Fatalf("segment %d has empty text", i)
		}
		if start < prevStart {
			t.Fatalf("segments out of file order at %d", i)
		}
		prevStart = start
	}

	if segments[0].Text != "first cue spans two lines" {
		t.Fatalf("multi-line cue not joined with spaces: %q", segments[0].Text)
	}
}

func TestParseVTT_MalformedLinesTolerated(t *testing.T) {
	content := "WEBVTT\n\n" +
		"NOTE this is a comment\n\n" +
		"garbage line without timestamps\n" +
		"1\n00:00:00.000 --> 00:00:02.000\nsurvivor\n\n" +
		"not-a-number\n00:00:9.000 --> broken\nlost text\n\n" +
		"2\n00:00:02.000 --> 00:00:04.000\nalso kept\n"

	segments := ParseVTT(content)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segments), segments)
	}
	if segments[0].Text != "survivor" || segments[1].Text != "also kept" {
		t.Fatalf("unexpected segments %+v", segments)
	}
}

func TestParseVTT_EmptyCueDropped(t *testing.T) {
	content := "WEBVTT\n\n1\n00:00:00.000 --> 00:00:02.000\n\n\n2\n00:00:02.000 --> 00:00:04.000\nkept\n"

	segments := ParseVTT(content)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Text != "kept" {
		t.Fatalf("unexpected segment %+v", segments[0])
	}
}

func TestParseVTT_Idempotent(t *testing.T) {
	first := ParseVTT(sampleVTT)
	second := ParseVTT(sampleVTT)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-parsing identical content diverged: %+v vs %+v", first, second)
	}
}

func TestParseVTT_EmptyInput(t *testing.T) {
	if segments := ParseVTT(""); len(segments) != 0 {
		t.Fatalf("expected no segments for empty input, got %+v", segments)
	}
}
