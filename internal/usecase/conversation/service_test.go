package conversation

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateTitle(t *testing.T) {
	short := "what is the event loop?"
	if got := truncateTitle(short, 80); got != short {
		t.Fatalf("short title was modified: %q", got)
	}

	long := strings.Repeat("a", 100)
	if got := truncateTitle(long, 80); len(got) != 80 {
		t.Fatalf("expected 80 bytes, got %d", len(got))
	}

	// 30 Devanagari runes, 3 bytes each: byte 80 falls mid-rune
	multibyte := strings.Repeat("न", 30)
	got := truncateTitle(multibyte, 80)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated title is not valid UTF-8: %q", got)
	}
	if len(got) > 80 {
		t.Fatalf("expected at most 80 bytes, got %d", len(got))
	}
	if got != strings.Repeat("न", 26) {
		t.Fatalf("expected 26 full runes, got %d", utf8.RuneCountInString(got))
	}
}
