package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is a single caption cue: one timestamped block of transcript text.
// Timestamps keep the verbatim HH:MM:SS.mmm form from the source file.
type Segment struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// Window is an aggregated, time-bounded block of caption text used as the
// retrieval unit. Start/End are the boundary timestamps of the first and last
// segment merged into it.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// TimestampToSeconds converts an HH:MM:SS.mmm caption timestamp into elapsed
// seconds
func TimestampToSeconds(ts string) (float64, error) {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, ts)
	}

	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, ts)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, ts)
	}

	secPart := parts[2]
	msec := 0
	if dot := strings.IndexByte(secPart, '.'); dot >= 0 {
		ms := secPart[dot+1:]
		secPart = secPart[:dot]
		if ms != "" {
			msec, err = strconv.Atoi(ms)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, ts)
			}
		}
	}
	ss, err := strconv.Atoi(secPart)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, ts)
	}

	return float64(hh)*3600 + float64(mm)*60 + float64(ss) + float64(msec)/1000, nil
}

// SecondsToTimestamp renders elapsed seconds as HH:MM:SS.mmm
func SecondsToTimestamp(total float64) string {
	if total < 0 {
		total = 0
	}
	ms := int(total*1000 + 0.5)
	msec := ms % 1000
	whole := ms / 1000
	hh := whole / 3600
	mm := (whole % 3600) / 60
	ss := whole % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hh, mm, ss, msec)
}
