package cutlist

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimecode converts a cutlist timecode into a duration. Accepted forms
// match what ffmpeg understands for -ss/-to: "HH:MM:SS", "MM:SS", bare
// seconds, each with an optional fractional part. Negative values are
// rejected.
func ParseTimecode(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("timecode %q: empty", value)
	}
	if strings.HasPrefix(trimmed, "-") {
		return 0, fmt.Errorf("timecode %q: negative", value)
	}

	parts := strings.Split(trimmed, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("timecode %q: too many components", value)
	}

	var hours, minutes int
	var seconds float64
	var err error

	switch len(parts) {
	case 1:
		seconds, err = parseSeconds(parts[0], false)
	case 2:
		minutes, err = parseComponent(parts[0], false)
		if err == nil {
			seconds, err = parseSeconds(parts[1], true)
		}
	case 3:
		hours, err = parseComponent(parts[0], false)
		if err == nil {
			minutes, err = parseComponent(parts[1], true)
		}
		if err == nil {
			seconds, err = parseSeconds(parts[2], true)
		}
	}
	if err != nil {
		return 0, fmt.Errorf("timecode %q: %w", value, err)
	}

	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
	return total, nil
}

// ValidateRange parses both timecodes of a cut and ensures start precedes
// end. The returned durations are the parsed bounds.
func ValidateRange(start, end string) (time.Duration, time.Duration, error) {
	from, err := ParseTimecode(start)
	if err != nil {
		return 0, 0, err
	}
	to, err := ParseTimecode(end)
	if err != nil {
		return 0, 0, err
	}
	if from >= to {
		return 0, 0, fmt.Errorf("start %s is not before end %s", start, end)
	}
	return from, to, nil
}

// FormatTimecode renders a duration as HH:MM:SS(.fff) for logs and progress
// messages.
func FormatTimecode(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := d.Seconds()
	hours := int(total) / 3600
	minutes := (int(total) % 3600) / 60
	seconds := total - float64(hours*3600+minutes*60)
	if d%time.Second == 0 {
		return fmt.Sprintf("%02d:%02d:%02.0f", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, seconds)
}

func parseComponent(text string, bounded bool) (int, error) {
	if text == "" {
		return 0, fmt.Errorf("empty component")
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("component %q is not a number", text)
	}
	if n < 0 {
		return 0, fmt.Errorf("component %q is negative", text)
	}
	if bounded && n > 59 {
		return 0, fmt.Errorf("component %q exceeds 59", text)
	}
	return n, nil
}

func parseSeconds(text string, bounded bool) (float64, error) {
	if text == "" {
		return 0, fmt.Errorf("empty seconds")
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("seconds %q is not a number", text)
	}
	if f < 0 {
		return 0, fmt.Errorf("seconds %q is negative", text)
	}
	if bounded && f >= 60 {
		return 0, fmt.Errorf("seconds %q exceeds 59", text)
	}
	return f, nil
}
