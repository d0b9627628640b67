package ffmpeg

import (
	"strconv"
	"strings"
	"time"
)

// progressParser assembles updates from the key=value blocks ffmpeg writes
// under -progress. A block ends with a "progress=continue" or "progress=end"
// line, at which point the accumulated state is emitted.
type progressParser struct {
	target  time.Duration
	outTime time.Duration
	speed   float64
}

func newProgressParser(target time.Duration) *progressParser {
	return &progressParser{target: target}
}

// Line consumes one line of ffmpeg output and reports whether it belonged to
// the progress protocol. Lines that terminate a block additionally deliver a
// finished update through emit. Non-protocol lines are left to the caller,
// which treats them as ordinary log output.
func (p *progressParser) Line(line string, emit func(ProgressUpdate)) bool {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return false
	}
	value = strings.TrimSpace(value)

	switch key {
	case "out_time_us", "out_time_ms":
		// out_time_ms carries microseconds too; the name predates the fix.
		if micros, err := strconv.ParseInt(value, 10, 64); err == nil && micros > 0 {
			p.outTime = time.Duration(micros) * time.Microsecond
		}
		return true
	case "speed":
		p.speed = parseSpeed(value)
		return true
	case "progress":
		update := ProgressUpdate{
			OutTime: p.outTime,
			Speed:   p.speed,
		}
		if p.target > 0 {
			percent := float64(p.outTime) / float64(p.target) * 100
			if percent > 100 {
				percent = 100
			}
			update.Percent = percent
		}
		if value == "end" {
			update.Percent = 100
		}
		if emit != nil {
			emit(update)
		}
		return true
	case "frame", "fps", "bitrate", "total_size", "out_time", "dup_frames", "drop_frames":
		return true
	}
	if strings.HasPrefix(key, "stream_") {
		return true
	}
	return false
}

func parseSpeed(value string) float64 {
	trimmed := strings.TrimSuffix(strings.TrimSpace(value), "x")
	if trimmed == "" || trimmed == "N/A" {
		return 0
	}
	speed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || speed < 0 {
		return 0
	}
	return speed
}
