package ffmpeg

import (
	"testing"
	"time"
)

func collectUpdates(parser *progressParser, lines []string) (updates []ProgressUpdate, consumed []bool) {
	for _, line := range lines {
		ok := parser.Line(line, func(u ProgressUpdate) {
			updates = append(updates, u)
		})
		consumed = append(consumed, ok)
	}
	return updates, consumed
}

func TestProgressParserEmitsOnBlockBoundary(t *testing.T) {
	parser := newProgressParser(20 * time.Second)
	updates, consumed := collectUpdates(parser, []string{
		"frame=240",
		"fps=48.0",
		"out_time_us=5000000",
		"speed=1.9x",
		"progress=continue",
	})
	for i, ok := range consumed {
		if !ok {
			t.Fatalf("line %d should be consumed as progress protocol", i)
		}
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	if updates[0].Percent != 25 {
		t.Fatalf("expected 25%%, got %.1f", updates[0].Percent)
	}
	if updates[0].OutTime != 5*time.Second {
		t.Fatalf("unexpected out time: %s", updates[0].OutTime)
	}
	if updates[0].Speed != 1.9 {
		t.Fatalf("unexpected speed: %.2f", updates[0].Speed)
	}
}

func TestProgressParserTreatsOutTimeMSAsMicroseconds(t *testing.T) {
	// ffmpeg's out_time_ms carries microseconds despite the name.
	parser := newProgressParser(10 * time.Second)
	updates, _ := collectUpdates(parser, []string{
		"out_time_ms=2500000",
		"progress=continue",
	})
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	if updates[0].OutTime != 2500*time.Millisecond {
		t.Fatalf("unexpected out time: %s", updates[0].OutTime)
	}
	if updates[0].Percent != 25 {
		t.Fatalf("expected 25%%, got %.1f", updates[0].Percent)
	}
}

func TestProgressParserClampsAndCompletes(t *testing.T) {
	parser := newProgressParser(4 * time.Second)
	updates, _ := collectUpdates(parser, []string{
		"out_time_us=5000000",
		"progress=continue",
		"out_time_us=5100000",
		"progress=end",
	})
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Percent != 100 {
		t.Fatalf("overshoot should clamp to 100, got %.1f", updates[0].Percent)
	}
	if updates[1].Percent != 100 {
		t.Fatalf("end should report 100, got %.1f", updates[1].Percent)
	}
}

func TestProgressParserUnknownTargetReportsZeroUntilEnd(t *testing.T) {
	parser := newProgressParser(0)
	updates, _ := collectUpdates(parser, []string{
		"out_time_us=3000000",
		"progress=continue",
		"progress=end",
	})
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Percent != 0 {
		t.Fatalf("unknown target should report 0 mid-run, got %.1f", updates[0].Percent)
	}
	if updates[1].Percent != 100 {
		t.Fatalf("end should still report 100, got %.1f", updates[1].Percent)
	}
}

func TestProgressParserIgnoresDiagnosticLines(t *testing.T) {
	parser := newProgressParser(time.Second)
	lines := []string{
		"Input #0, matroska,webm, from 'in.mkv':",
		"[libx264 @ 0x55aa] using SAR=1/1",
		"Press [q] to stop, [?] for help",
	}
	updates, consumed := collectUpdates(parser, lines)
	for i, ok := range consumed {
		if ok {
			t.Fatalf("line %d should not be treated as protocol: %q", i, lines[i])
		}
	}
	if len(updates) != 0 {
		t.Fatalf("diagnostic lines must not emit updates, got %d", len(updates))
	}
}

func TestParseSpeed(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.23x", 1.23},
		{" 24x ", 24},
		{"0.5", 0.5},
		{"N/A", 0},
		{"", 0},
		{"-2x", 0},
		{"fast", 0},
	}
	for _, tc := range cases {
		if got := parseSpeed(tc.in); got != tc.want {
			t.Errorf("parseSpeed(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
