package cutter

import (
	"context"

	"cleaver/internal/media/ffprobe"
)

// cutProbe is the ffprobe function used by the cutter package.
// It is a package-level variable so tests can override it.
var cutProbe = ffprobe.Inspect

// SetProbeForTests overrides the ffprobe runner during tests.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	previous := cutProbe
	cutProbe = fn
	return func() {
		cutProbe = previous
	}
}
