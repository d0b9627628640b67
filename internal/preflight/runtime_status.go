package preflight

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"cleaver/internal/config"
)

// CheckNtfyFromConfig evaluates notification readiness from config alone.
// ntfy has no cheap auth probe, so this reports configuration state without
// touching the network.
func CheckNtfyFromConfig(cfg *config.Config) Result {
	const name = "Notifications"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return Result{Name: name, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("ntfy topic configured (%s)", topic)}
}

// SpaceProbe reports the free-space snapshot for a directory.
type SpaceProbe struct {
	Path      string
	FreeBytes uint64
	Checked   bool
}

// ProbeFreeSpace captures the free space behind path for status display.
func ProbeFreeSpace(path string) SpaceProbe {
	_, free, err := statfs(path)
	if err != nil {
		return SpaceProbe{Path: path}
	}
	return SpaceProbe{Path: path, FreeBytes: free, Checked: true}
}

// SpaceDetail renders a display-friendly summary for status UIs.
func (p SpaceProbe) SpaceDetail() string {
	if !p.Checked {
		return "Free space unknown"
	}
	return fmt.Sprintf("%s free on %s", humanize.IBytes(p.FreeBytes), p.Path)
}
