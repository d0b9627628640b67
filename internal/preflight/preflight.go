package preflight

import (
	"context"

	"cleaver/internal/config"
)

// minSharedFreeBytes is the free-space floor for the shared directory before
// new cuts are refused.
const minSharedFreeBytes = 1 << 30

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Shared directory", cfg.Paths.SharedDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckFreeSpace("Shared free space", cfg.Paths.SharedDir, minSharedFreeBytes))
	return results
}
