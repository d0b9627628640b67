package deps

import (
	"cleaver/internal/config"
)

// ForConfig returns the external tools the daemon shells out to.
func ForConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Performs the cuts",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Inspects inputs and validates outputs",
		},
	}
}
