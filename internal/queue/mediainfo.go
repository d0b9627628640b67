package queue

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MediaInfo is the ffprobe snapshot of a job's input file, captured when the
// job is prepared for cutting.
type MediaInfo struct {
	DurationSeconds float64 `json:"duration_seconds"`
	VideoStreams    int     `json:"video_streams"`
	AudioStreams    int     `json:"audio_streams"`
	FormatName      string  `json:"format_name,omitempty"`
	SizeBytes       int64   `json:"size_bytes,omitempty"`
}

// MediaInfo decodes the stored input snapshot. Malformed or empty payloads
// decode to nil, meaning no probe has run for this job.
func (j *Job) MediaInfo() *MediaInfo {
	if strings.TrimSpace(j.MediaInfoJSON) == "" {
		return nil
	}
	var info MediaInfo
	if err := json.Unmarshal([]byte(j.MediaInfoJSON), &info); err != nil {
		return nil
	}
	return &info
}

// SetMediaInfo stores the input snapshot on the job. A nil info clears it.
func (j *Job) SetMediaInfo(info *MediaInfo) error {
	if info == nil {
		j.MediaInfoJSON = ""
		return nil
	}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal media info: %w", err)
	}
	j.MediaInfoJSON = string(data)
	return nil
}
