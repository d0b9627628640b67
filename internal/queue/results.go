package queue

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CutResult records the outcome of a single cut within a job.
type CutResult struct {
	Name       string `json:"name"`
	OutputFile string `json:"output_file"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Results decodes the stored per-cut outcomes. Malformed or empty payloads
// decode to nil.
func (j *Job) Results() []CutResult {
	if strings.TrimSpace(j.ResultsJSON) == "" {
		return nil
	}
	var results []CutResult
	if err := json.Unmarshal([]byte(j.ResultsJSON), &results); err != nil {
		return nil
	}
	return results
}

// SetResults stores per-cut outcomes on the job.
func (j *Job) SetResults(results []CutResult) error {
	if len(results) == 0 {
		j.ResultsJSON = ""
		return nil
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal cut results: %w", err)
	}
	j.ResultsJSON = string(data)
	return nil
}

// CountSucceeded returns how many cuts in the results succeeded.
func CountSucceeded(results []CutResult) int {
	count := 0
	for _, result := range results {
		if result.Success {
			count++
		}
	}
	return count
}

// BatchStatus derives the terminal status for a finished job from its cut
// outcomes. A job fails only when every attempted cut failed; partial
// success and empty cutlists both complete.
func BatchStatus(results []CutResult) Status {
	if len(results) == 0 {
		return StatusCompleted
	}
	for _, result := range results {
		if result.Success {
			return StatusCompleted
		}
	}
	return StatusFailed
}
