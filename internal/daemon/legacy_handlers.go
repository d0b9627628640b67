package daemon

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"cleaver/internal/api"
	"cleaver/internal/logging"
	"cleaver/internal/queue"
)

// The /cut and /shared endpoints predate the /api surface and are kept
// byte-compatible for existing callers: snake_case keys, exact error
// strings, and output paths relative to the shared folder.
const (
	legacyMissingFieldsMessage = "Missing required fields. Required: ['input_file', 'cutlist_file', 'output_folder']"
	legacyNotFoundMessage      = "Input file or cutlist file not found"
	legacyCompleteMessage      = "Processing complete"
)

// legacyCutRequest decodes with pointer fields so a missing key can be told
// apart from an empty value. Only key presence gates the 400 response.
type legacyCutRequest struct {
	InputFile    *string `json:"input_file"`
	CutlistFile  *string `json:"cutlist_file"`
	OutputFolder *string `json:"output_folder"`
}

func (s *apiServer) handleCut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req legacyCutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, legacyMissingFieldsMessage)
		return
	}
	if req.InputFile == nil || req.CutlistFile == nil || req.OutputFolder == nil {
		s.writeError(w, http.StatusBadRequest, legacyMissingFieldsMessage)
		return
	}

	job, err := s.daemon.RunInlineCut(r.Context(), *req.InputFile, *req.CutlistFile, *req.OutputFolder)
	if err != nil {
		status := statusForError(err)
		message := err.Error()
		if status == http.StatusNotFound {
			// Callers match on the exact string; the detail goes to the log.
			message = legacyNotFoundMessage
			s.log().Warn("cut request rejected", logging.Error(err))
		}
		s.writeError(w, status, message)
		return
	}

	s.writeJSON(w, http.StatusOK, api.CutResponse{
		Message: legacyCompleteMessage,
		Results: legacyResults(job.OutputDir, job.Results()),
	})
}

// legacyResults rewrites absolute cut outputs as output-folder-relative
// paths, the shape the original service reported.
func legacyResults(outputFolder string, results []queue.CutResult) []api.CutResultEntry {
	entries := make([]api.CutResultEntry, 0, len(results))
	for _, result := range results {
		entries = append(entries, api.CutResultEntry{
			OutputFile: filepath.Join(outputFolder, filepath.Base(result.OutputFile)),
			Success:    result.Success,
		})
	}
	return entries
}

func (s *apiServer) handleShared(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	root, entries, err := s.daemon.SharedListing()
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":         err.Error(),
			"shared_folder": root,
		})
		return
	}

	contents := make([]api.SharedEntry, 0, len(entries))
	for _, entry := range entries {
		contents = append(contents, api.SharedEntry{
			Name:  entry.Name,
			Size:  entry.Size,
			IsDir: entry.IsDir,
			Path:  entry.Path,
		})
	}
	s.writeJSON(w, http.StatusOK, api.SharedListing{
		SharedFolder: root,
		Contents:     contents,
	})
}
