package api

// The original cutting service spoke a snake_case wire format on /cut and
// /shared. These shapes preserve it for existing callers.

// CutRequest is the synchronous cut request body.
type CutRequest struct {
	InputFile    string `json:"input_file"`
	CutlistFile  string `json:"cutlist_file"`
	OutputFolder string `json:"output_folder"`
}

// CutResultEntry reports one cut outcome; output_file is relative to the
// shared folder.
type CutResultEntry struct {
	OutputFile string `json:"output_file"`
	Success    bool   `json:"success"`
}

// CutResponse is the synchronous cut response body.
type CutResponse struct {
	Message string           `json:"message"`
	Results []CutResultEntry `json:"results"`
}

// SharedEntry describes one top-level item in the shared folder.
type SharedEntry struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	IsDir bool   `json:"is_dir"`
	Path  string `json:"path"`
}

// SharedListing is the shared folder listing response body.
type SharedListing struct {
	SharedFolder string        `json:"shared_folder"`
	Contents     []SharedEntry `json:"contents"`
}
