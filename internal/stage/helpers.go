package stage

import (
	"errors"
	"io/fs"

	"cleaver/internal/cutlist"
	"cleaver/internal/services"
)

// LoadCutlist parses the cutlist file at path and returns its cuts.
// On failure it returns a services error suitable for stage Execute methods:
// ErrNotFound when the file is missing, ErrValidation otherwise.
func LoadCutlist(path string) ([]cutlist.Cut, error) {
	cuts, err := cutlist.ParseFile(path)
	if err != nil {
		marker := services.ErrValidation
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(
			marker, "stage", "parse cutlist",
			"Cutlist missing or unreadable; check the file contents", err)
	}
	return cuts, nil
}
