package stage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cleaver/internal/services"
)

func TestLoadCutlist_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cuts.txt")
	content := "00:00:10 00:01:00 opening\n# comment\n00:05:00 00:06:30 scene_two\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write cutlist: %v", err)
	}

	cuts, err := LoadCutlist(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cuts) != 2 {
		t.Fatalf("expected 2 cuts, got %d", len(cuts))
	}
	if cuts[0].Name != "opening" {
		t.Fatalf("unexpected first cut: %#v", cuts[0])
	}
}

func TestLoadCutlist_Missing(t *testing.T) {
	_, err := LoadCutlist(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected error for missing cutlist")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found classification, got %v", err)
	}
}
