package workspace_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"cleaver/internal/workspace"
)

func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return ws
}

func TestNewRejectsRelativeRoot(t *testing.T) {
	if _, err := workspace.New("relative/dir"); err == nil {
		t.Fatal("expected error for relative root")
	}
	if _, err := workspace.New("  "); err == nil {
		t.Fatal("expected error for blank root")
	}
}

func TestResolveConfinesPaths(t *testing.T) {
	ws := newWorkspace(t)

	abs, err := ws.Resolve("videos/input.mkv")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if abs != filepath.Join(ws.Root(), "videos", "input.mkv") {
		t.Fatalf("unexpected resolved path: %q", abs)
	}

	if abs, err := ws.Resolve("."); err != nil || abs != ws.Root() {
		t.Fatalf("expected dot to resolve to root, got %q %v", abs, err)
	}

	for _, rel := range []string{"", "  ", "/etc/passwd", "../outside", "a/../../b"} {
		if _, err := ws.Resolve(rel); !errors.Is(err, workspace.ErrOutsideRoot) {
			t.Errorf("Resolve(%q) expected ErrOutsideRoot, got %v", rel, err)
		}
	}
}

func TestStatSurfacesNotExist(t *testing.T) {
	ws := newWorkspace(t)

	if _, _, err := ws.Stat("missing.mkv"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}

	target := filepath.Join(ws.Root(), "present.mkv")
	if err := os.WriteFile(target, []byte("data"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	abs, info, err := ws.Stat("present.mkv")
	if err != nil {
		t.Fatalf("Stat returned error: %v", err)
	}
	if abs != target {
		t.Fatalf("unexpected path: %q", abs)
	}
	if info.Size() != 4 {
		t.Fatalf("unexpected size: %d", info.Size())
	}
}

func TestEnsureDirCreatesNestedFolders(t *testing.T) {
	ws := newWorkspace(t)

	abs, err := ws.EnsureDir("cuts/batch1")
	if err != nil {
		t.Fatalf("EnsureDir returned error: %v", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %q: %v", abs, err)
	}

	if _, err := ws.EnsureDir("../elsewhere"); !errors.Is(err, workspace.ErrOutsideRoot) {
		t.Fatalf("expected ErrOutsideRoot, got %v", err)
	}
}

func TestListReturnsTopLevelEntries(t *testing.T) {
	ws := newWorkspace(t)

	if err := os.WriteFile(filepath.Join(ws.Root(), "movie.mkv"), []byte("abcd"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(ws.Root(), "cuts", "nested"), 0o755); err != nil {
		t.Fatalf("mkdir fixture: %v", err)
	}

	entries, err := ws.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}

	byName := map[string]workspace.Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	file, ok := byName["movie.mkv"]
	if !ok || file.IsDir || file.Size != 4 {
		t.Fatalf("unexpected file entry: %+v", file)
	}
	dir, ok := byName["cuts"]
	if !ok || !dir.IsDir {
		t.Fatalf("unexpected dir entry: %+v", dir)
	}
	if dir.Path != filepath.Join(ws.Root(), "cuts") {
		t.Fatalf("unexpected dir path: %q", dir.Path)
	}
}
