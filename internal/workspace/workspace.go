package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot marks request paths that would escape the shared folder.
var ErrOutsideRoot = errors.New("path escapes shared folder")

// Workspace resolves relative request paths against a single shared root.
type Workspace struct {
	root string
}

// Entry describes a top-level item in the shared folder.
type Entry struct {
	Name  string
	Size  int64
	IsDir bool
	Path  string
}

// New creates a workspace rooted at the given directory. The root must be an
// absolute path.
func New(root string) (*Workspace, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, errors.New("workspace root must be set")
	}
	if !filepath.IsAbs(trimmed) {
		return nil, fmt.Errorf("workspace root %q must be absolute", root)
	}
	return &Workspace{root: filepath.Clean(trimmed)}, nil
}

// Root returns the absolute shared folder path.
func (w *Workspace) Root() string {
	return w.root
}

// Resolve joins rel beneath the root. Absolute paths, empty input, and any
// path that would climb out of the root are rejected with ErrOutsideRoot.
func (w *Workspace) Resolve(rel string) (string, error) {
	trimmed := strings.TrimSpace(rel)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty path", ErrOutsideRoot)
	}
	if filepath.IsAbs(trimmed) {
		return "", fmt.Errorf("%w: %q is absolute", ErrOutsideRoot, rel)
	}
	cleaned := filepath.Clean(trimmed)
	if cleaned == "." {
		return w.root, nil
	}
	if !filepath.IsLocal(cleaned) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return filepath.Join(w.root, cleaned), nil
}

// Stat resolves rel and stats the result. Missing files surface the
// underlying fs.ErrNotExist so callers can classify them.
func (w *Workspace) Stat(rel string) (string, fs.FileInfo, error) {
	abs, err := w.Resolve(rel)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return abs, nil, err
	}
	return abs, info, nil
}

// EnsureDir resolves rel and creates the directory along with any parents.
func (w *Workspace) EnsureDir(rel string) (string, error) {
	abs, err := w.Resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create directory %q: %w", abs, err)
	}
	return abs, nil
}

// List returns the top-level contents of the shared folder.
func (w *Workspace) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(w.root)
	if err != nil {
		return nil, fmt.Errorf("list shared folder: %w", err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			// Entry vanished between ReadDir and Info.
			continue
		}
		entries = append(entries, Entry{
			Name:  de.Name(),
			Size:  info.Size(),
			IsDir: de.IsDir(),
			Path:  filepath.Join(w.root, de.Name()),
		})
	}
	return entries, nil
}
