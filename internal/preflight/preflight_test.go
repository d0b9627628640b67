package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cleaver/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	orig := statfs
	defer func() { statfs = orig }()

	statfs = func(path string) (uint64, uint64, error) {
		return 100 << 30, 10 << 30, nil
	}
	result := CheckFreeSpace("space", "/data", 1<<30)
	if !result.Passed {
		t.Fatalf("expected pass with 10 GiB free, got: %s", result.Detail)
	}

	result = CheckFreeSpace("space", "/data", 20<<30)
	if result.Passed {
		t.Fatal("expected failure when below the floor")
	}
	if !strings.Contains(result.Detail, "need at least") {
		t.Fatalf("expected threshold in detail, got: %s", result.Detail)
	}

	statfs = func(path string) (uint64, uint64, error) {
		return 0, 0, errors.New("no such filesystem")
	}
	result = CheckFreeSpace("space", "/data", 1<<30)
	if result.Passed {
		t.Fatal("expected failure when statfs errors")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.SharedDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()

	results := RunAll(context.Background(), &cfg)
	// Shared dir, log dir, and free space.
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results[:2] {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestCheckNtfyFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	result := CheckNtfyFromConfig(&cfg)
	if result.Passed {
		t.Fatal("expected not-passed when topic missing")
	}
	if result.Detail != "Disabled" {
		t.Fatalf("expected Disabled, got %q", result.Detail)
	}

	cfg.Notifications.NtfyTopic = "https://ntfy.sh/cleaver"
	result = CheckNtfyFromConfig(&cfg)
	if !result.Passed {
		t.Fatalf("expected pass when topic configured, got: %s", result.Detail)
	}
}

func TestProbeFreeSpace(t *testing.T) {
	orig := statfs
	defer func() { statfs = orig }()

	statfs = func(path string) (uint64, uint64, error) {
		return 100 << 30, 42 << 30, nil
	}
	probe := ProbeFreeSpace("/shared")
	if !probe.Checked {
		t.Fatal("expected probe to succeed")
	}
	if probe.FreeBytes != 42<<30 {
		t.Fatalf("unexpected free bytes: %d", probe.FreeBytes)
	}
	if !strings.Contains(probe.SpaceDetail(), "/shared") {
		t.Fatalf("expected path in detail, got %q", probe.SpaceDetail())
	}

	statfs = func(path string) (uint64, uint64, error) {
		return 0, 0, errors.New("boom")
	}
	probe = ProbeFreeSpace("/shared")
	if probe.Checked {
		t.Fatal("expected probe failure")
	}
	if probe.SpaceDetail() != "Free space unknown" {
		t.Fatalf("unexpected detail: %q", probe.SpaceDetail())
	}
}
