package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/rst"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestRunIngestsMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.rst"), ".. thing::\n   :k: v\n\n   body a\n")
	writeFile(t, filepath.Join(dir, "b.rst"), ".. thing::\n   body b\n")

	store := rst.NewStore()
	result, err := Run(context.Background(), []string{
		filepath.Join(dir, "a.rst"),
		filepath.Join(dir, "b.rst"),
	}, Config{TargetNames: []string{"thing"}, Store: store})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FilesProcessed != 2 {
		t.Errorf("FilesProcessed = %d, want 2", result.FilesProcessed)
	}
	if result.Directives != 2 {
		t.Errorf("Directives = %d, want 2", result.Directives)
	}
	if len(store.Snapshot()) != 2 {
		t.Errorf("store has %d directives, want 2", len(store.Snapshot()))
	}
}

func TestRunAccumulatesPerFileErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.rst"), ".. thing::\n   body\n")

	store := rst.NewStore()
	result, err := Run(context.Background(), []string{
		filepath.Join(dir, "ok.rst"),
		filepath.Join(dir, "missing.rst"),
	}, Config{TargetNames: []string{"thing"}, Store: store})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FilesProcessed != 1 {
		t.Errorf("FilesProcessed = %d, want 1", result.FilesProcessed)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want 1 entry", result.Errors)
	}
	if result.Errors[0].Path != filepath.Join(dir, "missing.rst") {
		t.Errorf("Errors[0].Path = %q", result.Errors[0].Path)
	}
}

func TestIngestFileReturnsParsedDirectives(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rst")
	writeFile(t, path, ".. thing::\n   body\n")

	directives, err := IngestFile(path, []string{"thing"}, nil)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if len(directives) != 1 {
		t.Fatalf("got %d directives, want 1", len(directives))
	}
}
