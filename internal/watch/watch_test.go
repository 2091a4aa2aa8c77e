package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/emit"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/ingest"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/rst"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func baseConfig(t *testing.T) (Config, string) {
	dir := t.TempDir()
	return Config{
		TargetNames: []string{"thing"},
		OutDir:      filepath.Join(dir, "out"),
		GroupBy:     emit.All,
		Store:       rst.NewStore(),
		Graph:       rst.NewLinkGraph(),
		Sink:        rst.NewSink(),
	}, dir
}

func TestHandleCreateOrModifyAddsToStore(t *testing.T) {
	cfg, dir := baseConfig(t)
	path := filepath.Join(dir, "a.rst")
	writeFile(t, path, ".. thing::\n   body\n")

	if err := handleCreateOrModify(cfg, path); err != nil {
		t.Fatalf("handleCreateOrModify: %v", err)
	}

	if len(cfg.Store.Snapshot()) != 1 {
		t.Fatalf("store has %d directives, want 1", len(cfg.Store.Snapshot()))
	}
}

func TestHandleCreateOrModifyUpdatesGraphOnContentChange(t *testing.T) {
	cfg, dir := baseConfig(t)
	cfg.LinkConfig = rst.LinkConfig{Links: []rst.LinkType{{Name: "links_to"}}}

	a := filepath.Join(dir, "a.rst")
	b := filepath.Join(dir, "b.rst")
	writeFile(t, b, ".. thing::\n   :id: target\n\n   body\n")
	writeFile(t, a, ".. thing::\n   :links_to: target\n\n   body\n")

	if err := handleCreateOrModify(cfg, b); err != nil {
		t.Fatalf("handleCreateOrModify(b): %v", err)
	}
	if err := handleCreateOrModify(cfg, a); err != nil {
		t.Fatalf("handleCreateOrModify(a): %v", err)
	}

	back := cfg.Graph.BackfieldsFor("target")
	if back["links_to_back"] == "" {
		t.Errorf("expected a backlink onto target, got %v", back)
	}
}

func TestHandleRemoveDropsFromStore(t *testing.T) {
	cfg, dir := baseConfig(t)
	path := filepath.Join(dir, "a.rst")
	writeFile(t, path, ".. thing::\n   body\n")

	if err := handleCreateOrModify(cfg, path); err != nil {
		t.Fatalf("handleCreateOrModify: %v", err)
	}
	if len(cfg.Store.Snapshot()) != 1 {
		t.Fatalf("sanity: expected 1 directive before removal")
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("os.Remove: %v", err)
	}
	if err := handleRemove(cfg, path); err != nil {
		t.Fatalf("handleRemove: %v", err)
	}
	if len(cfg.Store.Snapshot()) != 0 {
		t.Errorf("store has %d directives after removal, want 0", len(cfg.Store.Snapshot()))
	}
}

func TestChangedIDsDetectsModification(t *testing.T) {
	cfg, dir := baseConfig(t)
	path := filepath.Join(dir, "a.rst")
	writeFile(t, path, ".. thing::\n   :id: fixed\n\n   v1\n")

	if err := handleCreateOrModify(cfg, path); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	abs, _ := filepath.Abs(path)
	writeFile(t, path, ".. thing::\n   :id: fixed\n\n   v2\n")
	newDirectives, err := ingest.IngestFile(abs, cfg.TargetNames, cfg.Sink)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	changed := changedIDs(cfg.Store, abs, newDirectives)
	if len(changed) != 1 || changed[0] != "fixed" {
		t.Errorf("changed = %v, want [fixed]", changed)
	}
}
