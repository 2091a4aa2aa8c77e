// Package watch drives a continuous run of the pipeline: an initial
// full scan, then an fsnotify event loop that re-ingests changed files
// and patches the Store and LinkGraph incrementally.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/diffreport"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/emit"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/ingest"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/rst"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/walker"
)

// Config controls one watch run.
type Config struct {
	TargetNames []string
	LinkConfig  rst.LinkConfig
	OutDir      string
	GroupBy     emit.GroupBy
	WalkerOpts  walker.Options
	Store       *rst.Store
	Graph       *rst.LinkGraph
	Sink        *rst.Sink

	// OnEvent, if set, is called after every re-emit with a short
	// human-readable description of what triggered it. Primarily for
	// tests and for the CLI's stderr progress line.
	OnEvent func(string)
}

// Loop performs an initial scan of roots, then watches them for changes
// until ctx is cancelled. It returns nil on clean cancellation.
func Loop(ctx context.Context, roots []string, cfg Config) error {
	files, err := walker.Discover(roots, cfg.WalkerOpts)
	if err != nil {
		return fmt.Errorf("watch: initial discovery: %w", err)
	}
	if _, err := ingest.Run(ctx, files, ingest.Config{
		TargetNames: cfg.TargetNames,
		Store:       cfg.Store,
		Sink:        cfg.Sink,
	}); err != nil {
		return fmt.Errorf("watch: initial ingest: %w", err)
	}
	cfg.Graph.Rebuild(cfg.Store, cfg.LinkConfig, cfg.Sink)
	if err := emitNow(cfg); err != nil {
		return err
	}
	notify(cfg, "initial scan complete")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range roots {
		if err := addRecursive(watcher, root); err != nil {
			return fmt.Errorf("watch: watching %s: %w", root, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if err := handleEvent(cfg, event); err != nil {
				cfg.Sink.Warn(event.Name, "watch event handling failed: %v", err)
				continue
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cfg.Sink.Warn("", "fsnotify error: %v", err)
		}
	}
}

func handleEvent(cfg Config, event fsnotify.Event) error {
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		return handleCreateOrModify(cfg, event.Name)
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return handleRemove(cfg, event.Name)
	default:
		return nil
	}
}

func handleCreateOrModify(cfg Config, path string) error {
	canonical, err := filepath.Abs(path)
	if err != nil {
		cfg.Sink.Warn(path, "could not canonicalise path: %v", err)
		canonical = path
	}

	info, err := os.Stat(canonical)
	if err != nil || info.IsDir() {
		// Directory events and races with deletion: nothing to ingest.
		return nil
	}

	newDirectives, err := ingest.IngestFile(canonical, cfg.TargetNames, cfg.Sink)
	if err != nil {
		return err
	}

	changed := changedIDs(cfg.Store, canonical, newDirectives)
	cfg.Store.Put(canonical, newDirectives)
	cfg.Graph.Update(cfg.Store, cfg.LinkConfig, changed, cfg.Sink)

	if err := emitNow(cfg); err != nil {
		return err
	}
	notify(cfg, fmt.Sprintf("re-ingested %s", canonical))
	return nil
}

func handleRemove(cfg Config, path string) error {
	canonical, err := filepath.Abs(path)
	if err != nil {
		cfg.Sink.Warn(path, "could not canonicalise path for removal, using raw path: %v", err)
		canonical = path
	}

	removed := cfg.Store.Remove(canonical)
	if len(removed) == 0 {
		return nil
	}
	cfg.Graph.Update(cfg.Store, cfg.LinkConfig, removed, cfg.Sink)

	if err := emitNow(cfg); err != nil {
		return err
	}
	notify(cfg, fmt.Sprintf("removed %s", canonical))
	return nil
}

// changedIDs diffs a file's previous directive set (read back from the
// Store) against its freshly-parsed set via internal/diffreport, and
// returns the union of ids that were added, modified, or removed. This
// is the changed-id set the LinkGraph's neighbour-only Update needs.
func changedIDs(store *rst.Store, canonicalPath string, newDirectives []rst.DirectiveWithSource) []string {
	var old []rst.DirectiveWithSource
	for _, d := range store.Snapshot() {
		if d.SourceFile == canonicalPath {
			old = append(old, *d)
		}
	}

	var changed []string
	for _, c := range diffreport.Compare(old, newDirectives) {
		if c.Kind != diffreport.Unchanged {
			changed = append(changed, c.ID)
		}
	}
	return changed
}

func emitNow(cfg Config) error {
	if cfg.OutDir == "" {
		return nil
	}
	records := emit.Records(cfg.Store, cfg.Graph)
	_, err := emit.WriteJSON(records, cfg.OutDir, cfg.GroupBy)
	return err
}

func notify(cfg Config, message string) {
	if cfg.OnEvent != nil {
		cfg.OnEvent(message)
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
