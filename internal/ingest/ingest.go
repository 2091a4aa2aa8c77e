// Package ingest fans a file list out across a bounded worker pool,
// running the extractor and parser on each file independently and
// merging the results into a shared Store under its own lock. A
// single unreadable file never aborts the run; its error is
// accumulated and the rest of the batch keeps going.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/rst"
)

// Config controls one ingest run.
type Config struct {
	TargetNames []string
	Concurrency int
	Store       *rst.Store
	Sink        *rst.Sink
}

// FileError pairs a file with the error that stopped it from being
// ingested.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Result summarises one ingest run.
type Result struct {
	FilesProcessed int
	Directives     int
	Errors         []FileError
}

// Run extracts and parses every file in files concurrently, Put-ing each
// file's directives into cfg.Store. It never returns early because of a
// per-file failure; Result.Errors carries everything that went wrong.
func Run(ctx context.Context, files []string, cfg Config) (*Result, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("ingest: Config.Store must not be nil")
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
		if concurrency > 8 {
			concurrency = 8
		}
		if concurrency < 1 {
			concurrency = 1
		}
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	result := &Result{}

	for _, path := range files {
		select {
		case <-ctx.Done():
			mu.Lock()
			result.Errors = append(result.Errors, FileError{Path: path, Err: ctx.Err()})
			mu.Unlock()
			continue
		default:
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				result.Errors = append(result.Errors, FileError{Path: path, Err: ctx.Err()})
				mu.Unlock()
				return
			}

			directives, err := ingestOne(path, cfg.TargetNames, cfg.Sink)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, FileError{Path: path, Err: err})
				return
			}
			cfg.Store.Put(canonicalOrRaw(path, cfg.Sink), directives)
			result.FilesProcessed++
			result.Directives += len(directives)
		}(path)
	}

	wg.Wait()
	return result, nil
}

// IngestFile re-extracts and re-parses a single file, used by watch mode
// on Create/Modify events. It returns the parsed directives without
// touching the Store, so the caller can diff old against new content
// first (internal/diffreport) before committing the Put.
func IngestFile(path string, targetNames []string, sink *rst.Sink) ([]rst.DirectiveWithSource, error) {
	return ingestOne(path, targetNames, sink)
}

func ingestOne(path string, targetNames []string, sink *rst.Sink) ([]rst.DirectiveWithSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	canonical := canonicalOrRaw(path, sink)
	extracted := rst.Extract(canonical, string(data), sink)
	if extracted == "" {
		return nil, nil
	}
	return rst.Parse(extracted, targetNames, canonical, sink), nil
}

// canonicalOrRaw resolves path to an absolute, symlink-evaluated form.
// If the path cannot be made absolute it falls back to the raw path and
// records a warning; if symlink evaluation fails it returns the absolute
// path without a warning.
func canonicalOrRaw(path string, sink *rst.Sink) string {
	canonical, err := filepath.Abs(path)
	if err != nil {
		sink.Warn(path, "could not canonicalise path: %v", err)
		return path
	}
	resolved, err := filepath.EvalSymlinks(canonical)
	if err != nil {
		return canonical
	}
	return resolved
}
