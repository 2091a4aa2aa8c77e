// Package walker discovers the files a scan or watch run should feed into
// the ingest pipeline: explicit files, directories (walked recursively up
// to an optional depth), and doublestar glob patterns, generalizing the
// teacher's old TraverseDirectory/ShouldProcessFile pair the way
// wharflab-tally's internal/discovery package generalizes Dockerfile
// discovery.
package walker

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Options configures discovery.
type Options struct {
	// Extensions filters directory/glob walks to files with one of these
	// extensions (including the leading dot). Explicit file inputs are
	// never filtered. Defaults to DefaultExtensions.
	Extensions []string

	// ExcludeGlobs drops any candidate whose path matches one of these
	// doublestar patterns.
	ExcludeGlobs []string

	// MaxDepth bounds directory recursion; 0 means unlimited. Depth 1 is
	// the root directory's direct children.
	MaxDepth int
}

// DefaultExtensions lists the file kinds the pipeline knows how to
// extract RST from.
func DefaultExtensions() []string {
	return []string{".rst", ".cpp", ".cxx", ".cc", ".h", ".hpp", ".hxx", ".hh", ".py"}
}

// Discover resolves roots (files, directories, or glob patterns) into a
// deduplicated, sorted list of absolute file paths.
func Discover(roots []string, opts Options) ([]string, error) {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions()
	}

	seen := make(map[string]bool)
	var out []string

	for _, root := range roots {
		paths, err := discoverOne(root, opts)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			abs, err := filepath.Abs(p)
			if err != nil {
				abs = p
			}
			if seen[abs] {
				continue
			}
			if excluded(abs, opts.ExcludeGlobs) {
				continue
			}
			seen[abs] = true
			out = append(out, abs)
		}
	}

	slices.SortFunc(out, func(a, b string) int { return cmp.Compare(a, b) })
	return out, nil
}

func discoverOne(root string, opts Options) ([]string, error) {
	if containsGlobChars(root) {
		matches, err := doublestar.FilepathGlob(root)
		if err != nil {
			return nil, err
		}
		var out []string
		for _, m := range matches {
			if hasExtension(m, opts.Extensions) {
				out = append(out, m)
			}
		}
		return out, nil
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	return walkDir(root, opts)
}

func walkDir(root string, opts Options) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if opts.MaxDepth > 0 && depthOf(root, path) >= opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if opts.MaxDepth > 0 && depthOf(root, path) > opts.MaxDepth {
			return nil
		}
		if !hasExtension(path, opts.Extensions) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	return out, err
}

func depthOf(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	if rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func excluded(path string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, path); ok {
			return true
		}
	}
	return false
}

func containsGlobChars(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
