// Package scan provides the "scan" subcommand: a one-shot run of file
// discovery, ingest, link graph build, and emission, following the
// teacher's NewCodeExamplesCommand flag-registration idiom
// (commands/extract/code-examples/code_examples.go).
package scan

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/config"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/emit"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/ingest"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/rst"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/walker"
)

// NewScanCommand creates the "scan" subcommand.
func NewScanCommand() *cobra.Command {
	var (
		directives     []string
		directivesFile string
		linksPath      string
		outputDir      string
		groupByFlag    string
		concurrency    int
		maxDepth       int
		excludeGlobs   []string
		dryRun         bool
	)

	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan a tree of files once, parse RST directives, and emit records",
		Long: `Scan discovers files under the given paths (or the current directory if none
are given), extracts embedded or pure RST, parses the directives named by
--directive or --directives-file, builds a cross-reference link graph from
--links, and writes one JSON file per group under --output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := args
			if len(roots) == 0 {
				roots = []string{"."}
			}

			names, err := resolveTargetNames(directives, directivesFile)
			if err != nil {
				return err
			}

			linkConfig, err := rst.LoadLinkConfig(linksPath)
			if err != nil {
				return err
			}

			groupBy, err := emit.ParseGroupBy(groupByFlag)
			if err != nil {
				return err
			}

			return runScan(cmd, scanOptions{
				roots:        roots,
				targetNames:  names,
				linkConfig:   linkConfig,
				outputDir:    outputDir,
				groupBy:      groupBy,
				concurrency:  concurrency,
				maxDepth:     maxDepth,
				excludeGlobs: excludeGlobs,
				dryRun:       dryRun,
			})
		},
	}

	cmd.Flags().StringArrayVar(&directives, "directive", nil, "directive name to scan for (repeatable)")
	cmd.Flags().StringVar(&directivesFile, "directives-file", "", "YAML file listing directive names (directives: [...])")
	cmd.Flags().StringVar(&linksPath, "links", "links.toml", "path to the link-field TOML config (missing file is not an error)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "./output", "output directory for emitted JSON records")
	cmd.Flags().StringVar(&groupByFlag, "group-by", "all", "how to group emitted records: name, source-file, or all")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent ingest workers (0 = auto)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "max directory recursion depth (0 = unlimited)")
	cmd.Flags().StringArrayVar(&excludeGlobs, "exclude", nil, "doublestar glob to exclude from discovery (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and build the link graph but skip writing JSON")

	return cmd
}

func resolveTargetNames(directives []string, directivesFile string) ([]string, error) {
	names := append([]string{}, directives...)
	if directivesFile != "" {
		fromFile, err := config.LoadDirectiveNames(directivesFile)
		if err != nil {
			return nil, err
		}
		names = append(names, fromFile...)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no directive names given: pass --directive at least once or --directives-file")
	}
	return dedupeStrings(names), nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

type scanOptions struct {
	roots        []string
	targetNames  []string
	linkConfig   rst.LinkConfig
	outputDir    string
	groupBy      emit.GroupBy
	concurrency  int
	maxDepth     int
	excludeGlobs []string
	dryRun       bool
}

func runScan(cmd *cobra.Command, opts scanOptions) error {
	start := time.Now()
	sink := rst.NewSink()

	files, err := walker.Discover(opts.roots, walker.Options{
		MaxDepth:     opts.maxDepth,
		ExcludeGlobs: opts.excludeGlobs,
	})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}

	store := rst.NewStore()
	result, err := ingest.Run(cmd.Context(), files, ingest.Config{
		TargetNames: opts.targetNames,
		Concurrency: opts.concurrency,
		Store:       store,
		Sink:        sink,
	})
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	graph := rst.NewLinkGraph()
	graph.Rebuild(store, opts.linkConfig, sink)

	var written []string
	if !opts.dryRun {
		records := emit.Records(store, graph)
		written, err = emit.WriteJSON(records, opts.outputDir, opts.groupBy)
		if err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	printReport(report{
		filesDiscovered: len(files),
		filesProcessed:  result.FilesProcessed,
		directives:      result.Directives,
		errors:          result.Errors,
		warnings:        sink.Warnings(),
		outputFiles:     written,
		dryRun:          opts.dryRun,
		elapsed:         time.Since(start),
	})

	return nil
}
