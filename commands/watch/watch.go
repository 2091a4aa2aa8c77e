// Package watch provides the "watch" subcommand: an initial scan
// followed by a continuous fsnotify-driven re-ingest loop, wrapping
// internal/watch.Loop.
package watch

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/config"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/emit"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/rst"
	internalwatch "github.com/mongodb/code-example-tooling/rst-link-audit/internal/watch"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/walker"
)

// NewWatchCommand creates the "watch" subcommand.
func NewWatchCommand() *cobra.Command {
	var (
		directives     []string
		directivesFile string
		linksPath      string
		outputDir      string
		groupByFlag    string
		maxDepth       int
		excludeGlobs   []string
	)

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Continuously re-scan on file changes and keep the link graph up to date",
		Long: `Watch performs an initial scan like "scan", then keeps running: file
creates and modifications are re-parsed and merged in, deletions drop their
directives, and the link graph and JSON output are kept current via
incremental updates. Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := args
			if len(roots) == 0 {
				roots = []string{"."}
			}

			names := append([]string{}, directives...)
			if directivesFile != "" {
				fromFile, err := config.LoadDirectiveNames(directivesFile)
				if err != nil {
					return err
				}
				names = append(names, fromFile...)
			}
			if len(names) == 0 {
				return fmt.Errorf("no directive names given: pass --directive at least once or --directives-file")
			}

			linkConfig, err := rst.LoadLinkConfig(linksPath)
			if err != nil {
				return err
			}
			groupBy, err := emit.ParseGroupBy(groupByFlag)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sink := rst.NewSink()
			cfg := internalwatch.Config{
				TargetNames: names,
				LinkConfig:  linkConfig,
				OutDir:      outputDir,
				GroupBy:     groupBy,
				WalkerOpts: walker.Options{
					MaxDepth:     maxDepth,
					ExcludeGlobs: excludeGlobs,
				},
				Store: rst.NewStore(),
				Graph: rst.NewLinkGraph(),
				Sink:  sink,
				OnEvent: func(message string) {
					fmt.Fprintf(os.Stderr, "watch: %s\n", message)
				},
			}

			fmt.Fprintf(os.Stderr, "watch: watching %v, press Ctrl+C to stop\n", roots)
			err = internalwatch.Loop(ctx, roots, cfg)

			for _, w := range sink.Warnings() {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w.String())
			}
			return err
		},
	}

	cmd.Flags().StringArrayVar(&directives, "directive", nil, "directive name to scan for (repeatable)")
	cmd.Flags().StringVar(&directivesFile, "directives-file", "", "YAML file listing directive names (directives: [...])")
	cmd.Flags().StringVar(&linksPath, "links", "links.toml", "path to the link-field TOML config (missing file is not an error)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "./output", "output directory for emitted JSON records")
	cmd.Flags().StringVar(&groupByFlag, "group-by", "all", "how to group emitted records: name, source-file, or all")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "max directory recursion depth (0 = unlimited)")
	cmd.Flags().StringArrayVar(&excludeGlobs, "exclude", nil, "doublestar glob to exclude from discovery (repeatable)")

	return cmd
}
