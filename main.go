// Package main provides the entry point for the rst-link-audit tool.
//
// rst-link-audit scans a tree of source files (pure RST and host-language
// files carrying @rst/@endrst comments or docstrings), parses the
// directives whose names the caller cares about, and emits a structured
// record per occurrence enriched with a cross-reference link graph built
// from directive options.
//
// The CLI has two subcommands:
//   - scan:  one-shot discovery + parse + emit
//   - watch: scan once, then keep re-ingesting on filesystem changes
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mongodb/code-example-tooling/rst-link-audit/commands/scan"
	"github.com/mongodb/code-example-tooling/rst-link-audit/commands/watch"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rst-link-audit",
		Short: "Parse RST directives across a source tree and build a cross-reference graph",
		Long: `rst-link-audit extracts reStructuredText from pure .rst files and from
@rst/@endrst regions embedded in C/C++ comments and Python docstrings,
parses the directives named by --directive, and builds a link graph from
any option the --links config declares as a link field.`,
	}

	rootCmd.AddCommand(scan.NewScanCommand())
	rootCmd.AddCommand(watch.NewWatchCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
