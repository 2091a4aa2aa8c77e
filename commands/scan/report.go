package scan

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/ingest"
	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/rst"
)

type report struct {
	filesDiscovered int
	filesProcessed  int
	directives      int
	errors          []ingest.FileError
	warnings        []rst.Warning
	outputFiles     []string
	dryRun          bool
	elapsed         time.Duration
}

// printReport prints a scan summary to stdout and any warnings/errors to
// stderr: a banner, then sections that only appear when they have
// something to say.
func printReport(r report) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("RST LINK AUDIT - SCAN REPORT")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nFiles Discovered: %d\n", r.filesDiscovered)
	fmt.Printf("Files Processed:  %d\n", r.filesProcessed)
	fmt.Printf("Directives Found: %d\n", r.directives)

	if r.dryRun {
		fmt.Println("\nDry run: no JSON was written.")
	} else {
		fmt.Printf("\nOutput Files Written: %d\n", len(r.outputFiles))
		for _, f := range r.outputFiles {
			fmt.Printf("  - %s\n", f)
		}
	}

	fmt.Printf("\nElapsed: %.2fms\n", float64(r.elapsed.Microseconds())/1000.0)

	fmt.Println("\n" + strings.Repeat("=", 60))

	if len(r.errors) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d file(s) could not be processed:\n", len(r.errors))
		for _, e := range r.errors {
			fmt.Fprintf(os.Stderr, "  %s\n", e.Error())
		}
	}
	if len(r.warnings) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d warning(s):\n", len(r.warnings))
		for _, w := range r.warnings {
			fmt.Fprintf(os.Stderr, "  %s\n", w.String())
		}
	}
}
