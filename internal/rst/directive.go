// Package rst implements the text-processing core of rst-link-audit:
// recovering RST from host-language comments and docstrings, scanning RST
// for directive blocks, and building a cross-reference graph across the
// directives a caller cares about.
//
// The package is reentrant and holds no package-level state; the only
// shared mutable state is Store and LinkGraph, both documented as safe
// for concurrent use under their own locks.
package rst

import (
	"fmt"
	"strings"
)

// Directive is the raw parser output for one `.. name::` match.
type Directive struct {
	Name      string            // directive token, e.g. "code-block"
	Arguments string            // free text after "::" to end of line, trimmed
	Options   map[string]string // option key (trimmed) -> value (possibly multi-line)
	Content   string            // dedented content body, no trailing blank lines
}

// DirectiveWithSource is a Directive plus the provenance needed to build
// identity and the link graph.
type DirectiveWithSource struct {
	Directive
	SourceFile string // canonical absolute path, as text
	LineNumber int    // 1-based index of the opening ".. name::" line
	ID         string // see ComputeID
}

// ComputeID derives a directive's identity: an explicit, non-blank `:id:`
// option wins; otherwise the id is synthesized from source file, name,
// and line number.
func ComputeID(sourceFile string, d Directive, lineNumber int) string {
	if raw, ok := d.Options["id"]; ok {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			return trimmed
		}
	}
	return fmt.Sprintf("%s:%s:%d", sourceFile, d.Name, lineNumber)
}

// WithSource builds a DirectiveWithSource, computing its ID.
func WithSource(d Directive, sourceFile string, lineNumber int) DirectiveWithSource {
	return DirectiveWithSource{
		Directive:  d,
		SourceFile: sourceFile,
		LineNumber: lineNumber,
		ID:         ComputeID(sourceFile, d, lineNumber),
	}
}
