// Package diffreport matches directives across an old and new parse of
// the same file (run by watch mode right before Store.Put) and reports,
// via unified diff, which directives actually changed.
package diffreport

import (
	"github.com/aymanbagabas/go-udiff"

	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/rst"
)

// ChangeKind classifies how a directive id's presence changed between
// two parses of the same file.
type ChangeKind int

const (
	// Unchanged means the directive existed in both parses with
	// identical content.
	Unchanged ChangeKind = iota
	// Modified means the directive existed in both parses but its
	// content (or arguments/options) differ.
	Modified
	// Added means the directive is new in the second parse.
	Added
	// Removed means the directive existed only in the first parse.
	Removed
)

// Change describes one directive id's fate between old and new.
type Change struct {
	ID   string
	Kind ChangeKind
	Diff string // unified diff of content, only set for Modified
}

// Compare matches old and new by directive id and reports what changed.
// Unchanged directives are included too so callers can distinguish "no
// edits at all" from "file re-read, nothing moved."
func Compare(oldDirectives, newDirectives []rst.DirectiveWithSource) []Change {
	oldByID := make(map[string]rst.DirectiveWithSource, len(oldDirectives))
	for _, d := range oldDirectives {
		oldByID[d.ID] = d
	}
	newByID := make(map[string]rst.DirectiveWithSource, len(newDirectives))
	for _, d := range newDirectives {
		newByID[d.ID] = d
	}

	var changes []Change

	for id, oldD := range oldByID {
		newD, ok := newByID[id]
		if !ok {
			changes = append(changes, Change{ID: id, Kind: Removed})
			continue
		}
		if sameDirective(oldD, newD) {
			changes = append(changes, Change{ID: id, Kind: Unchanged})
			continue
		}
		changes = append(changes, Change{
			ID:   id,
			Kind: Modified,
			Diff: udiff.Unified(id+" (before)", id+" (after)", oldD.Content, newD.Content),
		})
	}

	for id := range newByID {
		if _, ok := oldByID[id]; !ok {
			changes = append(changes, Change{ID: id, Kind: Added})
		}
	}

	return changes
}

func sameDirective(a, b rst.DirectiveWithSource) bool {
	if a.Content != b.Content || a.Arguments != b.Arguments {
		return false
	}
	if len(a.Options) != len(b.Options) {
		return false
	}
	for k, v := range a.Options {
		if b.Options[k] != v {
			return false
		}
	}
	return true
}
