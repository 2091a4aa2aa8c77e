package rst

import "sync"

// Store is the canonical in-memory map of canonical source path ->
// directive id -> directive record. It hands out shared
// *DirectiveWithSource handles (never copies). Backlink fields are not
// written into these records: the LinkGraph keeps them in its own nodes
// and the emitter merges them in when it builds output records.
//
// All access is serialised by a single RWMutex: one coarse
// mutual-exclusion region per logical operation.
type Store struct {
	mu   sync.RWMutex
	byID map[string]map[string]*DirectiveWithSource
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{byID: make(map[string]map[string]*DirectiveWithSource)}
}

// Put replaces every directive previously recorded for sourceFile with
// ds, under a single lock. Handles are allocated fresh so that callers
// re-ingesting a changed file never mutate a record still referenced
// elsewhere.
func (s *Store) Put(sourceFile string, ds []DirectiveWithSource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]*DirectiveWithSource, len(ds))
	for i := range ds {
		d := ds[i]
		byID[d.ID] = &d
	}
	s.byID[sourceFile] = byID
}

// Remove drops every directive whose canonical source path equals
// sourceFile or is prefixed by it (a directory delete). It returns the
// ids that were removed, for use by the LinkGraph incremental update.
func (s *Store) Remove(sourceFile string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for path, directives := range s.byID {
		if path != sourceFile && !hasPathPrefix(path, sourceFile) {
			continue
		}
		for id := range directives {
			removed = append(removed, id)
		}
		delete(s.byID, path)
	}
	return removed
}

func hasPathPrefix(path, prefix string) bool {
	if len(path) <= len(prefix) {
		return false
	}
	if path[:len(prefix)] != prefix {
		return false
	}
	return path[len(prefix)] == '/'
}

// Snapshot returns every directive currently in the Store, in no
// particular order. Callers that need a consistent read should treat
// the returned handles as a point-in-time view: they are the live
// records, not copies. A later Put for the same file installs fresh
// handles rather than mutating these, so a snapshot can go stale.
func (s *Store) Snapshot() []*DirectiveWithSource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*DirectiveWithSource
	for _, directives := range s.byID {
		for _, d := range directives {
			out = append(out, d)
		}
	}
	return out
}

// Get returns the shared handle for id, if present, across any file.
func (s *Store) Get(id string) (*DirectiveWithSource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, directives := range s.byID {
		if d, ok := directives[id]; ok {
			return d, true
		}
	}
	return nil, false
}

// AllIDs returns every directive id currently in the Store.
func (s *Store) AllIDs() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool)
	for _, directives := range s.byID {
		for id := range directives {
			out[id] = true
		}
	}
	return out
}

// Files returns the canonical paths currently tracked, for diagnostics.
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.byID))
	for path := range s.byID {
		out = append(out, path)
	}
	return out
}
