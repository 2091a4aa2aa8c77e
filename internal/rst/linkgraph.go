package rst

import (
	"strings"
	"sync"
)

// LinkNode holds one directive id's edges: Outgoing maps a link field
// name to the target ids it points at; Incoming maps the corresponding
// "<field>_back" name to the ids that point at this node.
type LinkNode struct {
	Outgoing map[string][]string
	Incoming map[string][]string
}

// LinkGraph is the cross-reference structure built from a Store
// snapshot and a LinkConfig. It is cycle-safe: every edge is computed at
// most once per rebuild from the owning directive's own option data,
// never by traversal, so cyclic links (d1 -> d2 -> d1) never cause
// non-termination.
type LinkGraph struct {
	mu    sync.RWMutex
	nodes map[string]*LinkNode
}

// NewLinkGraph returns an empty LinkGraph.
func NewLinkGraph() *LinkGraph {
	return &LinkGraph{nodes: make(map[string]*LinkNode)}
}

func (g *LinkGraph) nodeFor(id string) *LinkNode {
	n, ok := g.nodes[id]
	if !ok {
		n = &LinkNode{Outgoing: map[string][]string{}, Incoming: map[string][]string{}}
		g.nodes[id] = n
	}
	return n
}

func splitTargets(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

// linkDirective computes and records the outgoing edges of d (and the
// corresponding backlinks on its targets) against the current graph
// state. Callers are expected to have already cleared d's own outgoing
// edges and any stale backlinks they produced.
func (g *LinkGraph) linkDirective(d *DirectiveWithSource, cfg LinkConfig, sink *Sink) {
	node := g.nodeFor(d.ID)
	for _, lt := range cfg.Links {
		raw, ok := d.Options[lt.Name]
		if !ok {
			continue
		}
		for _, target := range splitTargets(raw) {
			if target == d.ID {
				sink.Warn(d.SourceFile, "directive %q links to itself via option %q, dropping edge", d.ID, lt.Name)
				continue
			}
			node.Outgoing[lt.Name] = append(node.Outgoing[lt.Name], target)
			backField := lt.Name + "_back"
			targetNode := g.nodeFor(target)
			if !containsString(targetNode.Incoming[backField], d.ID) {
				targetNode.Incoming[backField] = append(targetNode.Incoming[backField], d.ID)
			}
		}
	}
}

// Rebuild recomputes the whole graph from scratch: every node's incoming
// map is cleared, nodes for ids no longer in the Store are dropped, and
// every live directive's outgoing edges (and the backlinks they produce)
// are recomputed. This is always a correct reference result; Update
// below is an optimisation over it.
func (g *LinkGraph) Rebuild(store *Store, cfg LinkConfig, sink *Sink) {
	g.mu.Lock()
	defer g.mu.Unlock()

	live := store.AllIDs()
	for id, node := range g.nodes {
		if !live[id] {
			delete(g.nodes, id)
			continue
		}
		node.Incoming = map[string][]string{}
	}

	for _, d := range store.Snapshot() {
		node := g.nodeFor(d.ID)
		node.Outgoing = map[string][]string{}
	}
	for _, d := range store.Snapshot() {
		g.linkDirective(d, cfg, sink)
	}
}

// Update recomputes edges for the directive ids in changed (added,
// modified, or removed) and their immediate neighbours only. It never
// needs to touch directives outside changed's edge neighbourhood, which
// caps incremental cost at local edge degree rather than graph size.
// Rebuild remains the reference semantics; Update must always converge
// to the same graph Rebuild would produce for the same Store.
func (g *LinkGraph) Update(store *Store, cfg LinkConfig, changed []string, sink *Sink) {
	g.mu.Lock()
	defer g.mu.Unlock()

	changedSet := make(map[string]bool, len(changed))
	for _, id := range changed {
		changedSet[id] = true
	}

	neighbours := map[string]bool{}
	for id := range changedSet {
		node, ok := g.nodes[id]
		if !ok {
			continue
		}
		for _, targets := range node.Outgoing {
			for _, t := range targets {
				neighbours[t] = true
			}
		}
		for _, sources := range node.Incoming {
			for _, s := range sources {
				neighbours[s] = true
			}
		}
	}

	affected := map[string]bool{}
	for id := range changedSet {
		affected[id] = true
	}
	for id := range neighbours {
		affected[id] = true
	}

	// Remove edges originating at any affected id, and the backlinks
	// they produced on third parties.
	for id := range affected {
		node, ok := g.nodes[id]
		if !ok {
			continue
		}
		for field, targets := range node.Outgoing {
			backField := field + "_back"
			for _, t := range targets {
				if tnode, ok := g.nodes[t]; ok {
					tnode.Incoming[backField] = removeString(tnode.Incoming[backField], id)
					if len(tnode.Incoming[backField]) == 0 {
						delete(tnode.Incoming, backField)
					}
				}
			}
		}
		node.Outgoing = map[string][]string{}
	}

	live := store.AllIDs()
	for id := range changedSet {
		if !live[id] {
			delete(g.nodes, id)
		}
	}

	for id := range affected {
		if !live[id] {
			continue
		}
		d, ok := store.Get(id)
		if !ok {
			continue
		}
		g.linkDirective(d, cfg, sink)
	}

	for id, node := range g.nodes {
		if live[id] {
			continue
		}
		if len(node.Outgoing) == 0 && len(node.Incoming) == 0 {
			delete(g.nodes, id)
		}
	}
}

// BackfieldsFor returns the "<field>_back" -> comma-joined-source-ids
// map materialised for id, ready to be merged into that directive's
// emitted options. It returns nil if id has no incoming edges.
func (g *LinkGraph) BackfieldsFor(id string) map[string]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	var out map[string]string
	for field, ids := range node.Incoming {
		if len(ids) == 0 {
			continue
		}
		if out == nil {
			out = map[string]string{}
		}
		out[field] = strings.Join(ids, ",")
	}
	return out
}
