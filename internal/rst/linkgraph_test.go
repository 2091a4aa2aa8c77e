package rst

import "testing"

func TestLinkGraphRebuildMaterialisesBacklinks(t *testing.T) {
	store := NewStore()
	store.Put("/docs/a.rst", []DirectiveWithSource{
		{Directive: Directive{Name: "a", Options: map[string]string{"links_to": "d2"}}, ID: "d1"},
	})
	store.Put("/docs/b.rst", []DirectiveWithSource{
		{Directive: Directive{Name: "b"}, ID: "d2"},
	})
	cfg := LinkConfig{Links: []LinkType{{Name: "links_to"}}}

	g := NewLinkGraph()
	g.Rebuild(store, cfg, nil)

	d1, _ := store.Get("d1")
	if got := d1.Options["links_to"]; got != "d2" {
		t.Fatalf("sanity: d1.links_to = %q", got)
	}

	back := g.BackfieldsFor("d2")
	if back["links_to_back"] != "d1" {
		t.Errorf("d2 backlinks = %v, want links_to_back=d1", back)
	}
}

func TestLinkGraphSelfLoopDropped(t *testing.T) {
	store := NewStore()
	store.Put("/docs/a.rst", []DirectiveWithSource{
		{Directive: Directive{Name: "a", Options: map[string]string{"links_to": "d1"}}, ID: "d1"},
	})
	cfg := LinkConfig{Links: []LinkType{{Name: "links_to"}}}

	sink := NewSink()
	g := NewLinkGraph()
	g.Rebuild(store, cfg, sink)

	if back := g.BackfieldsFor("d1"); back != nil {
		t.Errorf("self-loop should not produce a backlink, got %v", back)
	}
	if len(sink.Warnings()) == 0 {
		t.Errorf("expected a self-reference warning")
	}
}

func TestLinkGraphIncrementalUpdateOnDeletion(t *testing.T) {
	store := NewStore()
	store.Put("/docs/a.rst", []DirectiveWithSource{
		{Directive: Directive{Name: "a", Options: map[string]string{"links_to": "d2"}}, ID: "d1"},
	})
	store.Put("/docs/b.rst", []DirectiveWithSource{
		{Directive: Directive{Name: "b"}, ID: "d2"},
	})
	cfg := LinkConfig{Links: []LinkType{{Name: "links_to"}}}

	g := NewLinkGraph()
	g.Rebuild(store, cfg, nil)
	if back := g.BackfieldsFor("d2"); back["links_to_back"] != "d1" {
		t.Fatalf("sanity setup failed: %v", back)
	}

	removed := store.Remove("/docs/a.rst")
	g.Update(store, cfg, removed, nil)

	if back := g.BackfieldsFor("d2"); back != nil {
		t.Errorf("d2 backlinks after deletion = %v, want none (map entry pruned)", back)
	}
}

func TestLinkGraphBacklinkSymmetryAcrossMultipleTargets(t *testing.T) {
	store := NewStore()
	store.Put("/docs/a.rst", []DirectiveWithSource{
		{Directive: Directive{Name: "a", Options: map[string]string{"derives": "d2, d3"}}, ID: "d1"},
	})
	store.Put("/docs/b.rst", []DirectiveWithSource{
		{Directive: Directive{Name: "b"}, ID: "d2"},
		{Directive: Directive{Name: "b"}, ID: "d3"},
	})
	cfg := LinkConfig{Links: []LinkType{{Name: "derives"}}}

	g := NewLinkGraph()
	g.Rebuild(store, cfg, nil)

	for _, target := range []string{"d2", "d3"} {
		back := g.BackfieldsFor(target)
		if back["derives_back"] != "d1" {
			t.Errorf("%s backlinks = %v, want derives_back=d1", target, back)
		}
	}
}

func TestLinkGraphDanglingTargetKeepsEdge(t *testing.T) {
	store := NewStore()
	store.Put("/docs/a.rst", []DirectiveWithSource{
		{Directive: Directive{Name: "a", Options: map[string]string{"links_to": "missing"}}, ID: "d1"},
	})
	cfg := LinkConfig{Links: []LinkType{{Name: "links_to"}}}

	g := NewLinkGraph()
	g.Rebuild(store, cfg, nil)

	back := g.BackfieldsFor("missing")
	if back["links_to_back"] != "d1" {
		t.Errorf("dangling target backlinks = %v, want links_to_back=d1", back)
	}
}
