package rst

import "testing"

func TestParseBasicDirective(t *testing.T) {
	input := ".. mydirective::\n" +
		"   :option1: value1\n" +
		"   :option2: value2\n" +
		"\n" +
		"   This is content.\n"

	got := Parse(input, []string{"mydirective"}, "doc.rst", nil)
	if len(got) != 1 {
		t.Fatalf("got %d directives, want 1", len(got))
	}
	d := got[0]
	if d.Name != "mydirective" {
		t.Errorf("Name = %q, want mydirective", d.Name)
	}
	if d.Arguments != "" {
		t.Errorf("Arguments = %q, want empty", d.Arguments)
	}
	if d.Options["option1"] != "value1" || d.Options["option2"] != "value2" {
		t.Errorf("Options = %#v, want option1=value1 option2=value2", d.Options)
	}
	if d.Content != "This is content." {
		t.Errorf("Content = %q, want %q", d.Content, "This is content.")
	}
	if d.LineNumber != 1 {
		t.Errorf("LineNumber = %d, want 1", d.LineNumber)
	}
}

func TestParseMultilineOption(t *testing.T) {
	input := ".. d::\n" +
		"   :o1: v1\n" +
		"   :o2:\n" +
		"       line1\n" +
		"       line2\n" +
		"\n" +
		"   body\n"

	got := Parse(input, []string{"d"}, "doc.rst", nil)
	if len(got) != 1 {
		t.Fatalf("got %d directives, want 1", len(got))
	}
	d := got[0]
	if d.Options["o1"] != "v1" {
		t.Errorf("o1 = %q, want v1", d.Options["o1"])
	}
	if want := "line1\nline2"; d.Options["o2"] != want {
		t.Errorf("o2 = %q, want %q", d.Options["o2"], want)
	}
	if d.Content != "body" {
		t.Errorf("Content = %q, want body", d.Content)
	}
}

func TestParseIgnoresOtherNames(t *testing.T) {
	input := ".. other::\n   :k: v\n"
	got := Parse(input, []string{"mydirective"}, "doc.rst", nil)
	if len(got) != 0 {
		t.Fatalf("got %d directives, want 0", len(got))
	}
}

func TestParseRejectsInteriorWhitespace(t *testing.T) {
	input := ".. foo bar::\n   body\n"
	got := Parse(input, []string{"foo", "bar", "foo bar"}, "doc.rst", nil)
	if len(got) != 0 {
		t.Fatalf("got %d directives, want 0 for name with interior whitespace", len(got))
	}
}

func TestParseSourceOrderAndNoOptionsNoContent(t *testing.T) {
	input := ".. a::\n\n.. b::\n   text\n"
	got := Parse(input, []string{"a", "b"}, "doc.rst", nil)
	if len(got) != 2 {
		t.Fatalf("got %d directives, want 2", len(got))
	}
	if got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("order = %s, %s; want a, b", got[0].Name, got[1].Name)
	}
	if got[0].LineNumber >= got[1].LineNumber {
		t.Errorf("line numbers not strictly increasing: %d, %d", got[0].LineNumber, got[1].LineNumber)
	}
}

func TestParseTerminatesOnNextDirective(t *testing.T) {
	input := ".. a::\n   :k: v\n\n   body a\n.. b::\n   body b\n"
	got := Parse(input, []string{"a", "b"}, "doc.rst", nil)
	if len(got) != 2 {
		t.Fatalf("got %d directives, want 2", len(got))
	}
	if got[0].Content != "body a" {
		t.Errorf("a.Content = %q, want %q", got[0].Content, "body a")
	}
	if got[1].Content != "body b" {
		t.Errorf("b.Content = %q, want %q", got[1].Content, "body b")
	}
}

func TestParseMalformedOptionBecomesContent(t *testing.T) {
	input := ".. a::\n   :notanoption without second colon\n   more body\n"
	got := Parse(input, []string{"a"}, "doc.rst", nil)
	if len(got) != 1 {
		t.Fatalf("got %d directives, want 1", len(got))
	}
	want := ":notanoption without second colon\nmore body"
	if got[0].Content != want {
		t.Errorf("Content = %q, want %q", got[0].Content, want)
	}
	if len(got[0].Options) != 0 {
		t.Errorf("Options = %#v, want empty", got[0].Options)
	}
}

func TestParseDeterministic(t *testing.T) {
	input := ".. a::\n   :k: v\n\n   body\n.. b::\n   text\n"
	first := Parse(input, []string{"a", "b"}, "doc.rst", nil)
	for i := 0; i < 5; i++ {
		again := Parse(input, []string{"a", "b"}, "doc.rst", nil)
		if len(again) != len(first) {
			t.Fatalf("iteration %d: got %d directives, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].Content != first[j].Content || again[j].ID != first[j].ID {
				t.Errorf("iteration %d: directive %d differs across runs", i, j)
			}
		}
	}
}

func TestParseContentNeverTrailsBlankLines(t *testing.T) {
	input := ".. a::\n   line1\n\n\n"
	got := Parse(input, []string{"a"}, "doc.rst", nil)
	if len(got) != 1 {
		t.Fatalf("got %d directives, want 1", len(got))
	}
	if got[0].Content != "line1" {
		t.Errorf("Content = %q, want %q", got[0].Content, "line1")
	}
}

func TestComputeIDPrefersExplicitOption(t *testing.T) {
	d := Directive{Name: "a", Options: map[string]string{"id": " explicit-id "}}
	if got := ComputeID("doc.rst", d, 3); got != "explicit-id" {
		t.Errorf("ComputeID = %q, want explicit-id", got)
	}
}

func TestComputeIDFallsBackToSynthetic(t *testing.T) {
	d := Directive{Name: "a", Options: map[string]string{"id": "   "}}
	want := "doc.rst:a:3"
	if got := ComputeID("doc.rst", d, 3); got != want {
		t.Errorf("ComputeID = %q, want %q", got, want)
	}
}
