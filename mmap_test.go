package wikirace

import (
	"testing"
)

// TestWriteAndLoadGraphRoundTrip builds the six-page synthetic graph,
// writes it to a temporary directory with writeGraph, reloads it with
// Load, and re-runs one of the end-to-end search scenarios against the
// mmap-backed Graph to exercise the full write/load path together, not
// just the in-memory search logic newTestGraph's fakes bypass.
func TestWriteAndLoadGraphRoundTrip(t *testing.T) {
	dir := t.TempDir()

	maps := newPageMaps(6)
	titles := []string{"Zero", "One", "Two", "Three", "Four", "Five"}
	for i, title := range titles {
		maps.add(OrigID(100+i), title)
	}

	rows := [][]pagelinkEdge{
		0: {{to: 1, redirect: Sentinel}, {to: 2, redirect: Sentinel}},
		1: {{to: 4, redirect: Sentinel}},
		2: {{to: 4, redirect: 3}},
		3: {{to: 4, redirect: Sentinel}},
		4: {{to: 5, redirect: Sentinel}},
		5: {},
	}
	csrG := buildCSRFromRows(rows)
	redirectTargets := []PageID{Sentinel, Sentinel, Sentinel, 4, Sentinel, Sentinel}

	if err := writeGraph(dir, maps, csrG, redirectTargets, manifest{DumpDate: "20260101", SourceLang: "en"}); err != nil {
		t.Fatal(err)
	}

	g, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	if g.NodeCount() != 6 {
		t.Fatalf("NodeCount() = %d, want 6", g.NodeCount())
	}

	for i, title := range titles {
		d, err := g.ResolveTitle(title)
		if err != nil {
			t.Fatalf("ResolveTitle(%q): %v", title, err)
		}
		if int(d) != i {
			t.Errorf("ResolveTitle(%q) = %d, want %d", title, d, i)
		}
		if got := g.DenseIDToTitle(PageID(i)); got != title {
			t.Errorf("DenseIDToTitle(%d) = %q, want %q", i, got, title)
		}
		orig, err := g.ResolveOrigID(OrigID(100 + i))
		if err != nil || int(orig) != i {
			t.Errorf("ResolveOrigID(%d) = %d, %v; want %d, nil", 100+i, orig, err, i)
		}
	}

	if g.ResolveRedirect(3) != 4 {
		t.Errorf("ResolveRedirect(3) = %d, want 4", g.ResolveRedirect(3))
	}

	paths, _, err := g.FindAllShortestPaths(0, 4, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2: %v", len(paths), paths)
	}
}
