package wikirace

import (
	"reflect"
	"sort"
	"testing"
)

// newTestGraph builds a small six-page synthetic graph directly in
// memory, bypassing mmap: links 0->1, 0->2, 1->4, 2->3, 3->4, 4->5,
// with 3 a redirect to 4, so the link 2->3 is stored as the edge 2->4
// with redirects_passed[(2,4)] = 3.
func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	rows := [][]pagelinkEdge{
		0: {{to: 1, redirect: Sentinel}, {to: 2, redirect: Sentinel}},
		1: {{to: 4, redirect: Sentinel}},
		2: {{to: 4, redirect: 3}}, // 2->3 redirected to 4
		3: {{to: 4, redirect: Sentinel}},
		4: {{to: 5, redirect: Sentinel}},
		5: {},
	}
	csrG := buildCSRFromRows(rows)
	redirectTargets := []PageID{Sentinel, Sentinel, Sentinel, 4, Sentinel, Sentinel}

	g := &Graph{nodeCount: 6}
	g.csrOffsets = fakeU32View(csrG.forwardOffsets)
	g.csrEdges = fakeU32View(csrG.forwardEdges)
	g.csrReverseOffsets = fakeU32View(csrG.reverseOffsets)
	g.csrReverseEdges = fakeU32View(csrG.reverseEdges)
	g.redirPassedOffsets = fakeU32View(csrG.forwardOffsets)
	g.redirPassedTargets = fakeU32View(csrG.forwardEdges)
	g.redirPassedRedirect = fakeU32View(csrG.forwardRedir)
	g.redirTarget = fakeU32View(redirectTargets)
	return g
}

// fakeU32View wraps an in-memory []uint32 behind the same accessor
// methods the mmap-backed u32View exposes, without touching a file,
// so search logic can be tested without building real mmap files.
func fakeU32View(values []uint32) *u32View {
	raw := make([]byte, len(values)*4)
	for i, v := range values {
		raw[i*4] = byte(v)
		raw[i*4+1] = byte(v >> 8)
		raw[i*4+2] = byte(v >> 16)
		raw[i*4+3] = byte(v >> 24)
	}
	return &u32View{region: raw}
}

func sortPaths(paths [][]PageID) {
	sort.Slice(paths, func(i, j int) bool {
		a, b := paths[i], paths[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}

func TestFindAllShortestPathsTwoEqualLengthRoutes(t *testing.T) {
	g := newTestGraph(t)
	paths, _, err := g.FindAllShortestPaths(0, 4, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]PageID{{0, 1, 4}, {0, 2, 3}}
	sortPaths(paths)
	sortPaths(want)
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("got %v, want %v", paths, want)
	}
}

func TestFindAllShortestPathsExtendsThroughSharedSuffix(t *testing.T) {
	g := newTestGraph(t)
	paths, _, err := g.FindAllShortestPaths(0, 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]PageID{{0, 1, 4, 5}, {0, 2, 3, 5}}
	sortPaths(paths)
	sortPaths(want)
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("got %v, want %v", paths, want)
	}
}

func TestFindAllShortestPathsNoPathInWrongDirection(t *testing.T) {
	g := newTestGraph(t)
	paths, _, err := g.FindAllShortestPaths(5, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no path, got %v", paths)
	}
}

func TestFindAllShortestPathsSameNode(t *testing.T) {
	g := newTestGraph(t)
	paths, _, err := g.FindAllShortestPaths(4, 4, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(paths, [][]PageID{{4}}) {
		t.Errorf("got %v, want [[4]]", paths)
	}
}

func TestFindAllShortestPathsRedirectMustBePreResolved(t *testing.T) {
	g := newTestGraph(t)
	resolved := g.ResolveRedirect(3)
	if resolved != 4 {
		t.Fatalf("expected redirect 3 to resolve to 4, got %d", resolved)
	}
	paths, _, err := g.FindAllShortestPaths(0, resolved, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]PageID{{0, 1, 4}, {0, 2, 3}}
	sortPaths(paths)
	sortPaths(want)
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("got %v, want %v", paths, want)
	}
}

func TestShortestPathDepthMatchesPathLengths(t *testing.T) {
	g := newTestGraph(t)
	// Callers are expected to resolve redirects before calling, same as
	// FindAllShortestPaths, so (0, 3) is exercised via its resolved
	// form (0, 4).
	cases := []struct {
		s, goal PageID
		want    uint8
		ok      bool
	}{
		{0, 4, 3, true},
		{0, 5, 4, true},
		{5, 0, 0, false},
		{4, 4, 1, true},
		{0, g.ResolveRedirect(3), 3, true},
	}
	for _, c := range cases {
		depth, ok := g.ShortestPathDepth(c.s, c.goal, 10)
		if ok != c.ok {
			t.Errorf("ShortestPathDepth(%d,%d): ok=%v, want %v", c.s, c.goal, ok, c.ok)
			continue
		}
		if ok && depth != c.want {
			t.Errorf("ShortestPathDepth(%d,%d) = %d, want %d", c.s, c.goal, depth, c.want)
		}
	}
}

func TestRedirectsPassedLookup(t *testing.T) {
	g := newTestGraph(t)
	if r := g.redirectsPassed(2, 4); r != 3 {
		t.Errorf("redirectsPassed(2,4) = %d, want 3", r)
	}
	if r := g.redirectsPassed(0, 1); r != Sentinel {
		t.Errorf("redirectsPassed(0,1) = %d, want Sentinel (direct link)", r)
	}
}

func TestDepthOnlyAndPathSearchAgree(t *testing.T) {
	// The depth-only search and the all-paths search must agree on the
	// shortest path length: every returned path has as many nodes as
	// ShortestPathDepth reports.
	g := newTestGraph(t)
	biPaths, _, err := g.FindAllShortestPaths(0, 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	depth, ok := g.ShortestPathDepth(0, 5, 10)
	if !ok {
		t.Fatal("expected a path")
	}
	for _, p := range biPaths {
		if len(p) != int(depth) {
			t.Errorf("path %v has length %d, want %d", p, len(p), depth)
		}
	}
}
