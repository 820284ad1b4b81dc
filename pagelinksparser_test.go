package wikirace

import (
	"context"
	"testing"
)

func TestParsePageLinksResolvesRedirectsAndDedups(t *testing.T) {
	maps := newPageMaps(3)
	a := maps.add(1, "A")
	b := maps.add(2, "B")
	c := maps.add(3, "C")

	redirectTargets := make([]PageID, 3)
	for i := range redirectTargets {
		redirectTargets[i] = Sentinel
	}
	redirectTargets[b] = c

	linkTargets := map[uint64]PageID{10: b}

	// Two identical pagelinks rows from A to the same lt_id: the second
	// must be dropped by dedupPagelinkEdges ("first link wins").
	dump := "CREATE TABLE `pagelinks` (`pl_from` int, `pl_from_namespace` int, `pl_target_id` bigint);\n" +
		"INSERT INTO `pagelinks` VALUES (1,0,10),(1,0,10);\n"
	path := writeGzipDump(t, dump)

	csrG, err := parsePageLinks(context.Background(), path, maps, linkTargets, redirectTargets)
	if err != nil {
		t.Fatal(err)
	}

	edges, redirs := csrG.forward(a)
	if len(edges) != 1 {
		t.Fatalf("forward(A) has %d edges, want 1 after dedup: %v", len(edges), edges)
	}
	if PageID(edges[0]) != c {
		t.Errorf("forward(A)[0] = %d, want %d (C, via B's redirect)", edges[0], c)
	}
	if PageID(redirs[0]) != b {
		t.Errorf("forward(A) redirect annotation = %d, want %d (B)", redirs[0], b)
	}
}

func TestParsePageLinksDropsSelfLinksAfterRedirectResolution(t *testing.T) {
	maps := newPageMaps(2)
	a := maps.add(1, "A")
	b := maps.add(2, "B")

	redirectTargets := []PageID{Sentinel, Sentinel}
	redirectTargets[b] = a // B redirects to A

	linkTargets := map[uint64]PageID{20: b}

	// A links to B, but B redirects to A: after resolution this is a
	// self-loop and must be dropped entirely, not just deduplicated.
	dump := "CREATE TABLE `pagelinks` (`pl_from` int, `pl_from_namespace` int, `pl_target_id` bigint);\n" +
		"INSERT INTO `pagelinks` VALUES (1,0,20);\n"
	path := writeGzipDump(t, dump)

	csrG, err := parsePageLinks(context.Background(), path, maps, linkTargets, redirectTargets)
	if err != nil {
		t.Fatal(err)
	}

	edges, _ := csrG.forward(a)
	if len(edges) != 0 {
		t.Errorf("forward(A) has %d edges, want 0 (self-link after redirect dropped): %v", len(edges), edges)
	}
}

func TestParsePageLinksKeepsRedirectPagesOwnOutgoingLinks(t *testing.T) {
	maps := newPageMaps(3)
	a := maps.add(1, "A") // a redirect page that still carries a stray link
	d := maps.add(2, "D") // the page A redirects to
	c := maps.add(3, "C")

	redirectTargets := []PageID{Sentinel, Sentinel, Sentinel}
	redirectTargets[a] = d

	linkTargets := map[uint64]PageID{30: c}

	// A is a redirect to D, but A's own page row still has a pagelinks
	// entry pointing at C (e.g. a leftover maintenance/category link).
	// That edge belongs to A, not to D: only pl_target_id is resolved
	// through its redirect chain, never pl_from.
	dump := "CREATE TABLE `pagelinks` (`pl_from` int, `pl_from_namespace` int, `pl_target_id` bigint);\n" +
		"INSERT INTO `pagelinks` VALUES (1,0,30);\n"
	path := writeGzipDump(t, dump)

	csrG, err := parsePageLinks(context.Background(), path, maps, linkTargets, redirectTargets)
	if err != nil {
		t.Fatal(err)
	}

	edges, redirs := csrG.forward(a)
	if len(edges) != 1 || PageID(edges[0]) != c {
		t.Fatalf("forward(A) = %v, want a single edge to C (%d)", edges, c)
	}
	if PageID(redirs[0]) != Sentinel {
		t.Errorf("forward(A) redirect annotation = %d, want Sentinel (C is not a redirect)", redirs[0])
	}

	dEdges, _ := csrG.forward(d)
	if len(dEdges) != 0 {
		t.Errorf("forward(D) has %d edges, want 0: A's link must not be attributed to D", len(dEdges))
	}
}
