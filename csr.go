package wikirace

import "sort"

// csrGraph is the in-memory compressed-sparse-row adjacency, held in
// both directions so the bidirectional search never has to transpose
// at query time. edges[offsets[d]:offsets[d+1]] are d's out-neighbors
// (or in-neighbors, for the reverse arrays), sorted by dense id;
// redirects[i] is Sentinel when edges[i] was a direct link, or the
// dense id of the redirect page that produced the link otherwise —
// the redirects_passed side table, stored parallel to the edge it
// annotates instead of as a separate map.
type csrGraph struct {
	forwardOffsets []uint32
	forwardEdges   []uint32
	forwardRedir   []uint32

	reverseOffsets []uint32
	reverseEdges   []uint32
	reverseRedir   []uint32
}

// buildCSRFromRows takes one adjacency row per dense source id
// (already deduplicated and sorted by target, see dedupPagelinkEdges)
// and builds both the forward CSR and its reverse by transposition.
func buildCSRFromRows(rows [][]pagelinkEdge) *csrGraph {
	n := len(rows)
	g := &csrGraph{
		forwardOffsets: make([]uint32, n+1),
		reverseOffsets: make([]uint32, n+1),
	}

	total := 0
	for _, r := range rows {
		total += len(r)
	}
	g.forwardEdges = make([]uint32, 0, total)
	g.forwardRedir = make([]uint32, 0, total)

	inDegree := make([]uint32, n)
	for from, r := range rows {
		g.forwardOffsets[from] = uint32(len(g.forwardEdges))
		for _, e := range r {
			g.forwardEdges = append(g.forwardEdges, e.to)
			g.forwardRedir = append(g.forwardRedir, e.redirect)
			inDegree[e.to]++
		}
	}
	g.forwardOffsets[n] = uint32(len(g.forwardEdges))

	g.reverseOffsets[0] = 0
	for d := 0; d < n; d++ {
		g.reverseOffsets[d+1] = g.reverseOffsets[d] + inDegree[d]
	}
	total = int(g.reverseOffsets[n])
	g.reverseEdges = make([]uint32, total)
	g.reverseRedir = make([]uint32, total)

	cursor := make([]uint32, n)
	copy(cursor, g.reverseOffsets[:n])
	for from, r := range rows {
		for _, e := range r {
			pos := cursor[e.to]
			g.reverseEdges[pos] = uint32(from)
			g.reverseRedir[pos] = e.redirect
			cursor[e.to]++
		}
	}

	// Within each reverse row, edges were appended in forward-source
	// order, not sorted by source id; sort them (and their parallel
	// redirect annotation together) so reverse lookups can also binary
	// search, matching the forward rows' invariant.
	for d := 0; d < n; d++ {
		start, end := g.reverseOffsets[d], g.reverseOffsets[d+1]
		sortParallel(g.reverseEdges[start:end], g.reverseRedir[start:end])
	}

	return g
}

func sortParallel(keys, vals []uint32) {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return keys[idx[i]] < keys[idx[j]] })
	sortedKeys := make([]uint32, len(keys))
	sortedVals := make([]uint32, len(vals))
	for i, j := range idx {
		sortedKeys[i] = keys[j]
		sortedVals[i] = vals[j]
	}
	copy(keys, sortedKeys)
	copy(vals, sortedVals)
}

func (g *csrGraph) nodeCount() int { return len(g.forwardOffsets) - 1 }

func (g *csrGraph) forward(d PageID) ([]uint32, []uint32) {
	s, e := g.forwardOffsets[d], g.forwardOffsets[d+1]
	return g.forwardEdges[s:e], g.forwardRedir[s:e]
}

func (g *csrGraph) reverse(d PageID) ([]uint32, []uint32) {
	s, e := g.reverseOffsets[d], g.reverseOffsets[d+1]
	return g.reverseEdges[s:e], g.reverseRedir[s:e]
}

// redirectsPassedRows extracts the sparse subset of the forward CSR
// where an edge actually passed through a redirect: most rows have
// most of their entries tagged Sentinel (a direct link), so copying
// the full forward adjacency for this side table would nearly double
// on-disk size for almost no benefit. The returned (offsets, targets,
// redirects) triple is itself CSR-shaped — each row's entries stay in
// target-id order, since they're a filtered subsequence of an
// already-sorted forward row — so redirectFor's binary search works
// against it unchanged.
func (g *csrGraph) redirectsPassedRows() (offsets, targets, redirects []uint32) {
	n := g.nodeCount()
	offsets = make([]uint32, n+1)
	for d := 0; d < n; d++ {
		edges, redirs := g.forward(PageID(d))
		offsets[d] = uint32(len(targets))
		for i, r := range redirs {
			if r != Sentinel {
				targets = append(targets, edges[i])
				redirects = append(redirects, r)
			}
		}
	}
	offsets[n] = uint32(len(targets))
	return offsets, targets, redirects
}

// redirectFor returns the redirect dense id annotating the edge
// src->dst in the given direction's adjacency (Sentinel if none),
// found by binary search since each row is sorted by neighbor id.
func redirectFor(neighbors, redirects []uint32, dst PageID) PageID {
	lo, hi := 0, len(neighbors)
	for lo < hi {
		mid := (lo + hi) / 2
		if neighbors[mid] < dst {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(neighbors) && neighbors[lo] == dst {
		return redirects[lo]
	}
	return Sentinel
}
