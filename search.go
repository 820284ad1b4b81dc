package wikirace

// searchSide holds one direction's BFS state: the frontier queue for
// the level currently being expanded, the depth each node was first
// seen at, and the set of predecessors on a shortest path to that
// node. Nodes can have more than one predecessor when several
// shortest paths pass through them.
type searchSide struct {
	queue        []PageID
	visitedDepth map[PageID]uint8
	parents      map[PageID][]PageID
}

func newSearchSide(start PageID) *searchSide {
	return &searchSide{
		queue:        []PageID{start},
		visitedDepth: map[PageID]uint8{start: 0},
		parents:      map[PageID][]PageID{},
	}
}

// SearchStats carries instrumentation exposed to the caller.
type SearchStats struct {
	NodesExpanded int
}

// FindAllShortestPaths runs a bidirectional, level-synchronized,
// multi-parent BFS between two already-redirect-resolved dense ids,
// returning every shortest path as a sequence of dense ids with
// redirect nodes restored. maxDepth bounds the combined search depth
// (ErrMaxDepthReached is returned, not a path, if it is exceeded); the
// cmd/ layer defaults this to 50.
func (g *Graph) FindAllShortestPaths(start, goal PageID, maxDepth uint8) ([][]PageID, SearchStats, error) {
	var stats SearchStats
	if start == goal {
		return [][]PageID{{start}}, stats, nil
	}

	fwd := newSearchSide(start)
	bwd := newSearchSide(goal)

	var meetFoundAtDepth int = -1
	meetNodes := map[PageID]bool{}
	combinedDepth := 0

	for len(fwd.queue) > 0 && len(bwd.queue) > 0 {
		if meetFoundAtDepth >= 0 && combinedDepth >= meetFoundAtDepth {
			break
		}
		if combinedDepth >= int(maxDepth) {
			return nil, stats, ErrMaxDepthReached
		}

		var expanding, other *searchSide
		var forwardDir bool
		if len(fwd.queue) <= len(bwd.queue) {
			expanding, other, forwardDir = fwd, bwd, true
		} else {
			expanding, other, forwardDir = bwd, fwd, false
		}

		nextQueue := make([]PageID, 0, len(expanding.queue))
		curLevelDepth := expanding.visitedDepth[expanding.queue[0]]
		newDepth := curLevelDepth + 1

		for _, cur := range expanding.queue {
			stats.NodesExpanded++
			var neighbors []uint32
			if forwardDir {
				neighbors = g.forward(cur)
			} else {
				neighbors = g.reverse(cur)
			}
			for _, nRaw := range neighbors {
				n := PageID(nRaw)
				if d, seen := expanding.visitedDepth[n]; seen {
					if d == newDepth {
						expanding.parents[n] = append(expanding.parents[n], cur)
					}
					continue
				}
				expanding.visitedDepth[n] = newDepth
				expanding.parents[n] = []PageID{cur}
				nextQueue = append(nextQueue, n)

				if _, metByOther := other.visitedDepth[n]; metByOther {
					if meetFoundAtDepth < 0 {
						meetFoundAtDepth = combinedDepth + 1
					}
					if combinedDepth+1 == meetFoundAtDepth {
						meetNodes[n] = true
					}
				}
			}
		}
		expanding.queue = nextQueue
		combinedDepth++
	}

	if len(meetNodes) == 0 {
		return nil, stats, nil // NoPath: empty result, not an error
	}

	var paths [][]PageID
	for m := range meetNodes {
		fwdPaths := enumeratePaths(fwd.parents, start, m)
		bwdPaths := enumeratePaths(bwd.parents, goal, m)
		for _, fp := range fwdPaths {
			for _, bp := range bwdPaths {
				reversed := make([]PageID, len(bp))
				for i, v := range bp {
					reversed[len(bp)-1-i] = v
				}
				combined := append(append([]PageID{}, fp...), reversed[1:]...)
				paths = append(paths, combined)
			}
		}
	}

	for _, p := range paths {
		for i := 0; i+1 < len(p); i++ {
			if r := g.redirectsPassed(p[i], p[i+1]); r != Sentinel {
				p[i+1] = r
			}
		}
	}

	return paths, stats, nil
}

// enumeratePaths performs a depth-limited DFS over a parents map,
// exploring every branch, to list every path from root to target.
func enumeratePaths(parents map[PageID][]PageID, root, target PageID) [][]PageID {
	if root == target {
		return [][]PageID{{root}}
	}
	var out [][]PageID
	var walk func(node PageID, suffix []PageID)
	walk = func(node PageID, suffix []PageID) {
		if node == root {
			path := make([]PageID, 0, len(suffix)+1)
			path = append(path, root)
			path = append(path, suffix...)
			out = append(out, path)
			return
		}
		for _, p := range parents[node] {
			walk(p, append([]PageID{node}, suffix...))
		}
	}
	walk(target, nil)
	return out
}
