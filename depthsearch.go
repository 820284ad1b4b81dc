package wikirace

// ShortestPathDepth is the pruned form of FindAllShortestPaths: no
// parent tracking, no path reconstruction, just the path length (or
// "no path"). The returned value is the number of nodes on the
// shortest path, so start == goal returns 1, not 0 — the deepest-pair
// miner runs this millions of times and parent maps would dominate its
// allocation cost for no benefit.
func (g *Graph) ShortestPathDepth(start, goal PageID, maxDepth uint8) (uint8, bool) {
	if start == goal {
		return 1, true
	}

	fwdVisited := map[PageID]uint8{start: 0}
	bwdVisited := map[PageID]uint8{goal: 0}
	fwdQueue := []PageID{start}
	bwdQueue := []PageID{goal}

	combinedDepth := 0
	for len(fwdQueue) > 0 && len(bwdQueue) > 0 {
		if combinedDepth >= int(maxDepth) {
			return 0, false
		}

		var queue *[]PageID
		var visited, other map[PageID]uint8
		var forwardDir bool
		if len(fwdQueue) <= len(bwdQueue) {
			queue, visited, other, forwardDir = &fwdQueue, fwdVisited, bwdVisited, true
		} else {
			queue, visited, other, forwardDir = &bwdQueue, bwdVisited, fwdVisited, false
		}

		curDepth := visited[(*queue)[0]]
		newDepth := curDepth + 1
		nextQueue := make([]PageID, 0, len(*queue))

		for _, cur := range *queue {
			var neighbors []uint32
			if forwardDir {
				neighbors = g.forward(cur)
			} else {
				neighbors = g.reverse(cur)
			}
			for _, nRaw := range neighbors {
				n := PageID(nRaw)
				if _, seen := visited[n]; seen {
					continue
				}
				visited[n] = newDepth
				nextQueue = append(nextQueue, n)
				if d, met := other[n]; met {
					return newDepth + d + 1, true
				}
			}
		}
		*queue = nextQueue
		combinedDepth++
	}
	return 0, false
}
