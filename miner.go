package wikirace

import (
	"container/heap"
	"math/rand"
	"sync"
	"sync/atomic"
)

// PairDepth is one candidate for the deepest-pair miner's top-K
// result: a start/goal pair and the shortest-path distance between
// them.
type PairDepth struct {
	Depth uint8
	Start PageID
	Goal  PageID
}

// pairHeap is a min-heap ordered by Depth, so the smallest of the K
// best is always at the top and evicted first when a larger depth is
// offered — the same shape as a Dijkstra priority queue but ordered
// the opposite way since here bigger is better.
type pairHeap []PairDepth

func (h pairHeap) Len() int            { return len(h) }
func (h pairHeap) Less(i, j int) bool  { return h[i].Depth < h[j].Depth }
func (h pairHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pairHeap) Push(x interface{}) { *h = append(*h, x.(PairDepth)) }
func (h *pairHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (h *pairHeap) offer(p PairDepth, capacity int) {
	if h.Len() < capacity {
		heap.Push(h, p)
		return
	}
	if h.Len() > 0 && (*h)[0].Depth < p.Depth {
		heap.Pop(h)
		heap.Push(h, p)
	}
}

// MinerResult is the deepest-pair miner's output: the global top-K
// pairs by shortest-path distance, plus a histogram of every depth
// observed across every worker's successful BFS run.
type MinerResult struct {
	TopK      []PairDepth
	Histogram map[uint8]int
	Runs      int64
}

// MineDeepestPairs spawns workers goroutines that each repeatedly pick
// a uniformly random (start, goal) pair, run the depth-only BFS, and
// retain the localK deepest pairs seen in a local min-heap. stop, when
// closed, is observed between iterations and ends every worker; the
// caller is expected to close it in response to an operator signal
// (end-of-line on stdin at the cmd/ layer) or a time budget. Results
// from all workers are merged into one global top-globalK heap.
func MineDeepestPairs(g *Graph, workers, localK, globalK int, maxDepth uint8, stop <-chan struct{}) MinerResult {
	type workerOutput struct {
		heap pairHeap
		runs int64
		hist map[uint8]int
	}

	results := make(chan workerOutput, workers)
	var wg sync.WaitGroup
	var stopped int32

	go func() {
		<-stop
		atomic.StoreInt32(&stopped, 1)
	}()

	n := g.NodeCount()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			local := pairHeap{}
			hist := map[uint8]int{}
			var runs int64
			for atomic.LoadInt32(&stopped) == 0 {
				s := PageID(rng.Intn(n))
				gl := PageID(rng.Intn(n))
				if s == gl {
					continue
				}
				depth, ok := g.ShortestPathDepth(s, gl, maxDepth)
				runs++
				if !ok {
					continue
				}
				hist[depth]++
				local.offer(PairDepth{Depth: depth, Start: s, Goal: gl}, localK)
			}
			results <- workerOutput{heap: local, runs: runs, hist: hist}
		}(int64(w)*2654435761 + 1)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	global := pairHeap{}
	histogram := map[uint8]int{}
	var totalRuns int64
	for out := range results {
		totalRuns += out.runs
		for depth, count := range out.hist {
			histogram[depth] += count
		}
		for _, p := range out.heap {
			global.offer(p, globalK)
		}
	}

	sorted := make([]PairDepth, len(global))
	copy(sorted, global)
	heap.Init((*pairHeap)(&sorted))
	ordered := make([]PairDepth, 0, len(sorted))
	h := pairHeap(sorted)
	for h.Len() > 0 {
		ordered = append(ordered, heap.Pop(&h).(PairDepth))
	}
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}

	return MinerResult{TopK: ordered, Histogram: histogram, Runs: totalRuns}
}
