// Command wikirace-mine runs the deepest-pair miner against a built
// graph: many worker goroutines sample random page pairs and keep the
// pairs with the largest shortest-path distance. Send a newline on
// standard input to stop and print the results.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/wikirace/wikirace"
)

func main() {
	graphDir := flag.String("graph", ".", "directory containing a built graph")
	workers := flag.Int("workers", runtime.NumCPU(), "number of miner worker goroutines")
	localK := flag.Int("local-k", 8, "per-worker top-K heap capacity")
	globalK := flag.Int("global-k", 32, "final merged top-K result size")
	maxDepth := flag.Uint("max-depth", 50, "maximum combined search depth per attempt")
	flag.Parse()

	g, err := wikirace.Load(*graphDir)
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	stop := make(chan struct{})
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(stop)
	}()

	log.Print("mining with ", *workers, " workers, press enter to stop")
	result := wikirace.MineDeepestPairs(g, *workers, *localK, *globalK, uint8(*maxDepth), stop)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal(err)
	}
	log.Print(result.Runs, " total BFS runs")
}
