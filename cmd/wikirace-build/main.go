// Command wikirace-build runs the offline pipeline that turns a set of
// MediaWiki SQL dumps into a directory of memory-mapped graph files.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/wikirace/wikirace"
)

func main() {
	output := flag.String("output", ".", "directory under which the built graph is written, in a subdirectory named after -database")
	dumps := flag.String("dumps", "dumps", "directory to download (or read) dump files from")
	mirror := flag.String("mirror", "https://dumps.wikimedia.org", "mirror to download dumps from")
	database := flag.String("database", "enwiki", "MediaWiki database key, e.g. enwiki")
	skipDownload := flag.Bool("skip-download", false, "use dump files already present in -dumps instead of downloading")
	flag.Parse()

	start := time.Now()

	tempOutput := filepath.Join(*output, ".build-tmp")
	opts := wikirace.BuildOptions{
		DumpDirectory:  *dumps,
		GraphDirectory: tempOutput,
		Mirror:         *mirror,
		Database:       *database,
		SourceLanguage: *database,
		SkipDownload:   *skipDownload,
	}

	if err := wikirace.BuildGraph(context.Background(), opts); err != nil {
		log.Fatal(err)
	}

	finalOutput := filepath.Join(*output, *database)
	if err := os.RemoveAll(finalOutput); err != nil {
		log.Fatal(err)
	}
	if err := os.Rename(tempOutput, finalOutput); err != nil {
		log.Fatal(err)
	}

	log.Print("build finished in ", time.Since(start).String(), ", graph at ", finalOutput)
}
