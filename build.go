package wikirace

import (
	"context"
	"fmt"
	"time"
)

// BuildOptions configures a full pipeline run.
type BuildOptions struct {
	DumpDirectory  string // where downloaded dump files are kept
	GraphDirectory string // where the built mmap files are written
	Mirror         string // e.g. "https://dumps.wikimedia.org"
	Database       string // e.g. "enwiki"
	SourceLanguage string
	SkipDownload   bool // use files already present in DumpDirectory
}

// BuildGraph runs the full pipeline in a fixed order: page maps,
// linktargets, redirect targets, pagelinks adjacency, CSR, mmap files.
// Each stage is reported through progress so an operator driving
// cmd/wikirace-build sees where a multi-hour build currently stands;
// intermediate on-heap structures (the linktarget map, the raw
// adjacency rows) are dropped as soon as the next stage no longer
// needs them.
func BuildGraph(ctx context.Context, opts BuildOptions) error {
	const stages = 6
	progress := newStageProgress(stages)

	var dumps LocalDumpFiles
	if opts.SkipDownload {
		progress.next("using existing dump files")
		dumps = LocalDumpFiles{
			PagePath:       opts.DumpDirectory + "/page.sql.gz",
			RedirectPath:   opts.DumpDirectory + "/redirect.sql.gz",
			LinkTargetPath: opts.DumpDirectory + "/linktarget.sql.gz",
			PageLinksPath:  opts.DumpDirectory + "/pagelinks.sql.gz",
		}
	} else {
		progress.next("downloading dump files")
		var err error
		dumps, err = FetchDumpFiles(ctx, opts.DumpDirectory, opts.Mirror, opts.Database)
		if err != nil {
			return fmt.Errorf("wikirace: fetching dump files: %w", err)
		}
	}

	progress.next("parsing page table")
	maps, err := parsePage(dumps.PagePath)
	if err != nil {
		return fmt.Errorf("wikirace: parsing page dump: %w", err)
	}

	progress.next("parsing linktarget table")
	linkTargets, err := parseLinkTargets(dumps.LinkTargetPath, maps)
	if err != nil {
		return fmt.Errorf("wikirace: parsing linktarget dump: %w", err)
	}

	progress.next("parsing redirect table")
	redirectTargets, err := parseRedirects(dumps.RedirectPath, maps)
	if err != nil {
		return fmt.Errorf("wikirace: parsing redirect dump: %w", err)
	}

	progress.next("parsing pagelinks table and building CSR")
	graph, err := parsePageLinks(ctx, dumps.PageLinksPath, maps, linkTargets, redirectTargets)
	if err != nil {
		return fmt.Errorf("wikirace: parsing pagelinks dump: %w", err)
	}
	linkTargets = nil // no longer needed once adjacency rows are built

	progress.next("writing mmap files")
	m := manifest{
		DumpDate:   dumps.DateString,
		BuildDate:  time.Now().UTC().Format("20060102"),
		SourceLang: opts.SourceLanguage,
	}
	if err := writeGraph(opts.GraphDirectory, maps, graph, redirectTargets, m); err != nil {
		return fmt.Errorf("wikirace: writing graph files: %w", err)
	}

	progress.done("build complete")
	return nil
}
