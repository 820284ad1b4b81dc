package wikirace

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/lanrat/extsort"
	"golang.org/x/sync/errgroup"
)

// parsePageLinks streams the pagelinks table dump and builds the
// forward and reverse CSR adjacency, plus the per-source
// redirectsPassed side table. Because a full-scale pagelinks
// dump has on the order of 1.6 billion rows, edges are not accumulated
// in a map[PageID][]PageID: instead each row is emitted as a sortable
// "from\tto\tredirect" line, external-sorted by source dense id with
// lanrat/extsort (spilling to zstd-compressed chunks), and then
// streamed back in source order to build each row's adjacency slice
// with one pass and bounded memory.
func parsePageLinks(ctx context.Context, path string, maps *pageMaps, linkTargets map[uint64]PageID, redirectTargets []PageID) (*csrGraph, error) {
	linesChan := make(chan string, 1<<16)
	config := extsort.DefaultConfig()
	config.ChunkSize = 8 * 1024 * 1024 / 24
	config.NumWorkers = runtime.NumCPU()
	sorter, outChan, errChan := extsort.Strings(linesChan, config)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(linesChan)
		return readPageLinkLines(groupCtx, path, maps, linkTargets, redirectTargets, linesChan)
	})

	rows := make([][]pagelinkEdge, maps.len())
	group.Go(func() error {
		sorter.Sort(groupCtx)
		var curSource PageID
		var curEdges []pagelinkEdge
		haveSource := false
		flush := func() {
			if haveSource && len(curEdges) > 0 {
				rows[curSource] = dedupPagelinkEdges(curEdges)
			}
		}
		for {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case line, more := <-outChan:
				if !more {
					flush()
					return nil
				}
				from, to, redirect, err := parsePagelinkLine(line)
				if err != nil {
					return err
				}
				if haveSource && from != curSource {
					flush()
					curEdges = nil
				}
				curSource = from
				haveSource = true
				curEdges = append(curEdges, pagelinkEdge{to: to, redirect: redirect})
			}
		}
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := <-errChan; err != nil {
		return nil, err
	}

	return buildCSRFromRows(rows), nil
}

type pagelinkEdge struct {
	to       PageID
	redirect PageID
}

// dedupPagelinkEdges implements a "first link wins" rule over the
// order of its input: the first occurrence of a given target wins,
// including its redirect annotation (which may be Sentinel if that
// occurrence was a direct link). In parsePageLinks the input comes
// from extsort, which orders whole "from\tto\tredirect" lines, so
// duplicates of one target arrive sorted by redirect id: a redirect
// annotation always wins over a direct link (Sentinel sorts last), and
// of two redirects to the same target the lower dense id wins.
func dedupPagelinkEdges(edges []pagelinkEdge) []pagelinkEdge {
	seen := make(map[PageID]bool, len(edges))
	out := edges[:0]
	for _, e := range edges {
		if seen[e.to] {
			continue
		}
		seen[e.to] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].to < out[j].to })
	return out
}

func readPageLinkLines(ctx context.Context, path string, maps *pageMaps, linkTargets map[uint64]PageID, redirectTargets []PageID, out chan<- string) error {
	file, err := os.Open(path)
	if err != nil {
		return &MissingDependencyError{Path: path, Err: err}
	}
	defer file.Close()

	bar := pb.Full.Start64(fileSize(file))
	defer bar.Finish()
	gz, err := gzip.NewReader(bar.NewProxyReader(file))
	if err != nil {
		return &DumpParseError{File: path, Err: err}
	}
	defer gz.Close()

	dr, err := newDumpReader(gz)
	if err != nil {
		return &DumpParseError{File: path, Err: err}
	}
	cols := columnIndex(dr.Columns())
	fromCol, ok1 := cols["pl_from"]
	nsCol, ok2 := cols["pl_from_namespace"]
	targetCol, ok3 := cols["pl_target_id"]
	if !ok1 || !ok3 {
		return &DumpParseError{File: path, Err: errMissingColumn}
	}
	_ = ok2 // pl_from_namespace absent on some dumps; not required

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		row, err := dr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &DumpParseError{File: path, Err: err}
		}
		if ok2 && row[nsCol] != "0" {
			continue
		}
		fromOrig, err := strconv.ParseUint(row[fromCol], 10, 34)
		if err != nil {
			continue
		}
		source, err := maps.resolveOrigID(OrigID(fromOrig))
		if err != nil {
			continue
		}
		ltID, err := strconv.ParseUint(row[targetCol], 10, 64)
		if err != nil {
			continue
		}
		target, ok := linkTargets[ltID]
		if !ok {
			continue
		}

		// Only the target is resolved through its redirect chain here.
		// source is whatever page actually holds this pagelinks row: if
		// source itself happens to be a redirect page with a stray
		// outgoing link (redirect pages keep their own page_id and can
		// still carry maintenance/category links), that link belongs to
		// source, not to whatever source redirects to.
		redirect := Sentinel
		if rt := redirectTargets[target]; rt != Sentinel {
			target, redirect = rt, target
		}
		if source == target {
			continue
		}
		out <- fmt.Sprintf("%010d\t%010d\t%010d", source, target, redirect)
	}
}

func parsePagelinkLine(line string) (from, to, redirect PageID, err error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("wikirace: malformed pagelink line %q", line)
	}
	f, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	t, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	r, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	return PageID(f), PageID(t), PageID(r), nil
}
