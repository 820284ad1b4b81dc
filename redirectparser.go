package wikirace

import (
	"compress/gzip"
	"io"
	"os"
	"strconv"

	"github.com/cheggaaa/pb/v3"
)

// parseRedirects streams the redirect table dump and resolves each
// rd_from/rd_title pair against the already-built page maps, producing
// a single-hop dense redirect table: redirectTargets[d] is the dense id
// the page d redirects to, or Sentinel if d is not a redirect source.
// Redirects whose target title is unknown (dangling redirects) or whose
// target resolves back to the source are dropped.
func parseRedirects(path string, maps *pageMaps) ([]PageID, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &MissingDependencyError{Path: path, Err: err}
	}
	defer file.Close()

	bar := pb.Full.Start64(fileSize(file))
	defer bar.Finish()
	gz, err := gzip.NewReader(bar.NewProxyReader(file))
	if err != nil {
		return nil, &DumpParseError{File: path, Err: err}
	}
	defer gz.Close()

	dr, err := newDumpReader(gz)
	if err != nil {
		return nil, &DumpParseError{File: path, Err: err}
	}
	cols := columnIndex(dr.Columns())
	fromCol, ok1 := cols["rd_from"]
	nsCol, ok2 := cols["rd_namespace"]
	titleCol, ok3 := cols["rd_title"]
	if !ok1 || !ok2 || !ok3 {
		return nil, &DumpParseError{File: path, Err: errMissingColumn}
	}

	targets := make([]PageID, maps.len())
	for i := range targets {
		targets[i] = Sentinel
	}

	for {
		row, err := dr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DumpParseError{File: path, Err: err}
		}
		if row[nsCol] != "0" {
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
		title := titleCleaner.Replace(row[titleCol])
		target, err := maps.resolveTitle(title)
		if err != nil || target == source {
			continue
		}
		targets[source] = target
	}
	return targets, nil
}
