package wikirace

import (
	"compress/gzip"
	"io"
	"os"
	"strconv"

	"github.com/cheggaaa/pb/v3"
)

// parseLinkTargets streams the linktarget table dump, which is the
// indirection MediaWiki introduced so that pagelinks rows reference a
// small lt_id instead of repeating a title string on every row. It
// maps each lt_id to the dense page id of the page with that title in
// namespace 0. An lt_id whose target does not name a known page (a
// link to a page that doesn't exist, a link into another namespace, or
// a link to a non-existent redirect target — all legitimate and all
// unresolvable) is left out of the map entirely.
func parseLinkTargets(path string, maps *pageMaps) (map[uint64]PageID, error) {
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
	idCol, ok1 := cols["lt_id"]
	nsCol, ok2 := cols["lt_namespace"]
	titleCol, ok3 := cols["lt_title"]
	if !ok1 || !ok2 || !ok3 {
		return nil, &DumpParseError{File: path, Err: errMissingColumn}
	}

	targets := make(map[uint64]PageID, 1<<20)
	for {
		row, err := dr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DumpParseError{File: path, Err: err}
		}
		ltID, err := strconv.ParseUint(row[idCol], 10, 64)
		if err != nil {
			continue
		}
		if row[nsCol] != "0" {
			continue
		}
		title := titleCleaner.Replace(row[titleCol])
		dense, err := maps.resolveTitle(title)
		if err != nil {
			continue
		}
		targets[ltID] = dense
	}
	return targets, nil
}
