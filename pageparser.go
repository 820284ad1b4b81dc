package wikirace

import (
	"compress/gzip"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb/v3"
)

var titleCleaner = strings.NewReplacer(`\'`, `'`, `_`, ` `)

// parsePage streams the page table dump and assigns a dense id to
// every main-namespace (namespace 0) page it finds, in file order. The
// returned pageMaps is the only source of truth for title/orig
// lookups for the rest of the build.
func parsePage(path string) (*pageMaps, error) {
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
	idCol, ok1 := cols["page_id"]
	nsCol, ok2 := cols["page_namespace"]
	titleCol, ok3 := cols["page_title"]
	if !ok1 || !ok2 || !ok3 {
		return nil, &DumpParseError{File: path, Err: errMissingColumn}
	}

	maps := newPageMaps(1 << 20)
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
		id, err := strconv.ParseUint(row[idCol], 10, 34)
		if err != nil {
			continue
		}
		title := titleCleaner.Replace(row[titleCol])
		maps.add(OrigID(id), title)
	}
	return maps, nil
}

func columnIndex(cols []string) map[string]int {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return idx
}

func fileSize(f *os.File) int64 {
	info, err := f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}
