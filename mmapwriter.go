package wikirace

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

// manifest is the small JSON sidecar written next to the mmap files so
// a loader can validate a graph directory before trusting it: node
// count, the dump date it was built from, and when the build ran.
type manifest struct {
	NodeCount  int    `json:"node_count"`
	DumpDate   string `json:"dump_date"`
	BuildDate  string `json:"build_date"`
	SourceLang string `json:"source_language"`
}

// writeGraph serializes the page maps, CSR adjacency, and redirect
// tables to dir. Every large array is raw little-endian u32; title
// blobs are written verbatim UTF-8 with a parallel offsets file.
func writeGraph(dir string, maps *pageMaps, csrG *csrGraph, redirectTargets []PageID, m manifest) error {
	for _, sub := range []string{"csr", "dense_id_to_title", "title_to_dense_id", "orig_to_dense_id", "redirect_targets_dense", "redirects_passed"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return err
		}
	}

	if err := writeU32File(filepath.Join(dir, "csr", "offsets"), csrG.forwardOffsets); err != nil {
		return err
	}
	if err := writeU32File(filepath.Join(dir, "csr", "edges"), csrG.forwardEdges); err != nil {
		return err
	}
	if err := writeU32File(filepath.Join(dir, "csr", "reverse_offsets"), csrG.reverseOffsets); err != nil {
		return err
	}
	if err := writeU32File(filepath.Join(dir, "csr", "reverse_edges"), csrG.reverseEdges); err != nil {
		return err
	}

	// redirects_passed is a genuinely sparse table: only the rows' edges
	// that passed through a redirect are kept, not the full forward
	// adjacency (most out-edges are direct links with no redirect to
	// annotate at all).
	passedOffsets, passedTargets, passedRedirects := csrG.redirectsPassedRows()
	if err := writeU32File(filepath.Join(dir, "redirects_passed", "offsets"), passedOffsets); err != nil {
		return err
	}
	if err := writeU32File(filepath.Join(dir, "redirects_passed", "redirect_targets"), passedTargets); err != nil {
		return err
	}
	if err := writeU32File(filepath.Join(dir, "redirects_passed", "redirects"), passedRedirects); err != nil {
		return err
	}

	if err := writeU32File(filepath.Join(dir, "dense_id_to_orig"), maps.denseToOrig); err != nil {
		return err
	}
	if err := writeU32File(filepath.Join(dir, "redirect_targets_dense", "redirect_targets_dense"), redirectTargets); err != nil {
		return err
	}

	if err := writeTitleBlob(filepath.Join(dir, "dense_id_to_title"), maps.denseToTitle); err != nil {
		return err
	}
	if err := writeTitleIndex(filepath.Join(dir, "title_to_dense_id"), maps.denseToTitle); err != nil {
		return err
	}
	if err := writeOrigIndex(filepath.Join(dir, "orig_to_dense_id"), maps.denseToOrig); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	m.NodeCount = maps.len()
	return enc.Encode(m)
}

func writeU32File(path string, values []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriterSize(f, 1<<20)
	var buf [4]byte
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[:], v)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return w.Flush()
}

// writeTitleBlob writes dense_id_to_title/titles and its parallel
// offsets array, in dense id order.
func writeTitleBlob(dir string, titles []Title) error {
	offsets := make([]uint32, len(titles)+1)
	blobFile, err := os.Create(filepath.Join(dir, "titles"))
	if err != nil {
		return err
	}
	defer blobFile.Close()
	w := bufio.NewWriterSize(blobFile, 1<<20)
	var total uint32
	for i, t := range titles {
		offsets[i] = total
		n, err := w.WriteString(t)
		if err != nil {
			return err
		}
		total += uint32(n)
	}
	offsets[len(titles)] = total
	if err := w.Flush(); err != nil {
		return err
	}
	return writeU32File(filepath.Join(dir, "offsets"), offsets)
}

// writeTitleIndex writes title_to_dense_id/{titles,offsets,dense_ids}:
// the same title bytes, but reordered so titles are sorted
// lexicographically, with dense_ids as the parallel permutation that
// recovers each sorted title's true dense id. This is what lets
// title_to_dense_id do a byte-wise binary search.
func writeTitleIndex(dir string, titles []Title) error {
	order := make([]int, len(titles))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return titles[order[i]] < titles[order[j]] })

	sortedTitles := make([]Title, len(titles))
	denseIDs := make([]uint32, len(titles))
	for i, d := range order {
		sortedTitles[i] = titles[d]
		denseIDs[i] = uint32(d)
	}

	if err := writeTitleBlob(dir, sortedTitles); err != nil {
		return err
	}
	return writeU32File(filepath.Join(dir, "dense_ids"), denseIDs)
}

// writeOrigIndex writes orig_to_dense_id/{orig_ids,dense_ids}: orig
// ids sorted ascending, with dense_ids as the parallel permutation.
func writeOrigIndex(dir string, denseToOrig []OrigID) error {
	order := make([]int, len(denseToOrig))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return denseToOrig[order[i]] < denseToOrig[order[j]] })

	origIDs := make([]uint32, len(denseToOrig))
	denseIDs := make([]uint32, len(denseToOrig))
	for i, d := range order {
		origIDs[i] = denseToOrig[d]
		denseIDs[i] = uint32(d)
	}

	if err := writeU32File(filepath.Join(dir, "orig_ids"), origIDs); err != nil {
		return err
	}
	return writeU32File(filepath.Join(dir, "dense_ids"), denseIDs)
}
