package wikirace

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/edsrzf/mmap-go"
)

// u32View reinterprets a memory-mapped byte region as a read-only
// []uint32, matching how original_source's mmap_structs reinterpret
// their Mmap as &[u32] via bytemuck::cast_slice. mmap-go's MMap is a
// plain []byte, so the reinterpretation is done field-by-field rather
// than by an unsafe cast, trading a constant factor for portability
// across platforms that disagree on struct alignment.
type u32View struct {
	region mmap.MMap
}

func openU32View(path string) (*u32View, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MissingDependencyError{Path: path, Err: err}
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return &u32View{region: nil}, nil
	}
	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("wikirace: mmap %s: %w", path, err)
	}
	return &u32View{region: region}, nil
}

func (v *u32View) len() int { return len(v.region) / 4 }

func (v *u32View) at(i int) uint32 {
	return binary.LittleEndian.Uint32(v.region[i*4 : i*4+4])
}

func (v *u32View) slice(start, end int) []uint32 {
	out := make([]uint32, end-start)
	for i := range out {
		out[i] = v.at(start + i)
	}
	return out
}

func (v *u32View) close() error {
	if v.region == nil {
		return nil
	}
	return v.region.Unmap()
}

// titleTable is a memory-mapped (blob, offsets) pair: titles[i] is the
// slice blob[offsets[i]:offsets[i+1]].
type titleTable struct {
	blob    mmap.MMap
	offsets *u32View
}

func openTitleTable(dir string) (*titleTable, error) {
	offsets, err := openU32View(filepath.Join(dir, "offsets"))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, "titles"))
	if err != nil {
		return nil, &MissingDependencyError{Path: dir, Err: err}
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	var blob mmap.MMap
	if info.Size() > 0 {
		blob, err = mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("wikirace: mmap %s: %w", dir, err)
		}
	}
	return &titleTable{blob: blob, offsets: offsets}, nil
}

func (t *titleTable) at(i int) string {
	s, e := t.offsets.at(i), t.offsets.at(i+1)
	return string(t.blob[s:e])
}

func (t *titleTable) count() int { return t.offsets.len() - 1 }

func (t *titleTable) close() {
	t.offsets.close()
	if t.blob != nil {
		t.blob.Unmap()
	}
}

// Graph is a loaded, memory-mapped graph directory, ready for lookups
// and bidirectional search. It owns its mmap regions for the lifetime
// of the process (or until Close); every method is safe to call
// concurrently from multiple goroutines once Load has returned, since
// all regions are read-only.
type Graph struct {
	nodeCount int

	csrOffsets        *u32View
	csrEdges          *u32View
	csrReverseOffsets *u32View
	csrReverseEdges   *u32View

	redirPassedOffsets  *u32View
	redirPassedTargets  *u32View
	redirPassedRedirect *u32View

	denseToOrig *u32View
	redirTarget *u32View

	denseToTitleTbl *titleTable

	titleIdxTbl     *titleTable
	titleIdxDenseID *u32View

	origIdxOrigIDs  *u32View
	origIdxDenseIDs *u32View
}

// Load opens every mmap file under dir and validates the manifest's
// node count against the CSR offsets array length, refusing to serve a
// truncated or mismatched directory.
func Load(dir string) (*Graph, error) {
	mf, err := readManifest(dir)
	if err != nil {
		return nil, err
	}

	g := &Graph{}
	var loadErr error
	open := func(v **u32View, path string) {
		if loadErr != nil {
			return
		}
		*v, loadErr = openU32View(filepath.Join(dir, path))
	}

	open(&g.csrOffsets, filepath.Join("csr", "offsets"))
	open(&g.csrEdges, filepath.Join("csr", "edges"))
	open(&g.csrReverseOffsets, filepath.Join("csr", "reverse_offsets"))
	open(&g.csrReverseEdges, filepath.Join("csr", "reverse_edges"))
	open(&g.redirPassedOffsets, filepath.Join("redirects_passed", "offsets"))
	open(&g.redirPassedTargets, filepath.Join("redirects_passed", "redirect_targets"))
	open(&g.redirPassedRedirect, filepath.Join("redirects_passed", "redirects"))
	open(&g.denseToOrig, "dense_id_to_orig")
	open(&g.redirTarget, filepath.Join("redirect_targets_dense", "redirect_targets_dense"))
	open(&g.titleIdxDenseID, filepath.Join("title_to_dense_id", "dense_ids"))
	open(&g.origIdxOrigIDs, filepath.Join("orig_to_dense_id", "orig_ids"))
	open(&g.origIdxDenseIDs, filepath.Join("orig_to_dense_id", "dense_ids"))
	if loadErr != nil {
		return nil, loadErr
	}

	g.denseToTitleTbl, err = openTitleTable(filepath.Join(dir, "dense_id_to_title"))
	if err != nil {
		return nil, err
	}
	g.titleIdxTbl, err = openTitleTable(filepath.Join(dir, "title_to_dense_id"))
	if err != nil {
		return nil, err
	}

	g.nodeCount = g.csrOffsets.len() - 1
	if g.nodeCount != mf.NodeCount {
		return nil, fmt.Errorf("wikirace: manifest node count %d does not match csr offsets (%d nodes)", mf.NodeCount, g.nodeCount)
	}
	return g, nil
}

func readManifest(dir string) (manifest, error) {
	var m manifest
	f, err := os.Open(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return m, &MissingDependencyError{Path: dir, Err: err}
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return m, fmt.Errorf("wikirace: malformed manifest in %s: %w", dir, err)
	}
	return m, nil
}

// Close unmaps every region. The Graph must not be used afterward.
func (g *Graph) Close() error {
	for _, v := range []*u32View{
		g.csrOffsets, g.csrEdges, g.csrReverseOffsets, g.csrReverseEdges,
		g.redirPassedOffsets, g.redirPassedTargets, g.redirPassedRedirect,
		g.denseToOrig, g.redirTarget, g.titleIdxDenseID,
		g.origIdxOrigIDs, g.origIdxDenseIDs,
	} {
		if v != nil {
			v.close()
		}
	}
	if g.denseToTitleTbl != nil {
		g.denseToTitleTbl.close()
	}
	if g.titleIdxTbl != nil {
		g.titleIdxTbl.close()
	}
	return nil
}

// NodeCount returns N, the number of dense ids in the graph.
func (g *Graph) NodeCount() int { return g.nodeCount }

// DenseIDToTitle is a total function: dense ids are always in range
// for a loaded graph.
func (g *Graph) DenseIDToTitle(d PageID) Title {
	return g.denseToTitleTbl.at(int(d))
}

// DenseIDToOrig is a total function.
func (g *Graph) DenseIDToOrig(d PageID) OrigID {
	return g.denseToOrig.at(int(d))
}

// ResolveRedirect returns the dense id d redirects to, or d itself if
// d is not a redirect source (identity).
func (g *Graph) ResolveRedirect(d PageID) PageID {
	t := g.redirTarget.at(int(d))
	if t == Sentinel {
		return d
	}
	return t
}

// ResolveTitle looks up a title's dense id via binary search over the
// sorted title_to_dense_id table.
func (g *Graph) ResolveTitle(title Title) (PageID, error) {
	n := g.titleIdxTbl.count()
	i := sort.Search(n, func(i int) bool { return g.titleIdxTbl.at(i) >= title })
	if i < n && g.titleIdxTbl.at(i) == title {
		return g.titleIdxDenseID.at(i), nil
	}
	return 0, ErrUnknownTitle
}

// ResolveOrigID looks up an orig id's dense id via binary search over
// the sorted orig_to_dense_id table.
func (g *Graph) ResolveOrigID(orig OrigID) (PageID, error) {
	n := g.origIdxOrigIDs.len()
	i := sort.Search(n, func(i int) bool { return g.origIdxOrigIDs.at(i) >= orig })
	if i < n && g.origIdxOrigIDs.at(i) == orig {
		return g.origIdxDenseIDs.at(i), nil
	}
	return 0, ErrUnknownOrigID
}

func (g *Graph) forward(d PageID) []uint32 {
	s, e := g.csrOffsets.at(int(d)), g.csrOffsets.at(int(d)+1)
	return g.csrEdges.slice(int(s), int(e))
}

func (g *Graph) reverse(d PageID) []uint32 {
	s, e := g.csrReverseOffsets.at(int(d)), g.csrReverseOffsets.at(int(d)+1)
	return g.csrReverseEdges.slice(int(s), int(e))
}

// redirectsPassed answers redirects_passed(from, to): an O(log k)
// binary search within from's row for to, returning the parallel
// redirects[...] entry. The table holds only edges that passed through
// a redirect, so Sentinel comes back both for a direct link and when
// to is not a neighbor of from at all.
func (g *Graph) redirectsPassed(from, to PageID) PageID {
	s, e := int(g.redirPassedOffsets.at(int(from))), int(g.redirPassedOffsets.at(int(from)+1))
	targets := g.redirPassedTargets.slice(s, e)
	redirects := g.redirPassedRedirect.slice(s, e)
	return redirectFor(targets, redirects, to)
}
