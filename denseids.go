package wikirace

// pageMaps accumulates the bijections between Wikipedia's own sparse
// page ids and the dense ids used everywhere else, plus the dense id
// to title table. It is built once by the page parser and then frozen
// into the mmap files; nothing after the build step mutates it.
type pageMaps struct {
	origToDense map[OrigID]PageID
	denseToOrig []OrigID
	denseToTitle []Title
	titleToDense map[Title]PageID
}

func newPageMaps(sizeHint int) *pageMaps {
	return &pageMaps{
		origToDense:  make(map[OrigID]PageID, sizeHint),
		denseToOrig:  make([]OrigID, 0, sizeHint),
		denseToTitle: make([]Title, 0, sizeHint),
		titleToDense: make(map[Title]PageID, sizeHint),
	}
}

// add assigns the next dense id to a page seen for the first time. The
// page parser is the only caller: a page table has no duplicate
// page_id values within a single namespace, so add never needs to
// check for an existing entry.
func (m *pageMaps) add(orig OrigID, title Title) PageID {
	dense := PageID(len(m.denseToOrig))
	m.origToDense[orig] = dense
	m.denseToOrig = append(m.denseToOrig, orig)
	m.denseToTitle = append(m.denseToTitle, title)
	m.titleToDense[title] = dense
	return dense
}

func (m *pageMaps) len() int {
	return len(m.denseToOrig)
}

// resolveTitle implements the ResolveTitle external interface: title to
// dense id, or ErrUnknownTitle if the title was never seen.
func (m *pageMaps) resolveTitle(title Title) (PageID, error) {
	dense, ok := m.titleToDense[title]
	if !ok {
		return 0, ErrUnknownTitle
	}
	return dense, nil
}

// resolveOrigID implements the ResolveOrigID external interface.
func (m *pageMaps) resolveOrigID(orig OrigID) (PageID, error) {
	dense, ok := m.origToDense[orig]
	if !ok {
		return 0, ErrUnknownOrigID
	}
	return dense, nil
}
