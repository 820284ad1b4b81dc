package wikirace

// PageID is a dense id: a contiguous uint32 in [0, N) assigned to every
// main-namespace page discovered by the page parser. It is the only
// identifier used inside the graph; everything else (Wikipedia's own
// page_id, the page title) lives at the boundary.
type PageID = uint32

// OrigID is Wikipedia's own sparse page_id, used only when talking to
// the outside world (URLs, dumps, API responses).
type OrigID = uint32

// Sentinel marks "no redirect" / "no entry" in the dense arrays. It is
// safe because N, the number of dense ids, never reaches it: main
// namespace English Wikipedia is on the order of 18-19 million pages.
const Sentinel PageID = ^PageID(0)

// Title is a page's display title as it appears in the page table,
// already unescaped and with underscores turned into spaces.
type Title = string
