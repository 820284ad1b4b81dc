// Package wikirace builds and queries a dense-id graph of Wikipedia
// page links for finding the shortest "wiki race" path between two
// articles.
//
// The build pipeline (BuildGraph) downloads MediaWiki SQL dumps,
// parses the page, redirect, linktarget, and pagelinks tables into a
// compressed-sparse-row adjacency, and serializes it as a directory of
// memory-mapped files. Load opens a built directory for querying;
// Graph.FindAllShortestPaths runs a bidirectional, level-synchronized
// BFS that returns every shortest path between two pages, with
// single-hop redirects restored in the result.
package wikirace
