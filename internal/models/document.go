// Package models defines core data structures for documents, index entries, and query results.
package models

// Document is a corpus document. Name is its identity; Index is its position
// in the collection list.
type Document struct {
	Name      string  `json:"name" db:"name"`
	Index     int     `json:"index" db:"position"`
	OutDegree int     `json:"out_degree" db:"out_degree"`
	PageRank  float64 `json:"pagerank" db:"pagerank"`
}

// Link is a directed edge between two documents, by index.
type Link struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// TermEntry is one row of the inverted index. Documents is ascending and
// free of duplicates.
type TermEntry struct {
	Term      string   `json:"term" db:"term"`
	Documents []string `json:"documents"`
}
