package indexer

import (
	"sort"

	"github.com/hyperjump/pagesearch/internal/models"
)

// TermTable maps normalized terms to the documents containing them. Each
// document list is kept sorted and free of duplicates as it grows.
type TermTable struct {
	postings map[string][]string
}

// NewTermTable creates an empty table.
func NewTermTable() *TermTable {
	return &TermTable{postings: make(map[string][]string)}
}

// Add records that doc contains term. Adding the same pair twice is a no-op;
// the return value reports whether the pair was new.
func (t *TermTable) Add(term, doc string) bool {
	docs := t.postings[term]
	i := sort.SearchStrings(docs, doc)
	if i < len(docs) && docs[i] == doc {
		return false
	}
	docs = append(docs, "")
	copy(docs[i+1:], docs[i:])
	docs[i] = doc
	t.postings[term] = docs
	return true
}

// Documents returns a copy of the ascending document list for term, or nil.
func (t *TermTable) Documents(term string) []string {
	docs, ok := t.postings[term]
	if !ok {
		return nil
	}
	return append([]string(nil), docs...)
}

// Contains reports whether doc is listed under term.
func (t *TermTable) Contains(term, doc string) bool {
	docs := t.postings[term]
	i := sort.SearchStrings(docs, doc)
	return i < len(docs) && docs[i] == doc
}

// Len returns the number of distinct terms.
func (t *TermTable) Len() int {
	return len(t.postings)
}

// Postings returns the total number of (term, document) pairs.
func (t *TermTable) Postings() int {
	n := 0
	for _, docs := range t.postings {
		n += len(docs)
	}
	return n
}

// Terms returns every term in ascending order.
func (t *TermTable) Terms() []string {
	terms := make([]string, 0, len(t.postings))
	for term := range t.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Entries enumerates the table in ascending term order. The entries are copies.
func (t *TermTable) Entries() []models.TermEntry {
	terms := t.Terms()
	entries := make([]models.TermEntry, len(terms))
	for i, term := range terms {
		entries[i] = models.TermEntry{Term: term, Documents: t.Documents(term)}
	}
	return entries
}

// FromEntries rebuilds a table from persisted entries. Document lists are
// re-sorted and deduplicated on the way in.
func FromEntries(entries []models.TermEntry) *TermTable {
	t := NewTermTable()
	for _, e := range entries {
		for _, doc := range e.Documents {
			t.Add(e.Term, doc)
		}
	}
	return t
}
