// Package corpus holds the document store and the link graph built over it.
package corpus

import (
	apperrors "github.com/hyperjump/pagesearch/internal/errors"
	"github.com/hyperjump/pagesearch/internal/models"
)

// Store is the in-memory registry of documents, in collection order.
type Store struct {
	docs   []*models.Document
	byName map[string]int
}

// LoadDocuments registers names in input order, assigning indexes 0..N-1 and an
// initial PageRank of 1/N. A name listed twice is rejected with a
// DuplicateDocumentError.
func LoadDocuments(names []string) (*Store, error) {
	s := &Store{
		docs:   make([]*models.Document, 0, len(names)),
		byName: make(map[string]int, len(names)),
	}
	initial := 0.0
	if len(names) > 0 {
		initial = 1.0 / float64(len(names))
	}
	for i, name := range names {
		if first, ok := s.byName[name]; ok {
			return nil, &apperrors.DuplicateDocumentError{Name: name, First: first, Repeated: i}
		}
		s.byName[name] = i
		s.docs = append(s.docs, &models.Document{Name: name, Index: i, PageRank: initial})
	}
	return s, nil
}

// Len returns the number of documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// IndexOf returns the index of name, or -1 when it is not a known document.
// Matching is exact and case-sensitive.
func (s *Store) IndexOf(name string) int {
	if i, ok := s.byName[name]; ok {
		return i
	}
	return -1
}

// Lookup returns a copy of the named document.
func (s *Store) Lookup(name string) (models.Document, bool) {
	i, ok := s.byName[name]
	if !ok {
		return models.Document{}, false
	}
	return *s.docs[i], true
}

// At returns a copy of the document at index i.
func (s *Store) At(i int) models.Document {
	return *s.docs[i]
}

// Documents returns copies of all documents in collection order.
func (s *Store) Documents() []models.Document {
	out := make([]models.Document, len(s.docs))
	for i, d := range s.docs {
		out[i] = *d
	}
	return out
}

// Names returns the document names in collection order.
func (s *Store) Names() []string {
	out := make([]string, len(s.docs))
	for i, d := range s.docs {
		out[i] = d.Name
	}
	return out
}

// SetPageRanks overwrites every document's score. scores must have Len entries.
func (s *Store) SetPageRanks(scores []float64) {
	for i, d := range s.docs {
		d.PageRank = scores[i]
	}
}

func (s *Store) incOutDegree(i int) {
	s.docs[i].OutDegree++
}
