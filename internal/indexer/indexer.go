// Package indexer builds the inverted index (term table) over a corpus.
package indexer

import (
	"context"
	"fmt"

	"github.com/hyperjump/pagesearch/internal/corpus"
	"go.uber.org/zap"
)

// Indexer tokenizes document bodies into a TermTable.
type Indexer struct {
	table  *TermTable
	filter Filter
	logger *zap.Logger // optional; when set, logs debug events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (document indexed, term counts).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithFilter replaces the default metadata filter.
func WithFilter(f Filter) IndexerOption {
	return func(idx *Indexer) { idx.filter = f }
}

// NewIndexer creates an indexer with an empty table.
func NewIndexer(opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		table:  NewTermTable(),
		filter: DefaultFilter(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Table returns the table built so far.
func (idx *Indexer) Table() *TermTable {
	return idx.table
}

// IndexDocument adds every indexable term of body under name and returns the
// number of new (term, document) pairs.
func (idx *Indexer) IndexDocument(name, body string) int {
	added := 0
	for _, term := range idx.filter.Terms(body) {
		if idx.table.Add(term, name) {
			added++
		}
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer document indexed", zap.String("document", name), zap.Int("terms", added))
	}
	return added
}

// Build indexes every document of store, reading bodies from src. The first
// unreadable body aborts the build so no partial index is produced.
func (idx *Indexer) Build(ctx context.Context, store *corpus.Store, src corpus.BodySource) (*TermTable, error) {
	for _, name := range store.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if idx.logger != nil {
			idx.logger.Debug("indexer processing file", zap.String("document", name))
		}
		body, err := src.Body(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("index: %w", err)
		}
		idx.IndexDocument(name, body)
	}
	return idx.table, nil
}
