package search

import (
	"context"
	"time"

	"github.com/hyperjump/pagesearch/internal/models"
	"go.uber.org/zap"
)

// Engine answers queries over a loaded index and PageRank table.
type Engine struct {
	terms  TermLookup
	ranks  map[string]float64
	logger *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for per-query debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a search engine. ranks is copied.
func NewEngine(terms TermLookup, ranks map[string]float64, opts ...EngineOption) *Engine {
	copied := make(map[string]float64, len(ranks))
	for k, v := range ranks {
		copied[k] = v
	}
	e := &Engine{terms: terms, ranks: copied}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search validates query and returns its ranked results.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := ProcessQuery(query); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, total := resolve(e.terms, e.ranks, query.Terms, query.Limit)
	response := &models.SearchResponse{
		Query:     query.Terms,
		Results:   make([]*models.QueryResult, len(results)),
		Total:     total,
		QueryTime: time.Since(startTime).Milliseconds(),
	}
	for i := range results {
		response.Results[i] = &results[i]
	}
	if e.logger != nil {
		e.logger.Debug("search completed",
			zap.Strings("terms", query.Terms),
			zap.Int("matches", total),
			zap.Int("returned", len(results)))
	}
	return response, nil
}
