// Package pagerank computes link-based importance scores over a corpus graph.
package pagerank

import (
	"math"
	"sort"

	"github.com/hyperjump/pagesearch/internal/corpus"
	apperrors "github.com/hyperjump/pagesearch/internal/errors"
	"github.com/hyperjump/pagesearch/internal/models"
	"go.uber.org/zap"
)

// Result is the outcome of one Compute call.
type Result struct {
	// Scores is indexed like the graph's documents.
	Scores     []float64
	Iterations int
	// Diff is the total absolute change of the last iteration.
	Diff float64
}

// Converged reports whether the run stopped on the threshold rather than the iteration cap.
func (r *Result) Converged(p Params) bool {
	return r.Diff < p.Threshold
}

// Option configures Compute.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets a logger for per-iteration debug output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Compute runs the iteration over graph until the total change drops below
// p.Threshold or p.MaxIterations passes have run. Every pass reads only the
// previous pass's scores. The graph's store is not modified; see Apply.
func Compute(graph *corpus.Graph, p Params, opts ...Option) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := graph.Len()
	if n == 0 {
		return nil, apperrors.ErrEmptyCorpus
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	nf := float64(n)
	base := (1 - p.Damping) / nf
	linkers := make([][]int, n)
	outDeg := make([]float64, n)
	for i := 0; i < n; i++ {
		linkers[i] = graph.Linkers(i)
		outDeg[i] = float64(graph.OutDegree(i))
	}

	prev := make([]float64, n)
	for i := range prev {
		prev[i] = 1 / nf
	}
	next := make([]float64, n)

	res := &Result{}
	for {
		for i := 0; i < n; i++ {
			sum := 0.0
			for _, j := range linkers[i] {
				if outDeg[j] == 0 {
					sum += prev[j] / nf
				} else {
					sum += prev[j] / outDeg[j]
				}
			}
			next[i] = base + p.Damping*sum
		}
		diff := 0.0
		for i := 0; i < n; i++ {
			diff += math.Abs(next[i] - prev[i])
		}
		res.Iterations++
		res.Diff = diff
		if o.logger != nil {
			o.logger.Debug("pagerank iteration", zap.Int("iteration", res.Iterations), zap.Float64("diff", diff))
		}
		prev, next = next, prev
		if diff < p.Threshold || res.Iterations >= p.MaxIterations {
			break
		}
	}
	res.Scores = prev
	return res, nil
}

// Apply copies the scores onto the documents of store.
func (r *Result) Apply(store *corpus.Store) {
	store.SetPageRanks(r.Scores)
}

// Ranked returns the store's documents ordered by score descending, name
// ascending among equal scores.
func Ranked(store *corpus.Store) []models.Document {
	docs := store.Documents()
	SortByScore(docs)
	return docs
}

// SortByScore orders docs in place by score descending, then name ascending.
func SortByScore(docs []models.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].PageRank != docs[j].PageRank {
			return docs[i].PageRank > docs[j].PageRank
		}
		return docs[i].Name < docs[j].Name
	})
}

// ScoreTable maps each document name to its score. The map is detached from docs.
func ScoreTable(docs []models.Document) map[string]float64 {
	table := make(map[string]float64, len(docs))
	for _, d := range docs {
		table[d.Name] = d.PageRank
	}
	return table
}
