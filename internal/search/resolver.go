// Package search resolves keyword queries against the inverted index and
// orders the hits by match count and PageRank.
package search

import (
	"sort"

	"github.com/hyperjump/pagesearch/internal/models"
)

// TermLookup is the read side of the inverted index.
type TermLookup interface {
	// Documents returns the documents listed under term, or nil.
	Documents(term string) []string
}

// Resolve counts, for every document, how many distinct query terms list it,
// keeping only documents present in ranks. Hits are ordered by match count
// descending, then PageRank descending, then name ascending, and cut to limit.
// Query terms are not normalized: "Fish" does not match the indexed "fish".
func Resolve(terms TermLookup, ranks map[string]float64, query []string, limit int) []models.QueryResult {
	results, _ := resolve(terms, ranks, query, limit)
	return results
}

// resolve also returns the number of hits before truncation.
func resolve(terms TermLookup, ranks map[string]float64, query []string, limit int) ([]models.QueryResult, int) {
	counts := make(map[string]int)
	for _, term := range distinctTerms(query) {
		for _, doc := range terms.Documents(term) {
			if _, ok := ranks[doc]; !ok {
				continue
			}
			counts[doc]++
		}
	}

	results := make([]models.QueryResult, 0, len(counts))
	for name, n := range counts {
		results = append(results, models.QueryResult{
			Name:       name,
			MatchCount: n,
			PageRank:   ranks[name],
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return less(results[i], results[j])
	})

	total := len(results)
	if limit <= 0 {
		limit = models.DefaultMaxResults
	}
	if len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, total
}

func less(a, b models.QueryResult) bool {
	if a.MatchCount != b.MatchCount {
		return a.MatchCount > b.MatchCount
	}
	if a.PageRank != b.PageRank {
		return a.PageRank > b.PageRank
	}
	return a.Name < b.Name
}

// Search is Resolve with the default limit, returning names only.
func Search(terms TermLookup, ranks map[string]float64, query []string) []string {
	results := Resolve(terms, ranks, query, models.DefaultMaxResults)
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	return names
}
