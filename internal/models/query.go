package models

import "fmt"

// DefaultMaxResults is the number of results a search returns when no limit is set.
const DefaultMaxResults = 30

// SearchQuery is a search request. Terms are matched verbatim against the index.
type SearchQuery struct {
	Terms []string `json:"terms"`
	Limit int      `json:"limit,omitempty"`
}

// Validate ensures the query has at least one term and sets the default limit.
func (q *SearchQuery) Validate() error {
	if len(q.Terms) == 0 {
		return fmt.Errorf("query needs at least one term")
	}
	if q.Limit <= 0 {
		q.Limit = DefaultMaxResults
	}
	return nil
}
