package models

// QueryResult is a ranked search hit.
type QueryResult struct {
	Name       string  `json:"name"`
	MatchCount int     `json:"match_count"`
	PageRank   float64 `json:"pagerank"`
	Rank       int     `json:"rank"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query   []string       `json:"query"`
	Results []*QueryResult `json:"results"`
	// Total is the number of matching documents before truncation.
	Total     int   `json:"total"`
	QueryTime int64 `json:"query_time_ms"`
}

// Names returns the result identities in rank order.
func (r *SearchResponse) Names() []string {
	names := make([]string, len(r.Results))
	for i, res := range r.Results {
		names[i] = res.Name
	}
	return names
}
