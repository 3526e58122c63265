package models

import "time"

// Pipeline stages recorded in the snapshot.
const (
	StageIndex    = "index"
	StagePageRank = "pagerank"
	StageBuild    = "build"
)

// StageSearch labels query metrics. Searches are not recorded as runs.
const StageSearch = "search"

// Run records one execution of a pipeline stage.
type Run struct {
	ID         string    `json:"id" db:"id"`
	Stage      string    `json:"stage" db:"stage"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
	Documents  int       `json:"documents" db:"documents"`
	Terms      int       `json:"terms,omitempty" db:"terms"`
	Postings   int       `json:"postings,omitempty" db:"postings"`
	Edges      int       `json:"edges,omitempty" db:"edges"`
	Iterations int       `json:"iterations,omitempty" db:"iterations"`
	Diff       float64   `json:"diff,omitempty" db:"diff"`
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
