// Package storage persists pipeline outputs: the plain-text index and PageRank
// files other tools read, and an optional SQLite snapshot of the last build.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/pagesearch/internal/models"
)

// ErrNoRun is returned when no run of the requested stage has been recorded.
var ErrNoRun = errors.New("no run recorded")

// Snapshot stores the latest pipeline state. Each Replace call swaps out the
// previous contents of its table in one transaction.
type Snapshot interface {
	// Pipeline state
	ReplaceDocuments(ctx context.Context, docs []models.Document) error
	ReplacePostings(ctx context.Context, entries []models.TermEntry) error
	ReplaceLinks(ctx context.Context, docs []models.Document, edges []models.Link) error

	// Runs
	RecordRun(ctx context.Context, run *models.Run) error
	LatestRun(ctx context.Context, stage string) (*models.Run, error)

	// Documents returns the stored documents by score descending, name ascending.
	Documents(ctx context.Context) ([]models.Document, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountTerms(ctx context.Context) (int64, error)
	CountPostings(ctx context.Context) (int64, error)
	CountLinks(ctx context.Context) (int64, error)

	Close() error
}
