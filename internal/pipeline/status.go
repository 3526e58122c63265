package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/pagesearch/internal/metrics"
	"github.com/hyperjump/pagesearch/internal/models"
	"github.com/hyperjump/pagesearch/internal/storage"
)

// Status describes the pipeline outputs on disk and, when a snapshot is
// attached, what the last runs stored.
type Status struct {
	Outputs    []storage.Usage `json:"outputs"`
	TotalBytes int64           `json:"total_bytes"`
	Snapshot   *SnapshotStatus `json:"snapshot,omitempty"`
}

// topDocuments is how many stored documents Status lists.
const topDocuments = 5

// SnapshotStatus holds the snapshot table counts, the highest-ranked stored
// documents, and the latest run per stage.
type SnapshotStatus struct {
	Documents int64             `json:"documents"`
	Terms     int64             `json:"terms"`
	Postings  int64             `json:"postings"`
	Links     int64             `json:"links"`
	Top       []models.Document `json:"top,omitempty"`
	Runs      []*models.Run     `json:"runs"`
}

// Status reports output sizes and snapshot contents.
func (r *Runner) Status(ctx context.Context) (*Status, error) {
	paths := []string{
		r.cfg.Output.InvertedIndexPath,
		r.cfg.Output.PageRankListPath,
		r.cfg.Storage.DatabasePath,
	}
	if base := r.cfg.Metrics.TextfilePath; base != "" {
		for _, stage := range []string{models.StageIndex, models.StagePageRank, models.StageBuild, models.StageSearch} {
			paths = append(paths, metrics.TextfilePath(base, stage))
		}
	}
	usages, err := storage.OutputUsage(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to stat outputs: %w", err)
	}
	total, err := storage.DiskUsageBytes(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to stat outputs: %w", err)
	}
	st := &Status{Outputs: usages, TotalBytes: total}
	if r.snapshot == nil {
		return st, nil
	}

	snap := &SnapshotStatus{}
	counts := []struct {
		dst *int64
		fn  func(context.Context) (int64, error)
	}{
		{&snap.Documents, r.snapshot.CountDocuments},
		{&snap.Terms, r.snapshot.CountTerms},
		{&snap.Postings, r.snapshot.CountPostings},
		{&snap.Links, r.snapshot.CountLinks},
	}
	for _, c := range counts {
		n, err := c.fn(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count snapshot rows: %w", err)
		}
		*c.dst = n
	}
	docs, err := r.snapshot.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot documents: %w", err)
	}
	if len(docs) > topDocuments {
		docs = docs[:topDocuments]
	}
	snap.Top = docs
	for _, stage := range []string{models.StageIndex, models.StagePageRank, models.StageBuild} {
		run, err := r.snapshot.LatestRun(ctx, stage)
		if errors.Is(err, storage.ErrNoRun) {
			continue
		}
		if err != nil {
			return nil, err
		}
		snap.Runs = append(snap.Runs, run)
	}
	st.Snapshot = snap
	return st, nil
}
