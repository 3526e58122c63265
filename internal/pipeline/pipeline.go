// Package pipeline runs the batch stages (index, PageRank, search) against the
// configured corpus and records their outputs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/pagesearch/internal/config"
	"github.com/hyperjump/pagesearch/internal/corpus"
	"github.com/hyperjump/pagesearch/internal/indexer"
	"github.com/hyperjump/pagesearch/internal/metrics"
	"github.com/hyperjump/pagesearch/internal/models"
	"github.com/hyperjump/pagesearch/internal/pagerank"
	"github.com/hyperjump/pagesearch/internal/search"
	"github.com/hyperjump/pagesearch/internal/storage"
	"go.uber.org/zap"
)

// Runner executes pipeline stages. Snapshot and metrics are optional.
type Runner struct {
	cfg      *config.Config
	logger   *zap.Logger
	snapshot storage.Snapshot
	metrics  *metrics.Metrics
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithSnapshot records every stage's outputs and run in s.
func WithSnapshot(s storage.Snapshot) Option {
	return func(r *Runner) { r.snapshot = s }
}

// WithMetrics records stage metrics in m and, when a textfile path is
// configured, writes them out after each stage.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// New creates a Runner for cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) source() *corpus.DirSource {
	return corpus.NewDirSource(r.cfg.Corpus.Dir, r.cfg.Corpus.Suffix)
}

// filter drops the configured link markers as well as the default ones, so a
// custom marker pair is never indexed as content.
func (r *Runner) filter() indexer.Filter {
	f := indexer.DefaultFilter()
	f.IdentityPrefix = r.cfg.Corpus.IdentityPrefix
	m := r.markers()
	f.Labels = append(f.Labels, m.Start...)
	f.Labels = append(f.Labels, m.End...)
	return f
}

func (r *Runner) markers() corpus.Markers {
	return corpus.NewMarkers(r.cfg.Corpus.LinkStart, r.cfg.Corpus.LinkEnd)
}

func (r *Runner) openCorpus() (*corpus.Store, error) {
	path := r.cfg.Corpus.CollectionPath()
	store, err := corpus.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	r.logger.Info("collection loaded", zap.String("path", path), zap.Int("documents", store.Len()))
	return store, nil
}

func newRun(stage string) *models.Run {
	return &models.Run{ID: uuid.New().String(), Stage: stage, StartedAt: time.Now()}
}

// Index builds the inverted index and writes it to the configured path.
func (r *Runner) Index(ctx context.Context) (*models.Run, error) {
	run := newRun(models.StageIndex)
	err := func() error {
		store, err := r.openCorpus()
		if err != nil {
			return err
		}
		table, err := r.buildIndex(ctx, store, r.source())
		if err != nil {
			return err
		}
		return r.writeIndex(ctx, run, store, table)
	}()
	return r.finish(ctx, run, err)
}

// PageRank computes scores with p and writes the PageRank list.
func (r *Runner) PageRank(ctx context.Context, p pagerank.Params) (*models.Run, error) {
	run := newRun(models.StagePageRank)
	err := func() error {
		if err := p.Validate(); err != nil {
			return err
		}
		store, err := r.openCorpus()
		if err != nil {
			return err
		}
		graph, res, err := r.rank(ctx, store, r.source(), p)
		if err != nil {
			return err
		}
		return r.writePageRank(ctx, run, store, graph, res, p)
	}()
	return r.finish(ctx, run, err)
}

// Build reads every document once and computes both the index and the scores
// before writing either, so a failure leaves no output behind.
func (r *Runner) Build(ctx context.Context, p pagerank.Params) (*models.Run, error) {
	run := newRun(models.StageBuild)
	err := func() error {
		if err := p.Validate(); err != nil {
			return err
		}
		store, err := r.openCorpus()
		if err != nil {
			return err
		}
		bodies, err := corpus.Preload(ctx, store, r.source())
		if err != nil {
			return err
		}
		table, err := r.buildIndex(ctx, store, bodies)
		if err != nil {
			return err
		}
		graph, res, err := r.rank(ctx, store, bodies, p)
		if err != nil {
			return err
		}
		if err := r.writeIndex(ctx, run, store, table); err != nil {
			return err
		}
		return r.writePageRank(ctx, run, store, graph, res, p)
	}()
	return r.finish(ctx, run, err)
}

func (r *Runner) buildIndex(ctx context.Context, store *corpus.Store, bodies corpus.BodySource) (*indexer.TermTable, error) {
	idx := indexer.NewIndexer(indexer.WithLogger(r.logger), indexer.WithFilter(r.filter()))
	return idx.Build(ctx, store, bodies)
}

// writeIndex persists table and fills run with its statistics.
func (r *Runner) writeIndex(ctx context.Context, run *models.Run, store *corpus.Store, table *indexer.TermTable) error {
	entries := table.Entries()
	if err := storage.WriteInvertedIndex(r.cfg.Output.InvertedIndexPath, entries); err != nil {
		return fmt.Errorf("failed to write inverted index: %w", err)
	}
	run.Documents = store.Len()
	run.Terms = table.Len()
	run.Postings = table.Postings()
	r.logger.Info("inverted index written",
		zap.String("run_id", run.ID),
		zap.String("path", r.cfg.Output.InvertedIndexPath),
		zap.Int("terms", run.Terms),
		zap.Int("postings", run.Postings))

	if r.metrics != nil {
		r.metrics.ObserveIndex(run.Stage, run.Documents, run.Terms, run.Postings)
	}
	if r.snapshot != nil {
		if err := r.snapshot.ReplacePostings(ctx, entries); err != nil {
			return fmt.Errorf("failed to store postings: %w", err)
		}
	}
	return nil
}

// rank links the corpus and computes its scores. It records out-degrees on store.
func (r *Runner) rank(ctx context.Context, store *corpus.Store, bodies corpus.BodySource, p pagerank.Params) (*corpus.Graph, *pagerank.Result, error) {
	graph, err := corpus.BuildGraph(ctx, store, bodies, r.markers(), corpus.WithGraphLogger(r.logger))
	if err != nil {
		return nil, nil, err
	}
	res, err := pagerank.Compute(graph, p, pagerank.WithLogger(r.logger))
	if err != nil {
		return nil, nil, err
	}
	return graph, res, nil
}

// writePageRank applies res to store, persists the ranked list, and fills run
// with graph and convergence statistics.
func (r *Runner) writePageRank(ctx context.Context, run *models.Run, store *corpus.Store, graph *corpus.Graph, res *pagerank.Result, p pagerank.Params) error {
	res.Apply(store)
	ranked := pagerank.Ranked(store)
	if err := storage.WritePageRankList(r.cfg.Output.PageRankListPath, ranked); err != nil {
		return fmt.Errorf("failed to write pagerank list: %w", err)
	}

	edges := graph.Edges()
	run.Documents = store.Len()
	run.Edges = len(edges)
	run.Iterations = res.Iterations
	run.Diff = res.Diff
	r.logger.Info("pagerank list written",
		zap.String("run_id", run.ID),
		zap.String("path", r.cfg.Output.PageRankListPath),
		zap.Int("iterations", res.Iterations),
		zap.Float64("diff", res.Diff),
		zap.Bool("converged", res.Converged(p)))

	if r.metrics != nil {
		r.metrics.ObservePageRank(run.Stage, run.Documents, run.Edges, run.Iterations, run.Diff)
	}
	if r.snapshot != nil {
		docs := store.Documents()
		if err := r.snapshot.ReplaceDocuments(ctx, docs); err != nil {
			return fmt.Errorf("failed to store documents: %w", err)
		}
		if err := r.snapshot.ReplaceLinks(ctx, docs, edges); err != nil {
			return fmt.Errorf("failed to store links: %w", err)
		}
	}
	return nil
}

// finish records the run outcome in metrics and the snapshot.
func (r *Runner) finish(ctx context.Context, run *models.Run, err error) (*models.Run, error) {
	run.FinishedAt = time.Now()
	if r.metrics != nil {
		r.metrics.ObserveStage(run.Stage, run.Duration(), err)
		r.flushMetrics(run.Stage)
	}
	if err != nil {
		return nil, err
	}
	if r.snapshot != nil {
		if err := r.snapshot.RecordRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}
	r.logger.Info("stage finished",
		zap.String("run_id", run.ID),
		zap.String("stage", run.Stage),
		zap.Duration("duration", run.Duration()))
	return run, nil
}

// flushMetrics writes the metrics textfile of stage.
func (r *Runner) flushMetrics(stage string) {
	if r.cfg.Metrics.TextfilePath == "" {
		return
	}
	path := metrics.TextfilePath(r.cfg.Metrics.TextfilePath, stage)
	if err := r.metrics.WriteTextfile(path); err != nil {
		r.logger.Warn("metrics not written", zap.String("path", path), zap.Error(err))
	}
}

// Search loads the persisted index and PageRank list and answers query.
func (r *Runner) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	entries, err := storage.ReadInvertedIndex(r.cfg.Output.InvertedIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load inverted index: %w", err)
	}
	list, err := storage.ReadPageRankList(r.cfg.Output.PageRankListPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pagerank list: %w", err)
	}
	for _, bad := range list.Malformed {
		r.logger.Debug("pagerank line skipped", zap.Error(bad))
	}
	if r.metrics != nil {
		r.metrics.ObserveMalformed(models.StageSearch, len(list.Malformed))
	}

	engine := search.NewEngine(
		indexer.FromEntries(entries),
		pagerank.ScoreTable(list.Documents),
		search.WithLogger(r.logger),
	)
	if query.Limit <= 0 {
		query.Limit = r.cfg.Search.MaxResults
	}
	resp, err := engine.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.ObserveSearch(models.StageSearch, len(resp.Results))
		r.flushMetrics(models.StageSearch)
	}
	return resp, nil
}
