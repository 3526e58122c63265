package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/pagesearch/internal/config"
	apperrors "github.com/hyperjump/pagesearch/internal/errors"
	"github.com/hyperjump/pagesearch/internal/metrics"
	"github.com/hyperjump/pagesearch/internal/models"
	"github.com/hyperjump/pagesearch/internal/pagerank"
	"github.com/hyperjump/pagesearch/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testBodies = map[string]string{
	"url1": "#start Section-1\nurl2 url3\n#end Section-1\n#start Section-2\nMars has fish.\n#end Section-2\n",
	"url2": "#start Section-1\nurl1\n#end Section-1\n#start Section-2\nfish and cat\n#end Section-2\n",
	"url3": "#start Section-1\nurl2 url3\n#end Section-1\n#start Section-2\ncat?\n#end Section-2\n",
}

func writeCorpus(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collection.txt"), []byte("url1 url2\nurl3\n"), 0644))
	for name, body := range testBodies {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), []byte(body), 0644))
	}
	cfg := config.Default()
	cfg.Corpus.Dir = dir
	cfg.Output.InvertedIndexPath = filepath.Join(dir, "out", "invertedIndex.txt")
	cfg.Output.PageRankListPath = filepath.Join(dir, "out", "pagerankList.txt")
	return cfg
}

func TestRunner_Index(t *testing.T) {
	cfg := writeCorpus(t)
	run, err := New(cfg, WithLogger(zap.NewNop())).Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StageIndex, run.Stage)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 3, run.Documents)
	assert.Equal(t, 5, run.Terms)

	data, err := os.ReadFile(cfg.Output.InvertedIndexPath)
	require.NoError(t, err)
	want := "and url2\ncat url2 url3\nfish url1 url2\nhas url1\nmars url1\n"
	assert.Equal(t, want, string(data))
}

func TestRunner_PageRank(t *testing.T) {
	cfg := writeCorpus(t)
	run, err := New(cfg).PageRank(context.Background(), pagerank.Params{Damping: 0.85, Threshold: 0.0001, MaxIterations: 1000})
	require.NoError(t, err)
	// url3's self-link is dropped.
	assert.Equal(t, 4, run.Edges)
	assert.GreaterOrEqual(t, run.Iterations, 1)

	list, err := storage.ReadPageRankList(cfg.Output.PageRankListPath)
	require.NoError(t, err)
	require.Len(t, list.Documents, 3)
	assert.Empty(t, list.Malformed)
	assert.Equal(t, "url2", list.Documents[0].Name)
	degrees := map[string]int{}
	for _, d := range list.Documents {
		degrees[d.Name] = d.OutDegree
	}
	assert.Equal(t, map[string]int{"url1": 2, "url2": 1, "url3": 1}, degrees)
}

func TestRunner_PageRankInvalidParams(t *testing.T) {
	cfg := writeCorpus(t)
	_, err := New(cfg).PageRank(context.Background(), pagerank.Params{Damping: 2, MaxIterations: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
	_, statErr := os.Stat(cfg.Output.PageRankListPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunner_BuildAndSearch(t *testing.T) {
	cfg := writeCorpus(t)
	cfg.Metrics.TextfilePath = filepath.Join(t.TempDir(), "pagesearch.prom")
	snap, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	defer snap.Close()

	r := New(cfg, WithSnapshot(snap), WithMetrics(metrics.New()))
	ctx := context.Background()
	run, err := r.Build(ctx, pagerank.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, models.StageBuild, run.Stage)
	assert.Equal(t, 5, run.Terms)
	assert.Equal(t, 4, run.Edges)

	resp, err := r.Search(ctx, &models.SearchQuery{Terms: []string{"fish", "cat"}})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "url2", resp.Results[0].Name)
	assert.Equal(t, 2, resp.Results[0].MatchCount)

	resp, err = r.Search(ctx, &models.SearchQuery{Terms: []string{"Fish"}})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)

	st, err := r.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.Snapshot)
	assert.EqualValues(t, 3, st.Snapshot.Documents)
	assert.EqualValues(t, 5, st.Snapshot.Terms)
	assert.EqualValues(t, 7, st.Snapshot.Postings)
	assert.EqualValues(t, 4, st.Snapshot.Links)
	require.Len(t, st.Snapshot.Runs, 1)
	assert.Equal(t, run.ID, st.Snapshot.Runs[0].ID)
	assert.Greater(t, st.TotalBytes, int64(0))

	require.Len(t, st.Snapshot.Top, 3)
	assert.Equal(t, "url2", st.Snapshot.Top[0].Name)

	prom, err := os.ReadFile(metrics.TextfilePath(cfg.Metrics.TextfilePath, models.StageBuild))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(prom), `pagesearch_stage_runs_total{stage="build",status="ok"} 1`))
	assert.True(t, strings.Contains(string(prom), `pagesearch_index_terms{stage="build"} 5`))
}

func TestRunner_SearchKeepsStageMetrics(t *testing.T) {
	cfg := writeCorpus(t)
	cfg.Metrics.TextfilePath = filepath.Join(t.TempDir(), "pagesearch.prom")
	ctx := context.Background()

	_, err := New(cfg, WithMetrics(metrics.New())).Build(ctx, pagerank.DefaultParams())
	require.NoError(t, err)
	buildFile := metrics.TextfilePath(cfg.Metrics.TextfilePath, models.StageBuild)
	before, err := os.ReadFile(buildFile)
	require.NoError(t, err)

	// A later command runs with a fresh registry, as a new process would.
	_, err = New(cfg, WithMetrics(metrics.New())).Search(ctx, &models.SearchQuery{Terms: []string{"fish"}})
	require.NoError(t, err)

	after, err := os.ReadFile(buildFile)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	searchProm, err := os.ReadFile(metrics.TextfilePath(cfg.Metrics.TextfilePath, models.StageSearch))
	require.NoError(t, err)
	assert.Contains(t, string(searchProm), `pagesearch_search_results_count_count{stage="search"} 1`)
	assert.NotContains(t, string(searchProm), "pagesearch_index_terms")
}

func TestRunner_CustomMarkers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collection.txt"), []byte("url1 url2"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "url1.txt"), []byte("LINKS-BEGIN url2 LINKS-END fish"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "url2.txt"), []byte("LINKS-BEGIN url1 LINKS-END cat"), 0644))
	cfg := config.Default()
	cfg.Corpus.Dir = dir
	cfg.Corpus.LinkStart = "LINKS-BEGIN"
	cfg.Corpus.LinkEnd = "LINKS-END"
	cfg.Output.InvertedIndexPath = filepath.Join(dir, "invertedIndex.txt")
	cfg.Output.PageRankListPath = filepath.Join(dir, "pagerankList.txt")

	run, err := New(cfg).Build(context.Background(), pagerank.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 2, run.Edges)

	data, err := os.ReadFile(cfg.Output.InvertedIndexPath)
	require.NoError(t, err)
	assert.Equal(t, "cat url2\nfish url1\n", string(data))
}

func TestRunner_BuildEmptyCollectionWritesNothing(t *testing.T) {
	cfg := writeCorpus(t)
	require.NoError(t, os.WriteFile(cfg.Corpus.CollectionPath(), nil, 0644))

	_, err := New(cfg).Build(context.Background(), pagerank.DefaultParams())
	assert.ErrorIs(t, err, apperrors.ErrEmptyCorpus)
	for _, path := range []string{cfg.Output.InvertedIndexPath, cfg.Output.PageRankListPath} {
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "%s should not be written", path)
	}
}

func TestRunner_SearchUsesConfiguredLimit(t *testing.T) {
	cfg := writeCorpus(t)
	cfg.Search.MaxResults = 1
	r := New(cfg)
	_, err := r.Build(context.Background(), pagerank.DefaultParams())
	require.NoError(t, err)

	resp, err := r.Search(context.Background(), &models.SearchQuery{Terms: []string{"cat"}})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, 2, resp.Total)
}

func TestRunner_missingInputs(t *testing.T) {
	cfg := writeCorpus(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Corpus.Dir, "url2.txt")))

	_, err := New(cfg).Index(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrMissingInput)
	_, statErr := os.Stat(cfg.Output.InvertedIndexPath)
	assert.True(t, os.IsNotExist(statErr), "no partial index should be written")

	_, err = New(cfg).Search(context.Background(), &models.SearchQuery{Terms: []string{"fish"}})
	assert.ErrorIs(t, err, apperrors.ErrMissingInput)

	cfg.Corpus.CollectionFile = "missing.txt"
	_, err = New(cfg).PageRank(context.Background(), pagerank.DefaultParams())
	assert.ErrorIs(t, err, apperrors.ErrMissingInput)
}

func TestRunner_StatusWithoutSnapshot(t *testing.T) {
	cfg := writeCorpus(t)
	st, err := New(cfg).Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.Snapshot)
	require.Len(t, st.Outputs, 2)
	assert.False(t, st.Outputs[0].Exists)
	assert.Zero(t, st.TotalBytes)
}
