package pagerank

import (
	"testing"

	"github.com/hyperjump/pagesearch/internal/corpus"
	apperrors "github.com/hyperjump/pagesearch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildGraph(t *testing.T, names []string, links map[string][]string) *corpus.Graph {
	t.Helper()
	store, err := corpus.LoadDocuments(names)
	require.NoError(t, err)
	g := corpus.NewGraph(store)
	for from, targets := range links {
		g.AddLinks(store.IndexOf(from), targets)
	}
	return g
}

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}

func TestCompute_symmetricPair(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, map[string][]string{"A": {"B"}, "B": {"A"}})
	res, err := Compute(g, Params{Damping: 0.85, Threshold: 0.0001, MaxIterations: 1000})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Scores[0], 1e-9)
	assert.InDelta(t, 0.5, res.Scores[1], 1e-9)
	assert.Equal(t, 1, res.Iterations)
}

func TestCompute_singleIteration(t *testing.T) {
	g := buildGraph(t, []string{"A", "B", "C"}, map[string][]string{
		"A": {"B", "C"},
		"B": {"C"},
		"C": {"A"},
	})
	res, err := Compute(g, Params{Damping: 0.85, Threshold: 0, MaxIterations: 1})
	require.NoError(t, err)
	require.Equal(t, 1, res.Iterations)
	assert.InDelta(t, 0.05+0.85/3, res.Scores[0], 1e-12)
	assert.InDelta(t, 0.05+0.85/6, res.Scores[1], 1e-12)
	assert.InDelta(t, 0.05+0.85/2, res.Scores[2], 1e-12)
	assert.InDelta(t, 0.85/3, res.Diff, 1e-12)
	assert.InDelta(t, 1.0, sum(res.Scores), 1e-12)
}

func TestCompute_alwaysRunsOnce(t *testing.T) {
	g := buildGraph(t, []string{"A"}, nil)
	res, err := Compute(g, Params{Damping: 0.85, Threshold: 1e9, MaxIterations: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.InDelta(t, 0.15, res.Scores[0], 1e-12)
}

func TestCompute_iterationCap(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, map[string][]string{"A": {"B"}, "B": {"A"}})
	res, err := Compute(g, Params{Damping: 0.85, Threshold: 0, MaxIterations: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Iterations)
	assert.False(t, res.Converged(Params{Threshold: 0}))
}

func TestCompute_converges(t *testing.T) {
	g := buildGraph(t, []string{"A", "B", "C", "D"}, map[string][]string{
		"A": {"B", "C"},
		"B": {"C"},
		"C": {"A"},
		"D": {"C"},
	})
	p := Params{Damping: 0.85, Threshold: 1e-12, MaxIterations: 1000}
	res, err := Compute(g, p, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	require.True(t, res.Converged(p))
	assert.Less(t, res.Iterations, 1000)

	// The result is a fixed point of the update rule.
	s := res.Scores
	assert.InDelta(t, 0.0375+0.85*s[2], s[0], 1e-9)
	assert.InDelta(t, 0.0375+0.85*s[0]/2, s[1], 1e-9)
	assert.InDelta(t, 0.0375+0.85*(s[0]/2+s[1]+s[3]), s[2], 1e-9)
	assert.InDelta(t, 0.0375, s[3], 1e-9)
	assert.Greater(t, s[2], s[0])
}

func TestCompute_massAccounting(t *testing.T) {
	// C is dangling: its share leaves the system, everything else is redistributed.
	g := buildGraph(t, []string{"A", "B", "C"}, map[string][]string{
		"A": {"B", "C"},
		"B": {"A"},
	})
	d := 0.85
	res, err := Compute(g, Params{Damping: d, Threshold: 0, MaxIterations: 1})
	require.NoError(t, err)
	nonDangling := 2.0 / 3
	assert.InDelta(t, (1-d)+d*nonDangling, sum(res.Scores), 1e-12)

	g = buildGraph(t, []string{"A", "B", "C"}, map[string][]string{
		"A": {"B", "C"},
		"B": {"A"},
		"C": {"A", "B"},
	})
	res, err = Compute(g, Params{Damping: d, Threshold: 1e-10, MaxIterations: 1000})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum(res.Scores), 1e-9)
}

func TestCompute_orderIndependent(t *testing.T) {
	links := map[string][]string{
		"a": {"b", "c"},
		"b": {"c", "d"},
		"c": {"a"},
		"d": {"a", "c"},
	}
	p := Params{Damping: 0.85, Threshold: 1e-12, MaxIterations: 1000}

	g1 := buildGraph(t, []string{"a", "b", "c", "d"}, links)
	g2 := buildGraph(t, []string{"d", "c", "b", "a"}, links)
	r1, err := Compute(g1, p)
	require.NoError(t, err)
	r2, err := Compute(g2, p)
	require.NoError(t, err)

	for i, name := range g1.Store().Names() {
		j := g2.Store().IndexOf(name)
		assert.InDelta(t, r1.Scores[i], r2.Scores[j], 1e-9, name)
	}
}

func TestCompute_doesNotMutateStore(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, map[string][]string{"A": {"B"}})
	_, err := Compute(g, DefaultParams())
	require.NoError(t, err)
	for _, d := range g.Store().Documents() {
		assert.Equal(t, 0.5, d.PageRank)
	}
}

func TestCompute_emptyCorpus(t *testing.T) {
	g := buildGraph(t, nil, nil)
	_, err := Compute(g, DefaultParams())
	assert.ErrorIs(t, err, apperrors.ErrEmptyCorpus)
}

func TestCompute_invalidParams(t *testing.T) {
	g := buildGraph(t, []string{"A"}, nil)
	for _, p := range []Params{
		{Damping: 1.5, Threshold: 0.1, MaxIterations: 10},
		{Damping: -0.1, Threshold: 0.1, MaxIterations: 10},
		{Damping: 0.85, Threshold: -1, MaxIterations: 10},
		{Damping: 0.85, Threshold: 0.1, MaxIterations: 0},
	} {
		_, err := Compute(g, p)
		assert.ErrorIs(t, err, apperrors.ErrInvalidParams, "%+v", p)
	}
}

func TestApplyAndRanked(t *testing.T) {
	g := buildGraph(t, []string{"url3", "url1", "url2"}, map[string][]string{
		"url1": {"url2"},
		"url3": {"url2"},
	})
	res, err := Compute(g, DefaultParams())
	require.NoError(t, err)
	res.Apply(g.Store())

	ranked := Ranked(g.Store())
	require.Len(t, ranked, 3)
	assert.Equal(t, "url2", ranked[0].Name)
	// url1 and url3 tie; name breaks it.
	assert.Equal(t, "url1", ranked[1].Name)
	assert.Equal(t, "url3", ranked[2].Name)
	assert.Equal(t, ranked[1].PageRank, ranked[2].PageRank)
	assert.Equal(t, 1, ranked[1].OutDegree)

	table := ScoreTable(ranked)
	assert.Equal(t, ranked[0].PageRank, table["url2"])
	assert.Len(t, table, 3)
}
