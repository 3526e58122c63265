package indexer

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hyperjump/pagesearch/internal/corpus"
	apperrors "github.com/hyperjump/pagesearch/internal/errors"
	"github.com/hyperjump/pagesearch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCorpus(t *testing.T) (*corpus.Store, corpus.MapSource) {
	t.Helper()
	store, err := corpus.LoadDocuments([]string{"url2", "url1"})
	require.NoError(t, err)
	bodies := corpus.MapSource{
		"url1": "#start Section-1 url2 #end Section-1 #start Section-2 Mars, the red planet. Mars! #end Section-2",
		"url2": "#start Section-1 url1 #end Section-1 #start Section-2 The planet Earth; earth. #end Section-2",
	}
	return store, bodies
}

func TestIndexDocument_deduplicatesWithinDocument(t *testing.T) {
	idx := NewIndexer()
	added := idx.IndexDocument("url1", "Fish fish FISH. fish?")
	assert.Equal(t, 1, added)
	assert.Equal(t, []string{"url1"}, idx.Table().Documents("fish"))
}

func TestBuild(t *testing.T) {
	store, bodies := testCorpus(t)
	idx := NewIndexer(WithLogger(zap.NewNop()))
	table, err := idx.Build(context.Background(), store, bodies)
	require.NoError(t, err)

	want := []models.TermEntry{
		{Term: "earth", Documents: []string{"url2"}},
		{Term: "mars", Documents: []string{"url1"}},
		{Term: "mars!", Documents: []string{"url1"}},
		{Term: "planet", Documents: []string{"url1", "url2"}},
		{Term: "red", Documents: []string{"url1"}},
		{Term: "the", Documents: []string{"url1", "url2"}},
	}
	if diff := cmp.Diff(want, table.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_isRepeatable(t *testing.T) {
	store, bodies := testCorpus(t)
	first, err := NewIndexer().Build(context.Background(), store, bodies)
	require.NoError(t, err)
	second, err := NewIndexer().Build(context.Background(), store, bodies)
	require.NoError(t, err)
	assert.Equal(t, first.Entries(), second.Entries())
}

func TestBuild_missingBody(t *testing.T) {
	store, _ := corpus.LoadDocuments([]string{"url1"})
	_, err := NewIndexer().Build(context.Background(), store, corpus.MapSource{})
	assert.ErrorIs(t, err, apperrors.ErrMissingInput)
}

func TestWithFilter(t *testing.T) {
	f := DefaultFilter()
	f.Labels = append(f.Labels, "Abstract")
	idx := NewIndexer(WithFilter(f))
	idx.IndexDocument("d", "Abstract abstract")
	assert.Equal(t, []string{"abstract"}, idx.Table().Terms())
	assert.Equal(t, []string{"d"}, idx.Table().Documents("abstract"))
}
