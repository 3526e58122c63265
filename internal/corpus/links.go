package corpus

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/pagesearch/internal/models"
	"go.uber.org/zap"
)

// Markers are the token sequences that open and close a link section.
type Markers struct {
	Start []string
	End   []string
}

// NewMarkers splits the start and end marker text on whitespace, so
// "#start Section-1" matches however the two tokens are spaced in a body.
func NewMarkers(start, end string) Markers {
	return Markers{Start: strings.Fields(start), End: strings.Fields(end)}
}

// DefaultMarkers returns the "#start Section-1" / "#end Section-1" pair.
func DefaultMarkers() Markers {
	return NewMarkers("#start Section-1", "#end Section-1")
}

// ParseOutgoingLinks returns the raw tokens found inside every link section of
// body, deduplicated, in first-seen order. Markers are matched case-sensitively.
// A section left open runs to the end of the body.
func ParseOutgoingLinks(body string, markers Markers) []string {
	tokens := strings.Fields(body)
	seen := make(map[string]struct{})
	var links []string
	inSection := false
	for i := 0; i < len(tokens); i++ {
		if !inSection && hasSequence(tokens, i, markers.Start) {
			inSection = true
			i += len(markers.Start) - 1
			continue
		}
		if inSection && hasSequence(tokens, i, markers.End) {
			inSection = false
			i += len(markers.End) - 1
			continue
		}
		if !inSection {
			continue
		}
		if _, dup := seen[tokens[i]]; dup {
			continue
		}
		seen[tokens[i]] = struct{}{}
		links = append(links, tokens[i])
	}
	return links
}

func hasSequence(tokens []string, at int, seq []string) bool {
	if len(seq) == 0 || at+len(seq) > len(tokens) {
		return false
	}
	for j, s := range seq {
		if tokens[at+j] != s {
			return false
		}
	}
	return true
}

// Graph is the directed link graph over a Store's documents.
type Graph struct {
	store *Store
	out   []map[int]struct{}
	in    []map[int]struct{}
}

// NewGraph creates an edgeless graph over store.
func NewGraph(store *Store) *Graph {
	n := store.Len()
	g := &Graph{
		store: store,
		out:   make([]map[int]struct{}, n),
		in:    make([]map[int]struct{}, n),
	}
	for i := 0; i < n; i++ {
		g.out[i] = make(map[int]struct{})
		g.in[i] = make(map[int]struct{})
	}
	return g
}

// AddLinks records an edge from document from to every resolvable target.
// Unknown names and self-references are dropped silently, and an edge already
// present is not counted again. Returns the number of new edges.
func (g *Graph) AddLinks(from int, targets []string) int {
	added := 0
	for _, name := range targets {
		to := g.store.IndexOf(name)
		if to < 0 || to == from {
			continue
		}
		if _, ok := g.out[from][to]; ok {
			continue
		}
		g.out[from][to] = struct{}{}
		g.in[to][from] = struct{}{}
		g.store.incOutDegree(from)
		added++
	}
	return added
}

// Len returns the number of documents in the graph.
func (g *Graph) Len() int {
	return len(g.out)
}

// OutDegree returns the number of distinct non-self links leaving document i.
func (g *Graph) OutDegree(i int) int {
	return len(g.out[i])
}

// Linkers returns, in ascending order, the documents that link to document i.
func (g *Graph) Linkers(i int) []int {
	return sortedKeys(g.in[i])
}

// Targets returns, in ascending order, the documents that document i links to.
func (g *Graph) Targets(i int) []int {
	return sortedKeys(g.out[i])
}

// Edges returns every edge ordered by source then target.
func (g *Graph) Edges() []models.Link {
	var edges []models.Link
	for from := range g.out {
		for _, to := range g.Targets(from) {
			edges = append(edges, models.Link{From: from, To: to})
		}
	}
	return edges
}

// Store returns the store the graph was built over.
func (g *Graph) Store() *Store {
	return g.store
}

func sortedKeys(m map[int]struct{}) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// GraphOption configures BuildGraph.
type GraphOption func(*graphOptions)

type graphOptions struct {
	logger *zap.Logger
}

// WithGraphLogger sets a logger for per-document debug output.
func WithGraphLogger(l *zap.Logger) GraphOption {
	return func(o *graphOptions) { o.logger = l }
}

// BuildGraph reads every document body from src and records its outgoing links.
// The first body that cannot be read aborts the build.
func BuildGraph(ctx context.Context, store *Store, src BodySource, markers Markers, opts ...GraphOption) (*Graph, error) {
	o := &graphOptions{}
	for _, opt := range opts {
		opt(o)
	}
	g := NewGraph(store)
	for i, name := range store.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := src.Body(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("link graph: %w", err)
		}
		added := g.AddLinks(i, ParseOutgoingLinks(body, markers))
		if o.logger != nil {
			o.logger.Debug("links parsed", zap.String("document", name), zap.Int("out_degree", added))
		}
	}
	return g, nil
}
