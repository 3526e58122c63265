// Package metrics defines the Prometheus collectors for pipeline runs and
// writes them in the node_exporter textfile format.
//
// Every series carries a stage label and each stage writes its own textfile,
// so a later command never overwrites what an earlier one reported.
package metrics

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pagesearch"

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	registry *prometheus.Registry

	Documents          *prometheus.GaugeVec
	IndexTerms         *prometheus.GaugeVec
	IndexPostings      *prometheus.GaugeVec
	LinkEdges          *prometheus.GaugeVec
	PageRankIterations *prometheus.GaugeVec
	PageRankDiff       *prometheus.GaugeVec
	StageDuration      *prometheus.GaugeVec
	StageRunsTotal     *prometheus.CounterVec
	MalformedLines     *prometheus.CounterVec
	SearchResultsCount *prometheus.HistogramVec
}

func gauge(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, []string{"stage"})
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry:           prometheus.NewRegistry(),
		Documents:          gauge("documents", "Number of documents in the collection."),
		IndexTerms:         gauge("index_terms", "Number of distinct terms in the inverted index."),
		IndexPostings:      gauge("index_postings", "Number of (term, document) pairs in the inverted index."),
		LinkEdges:          gauge("link_edges", "Number of distinct links between known documents."),
		PageRankIterations: gauge("pagerank_iterations", "Iterations run by the last PageRank computation."),
		PageRankDiff:       gauge("pagerank_final_diff", "Total absolute score change of the last PageRank iteration."),
		StageDuration:      gauge("stage_duration_seconds", "Wall time of the last run of each pipeline stage."),
		StageRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Pipeline stage runs by stage and status (ok, error).",
		}, []string{"stage", "status"}),
		MalformedLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pagerank_list_malformed_lines_total",
			Help:      "PageRank list lines skipped because they failed to parse.",
		}, []string{"stage"}),
		SearchResultsCount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_count",
			Help:      "Number of results returned per search query.",
			Buckets:   []float64{0, 1, 5, 10, 20, 30},
		}, []string{"stage"}),
	}

	m.registry.MustRegister(
		m.Documents,
		m.IndexTerms,
		m.IndexPostings,
		m.LinkEdges,
		m.PageRankIterations,
		m.PageRankDiff,
		m.StageDuration,
		m.StageRunsTotal,
		m.MalformedLines,
		m.SearchResultsCount,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveIndex records the size of an index built by stage.
func (m *Metrics) ObserveIndex(stage string, documents, terms, postings int) {
	m.Documents.WithLabelValues(stage).Set(float64(documents))
	m.IndexTerms.WithLabelValues(stage).Set(float64(terms))
	m.IndexPostings.WithLabelValues(stage).Set(float64(postings))
}

// ObservePageRank records the graph size and convergence of a PageRank run.
func (m *Metrics) ObservePageRank(stage string, documents, edges, iterations int, diff float64) {
	m.Documents.WithLabelValues(stage).Set(float64(documents))
	m.LinkEdges.WithLabelValues(stage).Set(float64(edges))
	m.PageRankIterations.WithLabelValues(stage).Set(float64(iterations))
	m.PageRankDiff.WithLabelValues(stage).Set(diff)
}

// ObserveStage records a finished stage. A non-nil err counts as status "error".
func (m *Metrics) ObserveStage(stage string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StageRunsTotal.WithLabelValues(stage, status).Inc()
	m.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// ObserveSearch records the size of one query's result list.
func (m *Metrics) ObserveSearch(stage string, results int) {
	m.SearchResultsCount.WithLabelValues(stage).Observe(float64(results))
}

// ObserveMalformed counts skipped PageRank list lines.
func (m *Metrics) ObserveMalformed(stage string, n int) {
	m.MalformedLines.WithLabelValues(stage).Add(float64(n))
}

// TextfilePath returns the per-stage file derived from base:
// "pagesearch.prom" becomes "pagesearch_index.prom" for stage "index".
func TextfilePath(base, stage string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + stage + ext
}

// WriteTextfile writes the current values to path for the node_exporter
// textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
