// Package main is the pagesearch CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/hyperjump/pagesearch/internal/cli"
	"github.com/hyperjump/pagesearch/internal/config"
	"github.com/hyperjump/pagesearch/internal/metrics"
	"github.com/hyperjump/pagesearch/internal/models"
	"github.com/hyperjump/pagesearch/internal/pagerank"
	"github.com/hyperjump/pagesearch/internal/pipeline"
	"github.com/hyperjump/pagesearch/internal/storage"
	"github.com/hyperjump/pagesearch/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

// defaultConfigName is looked up in the working directory when --config is not given.
const defaultConfigName = "pagesearch.yaml"

// loadConfig loads config from path. When path is empty it uses pagesearch.yaml
// from the current directory if one exists, and built-in defaults otherwise.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return config.Default(), "", nil
		}
		fallback := filepath.Join(cwd, defaultConfigName)
		if _, statErr := os.Stat(fallback); statErr != nil {
			return config.Default(), "", nil
		}
		path = fallback
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "index":
		runIndex()
	case "pagerank":
		runPageRank()
	case "build":
		runBuild()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("pagesearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}
}

// components holds everything a command needs once config is loaded.
type components struct {
	cfg      *config.Config
	logger   *zap.Logger
	runner   *pipeline.Runner
	snapshot *storage.SQLiteStorage
}

func (c *components) Close() {
	if c.snapshot != nil {
		if err := c.snapshot.Close(); err != nil {
			c.logger.Warn("snapshot close failed", zap.Error(err))
		}
	}
	_ = c.logger.Sync()
}

func initializeComponents(configPath string, debug bool) *components {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded",
		zap.String("config_path", resolved),
		zap.Bool("debug", debugMode),
	)

	c := &components{cfg: cfg, logger: logger}
	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.Storage.DatabasePath != "" {
		snap, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Fatal("Failed to open snapshot", zap.String("path", cfg.Storage.DatabasePath), zap.Error(err))
		}
		c.snapshot = snap
		opts = append(opts, pipeline.WithSnapshot(snap))
	}
	if cfg.Metrics.TextfilePath != "" {
		opts = append(opts, pipeline.WithMetrics(metrics.New()))
	}
	c.runner = pipeline.New(cfg, opts...)
	return c
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// argsReorder moves any flags (and their values) that appear after the
// positionals to the front so that flag.Parse() sees them.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func newFlagSet(name string) (*flag.FlagSet, *string, *bool) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (default: ./"+defaultConfigName+" if present)")
	debug := fs.Bool("debug", false, "enable debug logging (per-file progress, iterations)")
	return fs, configPath, debug
}

func runIndex() {
	fs, configPath, debug := newFlagSet("index")
	_ = fs.Parse(os.Args[2:])

	c := initializeComponents(*configPath, *debug)
	defer c.Close()
	ctx, cancel := signalContext()
	defer cancel()

	run, err := c.runner.Index(ctx)
	if err != nil {
		c.logger.Fatal("Indexing failed", zap.Error(err))
	}
	fmt.Printf("Indexed %d document(s): %d terms written to %s\n", run.Documents, run.Terms, c.cfg.Output.InvertedIndexPath)
}

func printPageRankUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: pagesearch pagerank [flags] d diffPR maxIterations\n\n")
	fmt.Fprintf(w, "  d              damping factor in [0,1], e.g. 0.85\n")
	fmt.Fprintf(w, "  diffPR         convergence threshold, e.g. 0.00001\n")
	fmt.Fprintf(w, "  maxIterations  iteration cap, e.g. 1000\n")
}

// parsePageRankArgs reads the three positional PageRank parameters.
func parsePageRankArgs(args []string) (pagerank.Params, error) {
	if len(args) != 3 {
		return pagerank.Params{}, fmt.Errorf("expected 3 arguments, got %d", len(args))
	}
	d, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return pagerank.Params{}, fmt.Errorf("invalid damping factor %q", args[0])
	}
	diff, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return pagerank.Params{}, fmt.Errorf("invalid threshold %q", args[1])
	}
	maxIter, err := strconv.Atoi(args[2])
	if err != nil {
		return pagerank.Params{}, fmt.Errorf("invalid max iterations %q", args[2])
	}
	p := pagerank.Params{Damping: d, Threshold: diff, MaxIterations: maxIter}
	if err := p.Validate(); err != nil {
		return pagerank.Params{}, err
	}
	return p, nil
}

func runPageRank() {
	fs, configPath, debug := newFlagSet("pagerank")
	fs.Usage = func() { printPageRankUsage(fs.Output()) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	params, err := parsePageRankArgs(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		printPageRankUsage(os.Stderr)
		os.Exit(1)
	}

	c := initializeComponents(*configPath, *debug)
	defer c.Close()
	ctx, cancel := signalContext()
	defer cancel()

	run, err := c.runner.PageRank(ctx, params)
	if err != nil {
		c.logger.Fatal("PageRank failed", zap.Error(err))
	}
	fmt.Printf("Ranked %d document(s) in %d iteration(s), written to %s\n", run.Documents, run.Iterations, c.cfg.Output.PageRankListPath)
}

// pageRankParams returns the configured PageRank settings.
func pageRankParams(cfg *config.Config) pagerank.Params {
	return pagerank.Params{
		Damping:       cfg.PageRank.Damping,
		Threshold:     cfg.PageRank.Threshold,
		MaxIterations: cfg.PageRank.MaxIterations,
	}
}

func runBuild() {
	fs, configPath, debug := newFlagSet("build")
	_ = fs.Parse(os.Args[2:])

	c := initializeComponents(*configPath, *debug)
	defer c.Close()
	ctx, cancel := signalContext()
	defer cancel()

	run, err := c.runner.Build(ctx, pageRankParams(c.cfg))
	if err != nil {
		c.logger.Fatal("Build failed", zap.Error(err))
	}
	fmt.Printf("Built index (%d terms) and PageRank (%d iterations) for %d document(s)\n", run.Terms, run.Iterations, run.Documents)
}

func printSearchUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: pagesearch search [flags] <term>...\n\n")
	fmt.Fprintf(w, "Terms are matched exactly as typed against the lowercased index.\n")
	fmt.Fprintf(w, "Prints up to the configured number of matching documents (default 30), one per line.\n\n")
	fmt.Fprintf(w, "Flags:\n")
	fmt.Fprintf(w, "  --config string   config file path\n")
	fmt.Fprintf(w, "  --debug           enable debug logging\n")
	fmt.Fprintf(w, "  --output string   output format: text or json (default from config, text)\n")
	fmt.Fprintf(w, "  --limit int       maximum number of results (default from config, 30)\n")
}

func runSearch() {
	fs, configPath, debug := newFlagSet("search")
	outputFormat := fs.String("output", "", "output format: text or json")
	limit := fs.Int("limit", 0, "maximum number of results")
	fs.Usage = func() { printSearchUsage(fs.Output()) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		printSearchUsage(os.Stderr)
		os.Exit(1)
	}

	c := initializeComponents(*configPath, *debug)
	defer c.Close()

	formatName := *outputFormat
	if formatName == "" {
		formatName = c.cfg.Search.Output
	}
	format, err := cli.ParseOutputFormat(formatName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()
	response, err := c.runner.Search(ctx, &models.SearchQuery{Terms: fs.Args(), Limit: *limit})
	if err != nil {
		c.logger.Fatal("Search failed", zap.Error(err))
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs, configPath, debug := newFlagSet("status")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	c := initializeComponents(*configPath, *debug)
	defer c.Close()

	st, err := c.runner.Status(context.Background())
	if err != nil {
		c.logger.Fatal("Status failed", zap.Error(err))
	}
	if err := cli.WriteStatus(os.Stdout, st, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `pagesearch - PageRank-ordered keyword search over a linked document collection

Usage:
  pagesearch index [flags]                          Build the inverted index
  pagesearch pagerank [flags] d diffPR maxIterations Compute PageRank and write the ranked list
  pagesearch build [flags]                          Run index and pagerank with configured settings
  pagesearch search [flags] <term>...               Search the index, best matches first
  pagesearch status [flags]                         Show output files and snapshot contents
  pagesearch version                                Show version
  pagesearch help                                   Show this help

Common Flags:
  --config string    Config file path (default: ./pagesearch.yaml if present, else built-in defaults)
  --debug            Enable debug logging

Search Flags:
  --output string    Output format: text (one name per line) or json
  --limit int        Maximum number of results (default 30)

Status Flags:
  --output string    Output format: text or json (default: text)

Examples:
  pagesearch index
  pagesearch pagerank 0.85 0.00001 1000
  pagesearch search mars planet
  pagesearch search --output json mars
  pagesearch build --config ./pagesearch.yaml
  pagesearch status --output json`)
}
