package config

// DefaultPageRank returns the PageRank settings used when none are configured.
func DefaultPageRank() PageRankConfig {
	return PageRankConfig{Damping: 0.85, Threshold: 0.00001, MaxIterations: 1000}
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = "."
	}
	if cfg.Corpus.CollectionFile == "" {
		cfg.Corpus.CollectionFile = "collection.txt"
	}
	if cfg.Corpus.Suffix == "" {
		cfg.Corpus.Suffix = ".txt"
	}
	if cfg.Corpus.IdentityPrefix == "" {
		cfg.Corpus.IdentityPrefix = "url"
	}
	if cfg.Corpus.LinkStart == "" {
		cfg.Corpus.LinkStart = "#start Section-1"
	}
	if cfg.Corpus.LinkEnd == "" {
		cfg.Corpus.LinkEnd = "#end Section-1"
	}
	if cfg.Output.InvertedIndexPath == "" {
		cfg.Output.InvertedIndexPath = "invertedIndex.txt"
	}
	if cfg.Output.PageRankListPath == "" {
		cfg.Output.PageRankListPath = "pagerankList.txt"
	}
	// Zero damping and threshold are valid settings, so the PageRank section
	// is only defaulted as a whole. Load seeds it before parsing, which keeps
	// explicit zeros from the file.
	if cfg.PageRank == (PageRankConfig{}) {
		cfg.PageRank = DefaultPageRank()
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 30
	}
	if cfg.Search.Output == "" {
		cfg.Search.Output = "text"
	}
}
