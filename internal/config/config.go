// Package config provides configuration loading and structs for pagesearch.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Output   OutputConfig   `yaml:"output"`
	PageRank PageRankConfig `yaml:"pagerank"`
	Search   SearchConfig   `yaml:"search"`
	Storage  StorageConfig  `yaml:"storage"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// CorpusConfig describes where the collection lives and how its documents are marked up.
type CorpusConfig struct {
	Dir            string `yaml:"dir"`
	CollectionFile string `yaml:"collection_file"`
	Suffix         string `yaml:"suffix"`
	IdentityPrefix string `yaml:"identity_prefix"`
	LinkStart      string `yaml:"link_start"`
	LinkEnd        string `yaml:"link_end"`
}

// CollectionPath returns the collection file joined onto the corpus directory.
func (c *CorpusConfig) CollectionPath() string {
	if filepath.IsAbs(c.CollectionFile) {
		return c.CollectionFile
	}
	return filepath.Join(c.Dir, c.CollectionFile)
}

// OutputConfig holds the paths of the persisted index and PageRank list.
type OutputConfig struct {
	InvertedIndexPath string `yaml:"inverted_index_path"`
	PageRankListPath  string `yaml:"pagerank_list_path"`
}

// PageRankConfig holds defaults for the build command.
type PageRankConfig struct {
	Damping       float64 `yaml:"damping"`
	Threshold     float64 `yaml:"threshold"`
	MaxIterations int     `yaml:"max_iterations"`
}

// SearchConfig holds query settings.
type SearchConfig struct {
	MaxResults int    `yaml:"max_results"`
	Output     string `yaml:"output"`
}

// StorageConfig holds the optional SQLite snapshot path. Empty disables it.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// MetricsConfig holds the optional Prometheus textfile path. Empty disables it.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// Default returns a config with every default applied, rooted at the working directory.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, applies defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Config{PageRank: DefaultPageRank()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.Dir = expandPath(cfg.Corpus.Dir, configDir)
	cfg.Output.InvertedIndexPath = expandPath(cfg.Output.InvertedIndexPath, configDir)
	cfg.Output.PageRankListPath = expandPath(cfg.Output.PageRankListPath, configDir)
	if cfg.Storage.DatabasePath != "" {
		cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	}
	if cfg.Metrics.TextfilePath != "" {
		cfg.Metrics.TextfilePath = expandPath(cfg.Metrics.TextfilePath, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Relative paths resolve against configDir;
// "~/" resolves against the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(configDir, path)
}
