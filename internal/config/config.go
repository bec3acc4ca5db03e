// Package config loads the CorpusDB configuration from YAML with
// CORPUSDB_* environment variable overrides.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/corpusdb/corpusdb/internal/embed"
	"github.com/corpusdb/corpusdb/internal/errors"
	"github.com/corpusdb/corpusdb/internal/index"
)

// Config is the complete CorpusDB configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Index      IndexConfig      `yaml:"index"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig configures the SQLite store.
type StorageConfig struct {
	// Path is the database file. Empty means in-memory (testing only).
	Path string `yaml:"path"`
}

// EmbeddingsConfig configures the embedder.
type EmbeddingsConfig struct {
	// Provider selects the embedder. Only "static" is built in.
	Provider   string `yaml:"provider"`
	Dimensions int    `yaml:"dimensions"`
	// CacheSize is the LRU query-embedding cache capacity.
	CacheSize int `yaml:"cache_size"`
}

// IndexConfig configures the vector index family.
type IndexConfig struct {
	// Types lists the index variants to maintain.
	Types []string `yaml:"types"`
	// LeafSize is the ball tree leaf bucket capacity.
	LeafSize int `yaml:"leaf_size"`
	// RebuildGrowthFactor triggers index rebuilds after growth past this
	// multiple of the size at last build.
	RebuildGrowthFactor float64 `yaml:"rebuild_growth_factor"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8018"},
		Storage: StorageConfig{Path: "corpusdb.sqlite"},
		Embeddings: EmbeddingsConfig{
			Provider:   "static",
			Dimensions: embed.DefaultDimensions,
			CacheSize:  embed.DefaultCacheSize,
		},
		Index: IndexConfig{
			Types:               []string{index.TypeLinear, index.TypeBallTree, index.TypeKDTree, index.TypeHNSW},
			LeafSize:            index.DefaultLeafSize,
			RebuildGrowthFactor: index.DefaultRebuildGrowthFactor,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path (when non-empty), layered over the
// defaults, then applies environment overrides and validates. A missing
// explicit path is an error; path "" just means defaults + env.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.New(errors.ErrCodeConfigNotFound, "config file "+path, err)
			}
			return nil, errors.New(errors.ErrCodeConfigInvalid, "read config "+path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New(errors.ErrCodeConfigInvalid, "parse config "+path, err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies CORPUSDB_* environment variable overrides.
// Env vars win over both defaults and the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CORPUSDB_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CORPUSDB_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("CORPUSDB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CORPUSDB_INDEX_TYPES"); v != "" {
		var types []string
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				types = append(types, name)
			}
		}
		c.Index.Types = types
	}
	if v := os.Getenv("CORPUSDB_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Embeddings.Dimensions = n
		}
	}
}

// Validate checks invariants that would otherwise surface as runtime
// failures deep in the stack.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "server.addr must not be empty", nil)
	}
	if c.Embeddings.Provider != "static" {
		return errors.Newf(errors.ErrCodeConfigInvalid, "unknown embeddings provider %q", c.Embeddings.Provider)
	}
	if c.Embeddings.Dimensions <= 0 {
		return errors.Newf(errors.ErrCodeConfigInvalid, "embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}
	if len(c.Index.Types) == 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "index.types must name at least one index", nil)
	}
	known := []string{index.TypeLinear, index.TypeBallTree, index.TypeKDTree, index.TypeHNSW}
	for _, name := range c.Index.Types {
		if !slices.Contains(known, name) {
			return errors.Newf(errors.ErrCodeConfigInvalid,
				"unknown index type %q (known: %s)", name, strings.Join(known, ", "))
		}
	}
	if c.Index.LeafSize < 1 {
		return errors.Newf(errors.ErrCodeConfigInvalid, "index.leaf_size must be at least 1, got %d", c.Index.LeafSize)
	}
	if f := c.Index.RebuildGrowthFactor; f != 0 && f <= 1 {
		return errors.Newf(errors.ErrCodeConfigInvalid,
			"index.rebuild_growth_factor must be above 1 (or 0 to disable), got %s",
			strconv.FormatFloat(f, 'g', -1, 64))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return errors.Newf(errors.ErrCodeConfigInvalid, "logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// ManagerConfig derives the index manager configuration.
func (c *Config) ManagerConfig() index.ManagerConfig {
	return index.ManagerConfig{
		Types:               c.Index.Types,
		Dimensions:          c.Embeddings.Dimensions,
		LeafSize:            c.Index.LeafSize,
		RebuildGrowthFactor: c.Index.RebuildGrowthFactor,
	}
}

// String renders the effective configuration for startup logging,
// YAML-formatted.
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config{%v}", err)
	}
	return string(out)
}
