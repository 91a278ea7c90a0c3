package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/gocodequality/internal/analyzer"
	"github.com/dshills/gocodequality/internal/chunker"
	"github.com/dshills/gocodequality/internal/evaluator"
	"github.com/dshills/gocodequality/pkg/types"
)

const (
	// FileName is looked up in the working directory
	FileName = "gocodequality.yaml"

	// DefaultDBName is the cache database created in the home directory
	DefaultDBName = "gocodequality.db"

	// DefaultPromptPath is the prompt template read when none is configured
	DefaultPromptPath = "prompt.txt"
)

// Config is the complete application configuration
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Cache     CacheConfig     `yaml:"cache"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	Log       LogConfig       `yaml:"log"`
}

// ChunkingConfig controls how documents are partitioned
type ChunkingConfig struct {
	SoftLimit    int     `yaml:"soft_limit" validate:"gte=1"`
	HardLimit    int     `yaml:"hard_limit" validate:"gtefield=SoftLimit"`
	AllowOverlap bool    `yaml:"allow_overlap"`
	OverlapRatio float64 `yaml:"overlap_ratio" validate:"gte=0,lte=1"`
}

// EvaluatorConfig selects and tunes the model backend
type EvaluatorConfig struct {
	Backend           string        `yaml:"backend" validate:"omitempty,oneof=openai anthropic ollama mock"`
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url" validate:"omitempty,url"`
	Model             string        `yaml:"model"`
	MaxTokens         int           `yaml:"max_tokens" validate:"gte=0"`
	Temperature       float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	PromptPath        string        `yaml:"prompt" validate:"required"`
	MaxAttempts       int           `yaml:"max_attempts" validate:"gte=1"`
	RetryDelay        time.Duration `yaml:"retry_delay" validate:"gte=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
}

// CacheConfig locates the result cache
type CacheConfig struct {
	Path         string `yaml:"path" validate:"required"` // SQLite file, ":memory:" or postgres:// URL
	LRUSize      int    `yaml:"lru_size" validate:"gte=0"`
	WriteThrough bool   `yaml:"write_through"`
}

// AnalyzerConfig controls folder analysis
type AnalyzerConfig struct {
	Pattern string `yaml:"pattern" validate:"required"`
	Exclude string `yaml:"exclude"`
	Workers int    `yaml:"workers" validate:"gte=1"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Load reads configuration from path. When path is empty the default
// locations are tried in order: ./gocodequality.yaml, then
// ~/.config/gocodequality/config.yaml. Without a file, defaults are used.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = findConfigFile()
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: error parsing config file %s: %w", types.ErrConfiguration, path, err)
		}
	}

	// Merge with environment variables
	mergeWithEnv(cfg)

	// Apply defaults for unset values
	applyDefaults(cfg)

	cfg.Cache.Path = expandHome(cfg.Cache.Path)
	cfg.Evaluator.PromptPath = expandHome(cfg.Evaluator.PromptPath)

	return cfg, nil
}

// Default returns the configuration used without a file
func Default() *Config {
	cfg := &Config{}
	mergeWithEnv(cfg)
	applyDefaults(cfg)
	return cfg
}

func findConfigFile() string {
	locations := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "gocodequality", "config.yaml"))
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// decode rejects unknown keys so typos surface as errors
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Chunking.SoftLimit == 0 {
		cfg.Chunking.SoftLimit = chunker.DefaultSoftLimit
	}
	if cfg.Chunking.HardLimit == 0 {
		cfg.Chunking.HardLimit = analyzer.DefaultHardLimit
	}
	if cfg.Chunking.OverlapRatio == 0 {
		cfg.Chunking.OverlapRatio = analyzer.DefaultOverlapRatio
	}

	if cfg.Evaluator.Backend == "" {
		cfg.Evaluator.Backend = evaluator.DetectBackend()
	}
	if cfg.Evaluator.APIKey == "" {
		cfg.Evaluator.APIKey = evaluator.APIKeyFromEnv(cfg.Evaluator.Backend)
	}
	if cfg.Evaluator.PromptPath == "" {
		cfg.Evaluator.PromptPath = DefaultPromptPath
	}
	if cfg.Evaluator.MaxAttempts == 0 {
		cfg.Evaluator.MaxAttempts = evaluator.DefaultMaxAttempts
	}
	if cfg.Evaluator.RetryDelay == 0 {
		cfg.Evaluator.RetryDelay = evaluator.DefaultRetryDelay
	}

	if cfg.Cache.Path == "" {
		cfg.Cache.Path = DefaultDBPath()
	}

	if cfg.Analyzer.Pattern == "" {
		cfg.Analyzer.Pattern = analyzer.DefaultPattern
	}
	if cfg.Analyzer.Exclude == "" {
		cfg.Analyzer.Exclude = analyzer.DefaultExclude
	}
	if cfg.Analyzer.Workers == 0 {
		cfg.Analyzer.Workers = runtime.NumCPU()
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

func mergeWithEnv(cfg *Config) {
	if backend := os.Getenv("GOCODEQUALITY_EVALUATOR"); backend != "" {
		cfg.Evaluator.Backend = backend
	}
	if dbPath := os.Getenv("GOCODEQUALITY_DB_PATH"); dbPath != "" {
		cfg.Cache.Path = dbPath
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
}

// expandHome replaces a leading ~/ with the user's home directory
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// DefaultDBPath returns the cache database path in the user's home
// directory, or in the working directory when there is no home
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultDBName
	}
	return filepath.Join(home, DefaultDBName)
}

// ChunkerSettings returns the chunking settings
func (c *Config) ChunkerSettings() chunker.Settings {
	return chunker.Settings{
		SoftLimit:    c.Chunking.SoftLimit,
		HardLimit:    c.Chunking.HardLimit,
		AllowOverlap: c.Chunking.AllowOverlap,
		OverlapRatio: c.Chunking.OverlapRatio,
	}
}

// EvaluatorConfig returns the evaluator factory configuration
func (c *Config) EvaluatorConfig() evaluator.Config {
	return evaluator.Config{
		Backend:     c.Evaluator.Backend,
		APIKey:      c.Evaluator.APIKey,
		BaseURL:     c.Evaluator.BaseURL,
		Model:       c.Evaluator.Model,
		MaxTokens:   c.Evaluator.MaxTokens,
		Temperature: c.Evaluator.Temperature,
		Retry: evaluator.RetryConfig{
			MaxAttempts: c.Evaluator.MaxAttempts,
			Delay:       c.Evaluator.RetryDelay,
		},
		RequestsPerSecond: c.Evaluator.RequestsPerSecond,
	}
}

// AnalyzerConfig returns the folder analysis configuration
func (c *Config) AnalyzerConfig() *analyzer.Config {
	return &analyzer.Config{
		Pattern:  c.Analyzer.Pattern,
		Exclude:  c.Analyzer.Exclude,
		Workers:  c.Analyzer.Workers,
		Settings: c.ChunkerSettings(),
	}
}
