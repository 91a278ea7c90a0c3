package evaluator

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/gocodequality/internal/logger"
	"github.com/dshills/gocodequality/internal/storage"
	"github.com/dshills/gocodequality/pkg/types"
)

// Config holds evaluator configuration
type Config struct {
	Backend           string
	APIKey            string
	BaseURL           string
	Model             string
	MaxTokens         int
	Temperature       float64
	Retry             RetryConfig
	RequestsPerSecond float64
}

// New creates a ChatEvaluator for the configured backend. store may be nil
// to disable the raw response cache.
func New(cfg Config, template *PromptTemplate, store storage.CacheStore, log *logger.Logger) (*ChatEvaluator, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig()
	}

	opts := []Option{
		WithTemperature(cfg.Temperature),
		WithRetry(retry),
		WithRateLimit(cfg.RequestsPerSecond),
		WithLogger(log),
	}
	if store != nil {
		opts = append(opts, WithStore(store))
	}

	return NewChatEvaluator(client, template, opts...)
}

func newClient(cfg Config) (ChatClient, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendOpenAI:
		return NewOpenAIClient(OpenAIConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model})
	case BackendAnthropic:
		return NewAnthropicClient(AnthropicConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			MaxTokens: int64(cfg.MaxTokens),
		})
	case BackendOllama:
		return NewOllamaClient(OllamaConfig{Model: cfg.Model, BaseURL: cfg.BaseURL})
	case BackendMock:
		return &MockClient{}, nil
	default:
		return nil, fmt.Errorf("%w: %w %q", types.ErrConfiguration, ErrUnknownBackend, cfg.Backend)
	}
}

// NewFromEnv creates an evaluator based on environment variables
// Priority:
// 1. GOCODEQUALITY_EVALUATOR (openai, anthropic, ollama, mock)
// 2. Check for API keys: OPENAI_API_KEY, ANTHROPIC_API_KEY
func NewFromEnv(template *PromptTemplate, store storage.CacheStore, log *logger.Logger) (*ChatEvaluator, error) {
	backend := DetectBackend()
	if backend == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY, ANTHROPIC_API_KEY or GOCODEQUALITY_EVALUATOR", types.ErrMissingAPIKey)
	}

	cfg := Config{
		Backend: backend,
		APIKey:  APIKeyFromEnv(backend),
		Model:   os.Getenv("GOCODEQUALITY_MODEL"),
	}
	if backend == BackendOllama {
		cfg.BaseURL = os.Getenv("OLLAMA_HOST")
	}

	return New(cfg, template, store, log)
}

// DetectBackend returns the backend that NewFromEnv would use, or "" when
// none can be determined
func DetectBackend() string {
	if backend := os.Getenv("GOCODEQUALITY_EVALUATOR"); backend != "" {
		return strings.ToLower(backend)
	}

	if os.Getenv("OPENAI_API_KEY") != "" {
		return BackendOpenAI
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return BackendAnthropic
	}

	return ""
}

// APIKeyFromEnv returns the API key variable for backend
func APIKeyFromEnv(backend string) string {
	switch backend {
	case BackendOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case BackendAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}
