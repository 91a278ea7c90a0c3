package evaluator

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/dshills/gocodequality/internal/logger"
	"github.com/dshills/gocodequality/internal/storage"
	"github.com/dshills/gocodequality/pkg/types"
)

// MaxTemperature is the highest sampling temperature accepted
const MaxTemperature = 2.0

// ChatEvaluator evaluates chunks by rendering a prompt template, sending it
// to a chat model and extracting the JSON object from the reply.
//
// Raw replies are cached in the raw_api_response namespace, keyed by the
// transcript fingerprint, but only at temperature 0 where replies are
// reproducible. This cache is independent of the chunk result cache kept
// by the dispatcher.
type ChatEvaluator struct {
	client      ChatClient
	template    *PromptTemplate
	store       storage.CacheStore
	temperature float64
	retry       RetryConfig
	limiter     *rate.Limiter
	log         *logger.Logger
}

// Option configures a ChatEvaluator
type Option func(*ChatEvaluator)

// WithStore enables the raw response cache
func WithStore(store storage.CacheStore) Option {
	return func(e *ChatEvaluator) { e.store = store }
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float64) Option {
	return func(e *ChatEvaluator) { e.temperature = t }
}

// WithRetry overrides the retry policy
func WithRetry(config RetryConfig) Option {
	return func(e *ChatEvaluator) { e.retry = config }
}

// WithRateLimit paces model calls to at most rps per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(e *ChatEvaluator) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			e.limiter = nil
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(e *ChatEvaluator) { e.log = l }
}

// NewChatEvaluator creates an evaluator that talks to client
func NewChatEvaluator(client ChatClient, template *PromptTemplate, opts ...Option) (*ChatEvaluator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: chat client is required", types.ErrConfiguration)
	}
	if template == nil {
		return nil, types.ErrMissingCodePlaceholder
	}

	e := &ChatEvaluator{
		client:   client,
		template: template,
		retry:    DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.temperature < 0 || e.temperature > MaxTemperature {
		return nil, fmt.Errorf("%w: temperature must be within [0, %g], got %g", types.ErrConfiguration, MaxTemperature, e.temperature)
	}
	e.log = logger.OrNop(e.log)

	return e, nil
}

// Backend returns the name of the underlying chat client
func (e *ChatEvaluator) Backend() string {
	return e.client.Name()
}

// Temperature returns the sampling temperature
func (e *ChatEvaluator) Temperature() float64 {
	return e.temperature
}

// Evaluate implements Evaluator
func (e *ChatEvaluator) Evaluate(ctx context.Context, chunk types.Chunk) (types.EvaluationResult, error) {
	prompt := e.template.Render(chunk.Code)
	key := prompt.CacheKey()
	log := logger.C(ctx, e.log)

	if e.cacheable() {
		raw, found, err := e.store.Lookup(ctx, types.NamespaceRawAPIResponse, key)
		if err != nil {
			return types.EvaluationResult{}, err
		}
		if found {
			log.Debug().Str("key", key).Msg("raw response cache hit")
			return ExtractJSON(raw), nil
		}
	}

	messages := prompt.Messages()
	raw, err := retryFixed(ctx, e.retry, log, func() (string, error) {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		return e.client.Complete(ctx, messages, e.temperature)
	})
	if err != nil {
		if errors.Is(err, types.ErrServiceUnavailable) || ctx.Err() != nil {
			return types.EvaluationResult{}, err
		}
		return types.EvaluationResult{}, fmt.Errorf("%s evaluation failed: %w", e.client.Name(), err)
	}

	if e.cacheable() {
		if err := e.store.Store(ctx, types.NamespaceRawAPIResponse, key, raw); err != nil {
			return types.EvaluationResult{}, err
		}
	}

	result := ExtractJSON(raw)
	if !result.Success {
		log.Warn().
			Int("start_line", chunk.StartLine).
			Int("end_line", chunk.EndLine).
			Msg("no JSON object in model reply")
	}
	return result, nil
}

func (e *ChatEvaluator) cacheable() bool {
	return e.store != nil && e.temperature == 0
}
