// Package app wires the cache, evaluator, dispatcher and analyzer from a
// loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/gocodequality/internal/analyzer"
	"github.com/dshills/gocodequality/internal/config"
	"github.com/dshills/gocodequality/internal/dispatcher"
	"github.com/dshills/gocodequality/internal/evaluator"
	"github.com/dshills/gocodequality/internal/logger"
	"github.com/dshills/gocodequality/internal/storage"
	"github.com/dshills/gocodequality/pkg/types"
)

// App holds the application components sharing one cache
type App struct {
	Config     *config.Config
	Store      storage.CacheStore
	Evaluator  *evaluator.ChatEvaluator
	Dispatcher *dispatcher.Dispatcher
	Analyzer   *analyzer.Analyzer
	Log        *logger.Logger
}

// New validates cfg and builds the components. The caller must Close the
// returned App.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	log = logger.OrNop(log)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Evaluator.Backend == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY, ANTHROPIC_API_KEY or choose an evaluator backend", types.ErrMissingAPIKey)
	}

	template, err := evaluator.LoadPromptTemplate(cfg.Evaluator.PromptPath)
	if err != nil {
		return nil, err
	}

	// Initialize storage
	store, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Create evaluator
	ev, err := evaluator.New(cfg.EvaluatorConfig(), template, store, component(log, "evaluator"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	d := dispatcher.New(ev, store,
		dispatcher.WithWriteThrough(cfg.Cache.WriteThrough),
		dispatcher.WithLogger(component(log, "dispatcher")),
	)

	return &App{
		Config:     cfg,
		Store:      store,
		Evaluator:  ev,
		Dispatcher: d,
		Analyzer:   analyzer.New(d, component(log, "analyzer")),
		Log:        log,
	}, nil
}

// Close releases the cache
func (a *App) Close() error {
	return a.Store.Close()
}

// Stats returns cache statistics when the store provides them
func (a *App) Stats(ctx context.Context) (*storage.CacheStats, error) {
	sp, ok := a.Store.(storage.StatsProvider)
	if !ok {
		return nil, errors.ErrUnsupported
	}
	return sp.Stats(ctx)
}

// openStore opens the configured cache, fronted by an LRU when lru_size is set
func openStore(ctx context.Context, cfg config.CacheConfig) (storage.CacheStore, error) {
	store, err := storage.Open(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}
	if cfg.LRUSize <= 0 {
		return store, nil
	}

	lru, err := storage.NewLRUStore(store, cfg.LRUSize)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return lru, nil
}

func component(log *logger.Logger, name string) *logger.Logger {
	l := log.With().Str("component", name).Logger()
	return &l
}
