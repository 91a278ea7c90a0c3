package evaluator

import (
	"context"
	"strings"
	"sync"
)

// DefaultOpenAIModel is used when no preferred model is listed
const DefaultOpenAIModel = "gpt-3.5-turbo"

// modelSelector resolves the chat model once per evaluator. It is owned by
// a single client, never shared between clients, and safe for concurrent
// use.
type modelSelector struct {
	mu       sync.Mutex
	model    string
	list     func(ctx context.Context) ([]string, error)
	fallback string
}

// fixedModel returns a selector that never lists models
func fixedModel(model string) *modelSelector {
	return &modelSelector{model: model}
}

// Select returns the memoized model, listing available models on first use.
// A listing failure is returned and nothing is memoized.
func (s *modelSelector) Select(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model != "" {
		return s.model, nil
	}

	ids, err := s.list(ctx)
	if err != nil {
		return "", err
	}

	s.model = pickBestModel(ids, s.fallback)
	return s.model, nil
}

// pickBestModel returns the first gpt-3.5 chat model that is not a long
// context variant, or fallback
func pickBestModel(ids []string, fallback string) string {
	for _, id := range ids {
		if !strings.HasPrefix(id, "gpt-3.5-") {
			continue
		}
		if strings.Contains(id, "32k") || strings.Contains(id, "16k") {
			continue
		}
		return id
	}
	return fallback
}
