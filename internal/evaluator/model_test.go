package evaluator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickBestModel(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		expected string
	}{
		{"first eligible", []string{"gpt-4", "gpt-3.5-turbo-16k", "gpt-3.5-turbo", "gpt-3.5-turbo-0613"}, "gpt-3.5-turbo"},
		{"skips 32k", []string{"gpt-3.5-turbo-32k", "gpt-3.5-turbo-1106"}, "gpt-3.5-turbo-1106"},
		{"none eligible", []string{"gpt-4o", "text-embedding-3-small"}, "fallback"},
		{"empty", nil, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pickBestModel(tt.ids, "fallback"))
		})
	}
}

func TestModelSelector_Memoizes(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	s := &modelSelector{
		list: func(context.Context) ([]string, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			return []string{"gpt-3.5-turbo"}, nil
		},
		fallback: DefaultOpenAIModel,
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			model, err := s.Select(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "gpt-3.5-turbo", model)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
}

func TestModelSelector_ListFailureNotMemoized(t *testing.T) {
	fail := true
	s := &modelSelector{
		list: func(context.Context) ([]string, error) {
			if fail {
				return nil, errors.New("unavailable")
			}
			return []string{"gpt-3.5-turbo-0125"}, nil
		},
		fallback: DefaultOpenAIModel,
	}

	_, err := s.Select(context.Background())
	require.Error(t, err)

	fail = false
	model, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo-0125", model)
}

func TestModelSelector_PerInstance(t *testing.T) {
	a := &modelSelector{list: func(context.Context) ([]string, error) { return []string{"gpt-3.5-a"}, nil }}
	b := &modelSelector{list: func(context.Context) ([]string, error) { return []string{"gpt-3.5-b"}, nil }}

	ma, err := a.Select(context.Background())
	require.NoError(t, err)
	mb, err := b.Select(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "gpt-3.5-a", ma)
	assert.Equal(t, "gpt-3.5-b", mb)
	assert.Equal(t, "fixed", fixedModel("fixed").model)
}
