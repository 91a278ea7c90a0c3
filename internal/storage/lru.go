package storage

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/gocodequality/pkg/types"
)

// DefaultLRUSize is the default number of entries kept in memory
const DefaultLRUSize = 4096

type lruKey struct {
	ns  types.Namespace
	key string
}

// LRUStore keeps recently used entries of a backing store in memory.
// Reads are served from memory when possible, writes go to both. Only
// successful backend operations populate the cache.
type LRUStore struct {
	backend CacheStore
	cache   *lru.Cache[lruKey, string]
}

// NewLRUStore wraps backend with an in-memory cache of size entries
func NewLRUStore(backend CacheStore, size int) (*LRUStore, error) {
	if size <= 0 {
		size = DefaultLRUSize
	}

	cache, err := lru.New[lruKey, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	return &LRUStore{backend: backend, cache: cache}, nil
}

func (s *LRUStore) Store(ctx context.Context, ns types.Namespace, key, value string) error {
	if err := s.backend.Store(ctx, ns, key, value); err != nil {
		return err
	}
	s.cache.Add(lruKey{ns, key}, value)
	return nil
}

func (s *LRUStore) Lookup(ctx context.Context, ns types.Namespace, key string) (string, bool, error) {
	if value, ok := s.cache.Get(lruKey{ns, key}); ok {
		return value, true, nil
	}

	value, found, err := s.backend.Lookup(ctx, ns, key)
	if err != nil || !found {
		return "", false, err
	}

	s.cache.Add(lruKey{ns, key}, value)
	return value, true, nil
}

// Len returns the number of entries held in memory
func (s *LRUStore) Len() int {
	return s.cache.Len()
}

// Stats delegates to the backing store when it can report statistics
func (s *LRUStore) Stats(ctx context.Context) (*CacheStats, error) {
	if sp, ok := s.backend.(StatsProvider); ok {
		return sp.Stats(ctx)
	}
	return nil, fmt.Errorf("%w: backend does not report statistics", types.ErrStoreFailure)
}

func (s *LRUStore) Close() error {
	s.cache.Purge()
	return s.backend.Close()
}
