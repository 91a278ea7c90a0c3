package storage

import (
	"context"
	"sync"

	"github.com/dshills/gocodequality/pkg/types"
)

// MemoryStorage is a process-local CacheStore. Contents are lost on exit.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[types.Namespace]map[string]string
	closed  bool
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	entries := make(map[types.Namespace]map[string]string)
	for _, ns := range types.AllNamespaces() {
		entries[ns] = make(map[string]string)
	}
	return &MemoryStorage{entries: entries}
}

func (m *MemoryStorage) Store(ctx context.Context, ns types.Namespace, key, value string) error {
	if err := checkNamespace(ns); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return storeFailure("store", ns, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storeFailure("store", ns, errClosed)
	}
	m.entries[ns][key] = value
	return nil
}

func (m *MemoryStorage) Lookup(ctx context.Context, ns types.Namespace, key string) (string, bool, error) {
	if err := checkNamespace(ns); err != nil {
		return "", false, err
	}
	if err := ctx.Err(); err != nil {
		return "", false, storeFailure("lookup", ns, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, storeFailure("lookup", ns, errClosed)
	}
	value, ok := m.entries[ns][key]
	return value, ok, nil
}

func (m *MemoryStorage) Stats(_ context.Context) (*CacheStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &CacheStats{Backend: "memory", Entries: make(map[types.Namespace]int)}
	for ns, entries := range m.entries {
		stats.Entries[ns] = len(entries)
	}
	return stats, nil
}

func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
