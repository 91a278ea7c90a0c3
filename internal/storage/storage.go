package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/gocodequality/pkg/types"
)

// CacheStore is a namespaced key-value store for evaluation results.
//
// Store is an idempotent upsert where the last write wins. Lookup reports
// found=false for a missing key and returns an error only for a genuine
// backend failure. Errors wrap types.ErrStoreFailure, or
// types.ErrUnknownNamespace for a namespace outside the closed set.
type CacheStore interface {
	Store(ctx context.Context, ns types.Namespace, key, value string) error
	Lookup(ctx context.Context, ns types.Namespace, key string) (string, bool, error)
	Close() error
}

// CacheStats reports the number of entries per namespace
type CacheStats struct {
	Backend string
	Entries map[types.Namespace]int
}

// Total returns the number of entries across all namespaces
func (s *CacheStats) Total() int {
	total := 0
	for _, n := range s.Entries {
		total += n
	}
	return total
}

// StatsProvider is implemented by stores that can count their entries
type StatsProvider interface {
	Stats(ctx context.Context) (*CacheStats, error)
}

// MemoryDSN opens an in-memory SQLite store
const MemoryDSN = ":memory:"

// Open returns the store for dsn. Postgres URLs open a PostgresStorage,
// anything else is treated as a SQLite database path.
func Open(ctx context.Context, dsn string) (CacheStore, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgresStorage(ctx, dsn)
	case dsn == "":
		return nil, fmt.Errorf("%w: cache database path is required", types.ErrConfiguration)
	default:
		return NewSQLiteStorage(dsn)
	}
}

func checkNamespace(ns types.Namespace) error {
	if !ns.Valid() {
		return fmt.Errorf("%w: %q", types.ErrUnknownNamespace, ns)
	}
	return nil
}

func storeFailure(op string, ns types.Namespace, err error) error {
	return fmt.Errorf("%w: %s %s: %w", types.ErrStoreFailure, op, ns, err)
}

var errClosed = errors.New("store is closed")
