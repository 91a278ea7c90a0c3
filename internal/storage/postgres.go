package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dshills/gocodequality/pkg/types"
)

// PostgresStorage implements CacheStore on a shared Postgres database so
// several machines can reuse each other's results. Namespace tables are
// created on first use.
type PostgresStorage struct {
	pool *pgxpool.Pool

	mu     sync.Mutex
	tables map[types.Namespace]bool
}

// NewPostgresStorage connects to the database at connString
func NewPostgresStorage(ctx context.Context, connString string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStorage{
		pool:   pool,
		tables: make(map[types.Namespace]bool),
	}, nil
}

// ensureTable creates the namespace table once per process
func (s *PostgresStorage) ensureTable(ctx context.Context, ns types.Namespace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tables[ns] {
		return nil
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, ns.Table())

	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return storeFailure("create table", ns, err)
	}

	s.tables[ns] = true
	return nil
}

func (s *PostgresStorage) Store(ctx context.Context, ns types.Namespace, key, value string) error {
	if err := checkNamespace(ns); err != nil {
		return err
	}
	if err := s.ensureTable(ctx, ns); err != nil {
		return err
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`, ns.Table())

	if _, err := s.pool.Exec(ctx, stmt, key, value); err != nil {
		return storeFailure("store", ns, err)
	}
	return nil
}

func (s *PostgresStorage) Lookup(ctx context.Context, ns types.Namespace, key string) (string, bool, error) {
	if err := checkNamespace(ns); err != nil {
		return "", false, err
	}
	if err := s.ensureTable(ctx, ns); err != nil {
		return "", false, err
	}

	var value string
	err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT value FROM %s WHERE key = $1", ns.Table()), key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeFailure("lookup", ns, err)
	}
	return value, true, nil
}

// Stats counts the entries in each namespace
func (s *PostgresStorage) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{Backend: "postgres", Entries: make(map[types.Namespace]int)}

	for _, ns := range types.AllNamespaces() {
		if err := s.ensureTable(ctx, ns); err != nil {
			return nil, err
		}
		var count int
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+ns.Table()).Scan(&count); err != nil {
			return nil, storeFailure("count", ns, err)
		}
		stats.Entries[ns] = count
	}

	return stats, nil
}

func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}
