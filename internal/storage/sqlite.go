package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/gocodequality/pkg/types"
)

// SQLiteStorage implements CacheStore with one table per namespace
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Single connection: serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage opens (or creates) the database at dbPath and applies
// pending migrations
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Store upserts value under key
func (s *SQLiteStorage) Store(ctx context.Context, ns types.Namespace, key, value string) error {
	if err := checkNamespace(ns); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, ns.Table())

	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return storeFailure("store", ns, err)
	}
	return nil
}

// Lookup returns the value stored under key
func (s *SQLiteStorage) Lookup(ctx context.Context, ns types.Namespace, key string) (string, bool, error) {
	if err := checkNamespace(ns); err != nil {
		return "", false, err
	}

	query := fmt.Sprintf("SELECT value FROM %s WHERE key = ?", ns.Table())

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeFailure("lookup", ns, err)
	}
	return value, true, nil
}

// Delete removes key from the namespace. Deleting a missing key is not an error.
func (s *SQLiteStorage) Delete(ctx context.Context, ns types.Namespace, key string) error {
	if err := checkNamespace(ns); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE key = ?", ns.Table())
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return storeFailure("delete", ns, err)
	}
	return nil
}

// Clear removes every entry in the namespace
func (s *SQLiteStorage) Clear(ctx context.Context, ns types.Namespace) error {
	if err := checkNamespace(ns); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+ns.Table()); err != nil {
		return storeFailure("clear", ns, err)
	}
	return nil
}

// Stats counts the entries in each namespace
func (s *SQLiteStorage) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{
		Backend: "sqlite/" + BuildMode,
		Entries: make(map[types.Namespace]int),
	}

	for _, ns := range types.AllNamespaces() {
		var count int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+ns.Table()).Scan(&count); err != nil {
			return nil, storeFailure("count", ns, err)
		}
		stats.Entries[ns] = count
	}

	return stats, nil
}
