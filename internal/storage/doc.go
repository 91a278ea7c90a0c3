// Package storage provides the namespaced key-value cache used to skip
// repeated evaluations.
//
// Keys are content fingerprints and values are opaque strings. The key
// space is split into the namespaces listed by types.AllNamespaces; each
// persistent backend keeps one table per namespace.
//
// # Backends
//
//   - SQLiteStorage: local database file, the default. The driver is chosen
//     at build time (modernc.org/sqlite by default, mattn/go-sqlite3 with the
//     sqlite_cgo tag).
//   - PostgresStorage: shared database via pgx, selected by a postgres:// DSN.
//   - MemoryStorage: process-local map, used by tests.
//   - LRUStore: in-memory front for any of the above.
//
// # Basic Usage
//
//	store, err := storage.Open(ctx, "results.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.Store(ctx, types.NamespaceChunkResult, key, payload)
//	value, found, err := store.Lookup(ctx, types.NamespaceChunkResult, key)
//
// A missing key is not an error. Backend failures wrap
// types.ErrStoreFailure:
//
//	if errors.Is(err, types.ErrStoreFailure) {
//	    // abort the run
//	}
//
// # Schema
//
// SQLite schema changes are tracked in the schema_version table and applied
// in order by ApplyMigrations. Versions are compared with semver.
package storage
