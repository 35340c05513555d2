// Package memory provides the durable key-value storage that holds
// client-side state: the serialized shopping cart and the cached auth
// session.
//
// # Memory Interface
//
//	type Memory interface {
//	    Get(ctx context.Context, key string) (string, error)
//	    Set(ctx context.Context, key, value string, ttl time.Duration) error
//	    Delete(ctx context.Context, key string) error
//	    Exists(ctx context.Context, key string) (bool, error)
//	    Close() error
//	}
//
// Values are opaque strings. A zero TTL stores the record without expiry.
// Every failure is reported as a *StorageError; a missing key wraps
// ErrKeyNotFound.
//
// # Backends
//
// In-Memory (inmemory):
//   - Process-local, thread-safe
//   - Optional byte quota that fails writes with ErrQuotaExceeded
//
// Redis (redis):
//   - Namespaced keys ("<namespace>:<key>")
//   - Native TTL support
//
// SQL (sqlite, postgres):
//   - Single table shopeasy_storage(item_key, item_value, expires_at)
//   - SQLite via modernc.org/sqlite (no cgo), Postgres via lib/pq
//
// Use Open to select a backend from configuration:
//
//	store, err := memory.Open(ctx, memory.Config{
//	    Provider: memory.ProviderSQLite,
//	    DSN:      "file:shopeasy.db",
//	})
package memory
