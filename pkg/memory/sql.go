package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

// Dialect names the database/sql driver behind SQLStore
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const storageTable = "shopeasy_storage"

const createTableSQL = `CREATE TABLE IF NOT EXISTS ` + storageTable + ` (
	item_key TEXT PRIMARY KEY,
	item_value TEXT NOT NULL,
	expires_at BIGINT NOT NULL DEFAULT 0
)`

const (
	selectSQL = `SELECT item_value, expires_at FROM ` + storageTable + ` WHERE item_key = ?`
	upsertSQL = `INSERT INTO ` + storageTable + ` (item_key, item_value, expires_at) VALUES (?, ?, ?)
ON CONFLICT (item_key) DO UPDATE SET item_value = excluded.item_value, expires_at = excluded.expires_at`
	deleteSQL = `DELETE FROM ` + storageTable + ` WHERE item_key = ?`
)

type storageRow struct {
	Value     string `db:"item_value"`
	ExpiresAt int64  `db:"expires_at"`
}

// SQLStore persists records in a single key-value table. It serves both the
// embedded SQLite file used by the CLI and a shared Postgres database.
type SQLStore struct {
	db        *sqlx.DB
	namespace string
	now       func() time.Time
}

// OpenSQLStore opens the database for dialect and ensures the table exists
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn, namespace string) (*SQLStore, error) {
	if dsn == "" {
		return nil, storageErr("open", "", errors.New("dsn is required"))
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, storageErr("open", "", err)
	}
	store, err := NewSQLStore(ctx, db, dialect, namespace)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open database and runs the table migration
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, namespace string) (*SQLStore, error) {
	if namespace == "" {
		namespace = "shopeasy"
	}
	s := &SQLStore{
		db:        sqlx.NewDb(db, string(dialect)),
		namespace: namespace,
		now:       time.Now,
	}
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, storageErr("open", "", fmt.Errorf("migrate %s: %w", storageTable, err))
	}
	return s, nil
}

// Get retrieves a value by key, treating expired rows as missing
func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var row storageRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(selectSQL), s.buildKey(key)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storageErr("get", key, ErrKeyNotFound)
		}
		return "", storageErr("get", key, err)
	}
	if row.ExpiresAt > 0 && s.now().UnixMilli() >= row.ExpiresAt {
		if _, err := s.db.ExecContext(ctx, s.db.Rebind(deleteSQL), s.buildKey(key)); err != nil {
			return "", storageErr("get", key, err)
		}
		return "", storageErr("get", key, ErrKeyNotFound)
	}
	return row.Value, nil
}

// Set upserts a record
func (s *SQLStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixMilli()
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(upsertSQL), s.buildKey(key), value, expiresAt); err != nil {
		return storageErr("set", key, err)
	}
	return nil
}

// Delete removes a key
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(deleteSQL), s.buildKey(key)); err != nil {
		return storageErr("delete", key, err)
	}
	return nil
}

// Exists checks if a live record exists
func (s *SQLStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		se.Op = "exists"
	}
	return false, err
}

// Close closes the database handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) buildKey(key string) string {
	return s.namespace + ":" + key
}
