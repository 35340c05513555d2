package memory

import (
	"context"
	"time"
)

// Memory is the durable key-value store that backs client-side state such as
// the shopping cart and the cached auth session. Values are opaque strings;
// callers own serialization.
type Memory interface {
	// Get returns the stored value or an error wrapping ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A zero ttl means the record never expires.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// Provider names a storage backend
type Provider string

const (
	ProviderInMemory Provider = "inmemory"
	ProviderRedis    Provider = "redis"
	ProviderSQLite   Provider = "sqlite"
	ProviderPostgres Provider = "postgres"
)

// Config selects and configures a backend for Open
type Config struct {
	Provider  Provider `json:"provider" yaml:"provider"`
	RedisURL  string   `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	DSN       string   `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Namespace string   `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	// QuotaBytes bounds the in-memory backend; 0 disables the limit.
	QuotaBytes int `json:"quota_bytes,omitempty" yaml:"quota_bytes,omitempty"`
}
