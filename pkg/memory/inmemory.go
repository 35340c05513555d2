package memory

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps records in process memory. An optional byte quota
// models the limited capacity of browser-style local storage.
type InMemoryStore struct {
	data       map[string]valueWithExpiry
	quotaBytes int
	usedBytes  int
	now        func() time.Time
	mu         sync.RWMutex
}

type valueWithExpiry struct {
	value  string
	expiry time.Time // zero means no expiry
}

// InMemoryOption configures an InMemoryStore
type InMemoryOption func(*InMemoryStore)

// WithQuota caps the total size of keys and values in bytes
func WithQuota(bytes int) InMemoryOption {
	return func(m *InMemoryStore) {
		m.quotaBytes = bytes
	}
}

// WithClock overrides the time source used for expiry
func WithClock(now func() time.Time) InMemoryOption {
	return func(m *InMemoryStore) {
		m.now = now
	}
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore(opts ...InMemoryOption) *InMemoryStore {
	m := &InMemoryStore{
		data: make(map[string]valueWithExpiry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Set stores a key-value pair with TTL
func (m *InMemoryStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return storageErr("set", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.usedBytes
	if old, ok := m.data[key]; ok {
		used -= len(key) + len(old.value)
	}
	used += len(key) + len(value)
	if m.quotaBytes > 0 && used > m.quotaBytes {
		return storageErr("set", key, ErrQuotaExceeded)
	}

	entry := valueWithExpiry{value: value}
	if ttl > 0 {
		entry.expiry = m.now().Add(ttl)
	}
	m.data[key] = entry
	m.usedBytes = used

	return nil
}

// Get retrieves a value by key
func (m *InMemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", storageErr("get", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lookup(key)
	if !ok {
		return "", storageErr("get", key, ErrKeyNotFound)
	}
	return entry.value, nil
}

// Delete removes a key
func (m *InMemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("delete", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.remove(key)
	return nil
}

// Exists checks if a key exists
func (m *InMemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, storageErr("exists", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.lookup(key)
	return ok, nil
}

// UsedBytes reports the bytes currently counted against the quota
func (m *InMemoryStore) UsedBytes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usedBytes
}

// Close is a no-op for the in-memory store
func (m *InMemoryStore) Close() error {
	return nil
}

// lookup drops expired entries. Caller holds the write lock.
func (m *InMemoryStore) lookup(key string) (valueWithExpiry, bool) {
	entry, ok := m.data[key]
	if !ok {
		return valueWithExpiry{}, false
	}
	if !entry.expiry.IsZero() && !m.now().Before(entry.expiry) {
		m.remove(key)
		return valueWithExpiry{}, false
	}
	return entry, true
}

func (m *InMemoryStore) remove(key string) {
	if old, ok := m.data[key]; ok {
		m.usedBytes -= len(key) + len(old.value)
		delete(m.data, key)
	}
}
