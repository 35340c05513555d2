package cache

import (
	"context"
	"time"
)

// Source tells where a fetched value came from
type Source int

const (
	// SourceCache is a fresh cache entry
	SourceCache Source = iota
	// SourceNetwork is a value just returned by the loader
	SourceNetwork
	// SourceStale is an expired cache entry served because the loader failed
	SourceStale
	// SourceFallback is the caller's static substitute served because the
	// loader failed and nothing was cached
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceNetwork:
		return "network"
	case SourceStale:
		return "stale"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Request describes one read-through fetch
type Request[T any] struct {
	Key  Key
	Load func(ctx context.Context) (T, error)

	// ForceRefresh skips the fresh-cache check unconditionally.
	ForceRefresh bool

	// Fallback, when set, supplies a static substitute if the loader fails
	// and no entry exists. Returning false means no substitute is available.
	Fallback func() (T, bool)
}

// Result is the value returned by Fetch and how it was obtained
type Result[T any] struct {
	Value    T
	Source   Source
	StoredAt time.Time
	// Err is the loader failure behind a stale or fallback result.
	Err error
}

// Degraded reports whether the value was served in place of a failed load
func (r Result[T]) Degraded() bool {
	return r.Source == SourceStale || r.Source == SourceFallback
}

// Fetch resolves req through the fallback chain:
//
//	fresh cache -> loader -> stale cache -> req.Fallback -> loader error
//
// At most one substitution happens per call and the loader is never
// retried. Concurrent fetches of the same key may both call the loader;
// the last one to finish wins the cache slot.
func Fetch[T any](ctx context.Context, c *TTLCache, req Request[T]) (Result[T], error) {
	if !req.ForceRefresh {
		if v, ok := c.Get(req.Key); ok {
			if typed, ok := v.(T); ok {
				entry, _ := c.Peek(req.Key)
				return Result[T]{Value: typed, Source: SourceCache, StoredAt: entry.StoredAt}, nil
			}
		}
	}

	value, err := req.Load(ctx)
	if err == nil {
		entry := c.Set(req.Key, value)
		return Result[T]{Value: value, Source: SourceNetwork, StoredAt: entry.StoredAt}, nil
	}

	if entry, ok := c.Peek(req.Key); ok {
		if typed, ok := entry.Value.(T); ok {
			c.recordDegraded(SourceStale)
			c.logger.Warn("Serving stale cache entry after failed load", map[string]interface{}{
				"cache_key": req.Key.String(),
				"stored_at": entry.StoredAt,
				"error":     err.Error(),
			})
			return Result[T]{Value: typed, Source: SourceStale, StoredAt: entry.StoredAt, Err: err}, nil
		}
	}

	if req.Fallback != nil {
		if substitute, ok := req.Fallback(); ok {
			c.recordDegraded(SourceFallback)
			c.logger.Warn("Serving fallback data after failed load", map[string]interface{}{
				"cache_key": req.Key.String(),
				"error":     err.Error(),
			})
			return Result[T]{Value: substitute, Source: SourceFallback, Err: err}, nil
		}
	}

	var zero T
	return Result[T]{Value: zero}, err
}
