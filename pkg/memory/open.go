package memory

import (
	"context"
	"fmt"
	"strings"
)

// Open builds the backend named by cfg.Provider
func Open(ctx context.Context, cfg Config) (Memory, error) {
	switch Provider(strings.ToLower(string(cfg.Provider))) {
	case "", ProviderInMemory:
		return NewInMemoryStore(WithQuota(cfg.QuotaBytes)), nil
	case ProviderRedis:
		return NewRedisMemory(ctx, cfg.RedisURL, cfg.Namespace)
	case ProviderSQLite:
		return OpenSQLStore(ctx, DialectSQLite, cfg.DSN, cfg.Namespace)
	case ProviderPostgres:
		return OpenSQLStore(ctx, DialectPostgres, cfg.DSN, cfg.Namespace)
	default:
		return nil, storageErr("open", "", fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider))
	}
}
