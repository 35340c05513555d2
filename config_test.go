package shopeasy

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/shopeasy/pkg/memory"
	"github.com/itsneelabh/shopeasy/pkg/telemetry"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, memory.ProviderInMemory, cfg.Storage.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.CacheTTL)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SHOPEASY_CATALOG_URL", "http://catalog.local")
	t.Setenv("SHOPEASY_CACHE_TTL", "90s")
	t.Setenv("SHOPEASY_SAMPLE_FALLBACK", "yes")
	t.Setenv("SHOPEASY_STORAGE_PROVIDER", "REDIS")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("FIREBASE_API_KEY", "abc")
	t.Setenv("SHOPEASY_EXCHANGE_RATE", "83")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "http://catalog.local", cfg.Catalog.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Catalog.CacheTTL)
	assert.True(t, cfg.Catalog.SampleFallback)
	assert.Equal(t, memory.ProviderRedis, cfg.Storage.Provider)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Storage.RedisURL)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, 83.0, cfg.Display.ExchangeRate)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnv_PrefixedWins(t *testing.T) {
	t.Setenv("SHOPEASY_REDIS_URL", "redis://primary:6379")
	t.Setenv("REDIS_URL", "redis://fallback:6379")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, "redis://primary:6379", cfg.Storage.RedisURL)
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("SHOPEASY_CACHE_TTL", "soon")
	t.Setenv("SHOPEASY_RATE_BURST", "many")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "SHOPEASY_CACHE_TTL")
	assert.Contains(t, err.Error(), "SHOPEASY_RATE_BURST")
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopeasy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  cache_ttl: 10m
  sample_fallback: true
storage:
  provider: sqlite
  dsn: /tmp/cart.db
display:
  currency: INR
  locale: en-IN
  exchange_rate: 83
  fraction_digits: 0
`), 0o600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))
	assert.Equal(t, 10*time.Minute, cfg.Catalog.CacheTTL)
	assert.True(t, cfg.Catalog.SampleFallback)
	assert.Equal(t, memory.ProviderSQLite, cfg.Storage.Provider)
	assert.Equal(t, "INR", cfg.Display.Currency)
	assert.Equal(t, 0, cfg.Display.FractionDigits)
	// untouched sections keep their defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopeasy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"auth":{"api_key":"k"},"logging":{"format":"json"}}`), 0o600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))
	assert.Equal(t, "k", cfg.Auth.APIKey)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()

	err := cfg.LoadFromFile(filepath.Join(dir, "config.toml"))
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))

	err = cfg.LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	assert.True(t, errors.Is(cfg.LoadFromFile(bad), ErrInvalidConfiguration))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing catalog url", func(c *Config) { c.Catalog.BaseURL = "" }, ErrMissingConfiguration},
		{"zero ttl", func(c *Config) { c.Catalog.CacheTTL = 0 }, ErrInvalidConfiguration},
		{"redis without url", func(c *Config) { c.Storage.Provider = memory.ProviderRedis }, ErrMissingConfiguration},
		{"sqlite without dsn", func(c *Config) { c.Storage.Provider = memory.ProviderSQLite }, ErrMissingConfiguration},
		{"unknown provider", func(c *Config) { c.Storage.Provider = "etcd" }, ErrInvalidConfiguration},
		{"otlp without endpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = telemetry.ExporterOTLP
		}, ErrMissingConfiguration},
		{"zero exchange rate", func(c *Config) { c.Display.ExchangeRate = 0 }, ErrInvalidConfiguration},
		{"NaN exchange rate", func(c *Config) { c.Display.ExchangeRate = math.NaN() }, ErrInvalidConfiguration},
		{"infinite exchange rate", func(c *Config) { c.Display.ExchangeRate = math.Inf(1) }, ErrInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var se *StorefrontError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "config", se.Kind)
		})
	}
}

func TestNewConfig_OptionsOverrideEnv(t *testing.T) {
	t.Setenv("SHOPEASY_LOG_LEVEL", "error")

	cfg, err := NewConfig(
		WithLogLevel("DEBUG"),
		WithStorage(memory.ProviderSQLite, "file.db"),
		WithDisplayCurrency("INR", "en-IN", 83, 0),
		WithTelemetry(telemetry.ExporterStdout, ""),
	)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "file.db", cfg.Storage.DSN)
	assert.Equal(t, 83.0, cfg.Display.ExchangeRate)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestNewConfig_ConfigFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  product_limit: 8\n"), 0o600))
	t.Setenv("SHOPEASY_CONFIG_FILE", path)

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Catalog.ProductLimit)
}

func TestNewConfig_RejectsNonFiniteRate(t *testing.T) {
	t.Setenv("SHOPEASY_EXCHANGE_RATE", "NaN")
	_, err := NewConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	t.Setenv("SHOPEASY_EXCHANGE_RATE", "1")
	_, err = NewConfig(WithDisplayCurrency("INR", "en-IN", math.Inf(1), 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestNewConfig_RejectsBadOptions(t *testing.T) {
	_, err := NewConfig(WithLogFormat("xml"))
	assert.True(t, IsConfigurationError(err))

	_, err = NewConfig(WithCacheTTL(-time.Second))
	assert.True(t, IsConfigurationError(err))

	_, err = NewConfig(WithStorage(memory.ProviderRedis, ""))
	assert.True(t, IsConfigurationError(err))
}

func TestLoadDotEnv(t *testing.T) {
	const key = "SHOPEASY_DOTENV_PROBE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(key))
}
