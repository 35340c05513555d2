package shopeasy

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/itsneelabh/shopeasy/pkg/cache"
	"github.com/itsneelabh/shopeasy/pkg/catalog"
	"github.com/itsneelabh/shopeasy/pkg/memory"
	"github.com/itsneelabh/shopeasy/pkg/telemetry"
)

// Config holds every storefront setting. Sources are applied in order of
// increasing priority:
//  1. Default values
//  2. A .env file, if present
//  3. Environment variables (SHOPEASY_*)
//  4. The file named by SHOPEASY_CONFIG_FILE (JSON or YAML)
//  5. Functional options
//
// Example usage:
//
//	cfg, err := shopeasy.NewConfig(
//	    shopeasy.WithStorage(memory.ProviderSQLite, "shopeasy.db"),
//	    shopeasy.WithDisplayCurrency("INR", "en-IN", 83, 0),
//	)
type Config struct {
	Catalog   CatalogConfig    `json:"catalog" yaml:"catalog"`
	Storage   memory.Config    `json:"storage" yaml:"storage"`
	Auth      AuthConfig       `json:"auth" yaml:"auth"`
	Telemetry telemetry.Config `json:"telemetry" yaml:"telemetry"`
	Logging   LoggingConfig    `json:"logging" yaml:"logging"`
	Display   DisplayConfig    `json:"display" yaml:"display"`
}

// CatalogConfig controls the catalog client and its cache.
// Durations in JSON files are nanoseconds; YAML accepts "5m" style strings.
type CatalogConfig struct {
	BaseURL        string        `json:"base_url" yaml:"base_url"`
	Timeout        time.Duration `json:"timeout" yaml:"timeout"`
	CacheTTL       time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
	MaxEntries     int           `json:"max_entries" yaml:"max_entries"`
	RateLimit      float64       `json:"rate_limit" yaml:"rate_limit"`
	RateBurst      int           `json:"rate_burst" yaml:"rate_burst"`
	ProductLimit   int           `json:"product_limit" yaml:"product_limit"`
	SampleFallback bool          `json:"sample_fallback" yaml:"sample_fallback"`
}

// AuthConfig points the identity adapter at a project. Auth is disabled when
// APIKey is empty.
type AuthConfig struct {
	APIKey   string `json:"api_key" yaml:"api_key"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// LoggingConfig selects log verbosity and encoding
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// DisplayConfig controls price conversion and formatting
type DisplayConfig struct {
	Currency       string  `json:"currency" yaml:"currency"`
	Locale         string  `json:"locale" yaml:"locale"`
	ExchangeRate   float64 `json:"exchange_rate" yaml:"exchange_rate"`
	FractionDigits int     `json:"fraction_digits" yaml:"fraction_digits"`
}

// Option is a functional option for configuring the storefront
type Option func(*Config) error

// DefaultConfig returns a configuration that runs fully in memory against
// the public catalog API.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:      catalog.DefaultBaseURL,
			Timeout:      30 * time.Second,
			CacheTTL:     cache.DefaultTTL,
			MaxEntries:   256,
			RateLimit:    5,
			RateBurst:    5,
			ProductLimit: catalog.DefaultLimit,
		},
		Storage: memory.Config{
			Provider:  memory.ProviderInMemory,
			Namespace: "shopeasy",
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: "shopeasy",
			Exporter:    telemetry.ExporterNone,
			SampleRatio: 1.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Display: DisplayConfig{
			Currency:       "USD",
			Locale:         "en-US",
			ExchangeRate:   1,
			FractionDigits: 2,
		},
	}
}

// LoadDotEnv loads KEY=value pairs from the given files, or .env when none
// are named, into the process environment. Missing files are skipped and
// variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
//
// Variable naming convention:
//   - Storefront-specific: SHOPEASY_<SETTING>
//   - Standard variables: REDIS_URL, DATABASE_URL, OTEL_EXPORTER_OTLP_ENDPOINT,
//     OTEL_SERVICE_NAME, LOG_LEVEL, LOG_FORMAT
//
// Returns an error if a variable holds a value of the wrong type.
func (c *Config) LoadFromEnv() error {
	var errs []error
	str := func(dst *string, keys ...string) {
		if v, ok := lookupEnv(keys...); ok {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, key string) {
		if v, ok := lookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	num := func(dst *int, key string) {
		if v, ok := lookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(dst *float64, key string) {
		if v, ok := lookupEnv(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}

	// Catalog
	str(&c.Catalog.BaseURL, "SHOPEASY_CATALOG_URL")
	dur(&c.Catalog.Timeout, "SHOPEASY_CATALOG_TIMEOUT")
	dur(&c.Catalog.CacheTTL, "SHOPEASY_CACHE_TTL")
	num(&c.Catalog.MaxEntries, "SHOPEASY_CACHE_MAX_ENTRIES")
	float(&c.Catalog.RateLimit, "SHOPEASY_RATE_LIMIT")
	num(&c.Catalog.RateBurst, "SHOPEASY_RATE_BURST")
	num(&c.Catalog.ProductLimit, "SHOPEASY_PRODUCT_LIMIT")
	if v, ok := lookupEnv("SHOPEASY_SAMPLE_FALLBACK"); ok {
		c.Catalog.SampleFallback = parseBool(v)
	}

	// Storage
	if v, ok := lookupEnv("SHOPEASY_STORAGE_PROVIDER"); ok {
		c.Storage.Provider = memory.Provider(strings.ToLower(v))
	}
	str(&c.Storage.RedisURL, "SHOPEASY_REDIS_URL", "REDIS_URL")
	str(&c.Storage.DSN, "SHOPEASY_STORAGE_DSN", "DATABASE_URL")
	str(&c.Storage.Namespace, "SHOPEASY_STORAGE_NAMESPACE")
	num(&c.Storage.QuotaBytes, "SHOPEASY_STORAGE_QUOTA")

	// Auth
	str(&c.Auth.APIKey, "SHOPEASY_AUTH_API_KEY", "FIREBASE_API_KEY")
	str(&c.Auth.Endpoint, "SHOPEASY_AUTH_ENDPOINT")

	// Telemetry
	if v, ok := lookupEnv("SHOPEASY_TELEMETRY_ENABLED"); ok {
		c.Telemetry.Enabled = parseBool(v)
	}
	str(&c.Telemetry.Exporter, "SHOPEASY_TELEMETRY_EXPORTER")
	str(&c.Telemetry.Endpoint, "SHOPEASY_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	str(&c.Telemetry.ServiceName, "SHOPEASY_SERVICE_NAME", "OTEL_SERVICE_NAME")
	float(&c.Telemetry.SampleRatio, "SHOPEASY_TELEMETRY_SAMPLE_RATIO")

	// Logging
	str(&c.Logging.Level, "SHOPEASY_LOG_LEVEL", "LOG_LEVEL")
	str(&c.Logging.Format, "SHOPEASY_LOG_FORMAT", "LOG_FORMAT")

	// Display
	str(&c.Display.Currency, "SHOPEASY_CURRENCY")
	str(&c.Display.Locale, "SHOPEASY_LOCALE")
	float(&c.Display.ExchangeRate, "SHOPEASY_EXCHANGE_RATE")
	num(&c.Display.FractionDigits, "SHOPEASY_PRICE_DIGITS")

	if len(errs) > 0 {
		return &StorefrontError{
			Op:   "Config.LoadFromEnv",
			Kind: "config",
			Err:  fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...)),
		}
	}
	return nil
}

// LoadFromFile merges a JSON or YAML file over the current values.
//
// Example YAML:
//
//	catalog:
//	  cache_ttl: 10m
//	storage:
//	  provider: redis
//	  redis_url: redis://localhost:6379/0
func (c *Config) LoadFromFile(path string) error {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config file extension %s: %w", ext, ErrInvalidConfiguration)
	}

	data, err := os.ReadFile(cleanPath) // nosec G304 -- extension is validated
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w: %w", ErrInvalidConfiguration, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w: %w", ErrInvalidConfiguration, err)
		}
	}
	return nil
}

// Validate checks the configuration.
//
// Validation rules:
//   - Catalog base URL is required and the cache TTL must be positive
//   - The storage provider must be known; Redis needs a URL, SQL needs a DSN
//   - The OTLP exporter needs an endpoint
//   - Exchange rate must be positive
func (c *Config) Validate() error {
	invalid := func(msg string, err error) error {
		return &StorefrontError{Op: "Config.Validate", Kind: "config", Message: msg, Err: err}
	}

	if strings.TrimSpace(c.Catalog.BaseURL) == "" {
		return invalid("catalog base URL is required", ErrMissingConfiguration)
	}
	if c.Catalog.CacheTTL <= 0 {
		return invalid(fmt.Sprintf("cache TTL must be positive, got %s", c.Catalog.CacheTTL), ErrInvalidConfiguration)
	}
	if c.Catalog.ProductLimit < 0 {
		return invalid("product limit cannot be negative", ErrInvalidConfiguration)
	}

	switch c.Storage.Provider {
	case memory.ProviderInMemory:
	case memory.ProviderRedis:
		if c.Storage.RedisURL == "" {
			return invalid("redis URL is required for the redis storage provider", ErrMissingConfiguration)
		}
	case memory.ProviderSQLite, memory.ProviderPostgres:
		if c.Storage.DSN == "" {
			return invalid(fmt.Sprintf("DSN is required for the %s storage provider", c.Storage.Provider), ErrMissingConfiguration)
		}
	default:
		return invalid(fmt.Sprintf("unknown storage provider %q", c.Storage.Provider), ErrInvalidConfiguration)
	}

	if c.Telemetry.Enabled && c.Telemetry.Exporter == telemetry.ExporterOTLP && c.Telemetry.Endpoint == "" {
		return invalid("telemetry endpoint is required for the otlp exporter", ErrMissingConfiguration)
	}
	if !validRate(c.Display.ExchangeRate) {
		return invalid("exchange rate must be a finite positive number", ErrInvalidConfiguration)
	}
	return nil
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 1)
}

// AuthEnabled reports whether an identity project is configured
func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.Auth.APIKey) != ""
}

// Functional Options

// WithCatalogURL points the catalog client at another API host
func WithCatalogURL(u string) Option {
	return func(c *Config) error {
		if u == "" {
			return fmt.Errorf("catalog URL cannot be empty: %w", ErrInvalidConfiguration)
		}
		c.Catalog.BaseURL = u
		return nil
	}
}

// WithCacheTTL sets how long catalog lookups stay fresh
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Config) error {
		if ttl <= 0 {
			return fmt.Errorf("cache TTL must be positive: %w", ErrInvalidConfiguration)
		}
		c.Catalog.CacheTTL = ttl
		return nil
	}
}

// WithRateLimit paces catalog requests; rps <= 0 disables pacing
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Config) error {
		c.Catalog.RateLimit = rps
		c.Catalog.RateBurst = burst
		return nil
	}
}

// WithSampleFallback serves the built-in sample catalog when the API is
// unreachable and nothing is cached.
func WithSampleFallback(enabled bool) Option {
	return func(c *Config) error {
		c.Catalog.SampleFallback = enabled
		return nil
	}
}

// WithStorage selects a storage backend. location is the Redis URL for
// redis and the DSN for sqlite and postgres; it is ignored for inmemory.
func WithStorage(provider memory.Provider, location string) Option {
	return func(c *Config) error {
		c.Storage.Provider = provider
		switch provider {
		case memory.ProviderRedis:
			c.Storage.RedisURL = location
		case memory.ProviderSQLite, memory.ProviderPostgres:
			c.Storage.DSN = location
		}
		return nil
	}
}

// WithAuth enables the identity adapter for the project owning apiKey
func WithAuth(apiKey, endpoint string) Option {
	return func(c *Config) error {
		c.Auth.APIKey = apiKey
		c.Auth.Endpoint = endpoint
		return nil
	}
}

// WithTelemetry enables tracing with the named exporter
func WithTelemetry(exporter, endpoint string) Option {
	return func(c *Config) error {
		c.Telemetry.Enabled = exporter != "" && exporter != telemetry.ExporterNone
		c.Telemetry.Exporter = exporter
		c.Telemetry.Endpoint = endpoint
		return nil
	}
}

// WithLogLevel sets the log level: debug, info, warn or error
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		switch strings.ToLower(level) {
		case "debug", "info", "warn", "error":
			c.Logging.Level = strings.ToLower(level)
			return nil
		}
		return fmt.Errorf("invalid log level %q: %w", level, ErrInvalidConfiguration)
	}
}

// WithLogFormat sets the log encoding: text or json
func WithLogFormat(format string) Option {
	return func(c *Config) error {
		switch strings.ToLower(format) {
		case "text", "json":
			c.Logging.Format = strings.ToLower(format)
			return nil
		}
		return fmt.Errorf("invalid log format %q: %w", format, ErrInvalidConfiguration)
	}
}

// WithDisplayCurrency converts catalog prices by rate and formats them in
// the given currency and locale.
func WithDisplayCurrency(code, locale string, rate float64, fractionDigits int) Option {
	return func(c *Config) error {
		if !validRate(rate) {
			return fmt.Errorf("exchange rate must be a finite positive number: %w", ErrInvalidConfiguration)
		}
		c.Display = DisplayConfig{Currency: code, Locale: locale, ExchangeRate: rate, FractionDigits: fractionDigits}
		return nil
	}
}

// WithConfigFile merges a JSON or YAML file at option time
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		return c.LoadFromFile(path)
	}
}

// NewConfig creates a configuration from defaults, .env, the environment,
// SHOPEASY_CONFIG_FILE and finally opts, then validates it.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}
	if path, ok := lookupEnv("SHOPEASY_CONFIG_FILE"); ok {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// lookupEnv returns the first non-empty variable among keys
func lookupEnv(keys ...string) (string, bool) {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v, true
		}
	}
	return "", false
}

// parseBool accepts "true", "1", "yes" and "on" (case-insensitive) as true
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
