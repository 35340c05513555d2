package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/itsneelabh/shopeasy/pkg/cache"
	"github.com/itsneelabh/shopeasy/pkg/logger"
	"github.com/itsneelabh/shopeasy/pkg/telemetry"
)

const (
	// DefaultBaseURL is the public catalog API
	DefaultBaseURL = "https://fakestoreapi.com"
	// DefaultLimit is the product count requested when none is given
	DefaultLimit = 20
	// RelatedLimit is how many related products a detail page shows
	RelatedLimit = 4
)

// Client reads the remote catalog through a TTL cache
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.TTLCache
	enricher   *Enricher
	logger     logger.Logger
	tracer     trace.Tracer
	metrics    *telemetry.Metrics
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another catalog host
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCache shares a cache with the client
func WithCache(tc *cache.TTLCache) Option {
	return func(c *Client) {
		if tc != nil {
			c.cache = tc
		}
	}
}

// WithEnricher replaces the enricher, e.g. with a seeded one
func WithEnricher(e *Enricher) Option {
	return func(c *Client) {
		if e != nil {
			c.enricher = e
		}
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRateLimit paces outgoing requests; rps <= 0 disables pacing
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTracer sets the tracer used for request spans
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMetrics records fetch metrics
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a catalog client
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: telemetry.NewTracedHTTPClient(nil, nil, 30*time.Second),
		cache:      cache.New(),
		enricher:   NewEnricher(nil, 1),
		logger:     logger.NewNopLogger(),
		tracer:     otel.Tracer(telemetry.InstrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type fetchOptions struct {
	forceRefresh   bool
	sampleFallback bool
}

// FetchOption adjusts a single lookup
type FetchOption func(*fetchOptions)

// ForceRefresh skips the fresh-cache check
func ForceRefresh() FetchOption {
	return func(o *fetchOptions) {
		o.forceRefresh = true
	}
}

// WithSampleFallback serves the built-in sample catalog when the API fails
// and nothing is cached
func WithSampleFallback() FetchOption {
	return func(o *fetchOptions) {
		o.sampleFallback = true
	}
}

func collect(opts []FetchOption) fetchOptions {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Products lists up to limit products
func (c *Client) Products(ctx context.Context, limit int, opts ...FetchOption) (cache.Result[[]EnrichedProduct], error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	o := collect(opts)

	req := cache.Request[[]EnrichedProduct]{
		Key:          cache.NewKey("products").Int("limit", limit).Key(),
		ForceRefresh: o.forceRefresh,
		Load: func(ctx context.Context) ([]EnrichedProduct, error) {
			entries, err := c.getEntries(ctx, "products", "/products?limit="+strconv.Itoa(limit))
			if err != nil {
				return nil, err
			}
			return c.enricher.Enrich(entries), nil
		},
	}
	if o.sampleFallback {
		req.Fallback = func() ([]EnrichedProduct, bool) {
			s, err := LoadSampleCatalog()
			if err != nil || len(s.Products) == 0 {
				return nil, false
			}
			products := s.Products
			if len(products) > limit {
				products = products[:limit]
			}
			return c.enricher.Enrich(products), true
		}
	}
	return fetch(ctx, c, "products", req)
}

// Product looks up one product by id. An unknown id yields ErrNotFound.
func (c *Client) Product(ctx context.Context, id int, opts ...FetchOption) (cache.Result[EnrichedProduct], error) {
	o := collect(opts)

	req := cache.Request[EnrichedProduct]{
		Key:          cache.NewKey("product").Int("id", id).Key(),
		ForceRefresh: o.forceRefresh,
		Load: func(ctx context.Context) (EnrichedProduct, error) {
			entry, err := c.getEntry(ctx, "product", "/products/"+strconv.Itoa(id))
			if err != nil {
				return EnrichedProduct{}, err
			}
			return c.enricher.EnrichOne(entry), nil
		},
	}
	if o.sampleFallback {
		req.Fallback = func() (EnrichedProduct, bool) {
			s, err := LoadSampleCatalog()
			if err != nil {
				return EnrichedProduct{}, false
			}
			entry, ok := s.ByID(id)
			if !ok {
				return EnrichedProduct{}, false
			}
			return c.enricher.EnrichOne(entry), true
		}
	}
	return fetch(ctx, c, "product", req)
}

// ProductsByCategory lists the products in category
func (c *Client) ProductsByCategory(ctx context.Context, category string, opts ...FetchOption) (cache.Result[[]EnrichedProduct], error) {
	o := collect(opts)

	req := cache.Request[[]EnrichedProduct]{
		Key:          cache.NewKey("products").String("category", category).Key(),
		ForceRefresh: o.forceRefresh,
		Load: func(ctx context.Context) ([]EnrichedProduct, error) {
			entries, err := c.getEntries(ctx, "products_by_category", "/products/category/"+url.PathEscape(category))
			if err != nil {
				return nil, err
			}
			return c.enricher.Enrich(entries), nil
		},
	}
	if o.sampleFallback {
		req.Fallback = func() ([]EnrichedProduct, bool) {
			s, err := LoadSampleCatalog()
			if err != nil {
				return nil, false
			}
			entries := s.ByCategory(category)
			if len(entries) == 0 {
				return nil, false
			}
			return c.enricher.Enrich(entries), true
		}
	}
	return fetch(ctx, c, "products_by_category", req)
}

// Categories lists the catalog's category names
func (c *Client) Categories(ctx context.Context, opts ...FetchOption) (cache.Result[[]string], error) {
	o := collect(opts)

	req := cache.Request[[]string]{
		Key:          cache.NewKey("categories").Key(),
		ForceRefresh: o.forceRefresh,
		Load: func(ctx context.Context) ([]string, error) {
			var categories []string
			if err := c.getJSON(ctx, "categories", "/products/categories", &categories); err != nil {
				return nil, err
			}
			return categories, nil
		},
	}
	if o.sampleFallback {
		req.Fallback = func() ([]string, bool) {
			s, err := LoadSampleCatalog()
			if err != nil || len(s.Categories) == 0 {
				return nil, false
			}
			return append([]string(nil), s.Categories...), true
		}
	}
	return fetch(ctx, c, "categories", req)
}

// RelatedProducts returns up to n other products from p's category
func (c *Client) RelatedProducts(ctx context.Context, p EnrichedProduct, n int, opts ...FetchOption) ([]EnrichedProduct, error) {
	if n <= 0 {
		n = RelatedLimit
	}
	res, err := c.ProductsByCategory(ctx, p.Category, opts...)
	if err != nil {
		return nil, err
	}
	return Related(res.Value, p.ID, n), nil
}

// ClearCache drops every cached lookup so the next read goes to the network
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.logger.Info("Catalog cache cleared")
}

// CacheStats exposes the underlying cache statistics
func (c *Client) CacheStats() cache.Stats {
	return c.cache.Stats()
}

func fetch[T any](ctx context.Context, c *Client, op string, req cache.Request[T]) (cache.Result[T], error) {
	start := time.Now()
	res, err := cache.Fetch(ctx, c.cache, req)

	source := res.Source.String()
	if err != nil {
		source = "error"
		c.logger.Error("Catalog lookup failed", telemetry.EnrichLogFields(ctx, map[string]interface{}{
			"operation": op,
			"cache_key": req.Key.String(),
			"error":     err.Error(),
		}))
	} else if res.Degraded() {
		c.logger.Warn("Catalog lookup degraded", telemetry.EnrichLogFields(ctx, map[string]interface{}{
			"operation": op,
			"cache_key": req.Key.String(),
			"source":    source,
			"cause":     res.Err.Error(),
		}))
	}
	c.metrics.RecordCatalogFetch(ctx, op, source, time.Since(start))
	return res, err
}

func (c *Client) getEntries(ctx context.Context, op, path string) ([]CatalogEntry, error) {
	var wire []wireEntry
	if err := c.getJSON(ctx, op, path, &wire); err != nil {
		return nil, err
	}
	entries := make([]CatalogEntry, 0, len(wire))
	for i, w := range wire {
		entry, ok := w.normalize()
		if !ok {
			c.logger.Warn("Skipping catalog entry without id", "operation", op, "index", i)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *Client) getEntry(ctx context.Context, op, path string) (CatalogEntry, error) {
	var wire *wireEntry
	if err := c.getJSON(ctx, op, path, &wire); err != nil {
		return CatalogEntry{}, err
	}
	if wire == nil {
		return CatalogEntry{}, ErrNotFound
	}
	entry, ok := wire.normalize()
	if !ok {
		return CatalogEntry{}, ErrNotFound
	}
	return entry, nil
}

// getJSON performs one GET and decodes the body into out. Every failure is
// returned as a *NetworkError.
func (c *Client) getJSON(ctx context.Context, op, path string, out interface{}) error {
	target := c.baseURL + path

	ctx, span := c.tracer.Start(ctx, "catalog."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("catalog.operation", op),
			attribute.String("http.url", target),
		),
	)
	defer span.End()

	ctx, requestID := telemetry.WithRequestID(ctx)

	fail := func(status int, err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &NetworkError{Op: op, URL: target, StatusCode: status, Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(0, fmt.Errorf("rate limiter: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	telemetry.InjectCorrelationHeaders(ctx, req.Header)

	c.logger.Debug("Fetching from catalog API", telemetry.EnrichLogFields(ctx, map[string]interface{}{
		"operation":  op,
		"url":        target,
		"request_id": requestID,
	}))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(0, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, fmt.Errorf("HTTP error! status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("null")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fail(0, fmt.Errorf("decode response: %w", err))
	}

	span.SetAttributes(attribute.Int("response.size", len(body)))
	span.SetStatus(codes.Ok, "")
	return nil
}
