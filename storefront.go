package shopeasy

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/itsneelabh/shopeasy/internal/format"
	"github.com/itsneelabh/shopeasy/pkg/auth"
	"github.com/itsneelabh/shopeasy/pkg/cache"
	"github.com/itsneelabh/shopeasy/pkg/cart"
	"github.com/itsneelabh/shopeasy/pkg/catalog"
	"github.com/itsneelabh/shopeasy/pkg/logger"
	"github.com/itsneelabh/shopeasy/pkg/memory"
	"github.com/itsneelabh/shopeasy/pkg/notify"
	"github.com/itsneelabh/shopeasy/pkg/telemetry"
)

// Storefront wires the catalog client, cart store and auth manager over one
// storage backend, logger and telemetry provider.
type Storefront struct {
	config      *Config
	logger      logger.Logger
	storage     memory.Memory
	ownsStorage bool
	telemetry   *telemetry.Provider
	catalog     *catalog.Client
	cart        *cart.Store
	auth        *auth.Manager
	money       *format.Money
	notices     *notify.Recorder
}

type dependencies struct {
	logger        logger.Logger
	storage       memory.Memory
	httpClient    *http.Client
	rand          catalog.RandSource
	notifier      notify.Notifier
	authProvider  auth.Provider
	telemetryOpts []telemetry.SetupOption
}

// Dependency injects a collaborator into New
type Dependency func(*dependencies)

// WithLogger replaces the logger built from Config.Logging
func WithLogger(l logger.Logger) Dependency {
	return func(d *dependencies) {
		d.logger = l
	}
}

// WithMemory uses an existing store instead of opening Config.Storage.
// The caller keeps ownership and closes it.
func WithMemory(m memory.Memory) Dependency {
	return func(d *dependencies) {
		d.storage = m
	}
}

// WithHTTPClient is used for catalog and identity requests
func WithHTTPClient(hc *http.Client) Dependency {
	return func(d *dependencies) {
		d.httpClient = hc
	}
}

// WithRandSource seeds product enrichment
func WithRandSource(src catalog.RandSource) Dependency {
	return func(d *dependencies) {
		d.rand = src
	}
}

// WithNotifier also delivers notifications to n
func WithNotifier(n notify.Notifier) Dependency {
	return func(d *dependencies) {
		d.notifier = n
	}
}

// WithAuthProvider replaces the Identity Toolkit provider. It enables auth
// even without an API key.
func WithAuthProvider(p auth.Provider) Dependency {
	return func(d *dependencies) {
		d.authProvider = p
	}
}

// WithTelemetryOptions forwards options to telemetry.Setup
func WithTelemetryOptions(opts ...telemetry.SetupOption) Dependency {
	return func(d *dependencies) {
		d.telemetryOpts = append(d.telemetryOpts, opts...)
	}
}

// New builds a storefront from cfg. A nil cfg means DefaultConfig().
// The saved cart and any unexpired session are restored before New returns.
func New(ctx context.Context, cfg *Config, deps ...Dependency) (*Storefront, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &dependencies{}
	for _, dep := range deps {
		dep(d)
	}

	sf := &Storefront{config: cfg, notices: &notify.Recorder{}}

	sf.logger = d.logger
	if sf.logger == nil {
		sf.logger = logger.NewSimpleLogger(
			logger.WithLevel(cfg.Logging.Level),
			logger.WithFormat(cfg.Logging.Format),
		)
	}

	money, err := format.NewMoney(cfg.Display.Currency, cfg.Display.Locale, cfg.Display.FractionDigits)
	if err != nil {
		return nil, &StorefrontError{Op: "shopeasy.New", Kind: "config", Message: err.Error(), Err: ErrInvalidConfiguration}
	}
	sf.money = money

	tp, err := telemetry.Setup(ctx, cfg.Telemetry, d.telemetryOpts...)
	if err != nil {
		return nil, &StorefrontError{Op: "shopeasy.New", Kind: "telemetry", Err: err}
	}
	sf.telemetry = tp

	sf.storage = d.storage
	if sf.storage == nil {
		store, err := memory.Open(ctx, cfg.Storage)
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, &StorefrontError{Op: "shopeasy.New", Kind: "storage", Err: err}
		}
		sf.storage = store
		sf.ownsStorage = true
	}

	httpClient := d.httpClient
	if httpClient == nil {
		httpClient = telemetry.NewTracedHTTPClient(nil, tp.TracerProvider(), cfg.Catalog.Timeout)
	}

	notifiers := notify.Multi{sf.notices, notify.LogNotifier{Logger: sf.logger.WithField("component", "notify")}}
	if d.notifier != nil {
		notifiers = append(notifiers, d.notifier)
	}

	sf.catalog = catalog.NewClient(
		catalog.WithBaseURL(cfg.Catalog.BaseURL),
		catalog.WithHTTPClient(httpClient),
		catalog.WithCache(cache.New(
			cache.WithTTL(cfg.Catalog.CacheTTL),
			cache.WithMaxEntries(cfg.Catalog.MaxEntries),
			cache.WithLogger(sf.logger.WithField("component", "cache")),
		)),
		catalog.WithEnricher(catalog.NewEnricher(d.rand, cfg.Display.ExchangeRate)),
		catalog.WithRateLimit(cfg.Catalog.RateLimit, cfg.Catalog.RateBurst),
		catalog.WithLogger(sf.logger.WithField("component", "catalog")),
		catalog.WithTracer(tp.Tracer),
		catalog.WithMetrics(tp.Metrics),
	)

	sf.cart = cart.Open(ctx, sf.storage,
		cart.WithLogger(sf.logger.WithField("component", "cart")),
		cart.WithNotifier(notifiers),
		cart.WithMetrics(tp.Metrics),
	)

	provider := d.authProvider
	if provider == nil && cfg.AuthEnabled() {
		toolkitOpts := []auth.ToolkitOption{
			auth.WithToolkitHTTPClient(httpClient),
			auth.WithToolkitLogger(sf.logger.WithField("component", "identity")),
			auth.WithToolkitTracer(tp.Tracer),
		}
		if cfg.Auth.Endpoint != "" {
			toolkitOpts = append(toolkitOpts, auth.WithEndpoint(cfg.Auth.Endpoint))
		}
		provider = auth.NewIdentityToolkit(cfg.Auth.APIKey, toolkitOpts...)
	}
	if provider != nil {
		sf.auth = auth.NewManager(ctx, provider, sf.storage,
			auth.WithManagerLogger(sf.logger.WithField("component", "auth")),
			auth.WithNotifier(notifiers),
		)
	}

	sf.logger.Debug("Storefront ready", map[string]interface{}{
		"storage":   string(cfg.Storage.Provider),
		"catalog":   cfg.Catalog.BaseURL,
		"auth":      sf.auth != nil,
		"telemetry": cfg.Telemetry.Enabled,
		"currency":  money.Currency(),
	})
	return sf, nil
}

// Close flushes telemetry and closes storage opened by New
func (s *Storefront) Close(ctx context.Context) error {
	var errs []error
	if s.telemetry != nil {
		if err := s.telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}
	if s.ownsStorage && s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *Storefront) Config() *Config { return s.config }

func (s *Storefront) Logger() logger.Logger { return s.logger }

func (s *Storefront) Catalog() *catalog.Client { return s.catalog }

func (s *Storefront) Cart() *cart.Store { return s.cart }

// Auth returns the auth manager, or ErrAuthDisabled
func (s *Storefront) Auth() (*auth.Manager, error) {
	if s.auth == nil {
		return nil, ErrAuthDisabled
	}
	return s.auth, nil
}

// Notifications returns and clears pending notifications
func (s *Storefront) Notifications() []notify.Notification {
	return s.notices.Drain()
}

func (s *Storefront) fetchOptions(refresh bool) []catalog.FetchOption {
	var opts []catalog.FetchOption
	if refresh {
		opts = append(opts, catalog.ForceRefresh())
	}
	if s.config.Catalog.SampleFallback {
		opts = append(opts, catalog.WithSampleFallback())
	}
	return opts
}

// Products lists the configured number of products. A degraded result
// queues a warning notification.
func (s *Storefront) Products(ctx context.Context, refresh bool) (cache.Result[[]Product], error) {
	res, err := s.catalog.Products(ctx, s.config.Catalog.ProductLimit, s.fetchOptions(refresh)...)
	s.noteDegraded(res.Degraded())
	return res, err
}

// ProductsByCategory lists one category
func (s *Storefront) ProductsByCategory(ctx context.Context, category string, refresh bool) (cache.Result[[]Product], error) {
	res, err := s.catalog.ProductsByCategory(ctx, category, s.fetchOptions(refresh)...)
	s.noteDegraded(res.Degraded())
	return res, err
}

// Product looks up one product
func (s *Storefront) Product(ctx context.Context, id int, refresh bool) (cache.Result[Product], error) {
	res, err := s.catalog.Product(ctx, id, s.fetchOptions(refresh)...)
	s.noteDegraded(res.Degraded())
	return res, err
}

// Categories lists category names
func (s *Storefront) Categories(ctx context.Context, refresh bool) (cache.Result[[]string], error) {
	res, err := s.catalog.Categories(ctx, s.fetchOptions(refresh)...)
	s.noteDegraded(res.Degraded())
	return res, err
}

// RelatedProducts lists other products from p's category
func (s *Storefront) RelatedProducts(ctx context.Context, p Product) ([]Product, error) {
	return s.catalog.RelatedProducts(ctx, p, catalog.RelatedLimit, s.fetchOptions(false)...)
}

// AddToCart adds quantity units of p at its current price
func (s *Storefront) AddToCart(ctx context.Context, p Product, quantity int, variations cart.Variations) (cart.Result, error) {
	price := p.CurrentPrice
	if price == 0 {
		price = p.Price
	}
	return s.cart.AddItem(ctx, cart.Item{
		ProductID:  p.ID,
		Title:      p.Title,
		Price:      price,
		Image:      p.Image,
		Quantity:   quantity,
		Variations: variations,
	})
}

// FormatPrice renders an amount in the display currency
func (s *Storefront) FormatPrice(amount float64) string {
	return s.money.Format(amount)
}

// FormatAmount renders a decimal amount in the display currency
func (s *Storefront) FormatAmount(amount decimal.Decimal) string {
	return s.money.FormatDecimal(amount)
}

func (s *Storefront) noteDegraded(degraded bool) {
	if degraded {
		s.notices.Notify(notify.Warning("Showing saved results; the store could not be reached."))
	}
}
