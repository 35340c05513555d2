// Package catalog reads the remote product catalog and turns raw entries
// into display-ready products.
//
// Every lookup goes through a shared TTL cache with the fallback chain
// fresh cache, network, stale cache, and (only when the caller passes
// WithSampleFallback) the embedded sample catalog:
//
//	client := catalog.NewClient(catalog.WithBaseURL(cfg.BaseURL))
//	res, err := client.Products(ctx, 20, catalog.WithSampleFallback())
//	if err != nil {
//	    // *NetworkError: nothing cached and no fallback
//	}
//	if res.Degraded() {
//	    // show a dismissible "showing saved results" notice
//	}
//
// Enrichment adds a random discount, badge, stock level and featured flag.
// Inject a seeded RandSource through NewEnricher for reproducible output.
package catalog
