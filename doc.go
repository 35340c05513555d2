// Package shopeasy is the storefront core: a cached catalog client with
// product enrichment, a persisted shopping cart and an authentication
// adapter, wired together by New.
//
// Users who need only one piece can import it directly:
//   - github.com/itsneelabh/shopeasy/pkg/catalog - catalog client and listing helpers
//   - github.com/itsneelabh/shopeasy/pkg/cart - cart store
//   - github.com/itsneelabh/shopeasy/pkg/auth - identity adapter
//   - github.com/itsneelabh/shopeasy/pkg/memory - durable storage backends
//
// Example:
//
//	cfg, err := shopeasy.NewConfig(shopeasy.WithSampleFallback(true))
//	if err != nil {
//	    return err
//	}
//	sf, err := shopeasy.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer sf.Close(ctx)
//
//	res, err := sf.Products(ctx, false)
package shopeasy
