// Package cache implements the read-through TTL cache that fronts every
// catalog API call.
//
// Entries are fresh for a fixed TTL (five minutes by default) and are kept
// after they expire so that Fetch can fall back to them when a refresh
// fails. Keys are built with NewKey and cannot be assembled from raw
// strings:
//
//	key := cache.NewKey("products").Int("limit", 20).Key()
//	res, err := cache.Fetch(ctx, c, cache.Request[[]Product]{
//	    Key:  key,
//	    Load: fetchFromAPI,
//	})
//	if res.Degraded() {
//	    // res.Err holds the network failure that was papered over
//	}
package cache
