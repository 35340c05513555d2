// Package cart implements the persisted shopping cart.
//
// Line items are keyed by product id plus the selected variations, so the
// same product in two sizes occupies two lines while adding the same
// selection twice merges quantities. Quantities stay within [1, MaxQuantity].
//
// Every mutation rewrites the whole cart under the "shoppingCart" record of
// the configured memory.Memory. A failed write is logged, reported through
// the notifier and returned in Result.PersistErr; the in-memory change is
// kept either way.
package cart
