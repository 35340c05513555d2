package shopeasy

import (
	"github.com/itsneelabh/shopeasy/pkg/auth"
	"github.com/itsneelabh/shopeasy/pkg/cart"
	"github.com/itsneelabh/shopeasy/pkg/catalog"
	"github.com/itsneelabh/shopeasy/pkg/logger"
	"github.com/itsneelabh/shopeasy/pkg/memory"
	"github.com/itsneelabh/shopeasy/pkg/notify"
)

// Type aliases so callers can stay on the root package
type Memory = memory.Memory
type Logger = logger.Logger
type Notifier = notify.Notifier
type Notification = notify.Notification
type Product = catalog.EnrichedProduct
type CatalogEntry = catalog.CatalogEntry
type Rating = catalog.Rating
type Badge = catalog.Badge
type CartItem = cart.Item
type LineItem = cart.LineItem
type CartSummary = cart.Summary
type Variations = cart.Variations
type Session = auth.Session
type Profile = auth.Profile
type AuthProvider = auth.Provider

// Constants re-exported from the component packages
const (
	MaxQuantity = cart.MaxQuantity
	PageSize    = catalog.PageSize

	StorageInMemory = memory.ProviderInMemory
	StorageRedis    = memory.ProviderRedis
	StorageSQLite   = memory.ProviderSQLite
	StoragePostgres = memory.ProviderPostgres
)
