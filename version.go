package shopeasy

// Version information for the ShopEasy storefront core
const (
	// Version is the current storefront version
	Version = "development"

	// BuildDate is set during build time
	BuildDate = "development"

	// GitCommit is set during build time
	GitCommit = "unknown"
)
