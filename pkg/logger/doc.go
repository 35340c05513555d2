// Package logger provides structured logging for the ShopEasy storefront core.
//
// # Logger Interface
//
// Every component receives a Logger through its options and never writes to
// stdout directly:
//
//	type Logger interface {
//	    Debug(msg string, fields ...interface{})
//	    Info(msg string, fields ...interface{})
//	    Warn(msg string, fields ...interface{})
//	    Error(msg string, fields ...interface{})
//	    WithFields(fields map[string]interface{}) Logger
//	    ...
//	}
//
// Fields may be passed as a map, as Field values, or as alternating
// key/value pairs:
//
//	log.Info("Catalog fetch served from cache", map[string]interface{}{
//	    "cache_key": key.String(),
//	    "age_ms":    age.Milliseconds(),
//	})
//	log.Warn("Cart persist failed", "error", err)
//
// # Levels
//
// Supported levels in order of severity: DEBUG, INFO, WARN, ERROR.
//
// # Configuration
//
// NewDefaultLogger reads:
//   - LOG_LEVEL: minimum level (debug, info, warn, error)
//   - LOG_FORMAT: output format (text, json)
package logger
