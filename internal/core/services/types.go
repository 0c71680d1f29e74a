// internal/core/services/types.go
package services

import (
	"time"

	"github.com/ammerola/stockroom/internal/core/ports"
)

// Config tunes the engine's store interaction
type Config struct {
	// OperationTimeout bounds every engine call. A store call that does not
	// return in time surfaces as StoreUnavailableError.
	OperationTimeout time.Duration
	// ReadRetries is the number of extra attempts for pure reads that fail
	// with StoreUnavailableError. Writes are never retried.
	ReadRetries          int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	// CacheTTL bounds how stale a cached low-stock or aggregate read can be
	// if a write cannot bump the cache generation.
	CacheTTL time.Duration
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		OperationTimeout:     5 * time.Second,
		ReadRetries:          3,
		RetryInitialInterval: 50 * time.Millisecond,
		RetryMaxInterval:     time.Second,
		CacheTTL:             30 * time.Second,
	}
}

// Option configures an InventoryEngine
type Option func(*InventoryEngine)

// WithConfig overrides the defaults
func WithConfig(cfg Config) Option {
	return func(e *InventoryEngine) { e.cfg = cfg }
}

// WithCache enables the read cache for low-stock and aggregate queries
func WithCache(cache ports.CacheRepository) Option {
	return func(e *InventoryEngine) { e.cache = cache }
}

// WithNotifier registers a low-stock notifier
func WithNotifier(n ports.LowStockNotifier) Option {
	return func(e *InventoryEngine) { e.notifier = n }
}

// Cached reads live under stockroom:v<generation>:<suffix>
const (
	cachePrefix        = "stockroom:"
	cacheKeyGeneration = cachePrefix + "generation"
	cacheEntryPrefix   = cachePrefix + "v"
	cacheKeyLowStock   = "low_stock"
	cacheKeyAggregate  = "aggregate:"
)
