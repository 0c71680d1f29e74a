package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

// readWithRetry retries fn with exponential backoff while it fails with
// StoreUnavailableError. Only pure reads go through here.
func readWithRetry[T any](ctx context.Context, e *InventoryEngine, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.cfg.RetryInitialInterval
	policy.MaxInterval = e.cfg.RetryMaxInterval
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() (T, error) {
		attempt++
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !domain.IsRetryable(err) || ctx.Err() != nil {
			return v, backoff.Permanent(err)
		}
		e.logger.WarnContext(ctx, "store read failed, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		return v, err
	}

	retries := e.cfg.ReadRetries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(retries)), ctx)

	v, err := backoff.RetryWithData(operation, b)
	if err != nil {
		// the backoff timer reports a bare context error when the deadline
		// fires between attempts
		if !domain.IsRetryable(err) && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
			err = &domain.StoreUnavailableError{Op: op, Err: err}
		}
		var zero T
		return zero, fmt.Errorf("failed to %s: %w", op, err)
	}
	return v, nil
}

// cachedRead serves suffix from the read cache at the current generation
// and loads from the store on a miss. Writes bump the generation after they
// commit, so a fill is only stored when the generation did not move while
// the store was being read, and always under the generation it was read at.
func cachedRead[T any](ctx context.Context, e *InventoryEngine, suffix string, load func(ctx context.Context) (T, error)) (T, error) {
	gen, ok := e.cacheGeneration(ctx)
	if !ok {
		return load(ctx)
	}

	key := cacheEntryKey(gen, suffix)
	var cached T
	if e.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if current, ok := e.cacheGeneration(ctx); ok && current == gen {
		e.cacheSet(ctx, key, v)
	}
	return v, nil
}

// LowStockItems returns every item at or below its threshold, most
// deficient first. It has no side effects beyond filling the read cache.
func (e *InventoryEngine) LowStockItems(ctx context.Context) ([]*domain.Item, error) {
	return cachedRead(ctx, e, cacheKeyLowStock, func(ctx context.Context) ([]*domain.Item, error) {
		items, err := readWithRetry(ctx, e, "list low stock items", e.stores.Items.LowStock)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []*domain.Item{}
		}
		return items, nil
	})
}

// AggregateQuantity sums the quantity of every item named productName
// across all locations.
func (e *InventoryEngine) AggregateQuantity(ctx context.Context, productName string) (int64, error) {
	if productName == "" {
		return 0, domain.NewValidationError("name", "is required")
	}

	return cachedRead(ctx, e, cacheKeyAggregate+productName, func(ctx context.Context) (int64, error) {
		return readWithRetry(ctx, e, "aggregate quantity", func(ctx context.Context) (int64, error) {
			return e.stores.Items.SumQuantity(ctx, productName)
		})
	})
}

// GetItem returns a single item
func (e *InventoryEngine) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return readWithRetry(ctx, e, "get item", func(ctx context.Context) (*domain.Item, error) {
		return e.stores.Items.Get(ctx, id)
	})
}

// ListItems returns the items matching filter ordered by name
func (e *InventoryEngine) ListItems(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	return readWithRetry(ctx, e, "list items", func(ctx context.Context) ([]*domain.Item, error) {
		return e.stores.Items.List(ctx, filter)
	})
}

// ListSales returns sale events, newest first
func (e *InventoryEngine) ListSales(ctx context.Context, filter domain.EventFilter) ([]*domain.SaleEvent, error) {
	return readWithRetry(ctx, e, "list sales", func(ctx context.Context) ([]*domain.SaleEvent, error) {
		return e.stores.Ledger.ListSales(ctx, filter)
	})
}

// ListWastage returns wastage events, newest first
func (e *InventoryEngine) ListWastage(ctx context.Context, filter domain.EventFilter) ([]*domain.WastageEvent, error) {
	return readWithRetry(ctx, e, "list wastage", func(ctx context.Context) ([]*domain.WastageEvent, error) {
		return e.stores.Ledger.ListWastage(ctx, filter)
	})
}

// cacheGeneration reads the write generation. An absent counter is
// generation zero; an unreachable cache disables caching for the call.
func (e *InventoryEngine) cacheGeneration(ctx context.Context) (int64, bool) {
	if e.cache == nil {
		return 0, false
	}
	var gen int64
	err := e.cache.Get(ctx, cacheKeyGeneration, &gen)
	if err == nil || errors.Is(err, ports.ErrCacheMiss) {
		return gen, true
	}
	e.logger.WarnContext(ctx, "read cache unavailable",
		slog.String("key", cacheKeyGeneration),
		slog.String("error", err.Error()))
	return 0, false
}

func cacheEntryKey(gen int64, suffix string) string {
	return fmt.Sprintf("%s%d:%s", cacheEntryPrefix, gen, suffix)
}

func (e *InventoryEngine) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if e.cache == nil {
		return false
	}
	err := e.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, ports.ErrCacheMiss) {
		e.logger.WarnContext(ctx, "read cache unavailable",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	return false
}

func (e *InventoryEngine) cacheSet(ctx context.Context, key string, value interface{}) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetWithTTL(ctx, key, value, e.cfg.CacheTTL); err != nil {
		e.logger.WarnContext(ctx, "failed to fill read cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}
