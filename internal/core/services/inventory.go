// internal/core/services/inventory.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

// InventoryEngine applies every quantity-changing operation as one unit of
// work against the stores and never computes a new quantity in memory.
// It keeps no state of its own beyond its collaborators.
type InventoryEngine struct {
	stores   ports.Stores
	tx       ports.TxRunner
	cache    ports.CacheRepository
	notifier ports.LowStockNotifier
	cfg      Config
	logger   *slog.Logger
}

// Statically assert that *InventoryEngine implements the InventoryEngine port.
var _ ports.InventoryEngine = (*InventoryEngine)(nil)

// NewInventoryEngine creates an engine over stores. tx must run its
// callbacks against the same backing store as stores.
func NewInventoryEngine(stores ports.Stores, tx ports.TxRunner, logger *slog.Logger, opts ...Option) *InventoryEngine {
	e := &InventoryEngine{
		stores: stores,
		tx:     tx,
		cfg:    DefaultConfig(),
		logger: logger.With(slog.String("service", "inventory")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *InventoryEngine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.OperationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.OperationTimeout)
}

// CreateItem validates the draft and stores a new item at an existing location
func (e *InventoryEngine) CreateItem(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var created *domain.Item
	err := e.tx.WithinTx(ctx, func(ctx context.Context, st ports.Stores) error {
		if _, err := st.Locations.Get(ctx, draft.LocationID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("location_id", "references an unknown location")
			}
			return err
		}

		item, err := st.Items.Create(ctx, draft.ToItem())
		if err != nil {
			return err
		}
		created = item
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	e.logger.InfoContext(ctx, "item created",
		slog.String("item_id", created.ID.String()),
		slog.String("name", created.Name),
		slog.String("location_id", created.LocationID.String()),
		slog.Int("quantity", created.Quantity))

	e.afterWrite(ctx, created)
	return created, nil
}

// UpdateItem applies descriptive field changes. Quantity and location are
// not part of ItemPatch and only change through movements.
func (e *InventoryEngine) UpdateItem(ctx context.Context, id uuid.UUID, patch domain.ItemPatch) (*domain.Item, error) {
	if patch.IsEmpty() {
		return nil, domain.NewValidationError("", "no fields to update")
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var updated *domain.Item
	err := e.tx.WithinTx(ctx, func(ctx context.Context, st ports.Stores) error {
		current, err := st.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		next, err := patch.Apply(*current)
		if err != nil {
			return err
		}

		updated, err = st.Items.Update(ctx, next)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	e.logger.InfoContext(ctx, "item updated", slog.String("item_id", id.String()))

	e.afterWrite(ctx, updated)
	return updated, nil
}

// DeleteItem removes an item. Ledger events keep their item reference.
func (e *InventoryEngine) DeleteItem(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if err := e.stores.Items.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	e.logger.InfoContext(ctx, "item deleted", slog.String("item_id", id.String()))

	e.afterWrite(ctx)
	return nil
}

// Transfer moves quantity units of an item to the pool of the same product
// at targetLocationID, creating that pool when it does not exist yet.
func (e *InventoryEngine) Transfer(ctx context.Context, itemID, targetLocationID uuid.UUID, quantity int) (*domain.TransferResult, error) {
	if err := domain.ValidateMovement(quantity); err != nil {
		return nil, err
	}
	if targetLocationID == uuid.Nil {
		return nil, domain.NewValidationError("target_location_id", "is required")
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	result := &domain.TransferResult{}
	err := e.tx.WithinTx(ctx, func(ctx context.Context, st ports.Stores) error {
		source, err := st.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if source.LocationID == targetLocationID {
			return domain.NewValidationError("target_location_id", "must differ from the item's current location")
		}
		if _, err := st.Locations.Get(ctx, targetLocationID); err != nil {
			return err
		}

		result.Source, err = st.Items.AdjustQuantity(ctx, itemID, -quantity)
		if err != nil {
			return err
		}

		result.Target, err = st.Items.Restock(ctx, source.PoolDraft(targetLocationID, quantity))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to transfer item: %w", err)
	}

	e.logger.InfoContext(ctx, "item transferred",
		slog.String("source_item_id", result.Source.ID.String()),
		slog.String("target_item_id", result.Target.ID.String()),
		slog.String("target_location_id", targetLocationID.String()),
		slog.Int("quantity", quantity))

	e.afterWrite(ctx, result.Source, result.Target)
	return result, nil
}

// RecordSale decrements the item and appends the sale event together. A
// non-empty requestKey that was already recorded replays the original result.
func (e *InventoryEngine) RecordSale(ctx context.Context, itemID uuid.UUID, quantity int, unitRevenue decimal.Decimal, requestKey string) (*domain.SaleResult, error) {
	draft := domain.SaleDraft{
		ItemID:      itemID,
		Quantity:    quantity,
		UnitRevenue: unitRevenue,
		RequestKey:  strings.TrimSpace(requestKey),
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	result := &domain.SaleResult{}
	err := e.tx.WithinTx(ctx, func(ctx context.Context, st ports.Stores) error {
		if draft.RequestKey != "" {
			prior, err := st.Ledger.FindSaleByKey(ctx, draft.RequestKey)
			if err != nil {
				return err
			}
			if prior != nil {
				if !draft.SameAs(prior) {
					return &domain.ConflictError{Reason: "request key was used for a different sale"}
				}
				result.Event, result.Replayed = prior, true
				result.Item, err = currentItem(ctx, st, prior.ItemID)
				return err
			}
		}

		item, err := st.Items.AdjustQuantity(ctx, draft.ItemID, -draft.Quantity)
		if err != nil {
			return err
		}

		event, err := st.Ledger.AppendSale(ctx, draft.ToEvent())
		if err != nil {
			return err
		}

		result.Item, result.Event = item, event
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	if result.Replayed {
		e.logger.InfoContext(ctx, "sale replayed",
			slog.String("sale_id", result.Event.ID.String()),
			slog.String("request_key", draft.RequestKey))
		return result, nil
	}

	e.logger.InfoContext(ctx, "sale recorded",
		slog.String("sale_id", result.Event.ID.String()),
		slog.String("item_id", itemID.String()),
		slog.Int("quantity", quantity),
		slog.Int("remaining", result.Item.Quantity))

	e.afterWrite(ctx, result.Item)
	return result, nil
}

// RecordWastage decrements the item and appends the wastage event together
func (e *InventoryEngine) RecordWastage(ctx context.Context, itemID uuid.UUID, quantity int, reason domain.WastageReason, notes, requestKey string) (*domain.WastageResult, error) {
	draft := domain.WastageDraft{
		ItemID:     itemID,
		Quantity:   quantity,
		Reason:     reason,
		Notes:      strings.TrimSpace(notes),
		RequestKey: strings.TrimSpace(requestKey),
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	result := &domain.WastageResult{}
	err := e.tx.WithinTx(ctx, func(ctx context.Context, st ports.Stores) error {
		if draft.RequestKey != "" {
			prior, err := st.Ledger.FindWastageByKey(ctx, draft.RequestKey)
			if err != nil {
				return err
			}
			if prior != nil {
				if !draft.SameAs(prior) {
					return &domain.ConflictError{Reason: "request key was used for a different wastage"}
				}
				result.Event, result.Replayed = prior, true
				result.Item, err = currentItem(ctx, st, prior.ItemID)
				return err
			}
		}

		item, err := st.Items.AdjustQuantity(ctx, draft.ItemID, -draft.Quantity)
		if err != nil {
			return err
		}

		event, err := st.Ledger.AppendWastage(ctx, draft.ToEvent())
		if err != nil {
			return err
		}

		result.Item, result.Event = item, event
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record wastage: %w", err)
	}

	if result.Replayed {
		e.logger.InfoContext(ctx, "wastage replayed",
			slog.String("wastage_id", result.Event.ID.String()),
			slog.String("request_key", draft.RequestKey))
		return result, nil
	}

	e.logger.InfoContext(ctx, "wastage recorded",
		slog.String("wastage_id", result.Event.ID.String()),
		slog.String("item_id", itemID.String()),
		slog.String("reason", string(reason)),
		slog.Int("quantity", quantity),
		slog.Int("remaining", result.Item.Quantity))

	e.afterWrite(ctx, result.Item)
	return result, nil
}

// currentItem reads the item behind a replayed event; it may have been
// deleted since, in which case the result carries no item.
func currentItem(ctx context.Context, st ports.Stores, id uuid.UUID) (*domain.Item, error) {
	item, err := st.Items.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return item, err
}

// afterWrite runs the post-commit side effects. Neither can undo the write,
// so failures are logged. Bumping the generation retires every cached read
// taken before the commit; if that fails the entries are dropped, and if
// that fails too the TTL bounds staleness.
func (e *InventoryEngine) afterWrite(ctx context.Context, items ...*domain.Item) {
	if e.cache != nil {
		if _, err := e.cache.Incr(ctx, cacheKeyGeneration); err != nil {
			e.logger.WarnContext(ctx, "failed to bump read cache generation",
				slog.String("error", err.Error()))
			if err := e.cache.DeletePattern(ctx, cacheEntryPrefix+"*"); err != nil {
				e.logger.WarnContext(ctx, "failed to invalidate read cache",
					slog.String("error", err.Error()))
			}
		}
	}

	if e.notifier == nil {
		return
	}
	for _, item := range items {
		if item == nil || !item.IsLowStock() {
			continue
		}
		if err := e.notifier.NotifyLowStock(ctx, item); err != nil {
			e.logger.WarnContext(ctx, "failed to publish low stock notification",
				slog.String("item_id", item.ID.String()),
				slog.String("error", err.Error()))
		}
	}
}
