// internal/workers/lowstock_processor.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

// ItemReader is the slice of the engine the processor needs
type ItemReader interface {
	GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error)
}

// LowStockProcessor handles stock:low tasks
type LowStockProcessor struct {
	items  ItemReader
	logger *slog.Logger
}

var _ ItemReader = (ports.InventoryEngine)(nil)

// NewLowStockProcessor creates a new low stock processor
func NewLowStockProcessor(items ItemReader, logger *slog.Logger) *LowStockProcessor {
	return &LowStockProcessor{
		items:  items,
		logger: logger.With(slog.String("processor", "low_stock")),
	}
}

// ProcessLowStock re-reads the item and raises an alert if it is still at
// or below its threshold. The task may be stale by the time it runs.
func (p *LowStockProcessor) ProcessLowStock(ctx context.Context, t *asynq.Task) error {
	var payload LowStockPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	item, err := p.items.GetItem(ctx, payload.ItemID)
	if errors.Is(err, domain.ErrNotFound) {
		p.logger.InfoContext(ctx, "item deleted before alert",
			slog.String("item_id", payload.ItemID.String()))
		return nil
	}
	if err != nil {
		// StoreUnavailable and friends go back to asynq for retry
		return fmt.Errorf("failed to load item: %w", err)
	}

	if !item.IsLowStock() {
		p.logger.DebugContext(ctx, "item restocked before alert",
			slog.String("item_id", item.ID.String()),
			slog.Int("quantity", item.Quantity),
			slog.Int("threshold", item.Threshold))
		return nil
	}

	p.logger.WarnContext(ctx, "low stock alert",
		slog.String("item_id", item.ID.String()),
		slog.String("name", item.Name),
		slog.String("location_id", item.LocationID.String()),
		slog.String("state", string(item.State())),
		slog.Int("quantity", item.Quantity),
		slog.Int("threshold", item.Threshold),
		slog.Int("deficiency", item.Deficiency()))

	return nil
}
