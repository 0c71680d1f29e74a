// Package queue publishes engine side effects as asynq tasks.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
	"github.com/ammerola/stockroom/internal/workers"
)

// Enqueuer is the part of *asynq.Client the notifier uses
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// LowStockNotifier enqueues one stock:low task per item and unique window
type LowStockNotifier struct {
	client Enqueuer
	queue  string
	window time.Duration
	logger *slog.Logger
}

var _ ports.LowStockNotifier = (*LowStockNotifier)(nil)

// NewLowStockNotifier creates a notifier. A zero window disables deduplication.
func NewLowStockNotifier(client Enqueuer, queue string, window time.Duration, logger *slog.Logger) *LowStockNotifier {
	if queue == "" {
		queue = "critical"
	}
	return &LowStockNotifier{
		client: client,
		queue:  queue,
		window: window,
		logger: logger.With(slog.String("component", "low_stock_notifier")),
	}
}

// NotifyLowStock enqueues an alert for item. Repeats within the unique
// window are dropped silently.
func (n *LowStockNotifier) NotifyLowStock(ctx context.Context, item *domain.Item) error {
	opts := []asynq.Option{
		asynq.Queue(n.queue),
		asynq.MaxRetry(5),
		asynq.Retention(24 * time.Hour),
	}
	if n.window > 0 {
		opts = append(opts, asynq.Unique(n.window))
	}

	task, err := workers.NewLowStockTask(workers.LowStockPayload{ItemID: item.ID}, opts...)
	if err != nil {
		return err
	}

	info, err := n.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
		n.logger.DebugContext(ctx, "low stock alert already queued",
			slog.String("item_id", item.ID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue low stock task: %w", err)
	}

	n.logger.InfoContext(ctx, "low stock alert queued",
		slog.String("item_id", item.ID.String()),
		slog.Int("quantity", item.Quantity),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))

	return nil
}
