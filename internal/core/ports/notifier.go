package ports

import (
	"context"

	"github.com/ammerola/stockroom/internal/core/domain"
)

// LowStockNotifier is told about items that are at or below their threshold
// after a committed mutation.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, item *domain.Item) error
}
