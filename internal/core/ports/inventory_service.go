// internal/core/ports/inventory_service.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockroom/internal/core/domain"
)

// InventoryEngine is the application service port used by the HTTP
// handlers and the seeder. Every operation returns the entities it changed.
type InventoryEngine interface {
	CreateItem(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, patch domain.ItemPatch) (*domain.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error)

	Transfer(ctx context.Context, itemID, targetLocationID uuid.UUID, quantity int) (*domain.TransferResult, error)
	RecordSale(ctx context.Context, itemID uuid.UUID, quantity int, unitRevenue decimal.Decimal, requestKey string) (*domain.SaleResult, error)
	RecordWastage(ctx context.Context, itemID uuid.UUID, quantity int, reason domain.WastageReason, notes, requestKey string) (*domain.WastageResult, error)

	LowStockItems(ctx context.Context) ([]*domain.Item, error)
	AggregateQuantity(ctx context.Context, productName string) (int64, error)

	ListSales(ctx context.Context, filter domain.EventFilter) ([]*domain.SaleEvent, error)
	ListWastage(ctx context.Context, filter domain.EventFilter) ([]*domain.WastageEvent, error)

	CreateLocation(ctx context.Context, draft domain.LocationDraft) (*domain.Location, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, draft domain.LocationDraft) (*domain.Location, error)
	DeleteLocation(ctx context.Context, id uuid.UUID) error
	GetLocation(ctx context.Context, id uuid.UUID) (*domain.Location, error)
	ListLocations(ctx context.Context) ([]*domain.Location, error)
}
