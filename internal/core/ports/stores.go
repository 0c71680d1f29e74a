// internal/core/ports/stores.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/stockroom/internal/core/domain"
)

// ItemStore is the persistence port for items. Every write must be visible
// to the next read issued through the same store or transaction.
// Implementations report failures with the domain error types.
type ItemStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	// GetForUpdate reads the item and holds its row lock until the
	// enclosing transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	// FindByName returns nil, nil when the location holds no such product.
	FindByName(ctx context.Context, locationID uuid.UUID, name string) (*domain.Item, error)
	List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error)
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	// Update writes name, category, unit price and threshold only.
	Update(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustQuantity adds delta to the quantity in one conditional write that
	// only applies when the result stays non-negative.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*domain.Item, error)
	// Restock adds draft.Quantity to the item with the same name at
	// draft.LocationID, creating it from the draft when absent.
	Restock(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error)

	LowStock(ctx context.Context) ([]*domain.Item, error)
	SumQuantity(ctx context.Context, name string) (int64, error)
}

// LocationStore is the persistence port for locations.
type LocationStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Location, error)
	List(ctx context.Context) ([]*domain.Location, error)
	Create(ctx context.Context, location *domain.Location) (*domain.Location, error)
	Update(ctx context.Context, location *domain.Location) (*domain.Location, error)
	// Delete fails with ReferentialIntegrityError while items reference the location.
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerStore is the append-only record of sales and wastage.
type LedgerStore interface {
	AppendSale(ctx context.Context, event *domain.SaleEvent) (*domain.SaleEvent, error)
	AppendWastage(ctx context.Context, event *domain.WastageEvent) (*domain.WastageEvent, error)
	ListSales(ctx context.Context, filter domain.EventFilter) ([]*domain.SaleEvent, error)
	ListWastage(ctx context.Context, filter domain.EventFilter) ([]*domain.WastageEvent, error)
	// FindSaleByKey and FindWastageByKey return nil, nil for unknown keys.
	FindSaleByKey(ctx context.Context, key string) (*domain.SaleEvent, error)
	FindWastageByKey(ctx context.Context, key string) (*domain.WastageEvent, error)
}

// Stores groups the stores that share one connection or transaction.
type Stores struct {
	Items     ItemStore
	Locations LocationStore
	Ledger    LedgerStore
}

// TxRunner runs fn as a single unit of work. Every store call made through
// the Stores passed to fn commits together or not at all.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
