// internal/adapters/db/item_store.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

var itemColumns = []string{
	"id", "name", "category", "quantity", "unit_price",
	"threshold", "location_id", "created_at", "updated_at",
}

const itemSelect = `
	SELECT id, name, category, quantity, unit_price,
	       threshold, location_id, created_at, updated_at
	FROM items`

const itemReturning = `
	RETURNING id, name, category, quantity, unit_price,
	          threshold, location_id, created_at, updated_at`

// itemStore implements ports.ItemStore
type itemStore struct {
	q      Querier
	logger *slog.Logger
}

var _ ports.ItemStore = (*itemStore)(nil)

// NewItemStore creates an item store over q, which may be the pool or a transaction
func NewItemStore(q Querier, logger *slog.Logger) ports.ItemStore {
	return &itemStore{
		q:      q,
		logger: logger.With(slog.String("repository", "items")),
	}
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(
		&item.ID, &item.Name, &item.Category, &item.Quantity, &item.UnitPrice,
		&item.Threshold, &item.LocationID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func scanItemRow(rows pgx.Rows) (*domain.Item, error) { return scanItem(rows) }

func (s *itemStore) get(ctx context.Context, op, query string, id uuid.UUID) (*domain.Item, error) {
	item, err := scanItem(s.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "item", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", classify(op, err))
	}
	return item, nil
}

// Get retrieves an item by ID
func (s *itemStore) Get(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.get(ctx, "items.get", itemSelect+" WHERE id = $1", id)
}

// GetForUpdate retrieves an item and locks its row
func (s *itemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.get(ctx, "items.get_for_update", itemSelect+" WHERE id = $1 FOR UPDATE", id)
}

func (s *itemStore) FindByName(ctx context.Context, locationID uuid.UUID, name string) (*domain.Item, error) {
	item, err := scanItem(s.q.QueryRow(ctx, itemSelect+" WHERE location_id = $1 AND name = $2", locationID, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item by name: %w", classify("items.find_by_name", err))
	}
	return item, nil
}

// List retrieves items matching filter ordered by name
func (s *itemStore) List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	qb := squirrel.Select(itemColumns...).
		From("items").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Name != "" {
		qb = qb.Where(squirrel.Eq{"name": filter.Name})
	}
	if filter.Category != "" {
		qb = qb.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.LocationID != uuid.Nil {
		qb = qb.Where(squirrel.Eq{"location_id": filter.LocationID.String()})
	}
	qb = qb.OrderBy("name ASC", "id ASC")

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", classify("items.list", err))
	}

	items, err := ScanMany(rows, scanItemRow)
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", classify("items.list", err))
	}
	return items, nil
}

// Create inserts a new item
func (s *itemStore) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	query := `
		INSERT INTO items (
			id, name, category, quantity, unit_price,
			threshold, location_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)` + itemReturning

	created, err := scanItem(s.q.QueryRow(ctx, query,
		item.ID, item.Name, item.Category, item.Quantity, item.UnitPrice,
		item.Threshold, item.LocationID, item.CreatedAt, item.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", classify("items.create", err))
	}

	s.logger.DebugContext(ctx, "item inserted", slog.String("item_id", created.ID.String()))
	return created, nil
}

// Update writes the descriptive fields of an item
func (s *itemStore) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	query := `
		UPDATE items
		SET name = $2, category = $3, unit_price = $4, threshold = $5, updated_at = NOW()
		WHERE id = $1` + itemReturning

	updated, err := scanItem(s.q.QueryRow(ctx, query,
		item.ID, item.Name, item.Category, item.UnitPrice, item.Threshold,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "item", ID: item.ID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", classify("items.update", err))
	}
	return updated, nil
}

// Delete removes an item
func (s *itemStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", classify("items.delete", err))
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "item", ID: id}
	}
	return nil
}

// AdjustQuantity applies delta only when the result stays non-negative, so
// two concurrent decrements can never both pass a stale check.
func (s *itemStore) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*domain.Item, error) {
	query := `
		UPDATE items
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= 0` + itemReturning

	item, err := scanItem(s.q.QueryRow(ctx, query, id, delta))
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to adjust quantity: %w", classify("items.adjust_quantity", err))
	}

	// No row matched: the item is gone or the condition failed.
	var available int
	err = s.q.QueryRow(ctx, "SELECT quantity FROM items WHERE id = $1", id).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "item", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quantity: %w", classify("items.adjust_quantity", err))
	}
	return nil, &domain.InsufficientStockError{ItemID: id, Requested: -delta, Available: available}
}

// Restock adds to the pool of draft.Name at draft.LocationID, creating it when absent
func (s *itemStore) Restock(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error) {
	item := draft.ToItem()
	query := `
		INSERT INTO items (
			id, name, category, quantity, unit_price,
			threshold, location_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (location_id, name) DO UPDATE
		SET quantity = items.quantity + EXCLUDED.quantity, updated_at = NOW()` + itemReturning

	restocked, err := scanItem(s.q.QueryRow(ctx, query,
		item.ID, item.Name, item.Category, item.Quantity, item.UnitPrice,
		item.Threshold, item.LocationID, item.CreatedAt, item.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to restock item: %w", classify("items.restock", err))
	}
	return restocked, nil
}

// LowStock returns items at or below threshold, most deficient first
func (s *itemStore) LowStock(ctx context.Context) ([]*domain.Item, error) {
	rows, err := s.q.Query(ctx, itemSelect+`
		WHERE quantity <= threshold
		ORDER BY quantity - threshold ASC, name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock items: %w", classify("items.low_stock", err))
	}

	items, err := ScanMany(rows, scanItemRow)
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", classify("items.low_stock", err))
	}
	return items, nil
}

// SumQuantity totals the quantity of a product across all locations
func (s *itemStore) SumQuantity(ctx context.Context, name string) (int64, error) {
	var total int64
	err := s.q.QueryRow(ctx, "SELECT COALESCE(SUM(quantity), 0) FROM items WHERE name = $1", name).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum quantity: %w", classify("items.sum_quantity", err))
	}
	return total, nil
}
