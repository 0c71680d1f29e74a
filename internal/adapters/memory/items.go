package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

type itemView view

var _ ports.ItemStore = (*itemView)(nil)

func (v *itemView) run(ctx context.Context, op string, fn func(st *state) error) error {
	return (*view)(v).run(ctx, "items."+op, fn)
}

func (v *itemView) Get(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	var out *domain.Item
	err := v.run(ctx, "get", func(st *state) error {
		item, ok := st.items[id]
		if !ok {
			return &domain.NotFoundError{Entity: "item", ID: id}
		}
		out = &item
		return nil
	})
	return out, err
}

// GetForUpdate is Get; the store lock already serialises the transaction.
func (v *itemView) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return v.Get(ctx, id)
}

func (v *itemView) FindByName(ctx context.Context, locationID uuid.UUID, name string) (*domain.Item, error) {
	var out *domain.Item
	err := v.run(ctx, "find_by_name", func(st *state) error {
		if item, ok := st.findByName(locationID, name); ok {
			out = &item
		}
		return nil
	})
	return out, err
}

func (v *itemView) List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	var out []*domain.Item
	err := v.run(ctx, "list", func(st *state) error {
		for _, item := range st.items {
			if filter.Name != "" && item.Name != filter.Name {
				continue
			}
			if filter.Category != "" && item.Category != filter.Category {
				continue
			}
			if filter.LocationID != uuid.Nil && item.LocationID != filter.LocationID {
				continue
			}
			item := item
			out = append(out, &item)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

func (v *itemView) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	var out *domain.Item
	err := v.run(ctx, "create", func(st *state) error {
		if err := st.checkInsert(item); err != nil {
			return err
		}
		st.items[item.ID] = *item
		stored := *item
		out = &stored
		return nil
	})
	return out, err
}

func (v *itemView) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	var out *domain.Item
	err := v.run(ctx, "update", func(st *state) error {
		current, ok := st.items[item.ID]
		if !ok {
			return &domain.NotFoundError{Entity: "item", ID: item.ID}
		}
		if item.Name != current.Name {
			if _, taken := st.findByName(current.LocationID, item.Name); taken {
				return domain.NewValidationError("name", "already exists at this location")
			}
		}

		current.Name = item.Name
		current.Category = item.Category
		current.UnitPrice = item.UnitPrice
		current.Threshold = item.Threshold
		current.UpdatedAt = time.Now().UTC()
		st.items[item.ID] = current
		out = &current
		return nil
	})
	return out, err
}

func (v *itemView) Delete(ctx context.Context, id uuid.UUID) error {
	return v.run(ctx, "delete", func(st *state) error {
		if _, ok := st.items[id]; !ok {
			return &domain.NotFoundError{Entity: "item", ID: id}
		}
		delete(st.items, id)
		return nil
	})
}

func (v *itemView) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*domain.Item, error) {
	var out *domain.Item
	err := v.run(ctx, "adjust_quantity", func(st *state) error {
		item, ok := st.items[id]
		if !ok {
			return &domain.NotFoundError{Entity: "item", ID: id}
		}
		if item.Quantity+delta < 0 {
			return &domain.InsufficientStockError{ItemID: id, Requested: -delta, Available: item.Quantity}
		}
		item.Quantity += delta
		item.UpdatedAt = time.Now().UTC()
		st.items[id] = item
		out = &item
		return nil
	})
	return out, err
}

func (v *itemView) Restock(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error) {
	var out *domain.Item
	err := v.run(ctx, "restock", func(st *state) error {
		if existing, ok := st.findByName(draft.LocationID, draft.Name); ok {
			if draft.Quantity > domain.MaxQuantity-existing.Quantity {
				return domain.NewValidationError("quantity", "restock would exceed the maximum quantity")
			}
			existing.Quantity += draft.Quantity
			existing.UpdatedAt = time.Now().UTC()
			st.items[existing.ID] = existing
			out = &existing
			return nil
		}

		item := draft.ToItem()
		if err := st.checkInsert(item); err != nil {
			return err
		}
		st.items[item.ID] = *item
		out = item
		return nil
	})
	return out, err
}

func (v *itemView) LowStock(ctx context.Context) ([]*domain.Item, error) {
	var out []*domain.Item
	err := v.run(ctx, "low_stock", func(st *state) error {
		for _, item := range st.items {
			if item.IsLowStock() {
				item := item
				out = append(out, &item)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if di, dj := out[i].Deficiency(), out[j].Deficiency(); di != dj {
			return di < dj
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

func (v *itemView) SumQuantity(ctx context.Context, name string) (int64, error) {
	var total int64
	err := v.run(ctx, "sum_quantity", func(st *state) error {
		for _, item := range st.items {
			if item.Name == name {
				total += int64(item.Quantity)
			}
		}
		return nil
	})
	return total, err
}

func (st *state) findByName(locationID uuid.UUID, name string) (domain.Item, bool) {
	for _, item := range st.items {
		if item.LocationID == locationID && item.Name == name {
			return item, true
		}
	}
	return domain.Item{}, false
}

// checkInsert mirrors the unique and foreign key constraints of the items table.
func (st *state) checkInsert(item *domain.Item) error {
	if _, ok := st.locations[item.LocationID]; !ok {
		return domain.NewValidationError("location_id", "references an unknown location")
	}
	if _, taken := st.findByName(item.LocationID, item.Name); taken {
		return domain.NewValidationError("name", "already exists at this location")
	}
	if _, dup := st.items[item.ID]; dup {
		return &domain.ConflictError{Reason: "item id already exists"}
	}
	return nil
}
