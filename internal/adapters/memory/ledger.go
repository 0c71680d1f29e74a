package memory

import (
	"context"
	"sort"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

type ledgerView view

var _ ports.LedgerStore = (*ledgerView)(nil)

func (v *ledgerView) run(ctx context.Context, op string, fn func(st *state) error) error {
	return (*view)(v).run(ctx, "ledger."+op, fn)
}

func (v *ledgerView) AppendSale(ctx context.Context, event *domain.SaleEvent) (*domain.SaleEvent, error) {
	var out *domain.SaleEvent
	err := v.run(ctx, "append_sale", func(st *state) error {
		if event.RequestKey != "" {
			for _, e := range st.sales {
				if e.RequestKey == event.RequestKey {
					return &domain.ConflictError{Reason: "duplicate request key"}
				}
			}
		}
		st.sales = append(st.sales, *event)
		stored := *event
		out = &stored
		return nil
	})
	return out, err
}

func (v *ledgerView) AppendWastage(ctx context.Context, event *domain.WastageEvent) (*domain.WastageEvent, error) {
	var out *domain.WastageEvent
	err := v.run(ctx, "append_wastage", func(st *state) error {
		if event.RequestKey != "" {
			for _, e := range st.wastage {
				if e.RequestKey == event.RequestKey {
					return &domain.ConflictError{Reason: "duplicate request key"}
				}
			}
		}
		st.wastage = append(st.wastage, *event)
		stored := *event
		out = &stored
		return nil
	})
	return out, err
}

func (v *ledgerView) ListSales(ctx context.Context, filter domain.EventFilter) ([]*domain.SaleEvent, error) {
	var out []*domain.SaleEvent
	err := v.run(ctx, "list_sales", func(st *state) error {
		for _, e := range st.sales {
			if filter.Matches(e.ItemID, e.OccurredAt) {
				e := e
				out = append(out, &e)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, err
}

func (v *ledgerView) ListWastage(ctx context.Context, filter domain.EventFilter) ([]*domain.WastageEvent, error) {
	var out []*domain.WastageEvent
	err := v.run(ctx, "list_wastage", func(st *state) error {
		for _, e := range st.wastage {
			if filter.Matches(e.ItemID, e.OccurredAt) {
				e := e
				out = append(out, &e)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, err
}

func (v *ledgerView) FindSaleByKey(ctx context.Context, key string) (*domain.SaleEvent, error) {
	var out *domain.SaleEvent
	err := v.run(ctx, "find_sale_by_key", func(st *state) error {
		for _, e := range st.sales {
			if e.RequestKey == key {
				e := e
				out = &e
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (v *ledgerView) FindWastageByKey(ctx context.Context, key string) (*domain.WastageEvent, error) {
	var out *domain.WastageEvent
	err := v.run(ctx, "find_wastage_by_key", func(st *state) error {
		for _, e := range st.wastage {
			if e.RequestKey == key {
				e := e
				out = &e
				return nil
			}
		}
		return nil
	})
	return out, err
}
