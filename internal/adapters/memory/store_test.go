package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stockroom/internal/adapters/memory"
	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
	"github.com/ammerola/stockroom/test/helpers"
)

func seedLocation(t *testing.T, stores ports.Stores, name string) *domain.Location {
	t.Helper()
	draft := domain.LocationDraft{Name: name}
	loc, err := stores.Locations.Create(context.Background(), draft.ToLocation())
	require.NoError(t, err)
	return loc
}

func seedItem(t *testing.T, stores ports.Stores, locationID uuid.UUID, name string, quantity, threshold int) *domain.Item {
	t.Helper()
	draft := domain.ItemDraft{
		Name: name, Category: "test", Quantity: quantity, Threshold: threshold,
		UnitPrice: decimal.NewFromFloat(1.5), LocationID: locationID,
	}
	item, err := stores.Items.Create(context.Background(), draft.ToItem())
	require.NoError(t, err)
	return item
}

func TestStore_AdjustQuantity(t *testing.T) {
	ctx := context.Background()
	stores := memory.New(helpers.TestLogger()).Stores()
	loc := seedLocation(t, stores, "W1")
	item := seedItem(t, stores, loc.ID, "Flour", 5, 2)

	tests := []struct {
		name         string
		delta        int
		wantQuantity int
		wantErr      error
	}{
		{name: "decrement_within_stock", delta: -3, wantQuantity: 2},
		{name: "decrement_beyond_stock", delta: -3, wantQuantity: 2, wantErr: domain.ErrInsufficientStock},
		{name: "increment", delta: 4, wantQuantity: 6},
		{name: "decrement_to_zero", delta: -6, wantQuantity: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stores.Items.AdjustQuantity(ctx, item.ID, tt.delta)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			got, err := stores.Items.Get(ctx, item.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuantity, got.Quantity)
		})
	}

	_, err := stores.Items.AdjustQuantity(ctx, uuid.New(), -1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_InsufficientStockReportsAvailable(t *testing.T) {
	ctx := context.Background()
	stores := memory.New(helpers.TestLogger()).Stores()
	loc := seedLocation(t, stores, "W1")
	item := seedItem(t, stores, loc.ID, "Flour", 3, 1)

	_, err := stores.Items.AdjustQuantity(ctx, item.ID, -5)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
}

func TestStore_CreateEnforcesConstraints(t *testing.T) {
	ctx := context.Background()
	stores := memory.New(helpers.TestLogger()).Stores()
	loc := seedLocation(t, stores, "W1")
	seedItem(t, stores, loc.ID, "Flour", 5, 2)

	dup := domain.ItemDraft{Name: "Flour", LocationID: loc.ID}
	_, err := stores.Items.Create(ctx, dup.ToItem())
	assert.ErrorIs(t, err, domain.ErrValidation)

	orphan := domain.ItemDraft{Name: "Sugar", LocationID: uuid.New()}
	_, err = stores.Items.Create(ctx, orphan.ToItem())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_RestockMergesByName(t *testing.T) {
	ctx := context.Background()
	stores := memory.New(helpers.TestLogger()).Stores()
	w1 := seedLocation(t, stores, "W1")
	w2 := seedLocation(t, stores, "W2")
	existing := seedItem(t, stores, w2.ID, "Rice", 2, 1)

	merged, err := stores.Items.Restock(ctx, domain.ItemDraft{Name: "Rice", Quantity: 3, LocationID: w2.ID})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, merged.ID)
	assert.Equal(t, 5, merged.Quantity)

	created, err := stores.Items.Restock(ctx, domain.ItemDraft{Name: "Rice", Quantity: 4, Threshold: 1, LocationID: w1.ID})
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, created.ID)
	assert.Equal(t, 4, created.Quantity)

	total, err := stores.Items.SumQuantity(ctx, "Rice")
	require.NoError(t, err)
	assert.Equal(t, int64(9), total)
}

func TestStore_RestockRejectsOverflow(t *testing.T) {
	ctx := context.Background()
	stores := memory.New(helpers.TestLogger()).Stores()
	w1 := seedLocation(t, stores, "W1")
	full := seedItem(t, stores, w1.ID, "Rice", domain.MaxQuantity, 1)

	_, err := stores.Items.Restock(ctx, domain.ItemDraft{Name: "Rice", Quantity: 1, LocationID: w1.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := stores.Items.Get(ctx, full.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxQuantity, got.Quantity)
}

func TestStore_LowStockOrdering(t *testing.T) {
	ctx := context.Background()
	stores := memory.New(helpers.TestLogger()).Stores()
	loc := seedLocation(t, stores, "W1")

	seedItem(t, stores, loc.ID, "at-threshold", 5, 5)
	seedItem(t, stores, loc.ID, "above-threshold", 6, 5)
	seedItem(t, stores, loc.ID, "deep", 0, 7)
	seedItem(t, stores, loc.ID, "shallow", 2, 4)

	low, err := stores.Items.LowStock(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(low))
	for _, item := range low {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"deep", "shallow", "at-threshold"}, names)
}

func TestStore_DeleteLocationWithItems(t *testing.T) {
	ctx := context.Background()
	stores := memory.New(helpers.TestLogger()).Stores()
	loc := seedLocation(t, stores, "W1")
	item := seedItem(t, stores, loc.ID, "Flour", 5, 2)

	err := stores.Locations.Delete(ctx, loc.ID)
	assert.ErrorIs(t, err, domain.ErrReferentialIntegrity)

	got, err := stores.Items.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)

	require.NoError(t, stores.Items.Delete(ctx, item.ID))
	require.NoError(t, stores.Locations.Delete(ctx, loc.ID))
	assert.ErrorIs(t, stores.Locations.Delete(ctx, loc.ID), domain.ErrNotFound)
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := memory.New(helpers.TestLogger())
	stores := store.Stores()
	loc := seedLocation(t, stores, "W1")
	item := seedItem(t, stores, loc.ID, "Flour", 5, 2)

	boom := errors.New("append failed")
	err := store.WithinTx(ctx, func(ctx context.Context, tx ports.Stores) error {
		if _, err := tx.Items.AdjustQuantity(ctx, item.ID, -2); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := stores.Items.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
}

func TestStore_DuplicateRequestKey(t *testing.T) {
	ctx := context.Background()
	stores := memory.New(helpers.TestLogger()).Stores()

	draft := domain.SaleDraft{ItemID: uuid.New(), Quantity: 1, RequestKey: "req-1"}
	_, err := stores.Ledger.AppendSale(ctx, draft.ToEvent())
	require.NoError(t, err)

	_, err = stores.Ledger.AppendSale(ctx, draft.ToEvent())
	assert.ErrorIs(t, err, domain.ErrConflict)

	found, err := stores.Ledger.FindSaleByKey(ctx, "req-1")
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := stores.Ledger.FindSaleByKey(ctx, "req-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_CancelledContext(t *testing.T) {
	stores := memory.New(helpers.TestLogger()).Stores()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stores.Items.List(ctx, domain.ItemFilter{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
