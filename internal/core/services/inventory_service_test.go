package services_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stockroom/internal/adapters/memory"
	redis_a "github.com/ammerola/stockroom/internal/adapters/redis_adapter"
	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
	"github.com/ammerola/stockroom/internal/core/services"
	"github.com/ammerola/stockroom/test/helpers"
	"github.com/ammerola/stockroom/test/mocks"
)

func testConfig() services.Config {
	return services.Config{
		OperationTimeout:     time.Second,
		ReadRetries:          3,
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     2 * time.Millisecond,
		CacheTTL:             time.Minute,
	}
}

func newEngine(t *testing.T, storeOpts []memory.Option, opts ...services.Option) (*services.InventoryEngine, *memory.Store) {
	t.Helper()
	store := memory.New(helpers.TestLogger(), storeOpts...)
	opts = append([]services.Option{services.WithConfig(testConfig())}, opts...)
	return services.NewInventoryEngine(store.Stores(), store, helpers.TestLogger(), opts...), store
}

func mustLocation(t *testing.T, e *services.InventoryEngine, name string) *domain.Location {
	t.Helper()
	loc, err := e.CreateLocation(context.Background(), domain.LocationDraft{Name: name})
	require.NoError(t, err)
	return loc
}

func mustItem(t *testing.T, e *services.InventoryEngine, locationID uuid.UUID, overrides ...func(*domain.ItemDraft)) *domain.Item {
	t.Helper()
	item, err := e.CreateItem(context.Background(), helpers.NewItemDraft(locationID, overrides...))
	require.NoError(t, err)
	return item
}

func quantity(n int) func(*domain.ItemDraft) {
	return func(d *domain.ItemDraft) { d.Quantity = n }
}

func TestCreateItem(t *testing.T) {
	engine, _ := newEngine(t, nil)
	loc := mustLocation(t, engine, "North")

	tests := []struct {
		name     string
		mutate   func(*domain.ItemDraft)
		wantErr  error
		wantName string
	}{
		{
			name:     "valid",
			mutate:   func(d *domain.ItemDraft) { d.Name = "  Cheddar  " },
			wantName: "Cheddar",
		},
		{
			name:    "empty_name",
			mutate:  func(d *domain.ItemDraft) { d.Name = "   " },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "negative_quantity",
			mutate:  func(d *domain.ItemDraft) { d.Name = "A"; d.Quantity = -1 },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "negative_threshold",
			mutate:  func(d *domain.ItemDraft) { d.Name = "B"; d.Threshold = -1 },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "negative_price",
			mutate:  func(d *domain.ItemDraft) { d.Name = "C"; d.UnitPrice = decimal.NewFromInt(-1) },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown_location",
			mutate:  func(d *domain.ItemDraft) { d.Name = "D"; d.LocationID = uuid.New() },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "duplicate_name_at_location",
			mutate:  func(d *domain.ItemDraft) { d.Name = "Cheddar" },
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := helpers.NewItemDraft(loc.ID, tt.mutate)
			item, err := engine.CreateItem(context.Background(), draft)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, item)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, item.ID)
			assert.Equal(t, tt.wantName, item.Name)
			assert.Equal(t, loc.ID, item.LocationID)
		})
	}
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)
	loc := mustLocation(t, engine, "North")
	item := mustItem(t, engine, loc.ID)
	mustItem(t, engine, loc.ID, func(d *domain.ItemDraft) { d.Name = "Skim Milk 1L" })

	name := "Whole Milk 2L"
	threshold := 8
	price := decimal.RequireFromString("2.99")

	updated, err := engine.UpdateItem(ctx, item.ID, domain.ItemPatch{Name: &name, Threshold: &threshold, UnitPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, 8, updated.Threshold)
	assert.True(t, price.Equal(updated.UnitPrice))
	assert.Equal(t, item.Quantity, updated.Quantity)
	assert.Equal(t, item.LocationID, updated.LocationID)

	_, err = engine.UpdateItem(ctx, item.ID, domain.ItemPatch{})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	taken := "Skim Milk 1L"
	_, err = engine.UpdateItem(ctx, item.ID, domain.ItemPatch{Name: &taken})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	negative := -2
	_, err = engine.UpdateItem(ctx, item.ID, domain.ItemPatch{Threshold: &negative})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = engine.UpdateItem(ctx, uuid.New(), domain.ItemPatch{Name: &name})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteItem_KeepsLedger(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)
	loc := mustLocation(t, engine, "North")
	item := mustItem(t, engine, loc.ID)

	_, err := engine.RecordSale(ctx, item.ID, 2, decimal.NewFromInt(2), "")
	require.NoError(t, err)

	require.NoError(t, engine.DeleteItem(ctx, item.ID))

	_, err = engine.GetItem(ctx, item.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = engine.DeleteItem(ctx, item.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	sales, err := engine.ListSales(ctx, domain.EventFilter{ItemID: item.ID})
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestTransfer(t *testing.T) {
	tests := []struct {
		name       string
		quantity   int
		target     func(north, south *domain.Location) uuid.UUID
		item       func(item *domain.Item) uuid.UUID
		wantErr    error
		wantSource int
		wantTarget int
	}{
		{
			name:       "creates_target_pool",
			quantity:   4,
			target:     func(_, south *domain.Location) uuid.UUID { return south.ID },
			wantSource: 6,
			wantTarget: 4,
		},
		{
			name:       "moves_everything",
			quantity:   10,
			target:     func(_, south *domain.Location) uuid.UUID { return south.ID },
			wantSource: 0,
			wantTarget: 10,
		},
		{
			name:     "insufficient_stock",
			quantity: 11,
			target:   func(_, south *domain.Location) uuid.UUID { return south.ID },
			wantErr:  domain.ErrInsufficientStock,
		},
		{
			name:     "same_location",
			quantity: 1,
			target:   func(north, _ *domain.Location) uuid.UUID { return north.ID },
			wantErr:  domain.ErrValidation,
		},
		{
			name:     "unknown_target",
			quantity: 1,
			target:   func(_, _ *domain.Location) uuid.UUID { return uuid.New() },
			wantErr:  domain.ErrNotFound,
		},
		{
			name:     "missing_target",
			quantity: 1,
			target:   func(_, _ *domain.Location) uuid.UUID { return uuid.Nil },
			wantErr:  domain.ErrValidation,
		},
		{
			name:     "zero_quantity",
			quantity: 0,
			target:   func(_, south *domain.Location) uuid.UUID { return south.ID },
			wantErr:  domain.ErrValidation,
		},
		{
			name:     "unknown_item",
			quantity: 1,
			target:   func(_, south *domain.Location) uuid.UUID { return south.ID },
			item:     func(*domain.Item) uuid.UUID { return uuid.New() },
			wantErr:  domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			engine, _ := newEngine(t, nil)
			north := mustLocation(t, engine, "North")
			south := mustLocation(t, engine, "South")
			item := mustItem(t, engine, north.ID)

			itemID := item.ID
			if tt.item != nil {
				itemID = tt.item(item)
			}

			result, err := engine.Transfer(ctx, itemID, tt.target(north, south), tt.quantity)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				got, err := engine.GetItem(ctx, item.ID)
				require.NoError(t, err)
				assert.Equal(t, 10, got.Quantity, "failed transfer must not move stock")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, result.Source.Quantity)
			assert.Equal(t, tt.wantTarget, result.Target.Quantity)
			assert.Equal(t, south.ID, result.Target.LocationID)
			assert.Equal(t, item.Name, result.Target.Name)
			assert.Equal(t, item.Threshold, result.Target.Threshold)
			assert.True(t, item.UnitPrice.Equal(result.Target.UnitPrice))
		})
	}
}

func TestTransfer_InsufficientReportsAvailable(t *testing.T) {
	engine, _ := newEngine(t, nil)
	north := mustLocation(t, engine, "North")
	south := mustLocation(t, engine, "South")
	item := mustItem(t, engine, north.ID, quantity(3))

	_, err := engine.Transfer(context.Background(), item.ID, south.ID, 5)

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)

	pools, err := engine.ListItems(context.Background(), domain.ItemFilter{LocationID: south.ID})
	require.NoError(t, err)
	assert.Empty(t, pools, "a failed transfer must not create the target pool")
}

func TestTransfer_MergesIntoExistingPool(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)
	north := mustLocation(t, engine, "North")
	south := mustLocation(t, engine, "South")
	source := mustItem(t, engine, north.ID, quantity(10))
	target := mustItem(t, engine, south.ID, quantity(2))

	result, err := engine.Transfer(ctx, source.ID, south.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, target.ID, result.Target.ID)
	assert.Equal(t, 5, result.Target.Quantity)
	assert.Equal(t, 7, result.Source.Quantity)
}

func TestTransfer_RejectsQuantityOverflow(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)
	north := mustLocation(t, engine, "North")
	south := mustLocation(t, engine, "South")
	source := mustItem(t, engine, north.ID, quantity(10))
	target := mustItem(t, engine, south.ID, quantity(domain.MaxQuantity))

	_, err := engine.Transfer(ctx, source.ID, south.ID, 1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = engine.Transfer(ctx, source.ID, south.ID, domain.MaxQuantity+1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := engine.GetItem(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)

	got, err = engine.GetItem(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxQuantity, got.Quantity)
}

func TestTransfer_ConcurrentConservesTotal(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)

	locations := []*domain.Location{
		mustLocation(t, engine, "North"),
		mustLocation(t, engine, "South"),
		mustLocation(t, engine, "East"),
	}
	pools := make([]*domain.Item, len(locations))
	for i, loc := range locations {
		pools[i] = mustItem(t, engine, loc.ID, func(d *domain.ItemDraft) {
			d.Name = "Rice 5kg"
			d.Quantity = 20
		})
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 50; i++ {
				from := rng.Intn(len(pools))
				to := (from + 1 + rng.Intn(len(pools)-1)) % len(pools)
				_, err := engine.Transfer(ctx, pools[from].ID, locations[to].ID, 1+rng.Intn(6))
				if err != nil && !errors.Is(err, domain.ErrInsufficientStock) {
					t.Errorf("unexpected transfer error: %v", err)
				}
			}
		}(int64(w))
	}
	wg.Wait()

	total, err := engine.AggregateQuantity(ctx, "Rice 5kg")
	require.NoError(t, err)
	assert.Equal(t, int64(60), total)

	items, err := engine.ListItems(ctx, domain.ItemFilter{Name: "Rice 5kg"})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	for _, item := range items {
		assert.GreaterOrEqual(t, item.Quantity, 0)
	}
}

func TestRecordSale(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)
	loc := mustLocation(t, engine, "North")
	item := mustItem(t, engine, loc.ID, quantity(5))

	result, err := engine.RecordSale(ctx, item.ID, 2, decimal.RequireFromString("1.50"), "")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Item.Quantity)
	assert.Equal(t, 2, result.Event.Quantity)
	assert.True(t, decimal.RequireFromString("3.00").Equal(result.Event.TotalRevenue()))
	assert.False(t, result.Replayed)

	_, err = engine.RecordSale(ctx, item.ID, 4, decimal.NewFromInt(1), "")
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr), "got %v", err)
	assert.Equal(t, 3, stockErr.Available)

	_, err = engine.RecordSale(ctx, item.ID, 1, decimal.NewFromInt(-1), "")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = engine.RecordSale(ctx, item.ID, 0, decimal.NewFromInt(1), "")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = engine.RecordSale(ctx, uuid.New(), 1, decimal.NewFromInt(1), "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	sales, err := engine.ListSales(ctx, domain.EventFilter{ItemID: item.ID})
	require.NoError(t, err)
	assert.Len(t, sales, 1, "failed sales must not leave events")
}

func TestRecordSale_RequestKeyReplays(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)
	loc := mustLocation(t, engine, "North")
	item := mustItem(t, engine, loc.ID, quantity(5))

	first, err := engine.RecordSale(ctx, item.ID, 2, decimal.NewFromInt(1), "order-42")
	require.NoError(t, err)

	again, err := engine.RecordSale(ctx, item.ID, 2, decimal.NewFromInt(1), " order-42 ")
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.Event.ID, again.Event.ID)
	assert.Equal(t, 3, again.Item.Quantity)

	_, err = engine.RecordSale(ctx, item.ID, 3, decimal.NewFromInt(1), "order-42")
	assert.True(t, errors.Is(err, domain.ErrConflict))

	got, err := engine.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}

func TestRecordSale_RequestKeyConflicts(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		revenue  string
		otherItem bool
	}{
		{name: "other_revenue", quantity: 1, revenue: "999"},
		{name: "other_quantity", quantity: 2, revenue: "5"},
		{name: "other_item", quantity: 1, revenue: "5", otherItem: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			engine, _ := newEngine(t, nil)
			loc := mustLocation(t, engine, "North")
			item := mustItem(t, engine, loc.ID, quantity(5))
			other := mustItem(t, engine, loc.ID, quantity(5), func(d *domain.ItemDraft) { d.Name = "Oat Milk 1L" })

			_, err := engine.RecordSale(ctx, item.ID, 1, decimal.NewFromInt(5), "k1")
			require.NoError(t, err)

			target := item.ID
			if tt.otherItem {
				target = other.ID
			}
			_, err = engine.RecordSale(ctx, target, tt.quantity, decimal.RequireFromString(tt.revenue), "k1")
			assert.ErrorIs(t, err, domain.ErrConflict)

			sales, err := engine.ListSales(ctx, domain.EventFilter{})
			require.NoError(t, err)
			require.Len(t, sales, 1)
			assert.True(t, decimal.NewFromInt(5).Equal(sales[0].UnitRevenue))
		})
	}
}

func TestRecordSale_ConcurrentPair(t *testing.T) {
	// Two sales of 3 against a quantity of 5: exactly one may win.
	for run := 0; run < 50; run++ {
		engine, _ := newEngine(t, nil)
		loc := mustLocation(t, engine, "North")
		item := mustItem(t, engine, loc.ID, quantity(5))

		var (
			wg       sync.WaitGroup
			ok       atomic.Int32
			rejected atomic.Int32
		)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := engine.RecordSale(context.Background(), item.ID, 3, decimal.NewFromInt(1), "")
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, domain.ErrInsufficientStock):
					rejected.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, int32(1), ok.Load())
		require.Equal(t, int32(1), rejected.Load())

		got, err := engine.GetItem(context.Background(), item.ID)
		require.NoError(t, err)
		require.Equal(t, 2, got.Quantity)
	}
}

func TestRecordSale_ConcurrentNeverOversells(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)
	loc := mustLocation(t, engine, "North")
	item := mustItem(t, engine, loc.ID, quantity(40))

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.RecordSale(ctx, item.ID, 1, decimal.NewFromInt(1), ""); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(40), succeeded.Load())

	got, err := engine.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	sales, err := engine.ListSales(ctx, domain.EventFilter{ItemID: item.ID})
	require.NoError(t, err)
	assert.Len(t, sales, 40)
}

func TestRecordWastage(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)
	loc := mustLocation(t, engine, "North")
	item := mustItem(t, engine, loc.ID, quantity(5))

	tests := []struct {
		name      string
		quantity  int
		reason    domain.WastageReason
		wantErr   error
		remaining int
	}{
		{name: "expired", quantity: 1, reason: domain.ReasonExpired, remaining: 4},
		{name: "damaged", quantity: 2, reason: domain.ReasonDamaged, remaining: 2},
		{name: "unknown_reason", quantity: 1, reason: "stolen_by_gulls", wantErr: domain.ErrValidation, remaining: 2},
		{name: "too_many", quantity: 3, reason: domain.ReasonLost, wantErr: domain.ErrInsufficientStock, remaining: 2},
		{name: "zero_quantity", quantity: 0, reason: domain.ReasonOther, wantErr: domain.ErrValidation, remaining: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.RecordWastage(ctx, item.ID, tt.quantity, tt.reason, "found in back room", "")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.reason, result.Event.Reason)
				assert.Equal(t, "found in back room", result.Event.Notes)
				assert.Equal(t, tt.remaining, result.Item.Quantity)
			}

			got, err := engine.GetItem(ctx, item.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.remaining, got.Quantity)
		})
	}

	events, err := engine.ListWastage(ctx, domain.EventFilter{ItemID: item.ID})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestRecordWastage_RequestKeyReplays(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)
	loc := mustLocation(t, engine, "North")
	item := mustItem(t, engine, loc.ID, quantity(5))

	first, err := engine.RecordWastage(ctx, item.ID, 1, domain.ReasonSpoiled, "", "bin-7")
	require.NoError(t, err)

	again, err := engine.RecordWastage(ctx, item.ID, 1, domain.ReasonSpoiled, "", "bin-7")
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.Event.ID, again.Event.ID)
	assert.Equal(t, 4, again.Item.Quantity)
}

func TestRecordWastage_RequestKeyConflicts(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		reason   domain.WastageReason
		notes    string
	}{
		{name: "other_reason", quantity: 1, reason: domain.ReasonLost, notes: "dropped"},
		{name: "other_notes", quantity: 1, reason: domain.ReasonDamaged, notes: "crushed"},
		{name: "other_quantity", quantity: 2, reason: domain.ReasonDamaged, notes: "dropped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			engine, _ := newEngine(t, nil)
			loc := mustLocation(t, engine, "North")
			item := mustItem(t, engine, loc.ID, quantity(5))

			_, err := engine.RecordWastage(ctx, item.ID, 1, domain.ReasonDamaged, "dropped", "bin-7")
			require.NoError(t, err)

			_, err = engine.RecordWastage(ctx, item.ID, tt.quantity, tt.reason, tt.notes, "bin-7")
			assert.ErrorIs(t, err, domain.ErrConflict)

			got, err := engine.GetItem(ctx, item.ID)
			require.NoError(t, err)
			assert.Equal(t, 4, got.Quantity)
		})
	}
}

func TestLowStockItems(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)
	loc := mustLocation(t, engine, "North")

	items, err := engine.LowStockItems(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	mustItem(t, engine, loc.ID, func(d *domain.ItemDraft) { d.Name = "Flour"; d.Quantity = 9; d.Threshold = 10 })
	mustItem(t, engine, loc.ID, func(d *domain.ItemDraft) { d.Name = "Sugar"; d.Quantity = 0; d.Threshold = 4 })
	mustItem(t, engine, loc.ID, func(d *domain.ItemDraft) { d.Name = "Salt"; d.Quantity = 5; d.Threshold = 5 })
	mustItem(t, engine, loc.ID, func(d *domain.ItemDraft) { d.Name = "Pepper"; d.Quantity = 50; d.Threshold = 5 })

	items, err = engine.LowStockItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Sugar", items[0].Name)
	assert.Equal(t, domain.StateDepleted, items[0].State())
	assert.Equal(t, "Flour", items[1].Name)
	assert.Equal(t, "Salt", items[2].Name)
	assert.Equal(t, domain.StateLowStock, items[2].State())
}

func TestAggregateQuantity(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)
	north := mustLocation(t, engine, "North")
	south := mustLocation(t, engine, "South")
	mustItem(t, engine, north.ID, func(d *domain.ItemDraft) { d.Name = "Tea"; d.Quantity = 7 })
	mustItem(t, engine, south.ID, func(d *domain.ItemDraft) { d.Name = "Tea"; d.Quantity = 5 })
	mustItem(t, engine, south.ID, func(d *domain.ItemDraft) { d.Name = "Coffee"; d.Quantity = 100 })

	total, err := engine.AggregateQuantity(ctx, "Tea")
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)

	total, err = engine.AggregateQuantity(ctx, "Cocoa")
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = engine.AggregateQuantity(ctx, "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestLocations(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)

	_, err := engine.CreateLocation(ctx, domain.LocationDraft{Name: " "})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	loc := mustLocation(t, engine, "Warehouse")
	renamed, err := engine.UpdateLocation(ctx, loc.ID, domain.LocationDraft{Name: "Main Warehouse", Address: "Dock 4"})
	require.NoError(t, err)
	assert.Equal(t, "Main Warehouse", renamed.Name)

	item := mustItem(t, engine, loc.ID)
	err = engine.DeleteLocation(ctx, loc.ID)
	assert.True(t, errors.Is(err, domain.ErrReferentialIntegrity))

	require.NoError(t, engine.DeleteItem(ctx, item.ID))
	require.NoError(t, engine.DeleteLocation(ctx, loc.ID))

	_, err = engine.GetLocation(ctx, loc.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	locs, err := engine.ListLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func unavailable(op string) error {
	return &domain.StoreUnavailableError{Op: op, Err: errors.New("connection refused")}
}

func TestReads_RetryOnStoreUnavailable(t *testing.T) {
	tests := []struct {
		name         string
		failures     int32
		fault        func(op string) error
		wantErr      error
		wantAttempts int32
	}{
		{
			name:         "recovers_after_transient_failures",
			failures:     2,
			fault:        unavailable,
			wantAttempts: 3,
		},
		{
			name:         "gives_up_after_max_retries",
			failures:     100,
			fault:        unavailable,
			wantErr:      domain.ErrStoreUnavailable,
			wantAttempts: 4,
		},
		{
			name:         "does_not_retry_other_errors",
			failures:     100,
			fault:        func(string) error { return errors.New("syntax error") },
			wantErr:      errors.New("syntax error"),
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			fault := func(op string) error {
				if op != "items.low_stock" {
					return nil
				}
				if attempts.Add(1) <= tt.failures {
					return tt.fault(op)
				}
				return nil
			}
			engine, _ := newEngine(t, []memory.Option{memory.WithFaults(fault)})

			_, err := engine.LowStockItems(context.Background())

			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
			case errors.Is(tt.wantErr, domain.ErrStoreUnavailable):
				assert.True(t, errors.Is(err, domain.ErrStoreUnavailable), "got %v", err)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.False(t, domain.IsRetryable(err))
			}
			assert.Equal(t, tt.wantAttempts, attempts.Load())
		})
	}
}

func TestWrites_NeverRetried(t *testing.T) {
	var (
		enabled  atomic.Bool
		attempts atomic.Int32
	)
	fault := func(op string) error {
		if enabled.Load() && op == "items.adjust_quantity" {
			attempts.Add(1)
			return unavailable(op)
		}
		return nil
	}
	ctx := context.Background()
	engine, _ := newEngine(t, []memory.Option{memory.WithFaults(fault)})
	loc := mustLocation(t, engine, "North")
	item := mustItem(t, engine, loc.ID, quantity(5))

	enabled.Store(true)
	_, err := engine.RecordSale(ctx, item.ID, 1, decimal.NewFromInt(1), "")
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.Equal(t, int32(1), attempts.Load())
	enabled.Store(false)

	got, err := engine.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
}

func TestTimeout_RollsBackPartialWrite(t *testing.T) {
	var slow atomic.Bool
	fault := func(op string) error {
		if slow.Load() && op == "items.adjust_quantity" {
			time.Sleep(50 * time.Millisecond)
		}
		return nil
	}
	ctx := context.Background()
	cfg := testConfig()
	cfg.OperationTimeout = 10 * time.Millisecond
	engine, _ := newEngine(t, []memory.Option{memory.WithFaults(fault)}, services.WithConfig(cfg))

	loc := mustLocation(t, engine, "North")
	item := mustItem(t, engine, loc.ID, quantity(5))

	slow.Store(true)
	_, err := engine.RecordSale(ctx, item.ID, 2, decimal.NewFromInt(1), "")
	slow.Store(false)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable), "got %v", err)

	got, err := engine.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity, "decrement must roll back with the failed append")

	sales, err := engine.ListSales(ctx, domain.EventFilter{ItemID: item.ID})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestNotifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockLowStockNotifier(ctrl)

	ctx := context.Background()
	engine, _ := newEngine(t, nil, services.WithNotifier(notifier))
	loc := mustLocation(t, engine, "North")
	item := mustItem(t, engine, loc.ID, func(d *domain.ItemDraft) { d.Quantity = 6; d.Threshold = 3 })

	// 6 -> 4 stays above threshold, no notification expected
	_, err := engine.RecordSale(ctx, item.ID, 2, decimal.NewFromInt(1), "")
	require.NoError(t, err)

	var notified *domain.Item
	notifier.EXPECT().
		NotifyLowStock(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, it *domain.Item) error {
			notified = it
			return nil
		}).
		Times(1)

	_, err = engine.RecordSale(ctx, item.ID, 2, decimal.NewFromInt(1), "")
	require.NoError(t, err)
	require.NotNil(t, notified)
	assert.Equal(t, item.ID, notified.ID)
	assert.Equal(t, 2, notified.Quantity)

	// a failing notifier never fails the committed write
	notifier.EXPECT().
		NotifyLowStock(gomock.Any(), gomock.Any()).
		Return(errors.New("queue down")).
		Times(1)

	result, err := engine.RecordWastage(ctx, item.ID, 2, domain.ReasonDamaged, "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StateDepleted, result.Item.State())
}

func expectGeneration(cache *mocks.MockCacheRepository, gen int64) *gomock.Call {
	return cache.EXPECT().Get(gomock.Any(), "stockroom:generation", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, dest any) error {
			*dest.(*int64) = gen
			return nil
		})
}

func TestCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)

	ctx := context.Background()
	engine, _ := newEngine(t, nil, services.WithCache(cache))

	loc := mustLocation(t, engine, "North")

	cache.EXPECT().Incr(gomock.Any(), "stockroom:generation").Return(int64(1), nil).Times(1)
	item := mustItem(t, engine, loc.ID, func(d *domain.ItemDraft) { d.Quantity = 2; d.Threshold = 5 })

	t.Run("miss_fills_cache", func(t *testing.T) {
		expectGeneration(cache, 1).Times(2)
		cache.EXPECT().Get(gomock.Any(), "stockroom:v1:low_stock", gomock.Any()).Return(ports.ErrCacheMiss)
		cache.EXPECT().SetWithTTL(gomock.Any(), "stockroom:v1:low_stock", gomock.Any(), time.Minute).Return(nil)

		items, err := engine.LowStockItems(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, item.ID, items[0].ID)
	})

	t.Run("hit_skips_store", func(t *testing.T) {
		cached := []*domain.Item{{ID: uuid.New(), Name: "cached"}}
		expectGeneration(cache, 1).Times(1)
		cache.EXPECT().Get(gomock.Any(), "stockroom:v1:low_stock", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, dest any) error {
				*dest.(*[]*domain.Item) = cached
				return nil
			})

		items, err := engine.LowStockItems(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "cached", items[0].Name)
	})

	t.Run("generation_moved_skips_fill", func(t *testing.T) {
		expectGeneration(cache, 1).Times(1)
		cache.EXPECT().Get(gomock.Any(), "stockroom:v1:aggregate:Whole Milk 1L", gomock.Any()).Return(ports.ErrCacheMiss)
		expectGeneration(cache, 2).Times(1)

		total, err := engine.AggregateQuantity(ctx, "Whole Milk 1L")
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("cache_errors_fall_back_to_store", func(t *testing.T) {
		cache.EXPECT().Get(gomock.Any(), "stockroom:generation", gomock.Any()).Return(errors.New("redis down"))

		total, err := engine.AggregateQuantity(ctx, "Whole Milk 1L")
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("failed_bump_drops_entries", func(t *testing.T) {
		cache.EXPECT().Incr(gomock.Any(), "stockroom:generation").Return(int64(0), errors.New("redis down")).Times(1)
		cache.EXPECT().DeletePattern(gomock.Any(), "stockroom:v*").Return(errors.New("redis down")).Times(1)

		_, err := engine.RecordSale(ctx, item.ID, 1, decimal.NewFromInt(1), "")
		require.NoError(t, err)
	})
}

// racingCache runs write just before the first cache fill, as a concurrent
// session committing between the store read and the fill would.
type racingCache struct {
	ports.CacheRepository
	once  sync.Once
	write func()
}

func (c *racingCache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.once.Do(c.write)
	return c.CacheRepository.SetWithTTL(ctx, key, value, ttl)
}

func TestCache_WriteDuringFill(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		check func(t *testing.T, engine *services.InventoryEngine, item *domain.Item)
	}{
		{
			name: "low_stock",
			check: func(t *testing.T, engine *services.InventoryEngine, item *domain.Item) {
				items, err := engine.LowStockItems(ctx)
				require.NoError(t, err)
				assert.Empty(t, items)

				items, err = engine.LowStockItems(ctx)
				require.NoError(t, err)
				require.Len(t, items, 1)
				assert.Equal(t, item.ID, items[0].ID)
				assert.Equal(t, 4, items[0].Quantity)
			},
		},
		{
			name: "aggregate",
			check: func(t *testing.T, engine *services.InventoryEngine, item *domain.Item) {
				total, err := engine.AggregateQuantity(ctx, item.Name)
				require.NoError(t, err)
				assert.Equal(t, int64(10), total)

				total, err = engine.AggregateQuantity(ctx, item.Name)
				require.NoError(t, err)
				assert.Equal(t, int64(4), total)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testRedis := helpers.SetupTestRedis(t)
			cache := &racingCache{CacheRepository: redis_a.NewCache(testRedis.Client, time.Minute, helpers.TestLogger())}
			engine, _ := newEngine(t, nil, services.WithCache(cache))

			loc := mustLocation(t, engine, "North")
			item := mustItem(t, engine, loc.ID, func(d *domain.ItemDraft) { d.Quantity = 10; d.Threshold = 5 })

			cache.write = func() {
				_, err := engine.RecordSale(ctx, item.ID, 6, decimal.NewFromInt(1), "")
				require.NoError(t, err)
			}

			tt.check(t, engine, item)
		})
	}
}
