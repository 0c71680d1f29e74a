//go:build integration
// +build integration

package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
	"github.com/ammerola/stockroom/internal/core/services"
	"github.com/ammerola/stockroom/test/helpers"
)

type StoresSuite struct {
	suite.Suite
	testDB *helpers.TestDB
	stores ports.Stores
	ctx    context.Context
}

func (s *StoresSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.stores = s.testDB.Database.Stores()
	s.ctx = context.Background()
}

func (s *StoresSuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *StoresSuite) location() *domain.Location {
	loc, err := s.stores.Locations.Create(s.ctx, helpers.NewTestLocation())
	s.Require().NoError(err)
	return loc
}

func (s *StoresSuite) item(locationID uuid.UUID, overrides ...func(*domain.ItemDraft)) *domain.Item {
	draft := helpers.NewItemDraft(locationID, overrides...)
	item, err := s.stores.Items.Create(s.ctx, draft.ToItem())
	s.Require().NoError(err)
	return item
}

func (s *StoresSuite) TestItemRoundTrip() {
	loc := s.location()
	created := s.item(loc.ID)

	got, err := s.stores.Items.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.Name, got.Name)
	s.Equal(10, got.Quantity)
	s.True(decimal.RequireFromString("1.49").Equal(got.UnitPrice))
	s.Equal(loc.ID, got.LocationID)

	_, err = s.stores.Items.Get(s.ctx, uuid.New())
	s.True(errors.Is(err, domain.ErrNotFound))
}

func (s *StoresSuite) TestCreate_DuplicateNameAtLocation() {
	loc := s.location()
	s.item(loc.ID)

	draft := helpers.NewItemDraft(loc.ID)
	_, err := s.stores.Items.Create(s.ctx, draft.ToItem())
	s.True(errors.Is(err, domain.ErrValidation), "got %v", err)

	// the same name at another location is a separate pool
	other := s.location()
	s.item(other.ID)
}

func (s *StoresSuite) TestCreate_UnknownLocation() {
	draft := helpers.NewItemDraft(uuid.New())
	_, err := s.stores.Items.Create(s.ctx, draft.ToItem())
	s.True(errors.Is(err, domain.ErrValidation), "got %v", err)
}

func (s *StoresSuite) TestAdjustQuantity() {
	loc := s.location()
	item := s.item(loc.ID, func(d *domain.ItemDraft) { d.Quantity = 5 })

	updated, err := s.stores.Items.AdjustQuantity(s.ctx, item.ID, -3)
	s.Require().NoError(err)
	s.Equal(2, updated.Quantity)

	_, err = s.stores.Items.AdjustQuantity(s.ctx, item.ID, -3)
	var stockErr *domain.InsufficientStockError
	s.Require().True(errors.As(err, &stockErr), "got %v", err)
	s.Equal(2, stockErr.Available)
	s.Equal(3, stockErr.Requested)

	_, err = s.stores.Items.AdjustQuantity(s.ctx, uuid.New(), -1)
	s.True(errors.Is(err, domain.ErrNotFound))
}

func (s *StoresSuite) TestRestock_UpsertsPool() {
	loc := s.location()
	item := s.item(loc.ID, func(d *domain.ItemDraft) { d.Quantity = 4 })

	restocked, err := s.stores.Items.Restock(s.ctx, item.PoolDraft(loc.ID, 6))
	s.Require().NoError(err)
	s.Equal(item.ID, restocked.ID)
	s.Equal(10, restocked.Quantity)

	target := s.location()
	created, err := s.stores.Items.Restock(s.ctx, item.PoolDraft(target.ID, 2))
	s.Require().NoError(err)
	s.NotEqual(item.ID, created.ID)
	s.Equal(2, created.Quantity)
	s.Equal(item.Threshold, created.Threshold)
}

func (s *StoresSuite) TestRestock_OverflowIsValidation() {
	loc := s.location()
	full := s.item(loc.ID, func(d *domain.ItemDraft) { d.Quantity = domain.MaxQuantity })

	_, err := s.stores.Items.Restock(s.ctx, helpers.NewItemDraft(loc.ID, func(d *domain.ItemDraft) { d.Quantity = 1 }))
	s.True(errors.Is(err, domain.ErrValidation), "got %v", err)

	got, err := s.stores.Items.Get(s.ctx, full.ID)
	s.Require().NoError(err)
	s.Equal(domain.MaxQuantity, got.Quantity)
}

func (s *StoresSuite) TestLowStockAndSum() {
	a, b := s.location(), s.location()
	s.item(a.ID, func(d *domain.ItemDraft) { d.Name = "Eggs"; d.Quantity = 1; d.Threshold = 5 })
	s.item(b.ID, func(d *domain.ItemDraft) { d.Name = "Eggs"; d.Quantity = 4; d.Threshold = 5 })
	s.item(a.ID, func(d *domain.ItemDraft) { d.Name = "Bread"; d.Quantity = 20; d.Threshold = 5 })

	low, err := s.stores.Items.LowStock(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(low, 2)
	s.Equal(1, low[0].Quantity)
	s.Equal(4, low[1].Quantity)

	total, err := s.stores.Items.SumQuantity(s.ctx, "Eggs")
	s.Require().NoError(err)
	s.Equal(int64(5), total)

	total, err = s.stores.Items.SumQuantity(s.ctx, "Caviar")
	s.Require().NoError(err)
	s.Zero(total)
}

func (s *StoresSuite) TestList_Filters() {
	a, b := s.location(), s.location()
	s.item(a.ID, func(d *domain.ItemDraft) { d.Name = "Apples"; d.Category = "produce" })
	s.item(b.ID, func(d *domain.ItemDraft) { d.Name = "Apples"; d.Category = "produce" })
	s.item(a.ID, func(d *domain.ItemDraft) { d.Name = "Butter"; d.Category = "dairy" })

	all, err := s.stores.Items.List(s.ctx, domain.ItemFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	atA, err := s.stores.Items.List(s.ctx, domain.ItemFilter{LocationID: a.ID})
	s.Require().NoError(err)
	s.Len(atA, 2)

	dairy, err := s.stores.Items.List(s.ctx, domain.ItemFilter{Category: "dairy"})
	s.Require().NoError(err)
	s.Require().Len(dairy, 1)
	s.Equal("Butter", dairy[0].Name)
}

func (s *StoresSuite) TestLocationDelete_Referenced() {
	loc := s.location()
	item := s.item(loc.ID)

	err := s.stores.Locations.Delete(s.ctx, loc.ID)
	s.True(errors.Is(err, domain.ErrReferentialIntegrity), "got %v", err)

	s.Require().NoError(s.stores.Items.Delete(s.ctx, item.ID))
	s.Require().NoError(s.stores.Locations.Delete(s.ctx, loc.ID))

	err = s.stores.Locations.Delete(s.ctx, loc.ID)
	s.True(errors.Is(err, domain.ErrNotFound))
}

func (s *StoresSuite) TestLedger_RequestKeyUnique() {
	itemID := uuid.New()
	draft := domain.SaleDraft{ItemID: itemID, Quantity: 1, UnitRevenue: decimal.NewFromInt(2), RequestKey: "order-1"}

	first, err := s.stores.Ledger.AppendSale(s.ctx, draft.ToEvent())
	s.Require().NoError(err)

	_, err = s.stores.Ledger.AppendSale(s.ctx, draft.ToEvent())
	s.True(errors.Is(err, domain.ErrConflict), "got %v", err)

	found, err := s.stores.Ledger.FindSaleByKey(s.ctx, "order-1")
	s.Require().NoError(err)
	s.Equal(first.ID, found.ID)

	missing, err := s.stores.Ledger.FindSaleByKey(s.ctx, "order-2")
	s.Require().NoError(err)
	s.Nil(missing)

	// events without a key never collide
	for i := 0; i < 2; i++ {
		w := domain.WastageDraft{ItemID: itemID, Quantity: 1, Reason: domain.ReasonDamaged}
		_, err := s.stores.Ledger.AppendWastage(s.ctx, w.ToEvent())
		s.Require().NoError(err)
	}
	wastage, err := s.stores.Ledger.ListWastage(s.ctx, domain.EventFilter{ItemID: itemID})
	s.Require().NoError(err)
	s.Len(wastage, 2)
}

func (s *StoresSuite) TestWithinTx_RollsBack() {
	loc := s.location()
	item := s.item(loc.ID, func(d *domain.ItemDraft) { d.Quantity = 5 })

	boom := errors.New("boom")
	err := s.testDB.Database.WithinTx(s.ctx, func(ctx context.Context, st ports.Stores) error {
		if _, err := st.Items.AdjustQuantity(ctx, item.ID, -5); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.stores.Items.Get(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(5, got.Quantity)
}

func (s *StoresSuite) TestEngine_ConcurrentSalesNeverOversell() {
	engine := services.NewInventoryEngine(s.stores, s.testDB.Database, helpers.TestLogger(),
		services.WithConfig(services.Config{OperationTimeout: 10 * time.Second}))

	loc := s.location()
	item := s.item(loc.ID, func(d *domain.ItemDraft) { d.Quantity = 10; d.Threshold = 0 })

	const workers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.RecordSale(s.ctx, item.ID, 1, decimal.NewFromInt(3), "")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			s.True(errors.Is(err, domain.ErrInsufficientStock), "got %v", err)
		}()
	}
	wg.Wait()

	s.Equal(10, succeeded)

	got, err := s.stores.Items.Get(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(0, got.Quantity)

	sales, err := s.stores.Ledger.ListSales(s.ctx, domain.EventFilter{ItemID: item.ID})
	s.Require().NoError(err)
	s.Len(sales, 10)
}

func (s *StoresSuite) TestEngine_TransferConservesTotal() {
	engine := services.NewInventoryEngine(s.stores, s.testDB.Database, helpers.TestLogger())

	a, b := s.location(), s.location()
	item := s.item(a.ID, func(d *domain.ItemDraft) { d.Name = "Oat Milk"; d.Quantity = 12 })

	result, err := engine.Transfer(s.ctx, item.ID, b.ID, 5)
	s.Require().NoError(err)
	s.Equal(7, result.Source.Quantity)
	s.Equal(5, result.Target.Quantity)

	_, err = engine.Transfer(s.ctx, item.ID, b.ID, 8)
	s.True(errors.Is(err, domain.ErrInsufficientStock))

	total, err := engine.AggregateQuantity(s.ctx, "Oat Milk")
	s.Require().NoError(err)
	s.Equal(int64(12), total)
}

func TestStoresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(StoresSuite))
}
