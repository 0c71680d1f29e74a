package domain_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ammerola/stockroom/internal/core/domain"
)

func TestSaleDraft_Validate(t *testing.T) {
	item := uuid.New()

	tests := []struct {
		name      string
		draft     domain.SaleDraft
		wantError bool
	}{
		{name: "valid_sale", draft: domain.SaleDraft{ItemID: item, Quantity: 3, UnitRevenue: decimal.NewFromFloat(2.5)}},
		{name: "free_sale", draft: domain.SaleDraft{ItemID: item, Quantity: 1}},
		{name: "zero_quantity", draft: domain.SaleDraft{ItemID: item}, wantError: true},
		{name: "negative_revenue", draft: domain.SaleDraft{ItemID: item, Quantity: 1, UnitRevenue: decimal.NewFromInt(-1)}, wantError: true},
		{name: "missing_item", draft: domain.SaleDraft{Quantity: 1}, wantError: true},
		{name: "quantity_above_max", draft: domain.SaleDraft{ItemID: item, Quantity: domain.MaxQuantity + 1}, wantError: true},
		{name: "revenue_trailing_zeros", draft: domain.SaleDraft{ItemID: item, Quantity: 1, UnitRevenue: decimal.RequireFromString("2.500")}},
		{name: "revenue_sub_cent", draft: domain.SaleDraft{ItemID: item, Quantity: 1, UnitRevenue: decimal.RequireFromString("2.505")}, wantError: true},
		{name: "oversized_request_key", draft: domain.SaleDraft{ItemID: item, Quantity: 1, RequestKey: strings.Repeat("k", 200)}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantError {
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWastageDraft_Validate(t *testing.T) {
	item := uuid.New()

	assert.NoError(t, (&domain.WastageDraft{ItemID: item, Quantity: 2, Reason: domain.ReasonExpired}).Validate())
	assert.ErrorIs(t, (&domain.WastageDraft{ItemID: item, Quantity: 2, Reason: "stolen"}).Validate(), domain.ErrValidation)
	assert.ErrorIs(t, (&domain.WastageDraft{ItemID: item, Quantity: -2, Reason: domain.ReasonLost}).Validate(), domain.ErrValidation)
	assert.ErrorIs(t, (&domain.WastageDraft{ItemID: item, Quantity: domain.MaxQuantity + 1, Reason: domain.ReasonLost}).Validate(), domain.ErrValidation)
}

func TestSaleDraft_SameAs(t *testing.T) {
	item := uuid.New()
	draft := domain.SaleDraft{ItemID: item, Quantity: 2, UnitRevenue: decimal.RequireFromString("5.00"), RequestKey: "k1"}

	tests := []struct {
		name  string
		event domain.SaleEvent
		same  bool
	}{
		{name: "identical", event: domain.SaleEvent{ItemID: item, Quantity: 2, UnitRevenue: decimal.NewFromInt(5)}, same: true},
		{name: "other_item", event: domain.SaleEvent{ItemID: uuid.New(), Quantity: 2, UnitRevenue: decimal.NewFromInt(5)}},
		{name: "other_quantity", event: domain.SaleEvent{ItemID: item, Quantity: 3, UnitRevenue: decimal.NewFromInt(5)}},
		{name: "other_revenue", event: domain.SaleEvent{ItemID: item, Quantity: 2, UnitRevenue: decimal.NewFromInt(999)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.same, draft.SameAs(&tt.event))
		})
	}
}

func TestWastageDraft_SameAs(t *testing.T) {
	item := uuid.New()
	draft := domain.WastageDraft{ItemID: item, Quantity: 1, Reason: domain.ReasonDamaged, Notes: "dropped"}

	tests := []struct {
		name  string
		event domain.WastageEvent
		same  bool
	}{
		{name: "identical", event: domain.WastageEvent{ItemID: item, Quantity: 1, Reason: domain.ReasonDamaged, Notes: "dropped"}, same: true},
		{name: "other_item", event: domain.WastageEvent{ItemID: uuid.New(), Quantity: 1, Reason: domain.ReasonDamaged, Notes: "dropped"}},
		{name: "other_quantity", event: domain.WastageEvent{ItemID: item, Quantity: 2, Reason: domain.ReasonDamaged, Notes: "dropped"}},
		{name: "other_reason", event: domain.WastageEvent{ItemID: item, Quantity: 1, Reason: domain.ReasonLost, Notes: "dropped"}},
		{name: "other_notes", event: domain.WastageEvent{ItemID: item, Quantity: 1, Reason: domain.ReasonDamaged, Notes: "crushed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.same, draft.SameAs(&tt.event))
		})
	}
}

func TestSaleEvent_TotalRevenue(t *testing.T) {
	event := &domain.SaleEvent{Quantity: 4, UnitRevenue: decimal.RequireFromString("2.50")}
	assert.True(t, decimal.RequireFromString("10").Equal(event.TotalRevenue()))
}

func TestEventFilter_Matches(t *testing.T) {
	item := uuid.New()
	now := time.Now()

	assert.True(t, domain.EventFilter{}.Matches(item, now))
	assert.True(t, domain.EventFilter{ItemID: item}.Matches(item, now))
	assert.False(t, domain.EventFilter{ItemID: uuid.New()}.Matches(item, now))
	assert.False(t, domain.EventFilter{Since: now.Add(time.Minute)}.Matches(item, now))
	assert.False(t, domain.EventFilter{Until: now}.Matches(item, now))
}

func TestErrors_WrapAndMatch(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{name: "validation", err: domain.NewValidationError("name", "is required"), sentinel: domain.ErrValidation},
		{name: "not_found", err: &domain.NotFoundError{Entity: "item", ID: id}, sentinel: domain.ErrNotFound},
		{name: "insufficient", err: &domain.InsufficientStockError{ItemID: id, Requested: 5, Available: 3}, sentinel: domain.ErrInsufficientStock},
		{name: "conflict", err: &domain.ConflictError{Reason: "deadlock"}, sentinel: domain.ErrConflict},
		{name: "unavailable", err: &domain.StoreUnavailableError{Op: "get", Err: errors.New("dial tcp")}, sentinel: domain.ErrStoreUnavailable},
		{name: "referential", err: &domain.ReferentialIntegrityError{Entity: "location", ID: id, Reason: "items reference it"}, sentinel: domain.ErrReferentialIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("failed to do thing: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}

	var stock *domain.InsufficientStockError
	wrapped := fmt.Errorf("failed to record sale: %w", &domain.InsufficientStockError{ItemID: id, Requested: 5, Available: 3})
	if assert.ErrorAs(t, wrapped, &stock) {
		assert.Equal(t, 3, stock.Available)
	}

	assert.True(t, domain.IsRetryable(&domain.StoreUnavailableError{Op: "list"}))
	assert.False(t, domain.IsRetryable(&domain.ConflictError{Reason: "x"}))
}
