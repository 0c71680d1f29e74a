// internal/core/domain/ledger.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WastageReason classifies why stock was written off
type WastageReason string

// Wastage reason constants
const (
	ReasonExpired WastageReason = "expired"
	ReasonDamaged WastageReason = "damaged"
	ReasonSpoiled WastageReason = "spoiled"
	ReasonLost    WastageReason = "lost"
	ReasonOther   WastageReason = "other"
)

// ValidReasons lists the accepted wastage reasons
var ValidReasons = []WastageReason{
	ReasonExpired, ReasonDamaged, ReasonSpoiled, ReasonLost, ReasonOther,
}

// IsValid reports whether r is a known reason code
func (r WastageReason) IsValid() bool {
	for _, v := range ValidReasons {
		if r == v {
			return true
		}
	}
	return false
}

// SaleEvent is an immutable record of units sold. ItemID may dangle once
// the item is deleted.
type SaleEvent struct {
	ID          uuid.UUID       `json:"id"`
	ItemID      uuid.UUID       `json:"item_id"`
	Quantity    int             `json:"quantity"`
	UnitRevenue decimal.Decimal `json:"unit_revenue"`
	RequestKey  string          `json:"request_key,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// TotalRevenue is quantity times unit revenue
func (e *SaleEvent) TotalRevenue() decimal.Decimal {
	return e.UnitRevenue.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// WastageEvent is an immutable record of units written off.
type WastageEvent struct {
	ID         uuid.UUID     `json:"id"`
	ItemID     uuid.UUID     `json:"item_id"`
	Quantity   int           `json:"quantity"`
	Reason     WastageReason `json:"reason"`
	Notes      string        `json:"notes,omitempty"`
	RequestKey string        `json:"request_key,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// SaleDraft is the input of recordSale.
type SaleDraft struct {
	ItemID      uuid.UUID
	Quantity    int
	UnitRevenue decimal.Decimal
	RequestKey  string
}

// Validate checks quantity and revenue
func (d *SaleDraft) Validate() error {
	if d.ItemID == uuid.Nil {
		return NewValidationError("item_id", "is required")
	}
	if err := ValidateMovement(d.Quantity); err != nil {
		return err
	}
	if err := ValidateMoney("unit_revenue", d.UnitRevenue); err != nil {
		return err
	}
	return validateRequestKey(d.RequestKey)
}

// SameAs reports whether a recorded sale carries exactly the draft's inputs
func (d *SaleDraft) SameAs(e *SaleEvent) bool {
	return e.ItemID == d.ItemID && e.Quantity == d.Quantity && e.UnitRevenue.Equal(d.UnitRevenue)
}

// ToEvent stamps the draft with an identifier and time
func (d *SaleDraft) ToEvent() *SaleEvent {
	return &SaleEvent{
		ID:          uuid.New(),
		ItemID:      d.ItemID,
		Quantity:    d.Quantity,
		UnitRevenue: d.UnitRevenue,
		RequestKey:  d.RequestKey,
		OccurredAt:  time.Now().UTC(),
	}
}

// WastageDraft is the input of recordWastage.
type WastageDraft struct {
	ItemID     uuid.UUID
	Quantity   int
	Reason     WastageReason
	Notes      string
	RequestKey string
}

// Validate checks quantity and reason
func (d *WastageDraft) Validate() error {
	if d.ItemID == uuid.Nil {
		return NewValidationError("item_id", "is required")
	}
	if err := ValidateMovement(d.Quantity); err != nil {
		return err
	}
	if !d.Reason.IsValid() {
		return NewValidationError("reason", fmt.Sprintf("must be one of %v", ValidReasons))
	}
	return validateRequestKey(d.RequestKey)
}

// SameAs reports whether a recorded wastage carries exactly the draft's inputs
func (d *WastageDraft) SameAs(e *WastageEvent) bool {
	return e.ItemID == d.ItemID && e.Quantity == d.Quantity && e.Reason == d.Reason && e.Notes == d.Notes
}

// ToEvent stamps the draft with an identifier and time
func (d *WastageDraft) ToEvent() *WastageEvent {
	return &WastageEvent{
		ID:         uuid.New(),
		ItemID:     d.ItemID,
		Quantity:   d.Quantity,
		Reason:     d.Reason,
		Notes:      d.Notes,
		RequestKey: d.RequestKey,
		OccurredAt: time.Now().UTC(),
	}
}

// MaxRequestKeyLength bounds idempotency keys
const MaxRequestKeyLength = 128

func validateRequestKey(key string) error {
	if len(key) > MaxRequestKeyLength {
		return NewValidationError("request_key", fmt.Sprintf("must be at most %d characters", MaxRequestKeyLength))
	}
	return nil
}

// EventFilter narrows a ledger listing. Zero values match everything.
type EventFilter struct {
	ItemID uuid.UUID
	Since  time.Time
	Until  time.Time
	Limit  int
}

// Matches reports whether an event with the given item and time passes the filter
func (f EventFilter) Matches(itemID uuid.UUID, at time.Time) bool {
	if f.ItemID != uuid.Nil && f.ItemID != itemID {
		return false
	}
	if !f.Since.IsZero() && at.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !at.Before(f.Until) {
		return false
	}
	return true
}

// TransferResult holds both sides of a completed transfer.
type TransferResult struct {
	Source *Item `json:"source"`
	Target *Item `json:"target"`
}

// SaleResult is the recorded sale and the item after the decrement.
type SaleResult struct {
	Event    *SaleEvent `json:"event"`
	Item     *Item      `json:"item"`
	Replayed bool       `json:"replayed,omitempty"`
}

// WastageResult is the recorded wastage and the item after the decrement.
type WastageResult struct {
	Event    *WastageEvent `json:"event"`
	Item     *Item         `json:"item"`
	Replayed bool          `json:"replayed,omitempty"`
}
