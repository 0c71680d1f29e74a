// internal/core/domain/item.go
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxQuantity bounds quantities and thresholds to what the INTEGER columns hold
const MaxQuantity = math.MaxInt32

// MoneyScale is the number of decimal places kept for prices and revenue
const MoneyScale = 2

// moneyLimit is the exclusive upper bound of a NUMERIC(12, 2) amount
var moneyLimit = decimal.New(1, 12-MoneyScale)

// StockState is the derived stock level of an item
type StockState string

// Stock state constants
const (
	StateInStock  StockState = "in_stock"
	StateLowStock StockState = "low_stock"
	StateDepleted StockState = "depleted"
)

// Item is the stock a single location holds of one product.
type Item struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Threshold  int             `json:"threshold"`
	LocationID uuid.UUID       `json:"location_id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IsLowStock reports whether the item is at or below its reorder threshold
func (i *Item) IsLowStock() bool {
	return i.Quantity <= i.Threshold
}

// Deficiency is quantity minus threshold. Lower values need restocking sooner.
func (i *Item) Deficiency() int {
	return i.Quantity - i.Threshold
}

// State derives the stock state from quantity and threshold
func (i *Item) State() StockState {
	switch {
	case i.Quantity == 0:
		return StateDepleted
	case i.Quantity <= i.Threshold:
		return StateLowStock
	default:
		return StateInStock
	}
}

// Validate checks the stored invariants of an item
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if i.Quantity < 0 {
		return NewValidationError("quantity", "cannot be negative")
	}
	if i.Quantity > MaxQuantity {
		return NewValidationError("quantity", fmt.Sprintf("cannot exceed %d", MaxQuantity))
	}
	if i.Threshold < 0 {
		return NewValidationError("threshold", "cannot be negative")
	}
	if i.Threshold > MaxQuantity {
		return NewValidationError("threshold", fmt.Sprintf("cannot exceed %d", MaxQuantity))
	}
	if err := ValidateMoney("unit_price", i.UnitPrice); err != nil {
		return err
	}
	if i.LocationID == uuid.Nil {
		return NewValidationError("location_id", "is required")
	}
	return nil
}

// ValidateMoney rejects amounts the NUMERIC(12, 2) columns would round or
// refuse.
func ValidateMoney(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return NewValidationError(field, "cannot be negative")
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return NewValidationError(field, fmt.Sprintf("cannot have more than %d decimal places", MoneyScale))
	}
	if amount.GreaterThanOrEqual(moneyLimit) {
		return NewValidationError(field, "must be less than "+moneyLimit.String())
	}
	return nil
}

// ValidateMovement checks the quantity of a transfer, sale or wastage
func ValidateMovement(quantity int) error {
	if quantity <= 0 {
		return NewValidationError("quantity", "must be positive")
	}
	if quantity > MaxQuantity {
		return NewValidationError("quantity", fmt.Sprintf("cannot exceed %d", MaxQuantity))
	}
	return nil
}

// ItemDraft carries the fields needed to create an item.
type ItemDraft struct {
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Threshold  int             `json:"threshold"`
	LocationID uuid.UUID       `json:"location_id"`
}

// Validate checks the draft against the item invariants
func (d *ItemDraft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	item := d.ToItem()
	return item.Validate()
}

// ToItem builds a new Item with a fresh identifier and timestamps
func (d *ItemDraft) ToItem() *Item {
	now := time.Now().UTC()
	return &Item{
		ID:         uuid.New(),
		Name:       d.Name,
		Category:   d.Category,
		Quantity:   d.Quantity,
		UnitPrice:  d.UnitPrice,
		Threshold:  d.Threshold,
		LocationID: d.LocationID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// PoolDraft describes the stock pool a transfer lands in: same product
// attributes as the source, different location.
func (i *Item) PoolDraft(locationID uuid.UUID, quantity int) ItemDraft {
	return ItemDraft{
		Name:       i.Name,
		Category:   i.Category,
		Quantity:   quantity,
		UnitPrice:  i.UnitPrice,
		Threshold:  i.Threshold,
		LocationID: locationID,
	}
}

// ItemPatch holds the fields updateItem may change. Quantity and location
// only move through transfers, sales and wastage so they are absent here.
type ItemPatch struct {
	Name      *string          `json:"name,omitempty"`
	Category  *string          `json:"category,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Threshold *int             `json:"threshold,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p *ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.UnitPrice == nil && p.Threshold == nil
}

// Apply returns a copy of item with the patch applied. The result is
// validated so a patch can never produce an invalid item.
func (p *ItemPatch) Apply(item Item) (*Item, error) {
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.UnitPrice != nil {
		item.UnitPrice = *p.UnitPrice
	}
	if p.Threshold != nil {
		item.Threshold = *p.Threshold
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return &item, nil
}

// ItemFilter narrows an item listing. Zero values match everything.
type ItemFilter struct {
	Name       string
	Category   string
	LocationID uuid.UUID
}
