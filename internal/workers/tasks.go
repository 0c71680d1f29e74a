// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeLowStock = "stock:low"
)

// LowStockPayload identifies the item that crossed its threshold. It holds
// only the id so that asynq.Unique collapses repeats for the same item.
type LowStockPayload struct {
	ItemID uuid.UUID `json:"item_id"`
}

// NewLowStockTask encodes payload as a stock:low task
func NewLowStockTask(payload LowStockPayload, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeLowStock, b, opts...), nil
}
