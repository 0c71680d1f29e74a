// internal/handlers/items.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

// IdempotencyKeyHeader carries the request key for sales and wastage
const IdempotencyKeyHeader = "Idempotency-Key"

// ItemHandler handles item and stock movement requests
type ItemHandler struct {
	engine ports.InventoryEngine
	logger *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(engine ports.InventoryEngine, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		engine: engine,
		logger: logger.With(slog.String("handler", "items")),
	}
}

// ItemResponse is an item with its derived stock state
type ItemResponse struct {
	*domain.Item
	State      domain.StockState `json:"state"`
	LowStock   bool              `json:"low_stock"`
	Deficiency int               `json:"deficiency"`
}

func newItemResponse(item *domain.Item) *ItemResponse {
	if item == nil {
		return nil
	}
	return &ItemResponse{
		Item:       item,
		State:      item.State(),
		LowStock:   item.IsLowStock(),
		Deficiency: item.Deficiency(),
	}
}

func newItemResponses(items []*domain.Item) []*ItemResponse {
	out := make([]*ItemResponse, len(items))
	for i, item := range items {
		out[i] = newItemResponse(item)
	}
	return out
}

// ListItems handles GET /api/v1/items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	locationID, err := queryUUID(r, "location_id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	items, err := h.engine.ListItems(r.Context(), domain.ItemFilter{
		Name:       r.URL.Query().Get("name"),
		Category:   r.URL.Query().Get("category"),
		LocationID: locationID,
	})
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"items": newItemResponses(items),
		"count": len(items),
	})
}

// CreateItem handles POST /api/v1/items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var draft domain.ItemDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	item, err := h.engine.CreateItem(ctx, draft)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "item created",
		slog.String("item_id", item.ID.String()),
		slog.String("name", item.Name))

	w.Header().Set("Location", "/api/v1/items/"+item.ID.String())
	respondJSON(w, h.logger, http.StatusCreated, newItemResponse(item))
}

// GetItem handles GET /api/v1/items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	item, err := h.engine.GetItem(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, newItemResponse(item))
}

// UpdateItem handles PATCH /api/v1/items/{id}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	var patch domain.ItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	item, err := h.engine.UpdateItem(r.Context(), id, patch)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, newItemResponse(item))
}

// DeleteItem handles DELETE /api/v1/items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	if err := h.engine.DeleteItem(r.Context(), id); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "item deleted", slog.String("item_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// LowStock handles GET /api/v1/items/low-stock
func (h *ItemHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.LowStockItems(r.Context())
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"items": newItemResponses(items),
		"count": len(items),
	})
}

// ProductQuantity handles GET /api/v1/products/{name}/quantity
func (h *ItemHandler) ProductQuantity(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	total, err := h.engine.AggregateQuantity(r.Context(), name)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"name":     name,
		"quantity": total,
	})
}

// TransferRequest is the body of a transfer
type TransferRequest struct {
	TargetLocationID uuid.UUID `json:"target_location_id"`
	Quantity         int       `json:"quantity"`
}

// TransferResponse holds both sides of a transfer
type TransferResponse struct {
	Source *ItemResponse `json:"source"`
	Target *ItemResponse `json:"target"`
}

// Transfer handles POST /api/v1/items/{id}/transfer
func (h *ItemHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	var req TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.Transfer(ctx, id, req.TargetLocationID, req.Quantity)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, TransferResponse{
		Source: newItemResponse(result.Source),
		Target: newItemResponse(result.Target),
	})
}

// SaleRequest is the body of a sale. The Idempotency-Key header takes
// precedence over request_key.
type SaleRequest struct {
	Quantity    int             `json:"quantity"`
	UnitRevenue decimal.Decimal `json:"unit_revenue"`
	RequestKey  string          `json:"request_key,omitempty"`
}

// SaleResponse is a recorded sale and the item after it
type SaleResponse struct {
	Event        *domain.SaleEvent `json:"event"`
	Item         *ItemResponse     `json:"item"`
	TotalRevenue decimal.Decimal   `json:"total_revenue"`
	Replayed     bool              `json:"replayed"`
}

// RecordSale handles POST /api/v1/items/{id}/sales
func (h *ItemHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	var req SaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.RecordSale(r.Context(), id, req.Quantity, req.UnitRevenue, requestKey(r, req.RequestKey))
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, createdOrReplayed(result.Replayed), SaleResponse{
		Event:        result.Event,
		Item:         newItemResponse(result.Item),
		TotalRevenue: result.Event.TotalRevenue(),
		Replayed:     result.Replayed,
	})
}

// WastageRequest is the body of a wastage record
type WastageRequest struct {
	Quantity   int                  `json:"quantity"`
	Reason     domain.WastageReason `json:"reason"`
	Notes      string               `json:"notes,omitempty"`
	RequestKey string               `json:"request_key,omitempty"`
}

// WastageResponse is a recorded wastage and the item after it
type WastageResponse struct {
	Event    *domain.WastageEvent `json:"event"`
	Item     *ItemResponse        `json:"item"`
	Replayed bool                 `json:"replayed"`
}

// RecordWastage handles POST /api/v1/items/{id}/wastage
func (h *ItemHandler) RecordWastage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	var req WastageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.RecordWastage(r.Context(), id, req.Quantity, req.Reason, req.Notes, requestKey(r, req.RequestKey))
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, createdOrReplayed(result.Replayed), WastageResponse{
		Event:    result.Event,
		Item:     newItemResponse(result.Item),
		Replayed: result.Replayed,
	})
}

func requestKey(r *http.Request, fallback string) string {
	if key := r.Header.Get(IdempotencyKeyHeader); key != "" {
		return key
	}
	return fallback
}

func createdOrReplayed(replayed bool) int {
	if replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}
