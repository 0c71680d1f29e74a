// internal/handlers/ledger.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

// LedgerHandler serves the sales and wastage history
type LedgerHandler struct {
	engine ports.InventoryEngine
	logger *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(engine ports.InventoryEngine, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		engine: engine,
		logger: logger.With(slog.String("handler", "ledger")),
	}
}

// ListSales handles GET /api/v1/sales
func (h *LedgerHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	events, err := h.engine.ListSales(r.Context(), filter)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"sales": events,
		"count": len(events),
	})
}

// ListWastage handles GET /api/v1/wastage
func (h *LedgerHandler) ListWastage(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	events, err := h.engine.ListWastage(r.Context(), filter)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"wastage": events,
		"count":   len(events),
	})
}

// parseEventFilter reads item_id, since, until and limit
func parseEventFilter(r *http.Request) (domain.EventFilter, error) {
	var (
		filter domain.EventFilter
		err    error
	)
	if filter.ItemID, err = queryUUID(r, "item_id"); err != nil {
		return filter, err
	}
	if filter.Since, err = queryTime(r, "since"); err != nil {
		return filter, err
	}
	if filter.Until, err = queryTime(r, "until"); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		return filter, err
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return filter, nil
}
