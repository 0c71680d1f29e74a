// internal/handlers/locations.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

// LocationHandler handles location requests
type LocationHandler struct {
	engine ports.InventoryEngine
	logger *slog.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(engine ports.InventoryEngine, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		engine: engine,
		logger: logger.With(slog.String("handler", "locations")),
	}
}

// ListLocations handles GET /api/v1/locations
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.engine.ListLocations(r.Context())
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"locations": locations,
		"count":     len(locations),
	})
}

// CreateLocation handles POST /api/v1/locations
func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var draft domain.LocationDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	location, err := h.engine.CreateLocation(r.Context(), draft)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "location created",
		slog.String("location_id", location.ID.String()),
		slog.String("name", location.Name))

	w.Header().Set("Location", "/api/v1/locations/"+location.ID.String())
	respondJSON(w, h.logger, http.StatusCreated, location)
}

// GetLocation handles GET /api/v1/locations/{id}
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	location, err := h.engine.GetLocation(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, location)
}

// UpdateLocation handles PUT /api/v1/locations/{id}
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	var draft domain.LocationDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	location, err := h.engine.UpdateLocation(r.Context(), id, draft)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, location)
}

// DeleteLocation handles DELETE /api/v1/locations/{id}. Locations that
// still hold items are refused with 409.
func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	if err := h.engine.DeleteLocation(r.Context(), id); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "location deleted", slog.String("location_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
