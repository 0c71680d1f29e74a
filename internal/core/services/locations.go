package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ammerola/stockroom/internal/core/domain"
)

// CreateLocation stores a new location
func (e *InventoryEngine) CreateLocation(ctx context.Context, draft domain.LocationDraft) (*domain.Location, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	loc, err := e.stores.Locations.Create(ctx, draft.ToLocation())
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	e.logger.InfoContext(ctx, "location created",
		slog.String("location_id", loc.ID.String()),
		slog.String("name", loc.Name))

	return loc, nil
}

// UpdateLocation replaces the name and address of a location
func (e *InventoryEngine) UpdateLocation(ctx context.Context, id uuid.UUID, draft domain.LocationDraft) (*domain.Location, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	loc, err := e.stores.Locations.Update(ctx, &domain.Location{ID: id, Name: draft.Name, Address: draft.Address})
	if err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}

	return loc, nil
}

// DeleteLocation removes a location that no item references
func (e *InventoryEngine) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if err := e.stores.Locations.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}

	e.logger.InfoContext(ctx, "location deleted", slog.String("location_id", id.String()))
	return nil
}

// GetLocation returns a single location
func (e *InventoryEngine) GetLocation(ctx context.Context, id uuid.UUID) (*domain.Location, error) {
	return readWithRetry(ctx, e, "get location", func(ctx context.Context) (*domain.Location, error) {
		return e.stores.Locations.Get(ctx, id)
	})
}

// ListLocations returns every location ordered by name
func (e *InventoryEngine) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	return readWithRetry(ctx, e, "list locations", e.stores.Locations.List)
}
