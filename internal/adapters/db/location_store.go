// internal/adapters/db/location_store.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

const locationColumns = "id, name, address, created_at, updated_at"

// locationStore implements ports.LocationStore
type locationStore struct {
	q      Querier
	logger *slog.Logger
}

var _ ports.LocationStore = (*locationStore)(nil)

// NewLocationStore creates a location store over q
func NewLocationStore(q Querier, logger *slog.Logger) ports.LocationStore {
	return &locationStore{
		q:      q,
		logger: logger.With(slog.String("repository", "locations")),
	}
}

func scanLocation(row pgx.Row) (*domain.Location, error) {
	loc := &domain.Location{}
	if err := row.Scan(&loc.ID, &loc.Name, &loc.Address, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *locationStore) Get(ctx context.Context, id uuid.UUID) (*domain.Location, error) {
	loc, err := scanLocation(s.q.QueryRow(ctx, "SELECT "+locationColumns+" FROM locations WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "location", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", classify("locations.get", err))
	}
	return loc, nil
}

func (s *locationStore) List(ctx context.Context) ([]*domain.Location, error) {
	rows, err := s.q.Query(ctx, "SELECT "+locationColumns+" FROM locations ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", classify("locations.list", err))
	}

	locs, err := ScanMany(rows, func(r pgx.Rows) (*domain.Location, error) { return scanLocation(r) })
	if err != nil {
		return nil, fmt.Errorf("failed to scan locations: %w", classify("locations.list", err))
	}
	return locs, nil
}

func (s *locationStore) Create(ctx context.Context, location *domain.Location) (*domain.Location, error) {
	created, err := scanLocation(s.q.QueryRow(ctx, `
		INSERT INTO locations (id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+locationColumns,
		location.ID, location.Name, location.Address, location.CreatedAt, location.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", classify("locations.create", err))
	}
	return created, nil
}

func (s *locationStore) Update(ctx context.Context, location *domain.Location) (*domain.Location, error) {
	updated, err := scanLocation(s.q.QueryRow(ctx, `
		UPDATE locations SET name = $2, address = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+locationColumns,
		location.ID, location.Name, location.Address,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "location", ID: location.ID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update location: %w", classify("locations.update", err))
	}
	return updated, nil
}

// Delete relies on ON DELETE RESTRICT to refuse locations that still hold items
func (s *locationStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, "DELETE FROM locations WHERE id = $1", id)
	if isForeignKeyViolation(err) {
		return &domain.ReferentialIntegrityError{
			Entity: "location",
			ID:     id,
			Reason: "items still reference it",
		}
	}
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", classify("locations.delete", err))
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "location", ID: id}
	}
	return nil
}
