package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

type locationView view

var _ ports.LocationStore = (*locationView)(nil)

func (v *locationView) run(ctx context.Context, op string, fn func(st *state) error) error {
	return (*view)(v).run(ctx, "locations."+op, fn)
}

func (v *locationView) Get(ctx context.Context, id uuid.UUID) (*domain.Location, error) {
	var out *domain.Location
	err := v.run(ctx, "get", func(st *state) error {
		loc, ok := st.locations[id]
		if !ok {
			return &domain.NotFoundError{Entity: "location", ID: id}
		}
		out = &loc
		return nil
	})
	return out, err
}

func (v *locationView) List(ctx context.Context) ([]*domain.Location, error) {
	var out []*domain.Location
	err := v.run(ctx, "list", func(st *state) error {
		for _, loc := range st.locations {
			loc := loc
			out = append(out, &loc)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

func (v *locationView) Create(ctx context.Context, location *domain.Location) (*domain.Location, error) {
	var out *domain.Location
	err := v.run(ctx, "create", func(st *state) error {
		if _, dup := st.locations[location.ID]; dup {
			return &domain.ConflictError{Reason: "location id already exists"}
		}
		st.locations[location.ID] = *location
		stored := *location
		out = &stored
		return nil
	})
	return out, err
}

func (v *locationView) Update(ctx context.Context, location *domain.Location) (*domain.Location, error) {
	var out *domain.Location
	err := v.run(ctx, "update", func(st *state) error {
		current, ok := st.locations[location.ID]
		if !ok {
			return &domain.NotFoundError{Entity: "location", ID: location.ID}
		}
		current.Name = location.Name
		current.Address = location.Address
		current.UpdatedAt = time.Now().UTC()
		st.locations[location.ID] = current
		out = &current
		return nil
	})
	return out, err
}

func (v *locationView) Delete(ctx context.Context, id uuid.UUID) error {
	return v.run(ctx, "delete", func(st *state) error {
		if _, ok := st.locations[id]; !ok {
			return &domain.NotFoundError{Entity: "location", ID: id}
		}
		for _, item := range st.items {
			if item.LocationID == id {
				return &domain.ReferentialIntegrityError{
					Entity: "location",
					ID:     id,
					Reason: "items still reference it",
				}
			}
		}
		delete(st.locations, id)
		return nil
	})
}
