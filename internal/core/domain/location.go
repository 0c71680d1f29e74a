package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Location is a warehouse or other physical site holding stock.
type Location struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationDraft carries the fields used to create or replace a location
type LocationDraft struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Validate normalises and checks the draft
func (d *LocationDraft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Address = strings.TrimSpace(d.Address)
	if d.Name == "" {
		return NewValidationError("name", "is required")
	}
	return nil
}

// ToLocation builds a new Location with a fresh identifier
func (d *LocationDraft) ToLocation() *Location {
	now := time.Now().UTC()
	return &Location{
		ID:        uuid.New(),
		Name:      d.Name,
		Address:   d.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
