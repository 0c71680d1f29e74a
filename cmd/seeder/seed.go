package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

// SeedFile is the document the seeder loads
type SeedFile struct {
	Locations []SeedLocation `json:"locations"`
}

// SeedLocation is a location and the stock it should hold
type SeedLocation struct {
	Name    string     `json:"name"`
	Address string     `json:"address,omitempty"`
	Items   []SeedItem `json:"items"`
}

// SeedItem is one stock pool. Sales are replayed through the engine with
// their request keys so re-running the seeder does not sell twice.
type SeedItem struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Threshold int             `json:"threshold"`
	Sales     []SeedSale      `json:"sales,omitempty"`
}

// SeedSale is a historical sale
type SeedSale struct {
	Quantity    int             `json:"quantity"`
	UnitRevenue decimal.Decimal `json:"unit_revenue"`
	RequestKey  string          `json:"request_key"`
}

// SeedSummary counts what a run changed
type SeedSummary struct {
	LocationsCreated int
	LocationsSkipped int
	ItemsCreated     int
	ItemsSkipped     int
	SalesRecorded    int
	SalesReplayed    int
}

// LoadSeedFile reads a seed document from disk
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Seeder applies a seed document through the engine
type Seeder struct {
	engine ports.InventoryEngine
	dryRun bool
	logger *slog.Logger
}

// NewSeeder creates a seeder. In dry-run mode nothing is written.
func NewSeeder(engine ports.InventoryEngine, dryRun bool, logger *slog.Logger) *Seeder {
	return &Seeder{engine: engine, dryRun: dryRun, logger: logger}
}

// Run creates missing locations and items, then replays sales. Existing
// entities are matched by name and left untouched.
func (s *Seeder) Run(ctx context.Context, seed *SeedFile) (*SeedSummary, error) {
	summary := &SeedSummary{}

	existing, err := s.engine.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	byName := make(map[string]*domain.Location, len(existing))
	for _, loc := range existing {
		byName[strings.ToLower(loc.Name)] = loc
	}

	for _, sl := range seed.Locations {
		loc, ok := byName[strings.ToLower(strings.TrimSpace(sl.Name))]
		if ok {
			summary.LocationsSkipped++
		} else {
			if s.dryRun {
				fmt.Printf("[DRY RUN] would create location %q with %d items\n", sl.Name, len(sl.Items))
				summary.LocationsCreated++
				summary.ItemsCreated += len(sl.Items)
				continue
			}
			loc, err = s.engine.CreateLocation(ctx, domain.LocationDraft{Name: sl.Name, Address: sl.Address})
			if err != nil {
				return summary, fmt.Errorf("failed to create location %q: %w", sl.Name, err)
			}
			byName[strings.ToLower(loc.Name)] = loc
			summary.LocationsCreated++
			s.logger.Info("location created", slog.String("name", loc.Name))
		}

		for _, si := range sl.Items {
			if err := s.seedItem(ctx, loc, si, summary); err != nil {
				return summary, err
			}
		}
	}

	return summary, nil
}

func (s *Seeder) seedItem(ctx context.Context, loc *domain.Location, si SeedItem, summary *SeedSummary) error {
	found, err := s.engine.ListItems(ctx, domain.ItemFilter{Name: si.Name, LocationID: loc.ID})
	if err != nil {
		return fmt.Errorf("failed to look up item %q: %w", si.Name, err)
	}

	var item *domain.Item
	for _, candidate := range found {
		if strings.EqualFold(candidate.Name, strings.TrimSpace(si.Name)) {
			item = candidate
			break
		}
	}

	switch {
	case item != nil:
		summary.ItemsSkipped++
	case s.dryRun:
		fmt.Printf("[DRY RUN] would create item %q at %q\n", si.Name, loc.Name)
		summary.ItemsCreated++
		return nil
	default:
		item, err = s.engine.CreateItem(ctx, domain.ItemDraft{
			Name:       si.Name,
			Category:   si.Category,
			Quantity:   si.Quantity,
			UnitPrice:  si.UnitPrice,
			Threshold:  si.Threshold,
			LocationID: loc.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to create item %q at %q: %w", si.Name, loc.Name, err)
		}
		summary.ItemsCreated++
	}

	if s.dryRun {
		return nil
	}

	for _, sale := range si.Sales {
		result, err := s.engine.RecordSale(ctx, item.ID, sale.Quantity, sale.UnitRevenue, sale.RequestKey)
		if err != nil {
			return fmt.Errorf("failed to record sale %q for %q: %w", sale.RequestKey, si.Name, err)
		}
		if result.Replayed {
			summary.SalesReplayed++
		} else {
			summary.SalesRecorded++
		}
	}
	return nil
}

// defaultSeed is used when no seed file is given
func defaultSeed() *SeedFile {
	price := decimal.RequireFromString
	return &SeedFile{Locations: []SeedLocation{
		{
			Name:    "Central Warehouse",
			Address: "100 Depot Road",
			Items: []SeedItem{
				{Name: "Whole Milk 1L", Category: "dairy", Quantity: 120, UnitPrice: price("1.49"), Threshold: 30},
				{Name: "Free Range Eggs 12pk", Category: "dairy", Quantity: 60, UnitPrice: price("3.99"), Threshold: 20},
				{Name: "Flour 1kg", Category: "baking", Quantity: 45, UnitPrice: price("0.89"), Threshold: 15},
			},
		},
		{
			Name:    "High Street Store",
			Address: "12 High Street",
			Items: []SeedItem{
				{
					Name: "Whole Milk 1L", Category: "dairy", Quantity: 18, UnitPrice: price("1.49"), Threshold: 10,
					Sales: []SeedSale{
						{Quantity: 4, UnitRevenue: price("1.79"), RequestKey: "seed-high-street-milk-1"},
						{Quantity: 3, UnitRevenue: price("1.79"), RequestKey: "seed-high-street-milk-2"},
					},
				},
				{Name: "Sourdough Loaf", Category: "bakery", Quantity: 6, UnitPrice: price("3.20"), Threshold: 8},
			},
		},
	}}
}
