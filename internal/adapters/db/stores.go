package db

import (
	"log/slog"

	"github.com/ammerola/stockroom/internal/core/ports"
)

// newStores binds every store to the same Querier.
func newStores(q Querier, logger *slog.Logger) ports.Stores {
	return ports.Stores{
		Items:     NewItemStore(q, logger),
		Locations: NewLocationStore(q, logger),
		Ledger:    NewLedgerStore(q, logger),
	}
}
