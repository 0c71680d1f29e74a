// internal/adapters/db/ledger_store.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

// ledgerStore implements ports.LedgerStore over the sale_events and
// wastage_events tables. Rows are never updated or deleted.
type ledgerStore struct {
	q      Querier
	logger *slog.Logger
}

var _ ports.LedgerStore = (*ledgerStore)(nil)

// NewLedgerStore creates a ledger store over q
func NewLedgerStore(q Querier, logger *slog.Logger) ports.LedgerStore {
	return &ledgerStore{
		q:      q,
		logger: logger.With(slog.String("repository", "ledger")),
	}
}

func nullableKey(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}

func scanSale(row pgx.Row) (*domain.SaleEvent, error) {
	e := &domain.SaleEvent{}
	var key *string
	if err := row.Scan(&e.ID, &e.ItemID, &e.Quantity, &e.UnitRevenue, &key, &e.OccurredAt); err != nil {
		return nil, err
	}
	if key != nil {
		e.RequestKey = *key
	}
	return e, nil
}

func scanWastage(row pgx.Row) (*domain.WastageEvent, error) {
	e := &domain.WastageEvent{}
	var key *string
	var reason string
	if err := row.Scan(&e.ID, &e.ItemID, &e.Quantity, &reason, &e.Notes, &key, &e.OccurredAt); err != nil {
		return nil, err
	}
	e.Reason = domain.WastageReason(reason)
	if key != nil {
		e.RequestKey = *key
	}
	return e, nil
}

var (
	saleColumns    = []string{"id", "item_id", "quantity", "unit_revenue", "request_key", "occurred_at"}
	wastageColumns = []string{"id", "item_id", "quantity", "reason", "notes", "request_key", "occurred_at"}
)

func (s *ledgerStore) AppendSale(ctx context.Context, event *domain.SaleEvent) (*domain.SaleEvent, error) {
	query, args, err := squirrel.Insert("sale_events").
		Columns(saleColumns...).
		Values(event.ID, event.ItemID, event.Quantity, event.UnitRevenue, nullableKey(event.RequestKey), event.OccurredAt).
		Suffix("RETURNING id, item_id, quantity, unit_revenue, request_key, occurred_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	stored, err := scanSale(s.q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to append sale: %w", classify("ledger.append_sale", err))
	}

	s.logger.DebugContext(ctx, "sale appended", slog.String("sale_id", stored.ID.String()))
	return stored, nil
}

func (s *ledgerStore) AppendWastage(ctx context.Context, event *domain.WastageEvent) (*domain.WastageEvent, error) {
	query, args, err := squirrel.Insert("wastage_events").
		Columns(wastageColumns...).
		Values(event.ID, event.ItemID, event.Quantity, string(event.Reason), event.Notes, nullableKey(event.RequestKey), event.OccurredAt).
		Suffix("RETURNING id, item_id, quantity, reason, notes, request_key, occurred_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	stored, err := scanWastage(s.q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to append wastage: %w", classify("ledger.append_wastage", err))
	}

	s.logger.DebugContext(ctx, "wastage appended", slog.String("wastage_id", stored.ID.String()))
	return stored, nil
}

func eventQuery(table string, columns []string, filter domain.EventFilter) squirrel.SelectBuilder {
	qb := squirrel.Select(columns...).
		From(table).
		PlaceholderFormat(squirrel.Dollar)

	if filter.ItemID != uuid.Nil {
		qb = qb.Where(squirrel.Eq{"item_id": filter.ItemID.String()})
	}
	if !filter.Since.IsZero() {
		qb = qb.Where(squirrel.GtOrEq{"occurred_at": filter.Since})
	}
	if !filter.Until.IsZero() {
		qb = qb.Where(squirrel.Lt{"occurred_at": filter.Until})
	}
	qb = qb.OrderBy("occurred_at DESC", "id ASC")
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	return qb
}

func (s *ledgerStore) ListSales(ctx context.Context, filter domain.EventFilter) ([]*domain.SaleEvent, error) {
	query, args, err := eventQuery("sale_events", saleColumns, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", classify("ledger.list_sales", err))
	}

	events, err := ScanMany(rows, func(r pgx.Rows) (*domain.SaleEvent, error) { return scanSale(r) })
	if err != nil {
		return nil, fmt.Errorf("failed to scan sales: %w", classify("ledger.list_sales", err))
	}
	return events, nil
}

func (s *ledgerStore) ListWastage(ctx context.Context, filter domain.EventFilter) ([]*domain.WastageEvent, error) {
	query, args, err := eventQuery("wastage_events", wastageColumns, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wastage: %w", classify("ledger.list_wastage", err))
	}

	events, err := ScanMany(rows, func(r pgx.Rows) (*domain.WastageEvent, error) { return scanWastage(r) })
	if err != nil {
		return nil, fmt.Errorf("failed to scan wastage: %w", classify("ledger.list_wastage", err))
	}
	return events, nil
}

func (s *ledgerStore) FindSaleByKey(ctx context.Context, key string) (*domain.SaleEvent, error) {
	query, args, err := squirrel.Select(saleColumns...).
		From("sale_events").
		Where(squirrel.Eq{"request_key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	e, err := scanSale(s.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find sale: %w", classify("ledger.find_sale", err))
	}
	return e, nil
}

func (s *ledgerStore) FindWastageByKey(ctx context.Context, key string) (*domain.WastageEvent, error) {
	query, args, err := squirrel.Select(wastageColumns...).
		From("wastage_events").
		Where(squirrel.Eq{"request_key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	e, err := scanWastage(s.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wastage: %w", classify("ledger.find_wastage", err))
	}
	return e, nil
}
