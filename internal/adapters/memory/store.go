// Package memory provides an in-process implementation of the store ports.
// A single mutex serialises every call, which makes each operation
// linearizable, and WithinTx holds that mutex for the whole unit of work and
// restores a snapshot when the work fails.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ammerola/stockroom/internal/core/domain"
	"github.com/ammerola/stockroom/internal/core/ports"
)

type state struct {
	items     map[uuid.UUID]domain.Item
	locations map[uuid.UUID]domain.Location
	sales     []domain.SaleEvent
	wastage   []domain.WastageEvent
}

func newState() state {
	return state{
		items:     map[uuid.UUID]domain.Item{},
		locations: map[uuid.UUID]domain.Location{},
	}
}

func (s state) clone() state {
	c := state{
		items:     make(map[uuid.UUID]domain.Item, len(s.items)),
		locations: make(map[uuid.UUID]domain.Location, len(s.locations)),
		sales:     append([]domain.SaleEvent(nil), s.sales...),
		wastage:   append([]domain.WastageEvent(nil), s.wastage...),
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	return c
}

// FaultFunc lets tests inject store failures. It is called with the
// operation name (for example "items.low_stock") before each call.
type FaultFunc func(op string) error

// Option configures a Store
type Option func(*Store)

// WithFaults installs a fault injector
func WithFaults(fn FaultFunc) Option {
	return func(s *Store) { s.fault = fn }
}

// Store holds all entities in memory.
type Store struct {
	mu     sync.Mutex
	st     state
	fault  FaultFunc
	logger *slog.Logger
}

var (
	_ ports.TxRunner      = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// New creates an empty store
func New(logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		st:     newState(),
		logger: logger.With(slog.String("repository", "memory")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stores returns auto-committing views over the store.
func (s *Store) Stores() ports.Stores {
	return s.views(false)
}

func (s *Store) views(inTx bool) ports.Stores {
	v := &view{store: s, inTx: inTx}
	return ports.Stores{
		Items:     (*itemView)(v),
		Locations: (*locationView)(v),
		Ledger:    (*ledgerView)(v),
	}
}

// WithinTx runs fn while holding the store lock. The views passed to fn
// must not be used after fn returns, and fn must not start another
// transaction on the same store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreUnavailableError{Op: "begin", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()

	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
	}()

	if err := fn(ctx, s.views(true)); err != nil {
		s.st = snapshot
		s.logger.DebugContext(ctx, "transaction rolled back", slog.String("error", err.Error()))
		return err
	}

	return nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Health reports entity counts
func (s *Store) Health(ctx context.Context) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]interface{}{
		"status":    "healthy",
		"driver":    "memory",
		"items":     len(s.st.items),
		"locations": len(s.st.locations),
		"sales":     len(s.st.sales),
		"wastage":   len(s.st.wastage),
	}
}

type view struct {
	store *Store
	inTx  bool
}

func (v *view) run(ctx context.Context, op string, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreUnavailableError{Op: op, Err: err}
	}
	if v.store.fault != nil {
		if err := v.store.fault(op); err != nil {
			return err
		}
	}
	if !v.inTx {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	return fn(&v.store.st)
}
