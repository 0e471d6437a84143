// Package store keeps the UI's local copy of the transaction collection in
// step with the remote collection. Every mutation goes to the remote side
// first; the local copy changes only once the remote call has succeeded.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"finanzy/internal/core"
	"finanzy/internal/ledger"
	"finanzy/internal/log"
	"finanzy/internal/remote"
)

// Observer is notified after every remote round-trip.
type Observer interface {
	ObserveMutation(op string, err error)
}

type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentStore) }
}

// WithClock overrides time.Now, which decides what "today" is.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

type Store struct {
	remote   remote.Collection
	logger   *log.Logger
	now      func() time.Time
	observer Observer

	// writeMu serialises mutations so at most one remote write is in flight.
	writeMu sync.Mutex

	mu     sync.RWMutex
	items  []core.Transaction
	loaded bool
}

func New(rc remote.Collection, opts ...Option) *Store {
	s := &Store{
		remote: rc,
		logger: log.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current calendar day according to the store clock.
func (s *Store) Today() core.Date {
	return core.Today(s.now())
}

// Load replaces the local collection with the remote list.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	items, err := s.remote.List(ctx)
	s.observe(log.OpLoad, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load transactions", log.FieldOperation, log.OpLoad, log.FieldError, err)
		return fmt.Errorf("load transactions: %w", err)
	}

	s.mu.Lock()
	s.items = slices.Clone(items)
	s.loaded = true
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transactions loaded", log.FieldCount, len(items))
	return nil
}

// Loaded reports whether the initial Load has succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Create stores tx remotely and appends the remote's canonical record.
func (s *Store) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	saved, err := s.remote.Create(ctx, tx)
	s.observe(log.OpCreate, err)
	if err != nil {
		s.logFailure(ctx, log.OpCreate, tx, err)
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	if saved.ID == "" {
		saved = tx
	}

	s.mu.Lock()
	s.items = append(s.items, saved)
	s.mu.Unlock()

	log.NewStructuredLogger(s.logger).LogTransaction(ctx, log.OpCreate, saved)
	return saved, nil
}

// Update replaces the transaction with the same id. The period is whatever
// tx carries; it is not reclassified here. An unknown id is reported by the
// remote collection and leaves the local collection untouched.
func (s *Store) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	saved, err := s.remote.Update(ctx, tx)
	s.observe(log.OpUpdate, err)
	if err != nil {
		s.logFailure(ctx, log.OpUpdate, tx, err)
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if saved.ID == "" {
		saved = tx
	}

	s.mu.Lock()
	if i := s.indexOf(saved.ID); i >= 0 {
		s.items[i] = saved
	}
	s.mu.Unlock()

	log.NewStructuredLogger(s.logger).LogTransaction(ctx, log.OpUpdate, saved)
	return saved, nil
}

// Delete removes id remotely, then locally.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.remote.Delete(ctx, id)
	s.observe(log.OpDelete, err)
	if err != nil {
		s.logFailure(ctx, log.OpDelete, core.Transaction{ID: id}, err)
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	return nil
}

// Snapshot returns a copy of the local collection in insertion order.
func (s *Store) Snapshot() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Get(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return core.Transaction{}, false
}

// Summary totals the whole collection regardless of any filter.
func (s *Store) Summary() ledger.Summary {
	return ledger.Summarize(s.Snapshot())
}

// View filters the collection and returns the requested page.
func (s *Store) View(c ledger.Criteria, pageSize, page int) ledger.Page {
	return ledger.Paginate(ledger.Filter(s.Snapshot(), c), pageSize, page)
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(tx core.Transaction) bool { return tx.ID == id })
}

func (s *Store) observe(op string, err error) {
	if s.observer != nil {
		s.observer.ObserveMutation(op, err)
	}
}

func (s *Store) logFailure(ctx context.Context, op string, tx core.Transaction, err error) {
	fields := log.NewFields().WithTransaction(tx).WithErrorType(log.ErrorTypeNetwork)
	log.NewStructuredLogger(s.logger).LogError(ctx, "Remote collection call failed", err, log.ComponentStore, op, fields)
}
