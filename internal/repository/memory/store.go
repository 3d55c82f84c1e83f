// Package memory provides an in-process implementation of repository.Store.
// It backs the test suites and the "memory" database driver used for local
// runs without PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"haul/internal/domain"
	"haul/internal/repository"
)

// Operation names accepted by InjectError.
const (
	OpRideCreate        = "rides.create"
	OpRideUpdate        = "rides.update"
	OpWalletSave        = "wallets.save"
	OpTransactionAppend = "transactions.append"
	OpWithdrawalCreate  = "withdrawals.create"
	OpWithdrawalUpdate  = "withdrawals.update"
)

var _ repository.Store = (*Store)(nil)

type state struct {
	rides           map[string]*domain.Ride
	rideOrder       []string
	wallets         map[string]*domain.Wallet
	transactions    []*domain.Transaction
	withdrawals     map[string]*domain.Withdrawal
	withdrawalOrder []string
}

func newState() *state {
	return &state{
		rides:       make(map[string]*domain.Ride),
		wallets:     make(map[string]*domain.Wallet),
		withdrawals: make(map[string]*domain.Withdrawal),
	}
}

// clone copies every mutable record. Ledger entries are immutable and shared.
func (s *state) clone() *state {
	c := &state{
		rides:           make(map[string]*domain.Ride, len(s.rides)),
		rideOrder:       slices.Clone(s.rideOrder),
		wallets:         make(map[string]*domain.Wallet, len(s.wallets)),
		transactions:    slices.Clone(s.transactions),
		withdrawals:     make(map[string]*domain.Withdrawal, len(s.withdrawals)),
		withdrawalOrder: slices.Clone(s.withdrawalOrder),
	}
	for id, r := range s.rides {
		c.rides[id] = copyRide(r)
	}
	for id, w := range s.wallets {
		cp := *w
		c.wallets[id] = &cp
	}
	for id, w := range s.withdrawals {
		cp := *w
		c.withdrawals[id] = &cp
	}
	return c
}

type database struct {
	// txMu serializes writers. mu guards the state pointer for readers.
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *state

	faultMu sync.Mutex
	faults  map[string]fault
}

type fault struct {
	err  error
	once bool
}

// Store is an in-memory repository.Store.
type Store struct {
	db *database
	tx *state
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{db: &database{state: newState(), faults: make(map[string]fault)}}
}

// InjectError makes every subsequent call of op fail with err.
func (s *Store) InjectError(op string, err error) {
	s.db.faultMu.Lock()
	defer s.db.faultMu.Unlock()
	s.db.faults[op] = fault{err: err}
}

// InjectErrorOnce makes the next call of op fail with err.
func (s *Store) InjectErrorOnce(op string, err error) {
	s.db.faultMu.Lock()
	defer s.db.faultMu.Unlock()
	s.db.faults[op] = fault{err: err, once: true}
}

// ClearErrors removes all injected errors.
func (s *Store) ClearErrors() {
	s.db.faultMu.Lock()
	defer s.db.faultMu.Unlock()
	s.db.faults = make(map[string]fault)
}

func (d *database) fault(op string) error {
	d.faultMu.Lock()
	defer d.faultMu.Unlock()
	f, ok := d.faults[op]
	if !ok {
		return nil
	}
	if f.once {
		delete(d.faults, op)
	}
	return f.err
}

// Rides returns the ride repository bound to this store.
func (s *Store) Rides() repository.RideRepository { return &RideRepository{view{s.db, s.tx}} }

// Wallets returns the wallet repository bound to this store.
func (s *Store) Wallets() repository.WalletRepository { return &WalletRepository{view{s.db, s.tx}} }

// Transactions returns the ledger repository bound to this store.
func (s *Store) Transactions() repository.TransactionRepository {
	return &TransactionRepository{view{s.db, s.tx}}
}

// Withdrawals returns the withdrawal repository bound to this store.
func (s *Store) Withdrawals() repository.WithdrawalRepository {
	return &WithdrawalRepository{view{s.db, s.tx}}
}

// WithTransaction runs fn against a private copy of the data and publishes
// the copy only when fn succeeds. Transactions are serialized.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}

	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	s.db.mu.RLock()
	work := s.db.state.clone()
	s.db.mu.RUnlock()

	if err := fn(&Store{db: s.db, tx: work}); err != nil {
		return err
	}

	s.db.mu.Lock()
	s.db.state = work
	s.db.mu.Unlock()
	return nil
}

// view resolves which state a repository call reads and writes.
type view struct {
	db *database
	tx *state
}

func (v view) read(ctx context.Context, fn func(s *state) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.db.mu.RLock()
	defer v.db.mu.RUnlock()
	return fn(v.db.state)
}

func (v view) write(ctx context.Context, op string, fn func(s *state) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	if err := v.db.fault(op); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.db.txMu.Lock()
	defer v.db.txMu.Unlock()
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	return fn(v.db.state)
}

func paginate[T any](items []T, page repository.Page) []T {
	if page.Offset >= len(items) {
		return nil
	}
	items = items[page.Offset:]
	if page.Limit > 0 && len(items) > page.Limit {
		items = items[:page.Limit]
	}
	return items
}
