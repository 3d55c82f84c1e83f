package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/lib/pq"

	"haul/internal/repository"
)

// DefaultQueryTimeout bounds a single statement when no timeout is configured.
const DefaultQueryTimeout = 5 * time.Second

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)

	_ repository.Store = (*Store)(nil)
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// conn runs statements against a Querier with a per-statement deadline and
// translates driver errors into repository errors.
type conn struct {
	q       Querier
	timeout time.Duration
}

func newConn(q Querier, timeout time.Duration) conn {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return conn{q: q, timeout: timeout}
}

func (c conn) exec(ctx context.Context, query string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func (c conn) queryRow(ctx context.Context, scan func(rowScanner) error, query string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return classify(scan(c.q.QueryRowContext(ctx, query, args...)))
}

func (c conn) query(ctx context.Context, scan func(rowScanner) error, query string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return classify(err)
		}
	}
	return classify(rows.Err())
}

// classify maps database/sql and lib/pq errors onto repository errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrConflict) ||
		errors.Is(err, repository.ErrUnavailable) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return fmt.Errorf("%w: %s", repository.ErrConflict, pqErr.Message)
		case pqErr.Code == "40001", pqErr.Code == "40P01":
			return fmt.Errorf("%w: %s", repository.ErrUnavailable, pqErr.Message)
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "53", pqErr.Code.Class() == "57":
			return fmt.Errorf("%w: %s", repository.ErrUnavailable, pqErr.Message)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return err
}

// Store is the PostgreSQL implementation of repository.Store.
type Store struct {
	db      *sql.DB
	tx      *sql.Tx
	timeout time.Duration
}

// NewStore creates a Store on top of db. Every statement is bounded by
// queryTimeout.
func NewStore(db *sql.DB, queryTimeout time.Duration) *Store {
	return &Store{db: db, timeout: queryTimeout}
}

func (s *Store) querier() Querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// Rides returns the ride repository bound to this store.
func (s *Store) Rides() repository.RideRepository {
	return &RideRepository{conn: newConn(s.querier(), s.timeout)}
}

// Wallets returns the wallet repository bound to this store.
func (s *Store) Wallets() repository.WalletRepository {
	return &WalletRepository{conn: newConn(s.querier(), s.timeout)}
}

// Transactions returns the ledger repository bound to this store.
func (s *Store) Transactions() repository.TransactionRepository {
	return &TransactionRepository{conn: newConn(s.querier(), s.timeout)}
}

// Withdrawals returns the withdrawal repository bound to this store.
func (s *Store) Withdrawals() repository.WithdrawalRepository {
	return &WithdrawalRepository{conn: newConn(s.querier(), s.timeout)}
}

// WithTransaction runs fn inside a read-committed transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx repository.Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return classify(err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&Store{db: s.db, tx: tx, timeout: s.timeout}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
