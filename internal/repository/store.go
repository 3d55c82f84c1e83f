package repository

import "context"

// DefaultPageSize is the number of records returned by list operations.
const DefaultPageSize = 50

// Page selects a window of an ordered listing.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to valid bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 || p.Limit > DefaultPageSize {
		p.Limit = DefaultPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Store groups the repositories that must change together and runs units of
// work against them.
type Store interface {
	Rides() RideRepository
	Wallets() WalletRepository
	Transactions() TransactionRepository
	Withdrawals() WithdrawalRepository

	// WithTransaction runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	// Calling WithTransaction on a transaction-bound Store joins the
	// existing transaction.
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}
