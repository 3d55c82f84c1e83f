package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"haul/internal/domain"
)

// WalletRepository defines the persistence operations for wallet balances.
type WalletRepository interface {
	// Get retrieves a wallet. Returns ErrNotFound when the driver has never
	// had a balance change.
	Get(ctx context.Context, driverID string) (*domain.Wallet, error)

	// SaveIfBalance stores wallet, creating it when absent, only if the stored
	// balance equals expected (zero for a wallet that does not exist yet).
	// Returns ErrConflict otherwise.
	SaveIfBalance(ctx context.Context, wallet *domain.Wallet, expected decimal.Decimal) error
}

// TransactionFilter narrows a ledger listing. Zero values match everything.
type TransactionFilter struct {
	DriverID     string
	Type         domain.TransactionType
	WithdrawalID string
	From         time.Time
	To           time.Time
}

// TransactionRepository defines the persistence operations for the ledger.
// Entries are append-only.
type TransactionRepository interface {
	// Append persists a new ledger entry.
	Append(ctx context.Context, txn *domain.Transaction) error

	// List returns ledger entries matching filter, newest first.
	List(ctx context.Context, filter TransactionFilter, page Page) ([]*domain.Transaction, error)

	// SumByDriver returns the sum of all entry amounts of driverID.
	SumByDriver(ctx context.Context, driverID string) (decimal.Decimal, error)
}

// WithdrawalRepository defines the persistence operations for withdrawal requests.
type WithdrawalRepository interface {
	// Create persists a new withdrawal request.
	Create(ctx context.Context, w *domain.Withdrawal) error

	// GetByID retrieves a withdrawal request by ID.
	GetByID(ctx context.Context, id string) (*domain.Withdrawal, error)

	// UpdateIfStatus writes w only if the stored status still equals expected.
	UpdateIfStatus(ctx context.Context, w *domain.Withdrawal, expected domain.WithdrawalStatus) error

	// ListByDriver returns withdrawal requests of driverID, newest first.
	ListByDriver(ctx context.Context, driverID string, page Page) ([]*domain.Withdrawal, error)
}
