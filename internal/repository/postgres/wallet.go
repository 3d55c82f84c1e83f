package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"haul/internal/domain"
	"haul/internal/repository"
)

// WalletRepository is a PostgreSQL implementation of repository.WalletRepository.
type WalletRepository struct {
	conn
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{conn: newConn(db, DefaultQueryTimeout)}
}

// Get retrieves the wallet of driverID.
func (r *WalletRepository) Get(ctx context.Context, driverID string) (*domain.Wallet, error) {
	query := `SELECT driver_id, balance, updated_at FROM wallets WHERE driver_id = $1`

	var wallet domain.Wallet
	err := r.queryRow(ctx, func(row rowScanner) error {
		return row.Scan(&wallet.DriverID, &wallet.Balance, &wallet.UpdatedAt)
	}, query, driverID)
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// SaveIfBalance upserts wallet guarded by the previously observed balance.
func (r *WalletRepository) SaveIfBalance(ctx context.Context, wallet *domain.Wallet, expected decimal.Decimal) error {
	query := `
		INSERT INTO wallets (driver_id, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (driver_id) DO UPDATE
		SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at
		WHERE wallets.balance = $4
	`

	n, err := r.exec(ctx, query, wallet.DriverID, wallet.Balance, wallet.UpdatedAt, expected)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrConflict
	}
	return nil
}
