package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"haul/internal/domain"
	"haul/internal/repository"
)

// TransactionRepository is a PostgreSQL implementation of
// repository.TransactionRepository backed by the wallet_transactions table.
type TransactionRepository struct {
	conn
}

// NewTransactionRepository creates a new PostgreSQL ledger repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{conn: newConn(db, DefaultQueryTimeout)}
}

// Append persists a new ledger entry.
func (r *TransactionRepository) Append(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO wallet_transactions (id, driver_id, type, amount, balance_after, description, ride_id, withdrawal_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.exec(ctx, query,
		txn.ID,
		txn.DriverID,
		txn.Type,
		txn.Amount,
		txn.Balance,
		txn.Description,
		nullString(txn.RideID),
		nullString(txn.WithdrawalID),
		txn.Status,
		txn.CreatedAt,
	)
	return err
}

// List returns ledger entries matching filter, newest first.
func (r *TransactionRepository) List(ctx context.Context, filter repository.TransactionFilter, page repository.Page) ([]*domain.Transaction, error) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.DriverID != "" {
		add("driver_id = $%d", filter.DriverID)
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.WithdrawalID != "" {
		add("withdrawal_id = $%d", filter.WithdrawalID)
	}
	if !filter.From.IsZero() {
		add("created_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("created_at <= $%d", filter.To)
	}

	query := `SELECT id, driver_id, type, amount, balance_after, description, ride_id, withdrawal_id, status, created_at
		FROM wallet_transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, page.Limit, page.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	var txns []*domain.Transaction
	err := r.query(ctx, func(row rowScanner) error {
		var txn domain.Transaction
		var rideID, withdrawalID sql.NullString
		if err := row.Scan(
			&txn.ID,
			&txn.DriverID,
			&txn.Type,
			&txn.Amount,
			&txn.Balance,
			&txn.Description,
			&rideID,
			&withdrawalID,
			&txn.Status,
			&txn.CreatedAt,
		); err != nil {
			return err
		}
		txn.RideID = rideID.String
		txn.WithdrawalID = withdrawalID.String
		txns = append(txns, &txn)
		return nil
	}, query, args...)
	return txns, err
}

// SumByDriver returns the sum of the ledger amounts of driverID.
func (r *TransactionRepository) SumByDriver(ctx context.Context, driverID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions WHERE driver_id = $1`

	var sum decimal.Decimal
	err := r.queryRow(ctx, func(row rowScanner) error {
		return row.Scan(&sum)
	}, query, driverID)
	return sum, err
}
