package postgres

import (
	"context"
	"database/sql"

	"haul/internal/domain"
	"haul/internal/repository"
)

const withdrawalColumns = `id, driver_id, driver_name, amount, bank, agency, account, status, created_at, cancelled_at, completed_at`

// WithdrawalRepository is a PostgreSQL implementation of repository.WithdrawalRepository.
type WithdrawalRepository struct {
	conn
}

// NewWithdrawalRepository creates a new PostgreSQL withdrawal repository.
func NewWithdrawalRepository(db *sql.DB) *WithdrawalRepository {
	return &WithdrawalRepository{conn: newConn(db, DefaultQueryTimeout)}
}

// Create persists a new withdrawal request.
func (r *WithdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	query := `INSERT INTO withdrawals (` + withdrawalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.exec(ctx, query,
		w.ID,
		w.DriverID,
		w.DriverName,
		w.Amount,
		w.Bank.Bank,
		w.Bank.Agency,
		w.Bank.Account,
		w.Status,
		w.CreatedAt,
		nullTime(w.CancelledAt),
		nullTime(w.CompletedAt),
	)
	return err
}

// GetByID retrieves a withdrawal request by ID.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`

	var w *domain.Withdrawal
	err := r.queryRow(ctx, func(row rowScanner) error {
		var err error
		w, err = scanWithdrawal(row)
		return err
	}, query, id)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// UpdateIfStatus writes the status fields of w when the stored status equals expected.
func (r *WithdrawalRepository) UpdateIfStatus(ctx context.Context, w *domain.Withdrawal, expected domain.WithdrawalStatus) error {
	query := `
		UPDATE withdrawals
		SET status = $1, cancelled_at = $2, completed_at = $3
		WHERE id = $4 AND status = $5
	`

	n, err := r.exec(ctx, query, w.Status, nullTime(w.CancelledAt), nullTime(w.CompletedAt), w.ID, expected)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	err = r.queryRow(ctx, func(row rowScanner) error {
		return row.Scan(&exists)
	}, `SELECT EXISTS (SELECT 1 FROM withdrawals WHERE id = $1)`, w.ID)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

// ListByDriver returns the withdrawal requests of driverID, newest first.
func (r *WithdrawalRepository) ListByDriver(ctx context.Context, driverID string, page repository.Page) ([]*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals
		WHERE driver_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	var list []*domain.Withdrawal
	err := r.query(ctx, func(row rowScanner) error {
		w, err := scanWithdrawal(row)
		if err != nil {
			return err
		}
		list = append(list, w)
		return nil
	}, query, driverID, page.Limit, page.Offset)
	return list, err
}

func scanWithdrawal(row rowScanner) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	var cancelledAt, completedAt sql.NullTime
	err := row.Scan(
		&w.ID,
		&w.DriverID,
		&w.DriverName,
		&w.Amount,
		&w.Bank.Bank,
		&w.Bank.Agency,
		&w.Bank.Account,
		&w.Status,
		&w.CreatedAt,
		&cancelledAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	w.CancelledAt = cancelledAt.Time
	w.CompletedAt = completedAt.Time
	return &w, nil
}
