package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"haul/internal/domain"
	"haul/internal/repository"
)

// WalletRepository is the in-memory repository.WalletRepository.
type WalletRepository struct {
	view
}

// Get retrieves the wallet of driverID.
func (r *WalletRepository) Get(ctx context.Context, driverID string) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := r.read(ctx, func(s *state) error {
		stored, ok := s.wallets[driverID]
		if !ok {
			return repository.ErrNotFound
		}
		cp := *stored
		wallet = &cp
		return nil
	})
	return wallet, err
}

// SaveIfBalance stores wallet when the stored balance equals expected.
func (r *WalletRepository) SaveIfBalance(ctx context.Context, wallet *domain.Wallet, expected decimal.Decimal) error {
	return r.write(ctx, OpWalletSave, func(s *state) error {
		current := decimal.Zero
		if stored, ok := s.wallets[wallet.DriverID]; ok {
			current = stored.Balance
		}
		if !current.Equal(expected) {
			return repository.ErrConflict
		}
		cp := *wallet
		s.wallets[wallet.DriverID] = &cp
		return nil
	})
}

// TransactionRepository is the in-memory repository.TransactionRepository.
type TransactionRepository struct {
	view
}

// Append persists a new ledger entry.
func (r *TransactionRepository) Append(ctx context.Context, txn *domain.Transaction) error {
	return r.write(ctx, OpTransactionAppend, func(s *state) error {
		cp := *txn
		s.transactions = append(s.transactions, &cp)
		return nil
	})
}

// List returns ledger entries matching filter, newest first.
func (r *TransactionRepository) List(ctx context.Context, filter repository.TransactionFilter, page repository.Page) ([]*domain.Transaction, error) {
	var matched []*domain.Transaction
	err := r.read(ctx, func(s *state) error {
		for i := len(s.transactions) - 1; i >= 0; i-- {
			txn := s.transactions[i]
			if filter.DriverID != "" && txn.DriverID != filter.DriverID {
				continue
			}
			if filter.Type != "" && txn.Type != filter.Type {
				continue
			}
			if filter.WithdrawalID != "" && txn.WithdrawalID != filter.WithdrawalID {
				continue
			}
			if !filter.From.IsZero() && txn.CreatedAt.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && txn.CreatedAt.After(filter.To) {
				continue
			}
			cp := *txn
			matched = append(matched, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(matched, page), nil
}

// SumByDriver returns the sum of the ledger amounts of driverID.
func (r *TransactionRepository) SumByDriver(ctx context.Context, driverID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.read(ctx, func(s *state) error {
		for _, txn := range s.transactions {
			if txn.DriverID == driverID {
				sum = sum.Add(txn.Amount)
			}
		}
		return nil
	})
	return sum, err
}

// WithdrawalRepository is the in-memory repository.WithdrawalRepository.
type WithdrawalRepository struct {
	view
}

// Create persists a new withdrawal request.
func (r *WithdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	return r.write(ctx, OpWithdrawalCreate, func(s *state) error {
		if _, ok := s.withdrawals[w.ID]; ok {
			return repository.ErrConflict
		}
		cp := *w
		s.withdrawals[w.ID] = &cp
		s.withdrawalOrder = append(s.withdrawalOrder, w.ID)
		return nil
	})
}

// GetByID retrieves a withdrawal request by ID.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	var w *domain.Withdrawal
	err := r.read(ctx, func(s *state) error {
		stored, ok := s.withdrawals[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := *stored
		w = &cp
		return nil
	})
	return w, err
}

// UpdateIfStatus replaces the stored withdrawal when its status equals expected.
func (r *WithdrawalRepository) UpdateIfStatus(ctx context.Context, w *domain.Withdrawal, expected domain.WithdrawalStatus) error {
	return r.write(ctx, OpWithdrawalUpdate, func(s *state) error {
		stored, ok := s.withdrawals[w.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if stored.Status != expected {
			return repository.ErrConflict
		}
		cp := *w
		s.withdrawals[w.ID] = &cp
		return nil
	})
}

// ListByDriver returns the withdrawal requests of driverID, newest first.
func (r *WithdrawalRepository) ListByDriver(ctx context.Context, driverID string, page repository.Page) ([]*domain.Withdrawal, error) {
	var matched []*domain.Withdrawal
	err := r.read(ctx, func(s *state) error {
		for i := len(s.withdrawalOrder) - 1; i >= 0; i-- {
			w := s.withdrawals[s.withdrawalOrder[i]]
			if w.DriverID == driverID {
				cp := *w
				matched = append(matched, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(matched, page), nil
}
