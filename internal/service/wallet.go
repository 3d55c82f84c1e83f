package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"haul/internal/domain"
	"haul/internal/repository"
)

// Ledger entry descriptions.
const (
	descriptionRideEarning         = "ride earning"
	descriptionWithdrawalRequest   = "withdrawal request"
	descriptionWithdrawalCancelled = "withdrawal cancelled"
)

// EarningsCrediter credits ride earnings inside a caller's unit of work.
type EarningsCrediter interface {
	CreditRideEarningInTx(ctx context.Context, tx repository.Store, req CreditRequest) (*domain.Transaction, error)
}

// Ensure WalletService implements EarningsCrediter.
var _ EarningsCrediter = (*WalletService)(nil)

// WalletService mutates driver balances. Every balance change is paired with
// exactly one ledger entry in the same store transaction.
type WalletService struct {
	store               repository.Store
	notificationService *NotificationService
	log                 logrus.FieldLogger
}

// NewWalletService creates a new WalletService.
func NewWalletService(store repository.Store, notificationService *NotificationService, log logrus.FieldLogger) *WalletService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &WalletService{
		store:               store,
		notificationService: notificationService,
		log:                 log,
	}
}

// CreditRequest contains the parameters for crediting a ride earning.
type CreditRequest struct {
	DriverID string
	Amount   decimal.Decimal
	RideID   string
}

func (r CreditRequest) validate() error {
	if r.DriverID == "" {
		return ErrInvalidDriverID
	}
	if r.RideID == "" {
		return ErrInvalidRideID
	}
	if !validMoney(r.Amount) {
		return ErrInvalidAmount
	}
	return nil
}

// CreditRideEarning credits a ride earning in its own transaction.
func (s *WalletService) CreditRideEarning(ctx context.Context, req CreditRequest) (*domain.Transaction, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var txn *domain.Transaction
	err := runInTx(ctx, s.store, func(tx repository.Store) error {
		var err error
		txn, err = s.CreditRideEarningInTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notificationService.NotifyEarningCredited(ctx, txn)
	return txn, nil
}

// CreditRideEarningInTx credits a ride earning using tx. The caller owns the
// transaction and its retries.
func (s *WalletService) CreditRideEarningInTx(ctx context.Context, tx repository.Store, req CreditRequest) (*domain.Transaction, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		DriverID:    req.DriverID,
		Type:        domain.TransactionTypeRideCredit,
		Amount:      req.Amount,
		Description: descriptionRideEarning,
		RideID:      req.RideID,
		Status:      domain.TransactionStatusCompleted,
	}
	if err := s.apply(ctx, tx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// apply moves the wallet balance by txn.Amount and appends txn to the ledger.
// The balance write is conditional on the balance read here.
func (s *WalletService) apply(ctx context.Context, tx repository.Store, txn *domain.Transaction) error {
	previous := decimal.Zero
	wallet, err := tx.Wallets().Get(ctx, txn.DriverID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		wallet = &domain.Wallet{DriverID: txn.DriverID}
	case err != nil:
		return err
	default:
		previous = wallet.Balance
	}

	next := previous.Add(txn.Amount)
	if next.IsNegative() {
		return fmt.Errorf("%w: available balance is %s", ErrInsufficientFunds, previous.StringFixed(2))
	}
	if next.GreaterThan(maxMoney) {
		return ErrBalanceLimitExceeded
	}

	now := time.Now().UTC()
	wallet.Balance = next
	wallet.UpdatedAt = now
	if err := tx.Wallets().SaveIfBalance(ctx, wallet, previous); err != nil {
		return err
	}

	txn.ID = uuid.New().String()
	txn.Balance = next
	txn.CreatedAt = now
	if err := tx.Transactions().Append(ctx, txn); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"driver_id": txn.DriverID,
		"type":      txn.Type,
		"amount":    txn.Amount.StringFixed(2),
		"balance":   next.StringFixed(2),
	}).Debug("wallet balance changed")
	return nil
}

// WithdrawalRequest contains the parameters for requesting a withdrawal.
type WithdrawalRequest struct {
	DriverID   string
	DriverName string
	Amount     decimal.Decimal
	Bank       domain.BankDetails
}

// RequestWithdrawal debits the wallet and records a pending withdrawal.
func (s *WalletService) RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (*domain.Withdrawal, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !validMoney(req.Amount) {
		return nil, ErrInvalidAmount
	}
	bank := domain.BankDetails{
		Bank:    strings.TrimSpace(req.Bank.Bank),
		Agency:  strings.TrimSpace(req.Bank.Agency),
		Account: strings.TrimSpace(req.Bank.Account),
	}
	if bank.Bank == "" || bank.Agency == "" || bank.Account == "" {
		return nil, ErrInvalidBankDetails
	}

	var withdrawal *domain.Withdrawal
	err := runInTx(ctx, s.store, func(tx repository.Store) error {
		withdrawal = &domain.Withdrawal{
			ID:         uuid.New().String(),
			DriverID:   req.DriverID,
			DriverName: req.DriverName,
			Amount:     req.Amount,
			Bank:       bank,
			Status:     domain.WithdrawalStatusPending,
			CreatedAt:  time.Now().UTC(),
		}
		if err := tx.Withdrawals().Create(ctx, withdrawal); err != nil {
			return err
		}
		return s.apply(ctx, tx, &domain.Transaction{
			DriverID:     req.DriverID,
			Type:         domain.TransactionTypeWithdrawalDebit,
			Amount:       req.Amount.Neg(),
			Description:  descriptionWithdrawalRequest,
			WithdrawalID: withdrawal.ID,
			Status:       domain.TransactionStatusPending,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notificationService.NotifyWithdrawal(ctx, withdrawal)
	return withdrawal, nil
}

// CancelWithdrawal cancels a pending withdrawal and credits its amount back.
// The original debit entry stays untouched.
func (s *WalletService) CancelWithdrawal(ctx context.Context, driverID, withdrawalID string) (*domain.Withdrawal, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if withdrawalID == "" {
		return nil, ErrInvalidWithdrawalID
	}

	var withdrawal *domain.Withdrawal
	err := runInTx(ctx, s.store, func(tx repository.Store) error {
		w, err := tx.Withdrawals().GetByID(ctx, withdrawalID)
		if err != nil {
			return notFound(err, ErrWithdrawalNotFound)
		}
		if w.DriverID != driverID {
			return ErrNotWithdrawalOwner
		}
		if w.Status != domain.WithdrawalStatusPending {
			return ErrWithdrawalNotPending
		}

		w.Status = domain.WithdrawalStatusCancelled
		w.CancelledAt = time.Now().UTC()
		if err := tx.Withdrawals().UpdateIfStatus(ctx, w, domain.WithdrawalStatusPending); err != nil {
			return err
		}

		if err := s.apply(ctx, tx, &domain.Transaction{
			DriverID:     driverID,
			Type:         domain.TransactionTypeWithdrawalCancellationCredit,
			Amount:       w.Amount,
			Description:  descriptionWithdrawalCancelled,
			WithdrawalID: w.ID,
			Status:       domain.TransactionStatusCompleted,
		}); err != nil {
			return err
		}
		withdrawal = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notificationService.NotifyWithdrawal(ctx, withdrawal)
	return withdrawal, nil
}

// CompleteWithdrawal marks a pending withdrawal as paid out. The funds left
// the balance when the withdrawal was requested, so no ledger entry is added.
func (s *WalletService) CompleteWithdrawal(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error) {
	if withdrawalID == "" {
		return nil, ErrInvalidWithdrawalID
	}

	var withdrawal *domain.Withdrawal
	err := runInTx(ctx, s.store, func(tx repository.Store) error {
		w, err := tx.Withdrawals().GetByID(ctx, withdrawalID)
		if err != nil {
			return notFound(err, ErrWithdrawalNotFound)
		}
		if w.Status != domain.WithdrawalStatusPending {
			return ErrWithdrawalNotPending
		}

		w.Status = domain.WithdrawalStatusCompleted
		w.CompletedAt = time.Now().UTC()
		if err := tx.Withdrawals().UpdateIfStatus(ctx, w, domain.WithdrawalStatusPending); err != nil {
			return err
		}
		withdrawal = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notificationService.NotifyWithdrawal(ctx, withdrawal)
	return withdrawal, nil
}

// GetBalance returns the wallet of driverID. A driver without a wallet has a
// zero balance; no wallet is created.
func (s *WalletService) GetBalance(ctx context.Context, driverID string) (*domain.Wallet, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	wallet, err := s.store.Wallets().Get(ctx, driverID)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.Wallet{DriverID: driverID, Balance: decimal.Zero}, nil
	}
	if err != nil {
		return nil, storeError(err)
	}
	return wallet, nil
}

// TransactionQuery narrows ListTransactions. Zero values match everything.
type TransactionQuery struct {
	Type   domain.TransactionType
	From   time.Time
	To     time.Time
	Offset int
}

// ListTransactions returns the ledger entries of driverID, newest first.
func (s *WalletService) ListTransactions(ctx context.Context, driverID string, q TransactionQuery) (*ResultPage[*domain.Transaction], error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if q.Type != "" && !q.Type.Valid() {
		return nil, ErrInvalidTransactionType
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return nil, ErrInvalidDateRange
	}

	filter := repository.TransactionFilter{DriverID: driverID, Type: q.Type, From: q.From, To: q.To}
	return listPage(repository.Page{Offset: q.Offset}, func(p repository.Page) ([]*domain.Transaction, error) {
		return s.store.Transactions().List(ctx, filter, p)
	})
}

// GetWithdrawal returns a withdrawal request owned by driverID.
func (s *WalletService) GetWithdrawal(ctx context.Context, driverID, withdrawalID string) (*domain.Withdrawal, error) {
	if withdrawalID == "" {
		return nil, ErrInvalidWithdrawalID
	}

	w, err := s.store.Withdrawals().GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, storeError(notFound(err, ErrWithdrawalNotFound))
	}
	if w.DriverID != driverID {
		return nil, ErrNotWithdrawalOwner
	}
	return w, nil
}

// ListWithdrawals returns the withdrawal requests of driverID, newest first.
func (s *WalletService) ListWithdrawals(ctx context.Context, driverID string, offset int) (*ResultPage[*domain.Withdrawal], error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return listPage(repository.Page{Offset: offset}, func(p repository.Page) ([]*domain.Withdrawal, error) {
		return s.store.Withdrawals().ListByDriver(ctx, driverID, p)
	})
}

// Reconciliation compares a wallet balance with its ledger.
type Reconciliation struct {
	DriverID   string
	Balance    decimal.Decimal
	LedgerSum  decimal.Decimal
	Consistent bool
}

// Reconcile checks that the balance of driverID equals the sum of its ledger
// entries.
func (s *WalletService) Reconcile(ctx context.Context, driverID string) (*Reconciliation, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	result := &Reconciliation{DriverID: driverID, Balance: decimal.Zero}
	err := s.store.WithTransaction(ctx, func(tx repository.Store) error {
		wallet, err := tx.Wallets().Get(ctx, driverID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return err
		default:
			result.Balance = wallet.Balance
		}

		result.LedgerSum, err = tx.Transactions().SumByDriver(ctx, driverID)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}

	result.Consistent = result.Balance.Equal(result.LedgerSum)
	if !result.Consistent {
		s.log.WithFields(logrus.Fields{
			"driver_id":  driverID,
			"balance":    result.Balance.StringFixed(2),
			"ledger_sum": result.LedgerSum.StringFixed(2),
		}).Error("wallet balance does not match ledger")
	}
	return result, nil
}
