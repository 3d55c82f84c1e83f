package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeRideCredit                   TransactionType = "ride_credit"
	TransactionTypeWithdrawalDebit              TransactionType = "withdrawal_debit"
	TransactionTypeWithdrawalCancellationCredit TransactionType = "withdrawal_cancellation_credit"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeRideCredit, TransactionTypeWithdrawalDebit, TransactionTypeWithdrawalCancellationCredit:
		return true
	}
	return false
}

// TransactionStatus is the settlement status recorded on a ledger entry.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// WithdrawalStatus represents the lifecycle of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusCancelled WithdrawalStatus = "cancelled"
)

// Wallet holds a driver's withdrawable balance.
type Wallet struct {
	DriverID  string
	Balance   decimal.Decimal
	UpdatedAt time.Time
}

// Transaction is an immutable ledger entry. Amount is signed; Balance is the
// wallet balance right after the entry was applied.
type Transaction struct {
	ID           string
	DriverID     string
	Type         TransactionType
	Amount       decimal.Decimal
	Balance      decimal.Decimal
	Description  string
	RideID       string
	WithdrawalID string
	Status       TransactionStatus
	CreatedAt    time.Time
}

// BankDetails identifies the destination account of a payout.
type BankDetails struct {
	Bank    string
	Agency  string
	Account string
}

// Withdrawal is a driver's request to move funds out of the wallet.
type Withdrawal struct {
	ID          string
	DriverID    string
	DriverName  string
	Amount      decimal.Decimal
	Bank        BankDetails
	Status      WithdrawalStatus
	CreatedAt   time.Time
	CancelledAt time.Time
	CompletedAt time.Time
}
