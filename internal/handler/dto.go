package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"haul/internal/domain"
	"haul/internal/service"
)

const timeLayout = time.RFC3339

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	OriginAddress      string           `json:"origin_address" binding:"required,max=500"`
	DestinationAddress string           `json:"destination_address" binding:"required,max=500"`
	Price              *decimal.Decimal `json:"price" binding:"required"`
	IsProduct          bool             `json:"is_product"`
	Product            *ProductRequest  `json:"product"`
}

// ProductRequest describes the cargo of a product ride.
type ProductRequest struct {
	Description string           `json:"description"`
	Size        string           `json:"size"`
	Weight      *decimal.Decimal `json:"weight"`
}

func (p *ProductRequest) toDomain() *domain.ProductDetail {
	if p == nil {
		return nil
	}
	detail := &domain.ProductDetail{Description: p.Description, Size: p.Size}
	if p.Weight != nil {
		detail.Weight = *p.Weight
	}
	return detail
}

// UpdateStatusRequest is the HTTP request body for a ride status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// WithdrawalRequest is the HTTP request body for requesting a withdrawal.
type WithdrawalRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	BankAccount *BankAccount     `json:"bank_account" binding:"required"`
}

// BankAccount identifies the payout destination.
type BankAccount struct {
	Bank    string `json:"bank" binding:"required"`
	Agency  string `json:"agency" binding:"required"`
	Account string `json:"account" binding:"required"`
}

// ProductResponse is the cargo of a product ride.
type ProductResponse struct {
	Description string `json:"description"`
	Size        string `json:"size"`
	Weight      string `json:"weight"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID                 string           `json:"id"`
	RequesterID        string           `json:"requester_id"`
	RequesterName      string           `json:"requester_name,omitempty"`
	RequesterPhone     string           `json:"requester_phone,omitempty"`
	City               string           `json:"city,omitempty"`
	OriginAddress      string           `json:"origin_address"`
	DestinationAddress string           `json:"destination_address"`
	Price              string           `json:"price"`
	IsProduct          bool             `json:"is_product"`
	Product            *ProductResponse `json:"product,omitempty"`
	Status             string           `json:"status"`
	DriverID           string           `json:"driver_id,omitempty"`
	DriverName         string           `json:"driver_name,omitempty"`
	DriverPhone        string           `json:"driver_phone,omitempty"`
	CreatedAt          string           `json:"created_at"`
	UpdatedAt          string           `json:"updated_at"`
	AcceptedAt         string           `json:"accepted_at,omitempty"`
	StartedAt          string           `json:"started_at,omitempty"`
	CompletedAt        string           `json:"completed_at,omitempty"`
	CancelledAt        string           `json:"cancelled_at,omitempty"`
}

func toRideResponse(r *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:                 r.ID,
		RequesterID:        r.RequesterID,
		RequesterName:      r.RequesterName,
		RequesterPhone:     r.RequesterPhone,
		City:               r.City,
		OriginAddress:      r.OriginAddress,
		DestinationAddress: r.DestinationAddress,
		Price:              r.Price.StringFixed(2),
		IsProduct:          r.IsProduct,
		Status:             string(r.Status),
		DriverID:           r.DriverID,
		DriverName:         r.DriverName,
		DriverPhone:        r.DriverPhone,
		CreatedAt:          formatTime(r.CreatedAt),
		UpdatedAt:          formatTime(r.UpdatedAt),
		AcceptedAt:         formatTime(r.AcceptedAt),
		StartedAt:          formatTime(r.StartedAt),
		CompletedAt:        formatTime(r.CompletedAt),
		CancelledAt:        formatTime(r.CancelledAt),
	}
	if r.Product != nil {
		resp.Product = &ProductResponse{
			Description: r.Product.Description,
			Size:        r.Product.Size,
			Weight:      r.Product.Weight.String(),
		}
	}
	return resp
}

// DriverStatsResponse summarizes a driver's completed work.
type DriverStatsResponse struct {
	DriverID       string `json:"driver_id"`
	CompletedRides int    `json:"completed_rides"`
	TotalEarnings  string `json:"total_earnings"`
}

// WalletResponse is the HTTP representation of a wallet balance.
type WalletResponse struct {
	DriverID  string `json:"driver_id"`
	Balance   string `json:"balance"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// TransactionResponse is the HTTP representation of a ledger entry.
type TransactionResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Amount       string `json:"amount"`
	BalanceAfter string `json:"balance_after"`
	Description  string `json:"description"`
	RideID       string `json:"ride_id,omitempty"`
	WithdrawalID string `json:"withdrawal_id,omitempty"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		Type:         string(t.Type),
		Amount:       t.Amount.StringFixed(2),
		BalanceAfter: t.Balance.StringFixed(2),
		Description:  t.Description,
		RideID:       t.RideID,
		WithdrawalID: t.WithdrawalID,
		Status:       string(t.Status),
		CreatedAt:    formatTime(t.CreatedAt),
	}
}

// WithdrawalResponse is the HTTP representation of a withdrawal request.
type WithdrawalResponse struct {
	ID          string      `json:"id"`
	DriverID    string      `json:"driver_id"`
	DriverName  string      `json:"driver_name,omitempty"`
	Amount      string      `json:"amount"`
	BankAccount BankAccount `json:"bank_account"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"created_at"`
	CancelledAt string      `json:"cancelled_at,omitempty"`
	CompletedAt string      `json:"completed_at,omitempty"`
}

func toWithdrawalResponse(w *domain.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:         w.ID,
		DriverID:   w.DriverID,
		DriverName: w.DriverName,
		Amount:     w.Amount.StringFixed(2),
		BankAccount: BankAccount{
			Bank:    w.Bank.Bank,
			Agency:  w.Bank.Agency,
			Account: w.Bank.Account,
		},
		Status:      string(w.Status),
		CreatedAt:   formatTime(w.CreatedAt),
		CancelledAt: formatTime(w.CancelledAt),
		CompletedAt: formatTime(w.CompletedAt),
	}
}

// ReconciliationResponse reports whether a wallet agrees with its ledger.
type ReconciliationResponse struct {
	DriverID   string `json:"driver_id"`
	Balance    string `json:"balance"`
	LedgerSum  string `json:"ledger_sum"`
	Consistent bool   `json:"consistent"`
}

func toReconciliationResponse(r *service.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		DriverID:   r.DriverID,
		Balance:    r.Balance.StringFixed(2),
		LedgerSum:  r.LedgerSum.StringFixed(2),
		Consistent: r.Consistent,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
