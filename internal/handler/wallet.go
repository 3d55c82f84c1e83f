package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"haul/internal/domain"
	"haul/internal/service"
)

const dateLayout = "2006-01-02"

// WalletHandler handles HTTP requests for a driver's own wallet.
type WalletHandler struct {
	walletService *service.WalletService
	log           logrus.FieldLogger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *service.WalletService, log logrus.FieldLogger) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		log:           log,
	}
}

// GetBalance handles GET /v1/wallet
func (h *WalletHandler) GetBalance(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}

	wallet, err := h.walletService.GetBalance(c.Request.Context(), profile.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "", WalletResponse{
		DriverID:  wallet.DriverID,
		Balance:   wallet.Balance.StringFixed(2),
		UpdatedAt: formatTime(wallet.UpdatedAt),
	})
}

// RequestWithdrawal handles POST /v1/wallet/withdrawals
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}

	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	withdrawal, err := h.walletService.RequestWithdrawal(c.Request.Context(), service.WithdrawalRequest{
		DriverID:   profile.ID,
		DriverName: profile.Name,
		Amount:     *req.Amount,
		Bank: domain.BankDetails{
			Bank:    req.BankAccount.Bank,
			Agency:  req.BankAccount.Agency,
			Account: req.BankAccount.Account,
		},
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusCreated, "withdrawal requested", toWithdrawalResponse(withdrawal))
}

// ListWithdrawals handles GET /v1/wallet/withdrawals
func (h *WalletHandler) ListWithdrawals(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}
	offset, ok := offsetParam(c)
	if !ok {
		return
	}

	page, err := h.walletService.ListWithdrawals(c.Request.Context(), profile.ID, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "", toPage(page, toWithdrawalResponse))
}

// GetWithdrawal handles GET /v1/wallet/withdrawals/:id
func (h *WalletHandler) GetWithdrawal(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}

	withdrawal, err := h.walletService.GetWithdrawal(c.Request.Context(), profile.ID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "", toWithdrawalResponse(withdrawal))
}

// CancelWithdrawal handles POST /v1/wallet/withdrawals/:id/cancel
func (h *WalletHandler) CancelWithdrawal(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}

	withdrawal, err := h.walletService.CancelWithdrawal(c.Request.Context(), profile.ID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "withdrawal cancelled", toWithdrawalResponse(withdrawal))
}

// ListTransactions handles GET /v1/wallet/transactions
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}
	offset, ok := offsetParam(c)
	if !ok {
		return
	}

	from, err := parseTimeParam(c.Query("from"), false)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "from must be a date (YYYY-MM-DD) or RFC 3339 time"})
		return
	}
	to, err := parseTimeParam(c.Query("to"), true)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "to must be a date (YYYY-MM-DD) or RFC 3339 time"})
		return
	}

	page, err := h.walletService.ListTransactions(c.Request.Context(), profile.ID, service.TransactionQuery{
		Type:   domain.TransactionType(c.Query("type")),
		From:   from,
		To:     to,
		Offset: offset,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "", toPage(page, toTransactionResponse))
}

// parseTimeParam accepts RFC 3339 times and plain dates. A plain date used as
// the end of a range covers the whole day.
func parseTimeParam(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(timeLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
