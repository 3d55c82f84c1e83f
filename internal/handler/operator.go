package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"haul/internal/service"
)

// OperatorHandler handles back-office requests guarded by the operator key.
type OperatorHandler struct {
	walletService  *service.WalletService
	profileService *service.ProfileService
	log            logrus.FieldLogger
}

// NewOperatorHandler creates a new OperatorHandler.
func NewOperatorHandler(walletService *service.WalletService, profileService *service.ProfileService, log logrus.FieldLogger) *OperatorHandler {
	return &OperatorHandler{
		walletService:  walletService,
		profileService: profileService,
		log:            log,
	}
}

// CompleteWithdrawal handles POST /v1/ops/withdrawals/:id/complete
func (h *OperatorHandler) CompleteWithdrawal(c *gin.Context) {
	withdrawal, err := h.walletService.CompleteWithdrawal(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "withdrawal completed", toWithdrawalResponse(withdrawal))
}

// Reconcile handles GET /v1/ops/wallets/:driverId/reconcile
func (h *OperatorHandler) Reconcile(c *gin.Context) {
	result, err := h.walletService.Reconcile(c.Request.Context(), c.Param("driverId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "", toReconciliationResponse(result))
}

// InvalidateProfile handles DELETE /v1/ops/profiles/:id/cache
func (h *OperatorHandler) InvalidateProfile(c *gin.Context) {
	if err := h.profileService.InvalidateProfile(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "profile cache invalidated", nil)
}
