package handlers

import (
	"net/http"

	"courtside/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WalletHandler struct {
	BookingSvc booking.BookingService
	Logger     *zap.Logger
}

func NewWalletHandler(svc booking.BookingService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{BookingSvc: svc, Logger: logger}
}

// GetBalanceHandler handles GET /api/wallet.
func (h *WalletHandler) GetBalanceHandler(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	balance, err := h.BookingSvc.Balance(c.Request.Context(), userID)
	if err != nil {
		writeError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

type topupRequest struct {
	Credits float64 `json:"credits" binding:"required,gt=0"`
}

// TopupHandler handles POST /api/wallet/topup.
func (h *WalletHandler) TopupHandler(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req topupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "credits must be a positive number.")
		return
	}

	sess, err := h.BookingSvc.StartTopup(c.Request.Context(), userID, req.Credits)
	if err != nil {
		writeError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
