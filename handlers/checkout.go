package handlers

import (
	"net/http"

	"courtside/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	BookingSvc booking.BookingService
	Logger     *zap.Logger
}

func NewCheckoutHandler(svc booking.BookingService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{BookingSvc: svc, Logger: logger}
}

type resumeRequest struct {
	SessionID string `json:"sessionId"`
	Cancelled bool   `json:"cancelled"`
}

// ResumeCheckoutHandler handles POST /api/checkout/resume after the payment redirect.
func (h *CheckoutHandler) ResumeCheckoutHandler(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req resumeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid resume request.")
			return
		}
	}

	res, err := h.BookingSvc.Resume(c.Request.Context(), booking.ResumeRequest{
		UserID:    userID,
		SessionID: req.SessionID,
		Cancelled: req.Cancelled,
	})
	if err != nil {
		writeError(c, logger, err)
		return
	}
	logger.Info("Checkout resumed",
		zap.String("userID", userID),
		zap.String("sessionID", res.SessionID),
		zap.String("status", res.Status))
	c.JSON(http.StatusOK, res)
}

// PendingCheckoutHandler handles GET /api/checkout/pending.
func (h *CheckoutHandler) PendingCheckoutHandler(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	sid, err := h.BookingSvc.PendingSession(c.Request.Context(), userID)
	if err != nil {
		writeError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": sid != "", "sessionId": sid})
}
