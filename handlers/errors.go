package handlers

import (
	"net/http"

	"courtside/services/booking"
	"courtside/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByCode = map[booking.ErrorCode]int{
	booking.CodeSlotUnavailable:        http.StatusConflict,
	booking.CodeSlotFull:               http.StatusConflict,
	booking.CodeNonContiguousSelection: http.StatusConflict,
	booking.CodePastBooking:            http.StatusUnprocessableEntity,
	booking.CodeBookingTooSoon:         http.StatusUnprocessableEntity,
	booking.CodePaymentError:           http.StatusPaymentRequired,
	booking.CodePaymentCancelled:       http.StatusBadRequest,
	booking.CodePermissionDenied:       http.StatusForbidden,
	booking.CodeBookingFailed:          http.StatusInternalServerError,
}

// StatusFor maps a booking error code to its HTTP status.
func StatusFor(code booking.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError renders err as the client's error modal.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	if be, ok := booking.AsBookingError(err); ok {
		status := StatusFor(be.Code)
		if status >= http.StatusInternalServerError {
			logger.Error("Booking request failed", zap.String("code", string(be.Code)), zap.Error(err))
		}
		utils.JSONError(c, status, string(be.Code), be.Title, be.Message)
		return
	}
	logger.Error("Unexpected error", zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, string(booking.CodeBookingFailed),
		"Booking failed", "Something went wrong. Please try again.")
}

func badRequest(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusBadRequest, "InvalidRequest", "Invalid request", message)
}
