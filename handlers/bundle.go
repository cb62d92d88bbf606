package handlers

import (
	"courtside/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints
	CreateBooking       gin.HandlerFunc
	ListBookings        gin.HandlerFunc
	ListStudentBookings gin.HandlerFunc
	ListAvailability    gin.HandlerFunc

	// Checkout endpoints
	ResumeCheckout  gin.HandlerFunc
	PendingCheckout gin.HandlerFunc

	// Wallet endpoints
	GetBalance gin.HandlerFunc
	Topup      gin.HandlerFunc
}

func NewHandlerBundle(svc booking.BookingService, logger *zap.Logger) *HandlerBundle {
	bookingHandler := NewBookingHandler(svc, logger)
	checkoutHandler := NewCheckoutHandler(svc, logger)
	walletHandler := NewWalletHandler(svc, logger)

	return &HandlerBundle{
		CreateBooking:       bookingHandler.CreateBookingHandler,
		ListBookings:        bookingHandler.ListBookingsHandler,
		ListStudentBookings: bookingHandler.ListStudentBookingsHandler,
		ListAvailability:    bookingHandler.ListAvailabilityHandler,

		ResumeCheckout:  checkoutHandler.ResumeCheckoutHandler,
		PendingCheckout: checkoutHandler.PendingCheckoutHandler,

		GetBalance: walletHandler.GetBalanceHandler,
		Topup:      walletHandler.TopupHandler,
	}
}
