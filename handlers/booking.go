package handlers

import (
	"net/http"
	"time"

	"courtside/models"
	"courtside/services/booking"
	"courtside/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	BookingSvc booking.BookingService
	Logger     *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{BookingSvc: svc, Logger: logger}
}

type createBookingRequest struct {
	Slots      []models.SelectedSlot `json:"slots" binding:"required,min=1"`
	TargetDate string                `json:"targetDate"`

	// StudentID lets coaches and admins book on a student's behalf.
	StudentID string `json:"studentId"`
}

// CreateBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	userID, ok := callerID(c)
	if !ok {
		return
	}
	role := c.GetString(utils.ContextRole)

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Select at least one slot.")
		return
	}
	if req.TargetDate != "" {
		if _, err := time.Parse("2006-01-02", req.TargetDate); err != nil {
			badRequest(c, "targetDate must be YYYY-MM-DD.")
			return
		}
	}

	bookFor := userID
	if req.StudentID != "" && req.StudentID != userID {
		if booking.IsStudentRole(role) {
			writeError(c, logger, &booking.BookingError{
				Code:    booking.CodePermissionDenied,
				Title:   booking.ErrPermissionDenied.Title,
				Message: "Students can only book for themselves.",
			})
			return
		}
		bookFor = req.StudentID
	}

	res, err := h.BookingSvc.Submit(c.Request.Context(), booking.SubmitRequest{
		UserID:     bookFor,
		BookedBy:   userID,
		Role:       role,
		Slots:      req.Slots,
		TargetDate: req.TargetDate,
	})
	if err != nil {
		writeError(c, logger, err)
		return
	}

	status := http.StatusOK
	if res.Status == booking.StatusBooked {
		status = http.StatusCreated
	}
	logger.Info("Booking submitted",
		zap.String("userID", bookFor),
		zap.String("bookedBy", userID),
		zap.String("status", res.Status))
	c.JSON(status, res)
}

// ListBookingsHandler handles GET /api/bookings.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bookings, err := h.BookingSvc.ListBookings(c.Request.Context(), userID)
	if err != nil {
		writeError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListStudentBookingsHandler handles GET /api/students/:studentId/bookings for coaches
// and admins.
func (h *BookingHandler) ListStudentBookingsHandler(c *gin.Context) {
	studentID := c.Param("studentId")
	if studentID == "" {
		badRequest(c, "studentId is required.")
		return
	}
	bookings, err := h.BookingSvc.ListBookings(c.Request.Context(), studentID)
	if err != nil {
		writeError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListAvailabilityHandler handles GET /api/availability?location=&date=.
func (h *BookingHandler) ListAvailabilityHandler(c *gin.Context) {
	location := c.Query("location")
	date := c.Query("date")
	if location == "" {
		badRequest(c, "location is required.")
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		badRequest(c, "date must be YYYY-MM-DD.")
		return
	}

	windows, err := h.BookingSvc.ListAvailability(c.Request.Context(), location, date)
	if err != nil {
		writeError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": windows})
}
