package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"courtside/models"
	"courtside/services/booking"
	"courtside/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubBookingService struct {
	submitReq booking.SubmitRequest
	submitRes *booking.SubmitResult
	resumeReq booking.ResumeRequest
	resumeRes *booking.ResumeResult
	listedFor string
	err       error
}

func (s *stubBookingService) Submit(_ context.Context, req booking.SubmitRequest) (*booking.SubmitResult, error) {
	s.submitReq = req
	return s.submitRes, s.err
}

func (s *stubBookingService) Resume(_ context.Context, req booking.ResumeRequest) (*booking.ResumeResult, error) {
	s.resumeReq = req
	return s.resumeRes, s.err
}

func (s *stubBookingService) PendingSession(context.Context, string) (string, error) {
	return "cs_1", s.err
}

func (s *stubBookingService) ListBookings(_ context.Context, userID string) ([]models.Booking, error) {
	s.listedFor = userID
	return []models.Booking{{ID: "b1"}}, s.err
}

func (s *stubBookingService) ListAvailability(context.Context, string, string) ([]models.AvailableWindowResponse, error) {
	return nil, s.err
}

func (s *stubBookingService) Balance(context.Context, string) (float64, error) {
	return 3.5, s.err
}

func (s *stubBookingService) StartTopup(_ context.Context, _ string, credits float64) (*models.CheckoutSession, error) {
	return &models.CheckoutSession{ID: "cs_topup", RedirectURL: "https://checkout.test"}, s.err
}

// newTestRouter wires the bundle behind a fake auth step that trusts test headers.
func newTestRouter(svc booking.BookingService) *gin.Engine {
	hb := NewHandlerBundle(svc, zap.NewNop())
	r := gin.New()
	r.Use(utils.ErrorHandler(), func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(utils.ContextUserID, id)
			c.Set(utils.ContextRole, c.GetHeader("X-Test-Role"))
		}
		c.Next()
	})
	r.POST("/api/bookings", hb.CreateBooking)
	r.GET("/api/bookings", hb.ListBookings)
	r.GET("/api/students/:studentId/bookings", hb.ListStudentBookings)
	r.GET("/api/availability", hb.ListAvailability)
	r.POST("/api/checkout/resume", hb.ResumeCheckout)
	r.GET("/api/checkout/pending", hb.PendingCheckout)
	r.GET("/api/wallet", hb.GetBalance)
	r.POST("/api/wallet/topup", hb.Topup)
	return r
}

func do(r *gin.Engine, method, path, body, user, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
		req.Header.Set("X-Test-Role", role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var resp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateBookingBooked(t *testing.T) {
	svc := &stubBookingService{submitRes: &booking.SubmitResult{Status: booking.StatusBooked}}
	r := newTestRouter(svc)

	w := do(r, http.MethodPost, "/api/bookings", `{"slots":[{"availabilityId":"w1"}],"targetDate":"2026-10-26"}`, "u1", "student")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u1", svc.submitReq.UserID)
	assert.Equal(t, "student", svc.submitReq.Role)
	assert.Equal(t, "2026-10-26", svc.submitReq.TargetDate)
	require.Len(t, svc.submitReq.Slots, 1)
	assert.Equal(t, "w1", svc.submitReq.Slots[0].AvailabilityID)
}

func TestCreateBookingCheckoutRequired(t *testing.T) {
	svc := &stubBookingService{submitRes: &booking.SubmitResult{
		Status: booking.StatusCheckoutRequired, SessionID: "cs_1", CheckoutURL: "https://checkout.test/cs_1",
	}}
	w := do(newTestRouter(svc), http.MethodPost, "/api/bookings", `{"slots":[{"availabilityId":"w1"}]}`, "u1", "student")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"checkout_required","sessionId":"cs_1","checkoutUrl":"https://checkout.test/cs_1"}`, w.Body.String())
}

func TestCreateBookingOnBehalfOfStudent(t *testing.T) {
	svc := &stubBookingService{submitRes: &booking.SubmitResult{Status: booking.StatusBooked}}
	r := newTestRouter(svc)

	w := do(r, http.MethodPost, "/api/bookings", `{"slots":[{"availabilityId":"w1"}],"studentId":"s9"}`, "coach1", "coach")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "s9", svc.submitReq.UserID)
	assert.Equal(t, "coach1", svc.submitReq.BookedBy)

	w = do(r, http.MethodPost, "/api/bookings", `{"slots":[{"availabilityId":"w1"}],"studentId":"s9"}`, "u1", "student")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PermissionDenied", decodeError(t, w).Error)
}

func TestCreateBookingValidation(t *testing.T) {
	r := newTestRouter(&stubBookingService{})

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/bookings", `{"slots":[]}`, "u1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/bookings", `{"slots":[{"availabilityId":"w1"}],"targetDate":"tomorrow"}`, "u1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/bookings", `{"slots":[{"availabilityId":"w1"}]}`, "", "").Code)
}

func TestBookingErrorStatuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{booking.ErrSlotUnavailable, http.StatusConflict, "SlotUnavailable"},
		{booking.ErrSlotFull, http.StatusConflict, "SlotFull"},
		{booking.ErrNonContiguousSelection, http.StatusConflict, "NonContiguousSelection"},
		{booking.ErrPastBooking, http.StatusUnprocessableEntity, "PastBooking"},
		{booking.ErrBookingTooSoon, http.StatusUnprocessableEntity, "BookingTooSoon"},
		{booking.ErrPaymentError, http.StatusPaymentRequired, "PaymentError"},
		{booking.ErrPaymentCancelled, http.StatusBadRequest, "PaymentCancelled"},
		{booking.ErrPermissionDenied, http.StatusForbidden, "PermissionDenied"},
		{booking.ErrBookingFailed, http.StatusInternalServerError, "BookingFailed"},
		{errors.New("mongo: connection refused"), http.StatusInternalServerError, "BookingFailed"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			r := newTestRouter(&stubBookingService{err: tt.err})
			w := do(r, http.MethodPost, "/api/bookings", `{"slots":[{"availabilityId":"w1"}]}`, "u1", "student")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error)
		})
	}
}

func TestResumeCheckout(t *testing.T) {
	svc := &stubBookingService{resumeRes: &booking.ResumeResult{Status: booking.StatusAlreadyProcessed, SessionID: "cs_1"}}
	r := newTestRouter(svc)

	w := do(r, http.MethodPost, "/api/checkout/resume", `{"sessionId":"cs_1","cancelled":true}`, "u1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.ResumeRequest{UserID: "u1", SessionID: "cs_1", Cancelled: true}, svc.resumeReq)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/resume", nil)
	req.Header.Set("X-Test-User", "u1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.ResumeRequest{UserID: "u1"}, svc.resumeReq)
}

func TestWalletAndPendingEndpoints(t *testing.T) {
	r := newTestRouter(&stubBookingService{})

	w := do(r, http.MethodGet, "/api/wallet", "", "u1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"balance":3.5}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/checkout/pending", "", "u1", "")
	assert.JSONEq(t, `{"pending":true,"sessionId":"cs_1"}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/wallet/topup", `{"credits":5}`, "u1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessionId":"cs_topup","checkoutUrl":"https://checkout.test"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/wallet/topup", `{"credits":-1}`, "u1", "").Code)
}

func TestListAvailabilityValidation(t *testing.T) {
	r := newTestRouter(&stubBookingService{})
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/availability?date=2026-10-26", "", "u1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/availability?location=court-1&date=10/26", "", "u1", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/availability?location=court-1&date=2026-10-26", "", "u1", "").Code)
}

func TestListStudentBookings(t *testing.T) {
	svc := &stubBookingService{}
	w := do(newTestRouter(svc), http.MethodGet, "/api/students/s9/bookings", "", "coach1", "coach")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s9", svc.listedFor)
	var body struct {
		Bookings []models.Booking `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Bookings, 1)
	assert.Equal(t, "b1", body.Bookings[0].ID)
}
