package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courtside/handlers"
	"courtside/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubBundle() *handlers.HandlerBundle {
	ok := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"handler": name, "userId": c.GetString(utils.ContextUserID)})
		}
	}
	return &handlers.HandlerBundle{
		CreateBooking:       ok("create"),
		ListBookings:        ok("bookings"),
		ListStudentBookings: ok("studentBookings"),
		ListAvailability:    ok("availability"),
		ResumeCheckout:      ok("resume"),
		PendingCheckout:     ok("pending"),
		GetBalance:          ok("balance"),
		Topup:               ok("topup"),
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, stubBundle())
	return r
}

func TestHealthReportsDegradedWithoutMongo(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	status := utils.CheckHealth(context.Background(), client, nil)
	require.True(t, status.Redis)
	require.False(t, status.Mongo)

	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
}

func TestAPIRoutesRequireToken(t *testing.T) {
	r := newRouter()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/availability"},
		{http.MethodGet, "/api/bookings"},
		{http.MethodPost, "/api/bookings"},
		{http.MethodGet, "/api/students/s9/bookings"},
		{http.MethodGet, "/api/checkout/pending"},
		{http.MethodPost, "/api/checkout/resume"},
		{http.MethodGet, "/api/wallet"},
		{http.MethodPost, "/api/wallet/topup"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestAPIRoutesDispatchWithToken(t *testing.T) {
	token, err := utils.GenerateToken("u1", "student", time.Hour)
	require.NoError(t, err)

	r := newRouter()
	for path, handler := range map[string]string{
		"/api/availability":     "availability",
		"/api/bookings":         "bookings",
		"/api/checkout/pending": "pending",
		"/api/wallet":           "balance",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, path)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, handler, body["handler"])
		assert.Equal(t, "u1", body["userId"])
	}
}

func TestStudentBookingsRequireCoachOrAdmin(t *testing.T) {
	r := newRouter()
	for role, want := range map[string]int{
		"student": http.StatusForbidden,
		"":        http.StatusForbidden,
		"coach":   http.StatusOK,
		"admin":   http.StatusOK,
	} {
		token, err := utils.GenerateToken("caller", role, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/students/s9/bookings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "role %q", role)
	}
}
