package routes

import (
	"net/http"
	"time"

	"courtside/handlers"
	"courtside/middleware"
	"courtside/models"
	"courtside/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint backed by the health monitor.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		state := "ok"
		if !status.Mongo || !status.Redis {
			code = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(code, gin.H{"status": state, "services": status})
	})
}

// RegisterBookingRoutes sets up the booking and availability endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/availability", hb.ListAvailability)
		api.GET("/bookings", hb.ListBookings)
		api.POST("/bookings", hb.CreateBooking)
		api.GET("/students/:studentId/bookings",
			middleware.RequireRole(models.RoleCoach, models.RoleAdmin), hb.ListStudentBookings)
	}
}

// RegisterCheckoutRoutes sets up the endpoints used after a payment redirect.
func RegisterCheckoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	checkout := r.Group("/api/checkout")
	{
		checkout.Use(middleware.JWTAuthMiddleware())
		checkout.GET("/pending", hb.PendingCheckout)
		checkout.POST("/resume", hb.ResumeCheckout)
	}
}

// RegisterWalletRoutes sets up the credit wallet endpoints.
func RegisterWalletRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	wallet := r.Group("/api/wallet")
	{
		wallet.Use(middleware.JWTAuthMiddleware())
		wallet.GET("", hb.GetBalance)
		wallet.POST("/topup", hb.Topup)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb)
	RegisterCheckoutRoutes(r, hb)
	RegisterWalletRoutes(r, hb)
}
