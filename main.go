package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtside/config"
	"courtside/cron"
	"courtside/database"
	availabilityRepo "courtside/database/repository/availability"
	bookingRepo "courtside/database/repository/booking"
	stagingRepo "courtside/database/repository/staging"
	walletRepo "courtside/database/repository/wallet"
	"courtside/handlers"
	"courtside/middleware"
	"courtside/routes"
	"courtside/services/booking"
	"courtside/services/notification"
	"courtside/services/payment"
	"courtside/services/tasks"
	"courtside/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	database.InitDB()
	utils.InitStagingCache()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// repositories.
	availRepo := availabilityRepo.NewMongoAvailabilityRepo()
	bookRepo := bookingRepo.NewMongoBookingRepo()
	wallet := walletRepo.NewMongoWalletRepo()
	staging := stagingRepo.NewRedisStagingRepo(utils.GetStagingClient())

	for name, ensure := range map[string]func(context.Context) error{
		"availability": availRepo.EnsureIndexes,
		"bookings":     bookRepo.EnsureIndexes,
		"users":        wallet.EnsureIndexes,
	} {
		if err := ensure(rootCtx); err != nil {
			logger.Fatal("main: failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}

	// services.
	notifier := notification.NewFCMNotifier(utils.FCMClient, wallet, logger)

	taskClient := asynq.NewClient(cron.RedisOpt())
	defer taskClient.Close()
	reminders := tasks.NewAsynqReminderScheduler(taskClient, config.AppConfig.ReminderLead, config.Location(), logger)

	gateway := payment.NewStripeGateway(
		config.AppConfig.CheckoutSuccess,
		config.AppConfig.CheckoutCancel,
		config.AppConfig.Currency,
		config.AppConfig.CreditPriceCents,
		logger,
	)

	bookingService := &booking.DefaultBookingService{
		Availability: availRepo,
		Bookings:     bookRepo,
		Wallet:       wallet,
		Staging:      staging,
		Gateway:      gateway,
		Reminders:    reminders,
		Notifier:     notifier,
		Pricer:       booking.NewPricer(config.AppConfig.ServiceRates, config.AppConfig.DefaultServiceRate),
		Rules:        booking.RulesFromConfig(),
		Logger:       logger,
	}

	reminderWorker := cron.InitReminderWorker(notifier, logger)
	utils.StartHealthMonitor(rootCtx, utils.GetStagingClient(), database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	routes.RegisterRoutes(router, handlers.NewHandlerBundle(bookingService, logger))

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	reminderWorker.Shutdown()
	stop()

	if err := database.MongoClient.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}
	logger.Sugar().Info("main: server stopped gracefully")
}
