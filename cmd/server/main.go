package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ihute/transit-backend/internal/cache"
	"github.com/ihute/transit-backend/internal/config"
	"github.com/ihute/transit-backend/internal/database"
	"github.com/ihute/transit-backend/internal/handlers"
	"github.com/ihute/transit-backend/internal/middleware"
	"github.com/ihute/transit-backend/internal/services"
	"github.com/ihute/transit-backend/pkg/jwt"
	"github.com/ihute/transit-backend/pkg/sms"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting IHUTE transit backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	store := database.NewStore(db)
	catalogRepo := database.NewCatalogRepository(db)
	searchRepo := database.NewSearchRepository(db)
	adminRepo := database.NewAdminRepository(db)
	driverRepo := database.NewDriverRepository(db)
	auditRepo := database.NewAuditRepository(db)
	bookingRepo := database.NewBookingRepository(db)

	// Availability cache (optional)
	var availabilityCache services.AvailabilityCache = services.NoopAvailabilityCache{}
	if cfg.Redis.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		cancel()
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, availability cache disabled")
		} else {
			defer client.Close()
			availabilityCache = cache.NewAvailabilityCache(client, cfg.Redis.AvailabilityTTL)
			logger.Info("✓ Availability cache enabled")
		}
	}

	// SMS gateway
	var smsGateway sms.Gateway
	if cfg.SMS.Mode == "production" {
		smsGateway = sms.NewHTTPGateway(sms.HTTPConfig{
			APIURL:   cfg.SMS.APIURL,
			Username: cfg.SMS.Username,
			Password: cfg.SMS.Password,
			Sender:   cfg.SMS.Sender,
		})
		logger.Info("SMS gateway initialized in production mode")
	} else {
		smsGateway = sms.NewLogGateway(logger)
		logger.Info("SMS gateway in development mode (messages are logged, not sent)")
	}

	// Services
	location := cfg.Booking.Location()
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	notifier := services.NewNotificationService(smsGateway, location, logger)
	auditService := services.NewAuditService(auditRepo, cfg.Security.EnableAuditLog, logger)
	availabilityService := services.NewAvailabilityService(store.Seats(), availabilityCache, logger)

	bookingService := services.NewBookingService(
		store,
		catalogRepo,
		availabilityService,
		notifier,
		services.BookingServiceConfig{
			Cutoff:            cfg.Booking.Cutoff(),
			HoldTTL:           cfg.Booking.HoldTTL,
			Location:          location,
			ReferenceAttempts: services.DefaultBookingServiceConfig().ReferenceAttempts,
		},
		logger,
	)
	settlementService := services.NewSettlementService(store, services.SimulatedGateway{}, availabilityService, notifier, auditService, logger)
	holdService := services.NewHoldExpirationService(store, availabilityService, notifier, cfg.Booking.SweepBatchSize, logger)
	catalogService := services.NewCatalogService(catalogRepo, searchRepo, bookingRepo, availabilityService, auditService, logger)
	authService := services.NewAuthService(adminRepo, driverRepo, jwtService, cfg.Security.BcryptCost, logger)
	driverService := services.NewDriverService(driverRepo, catalogRepo, logger)
	ticketService := services.NewTicketService(bookingRepo, searchRepo)

	cronService := services.NewCronService(holdService, auditService, cfg.Booking.SweepSchedule, cfg.Booking.AuditRetention, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}
	logger.Info("✓ Cron service started - hold sweep enabled")

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, version)
	searchHandler := handlers.NewSearchHandler(catalogService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, ticketService, logger)
	paymentHandler := handlers.NewPaymentHandler(settlementService, logger)
	adminHandler := handlers.NewAdminHandler(authService, catalogService, settlementService, auditService, cronService, logger)
	driverHandler := handlers.NewDriverHandler(authService, driverService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Health)

	authMiddleware := middleware.AuthMiddleware(jwtService, logger)

	api := router.Group("/api")
	{
		api.GET("/trips/search", searchHandler.SearchTrips)
		api.GET("/cars/search", searchHandler.SearchCars)

		bookings := api.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.FindBooking)
			bookings.GET("/:booking_id", bookingHandler.GetBooking)
			bookings.POST("/:booking_id/cancel", bookingHandler.CancelBooking)
			bookings.GET("/:booking_id/ticket", bookingHandler.DownloadTicket)
		}

		payments := api.Group("/payments")
		{
			payments.POST("", paymentHandler.ProcessPayment)
			payments.GET("/:payment_id", paymentHandler.GetPayment)
		}

		api.POST("/admin/login", adminHandler.Login)

		admin := api.Group("/admin")
		admin.Use(authMiddleware, middleware.RequireAccountType(jwt.AccountAdmin))
		{
			writers := middleware.RequireRole("super_admin", "express_admin")

			admin.POST("/expresses", middleware.RequireRole("super_admin"), adminHandler.CreateExpress)
			admin.POST("/routes", middleware.RequireRole("super_admin"), adminHandler.CreateRoute)
			admin.POST("/express-routes", writers, adminHandler.SetRoutePrice)
			admin.POST("/buses", writers, adminHandler.CreateBus)
			admin.POST("/trips", writers, adminHandler.CreateTrip)
			admin.GET("/bookings", adminHandler.ListBookings)
			admin.POST("/bookings/:booking_id/confirm-payment", writers, adminHandler.ConfirmPayment)
			admin.GET("/audit-logs", middleware.RequireRole("super_admin"), adminHandler.ListAuditLogs)
			admin.POST("/holds/sweep", middleware.RequireRole("super_admin"), adminHandler.SweepHolds)
		}

		api.POST("/drivers/register", driverHandler.Register)
		api.POST("/drivers/login", driverHandler.Login)

		drivers := api.Group("/drivers")
		drivers.Use(authMiddleware, middleware.RequireAccountType(jwt.AccountDriver), middleware.RequireActiveDriver(driverRepo, logger))
		{
			drivers.POST("/cars", driverHandler.RegisterCar)
			drivers.GET("/trips", driverHandler.ListTrips)
			drivers.PATCH("/trips/:trip_id/status", driverHandler.UpdateTripStatus)
			drivers.PATCH("/location", driverHandler.UpdateLocation)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	logger.Info("Stopping cron service...")
	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	// let in-flight SMS finish
	notifier.Wait()

	logger.Info("Server exited successfully")
}
