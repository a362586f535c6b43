package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Winan03/AeroFlash-app/internal/di"
	"github.com/Winan03/AeroFlash-app/internal/metrics"
	authmw "github.com/Winan03/AeroFlash-app/internal/middleware"
	"github.com/Winan03/AeroFlash-app/internal/service"
	"github.com/Winan03/AeroFlash-app/internal/validation"
	"github.com/Winan03/AeroFlash-app/pkg/config"
	"github.com/Winan03/AeroFlash-app/pkg/database"
	"github.com/Winan03/AeroFlash-app/pkg/docstore"
	"github.com/Winan03/AeroFlash-app/pkg/logger"
	"github.com/Winan03/AeroFlash-app/pkg/middleware"
	pkgredis "github.com/Winan03/AeroFlash-app/pkg/redis"
	"github.com/Winan03/AeroFlash-app/pkg/telemetry"
)

const serviceName = "aeroflash-api"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	logCfg := &logger.Config{
		Level:       logLevel,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting AeroFlash API...", zap.String("version", cfg.App.Version))

	ctx := context.Background()

	// Initialize tracing
	tel, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		appLog.Warn("Tracing disabled", zap.Error(err))
	} else if tel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = telemetry.Shutdown(shutdownCtx)
		}()
	}

	if err := validation.Register(); err != nil {
		appLog.Fatal("Failed to register validators", zap.Error(err))
	}

	// Flights and tickets live in the document store
	store, err := docstore.New(ctx, &docstore.Config{
		Backend:         cfg.Firebase.Backend,
		DatabaseURL:     cfg.Firebase.DatabaseURL,
		ProjectID:       cfg.Firebase.ProjectID,
		CredentialsFile: cfg.Firebase.CredentialsFile,
		CredentialsJSON: cfg.Firebase.CredentialsJSON,
	})
	if err != nil {
		appLog.Fatal("Document store connection failed", zap.Error(err))
	}
	appLog.Info("Document store ready", zap.String("backend", cfg.Firebase.Backend))

	// Redis holds sessions, idempotency records and the seat fast path
	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	})
	if err != nil {
		appLog.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// The outbox database is optional: without it ticket events are dropped
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Warn("Outbox database unavailable, using no-op event publisher", zap.Error(err))
		db = nil
	} else {
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			appLog.Fatal("Outbox migration failed", zap.Error(err))
		}
		appLog.Info("Outbox database connected")
	}

	if cfg.Inventory.FastPathEnabled {
		if err := redisClient.LoadScripts(ctx); err != nil {
			appLog.Warn(fmt.Sprintf("Failed to pre-load Lua scripts: %v", err))
		}
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		Store:           store,
		Redis:           redisClient,
		DB:              db,
		FastPathEnabled: cfg.Inventory.FastPathEnabled,
		TicketTopic:     cfg.Kafka.TicketTopic,
		Location:        cfg.Location(),
		AuthConfig: &service.AuthServiceConfig{
			JWTSecret:    cfg.JWT.Secret,
			Issuer:       cfg.JWT.Issuer,
			SessionTTL:   cfg.JWT.SessionTTL,
			Username:     cfg.Admin.Username,
			PasswordHash: cfg.Admin.PasswordHash,
		},
		ReservationConfig: &service.ReservationServiceConfig{MaxCodeAttempts: 5},
		SecureCookie:      cfg.IsProduction(),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg, container, redisClient, appLog)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("AeroFlash API listening on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}
	appLog.Info("Server exited gracefully")
}

// setupRouter registers middleware and routes
func setupRouter(cfg *config.Config, c *di.Container, redisClient *pkgredis.Client, appLog *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		telemetry.Middleware(serviceName),
		middleware.Logger(appLog),
		metrics.Middleware(),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)

	// Health and metrics
	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)
	router.GET("/metrics", metrics.Handler())

	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{Redis: redisClient})
	lookupLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	adminAuth := authmw.AdminAuth(c.AuthService)

	// Public ticket lookup form
	router.POST("/search_ticket", lookupLimiter.Middleware(), c.TicketHandler.SearchTicket)

	api := router.Group("/api")
	{
		// Public routes
		api.POST("/search_flights", c.FlightHandler.SearchFlights)
		api.POST("/book_flight", idempotency, c.TicketHandler.BookFlight)
		api.GET("/ticket/:code", c.TicketHandler.GetTicket)
		api.GET("/available_seats/:flight_id", c.TicketHandler.AvailableSeats)
		api.POST("/admin/login", c.AuthHandler.Login)

		// Admin routes
		admin := api.Group("", adminAuth)
		admin.POST("/admin/logout", c.AuthHandler.Logout)

		admin.GET("/flights", c.FlightHandler.ListFlights)
		admin.POST("/flights", idempotency, c.FlightHandler.CreateFlight)
		admin.PUT("/flights/:id", c.FlightHandler.UpdateFlight)
		admin.DELETE("/flights/:id", c.FlightHandler.DeleteFlight)
		admin.GET("/flights/:id/stats", c.StatsHandler.FlightStats)

		admin.GET("/tickets", c.TicketHandler.ListTickets)
		admin.GET("/reservations", c.TicketHandler.ListTickets)
		admin.PUT("/tickets/:id", c.TicketHandler.UpdateTicket)
		admin.DELETE("/tickets/:id", c.TicketHandler.CancelTicket)
		admin.PUT("/reservations/:id/cancel", c.TicketHandler.CancelTicket)

		admin.GET("/dashboard-stats", c.StatsHandler.Dashboard)
	}

	return router
}
