package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/bunca/bakery-service/config"
	_ "github.com/bunca/bakery-service/docs"
	"github.com/bunca/bakery-service/internal/database"
	"github.com/bunca/bakery-service/internal/handlers"
	"github.com/bunca/bakery-service/internal/jobs"
	"github.com/bunca/bakery-service/internal/logging"
	"github.com/bunca/bakery-service/internal/middleware"
	"github.com/bunca/bakery-service/internal/pipeline"
	"github.com/bunca/bakery-service/internal/storage"
	"github.com/bunca/bakery-service/internal/telemetry"
)

// @title Bakery Import API
// @version 1.0
// @description Imports bakery planning workbooks (raw materials, items, recipes, production plans and shop deliveries) from loosely structured Excel and CSV files.
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-Internal-API-Key
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging, os.Stdout, cfg.Telemetry.ServiceName)

	logger.Info().Msg("Starting bakery service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.NewConfig(cfg.Telemetry))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	deps := pipeline.Deps{}

	deps.Importer, err = pipeline.NewImporter(cfg.Importer)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load header schemas")
	}
	deps.LoadOptions, err = pipeline.NewLoadOptions(cfg.Importer)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid importer configuration")
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Storage.BasePath).Msg("Failed to initialize storage")
	}
	deps.Storage = store

	if dbURL := config.GetDatabaseURL(); dbURL != "" {
		if err := database.Connect(ctx, dbURL, cfg.Database); err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close()

		deps.DB = database.Pool()
		logger.Info().Msg("Database connected")

		cleanup := jobs.NewCleanupManager(cleanupConfig(cfg.Cleanup), database.Pool(), store, logger)
		cleanup.Start(ctx)
		defer cleanup.Stop()
	} else {
		logger.Warn().Msg("DATABASE_URL not set, imports cannot be applied and runs are not recorded")
	}

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	importHandler := handlers.NewImportHandler(deps, cfg.MaxUploadBytes())

	limiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	})
	go limiter.RunCleanup(ctx, 5*time.Minute)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", importHandler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	if cfg.Auth.APIKey != "" {
		api.Use(middleware.APIKeyAuth(cfg.Auth.APIKey))
	} else {
		logger.Warn().Msg("INTERNAL_API_KEY not set, /api is unauthenticated")
	}
	api.Use(middleware.RateLimitMiddleware(limiter))
	importHandler.RegisterRoutes(api.Group("/import"))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to flush telemetry")
	}

	logger.Info().Msg("Server exited")
}

func cleanupConfig(cfg config.CleanupConfig) jobs.CleanupConfig {
	return jobs.CleanupConfig{
		Interval:     cfg.Interval,
		StaleRunAge:  cfg.StaleRunAge,
		RunRetention: cfg.RunRetention,
		Enabled:      cfg.Enabled,
	}
}
