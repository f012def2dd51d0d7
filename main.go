package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clausetrack/backend/config"
	"github.com/clausetrack/backend/handler"
	"github.com/clausetrack/backend/middleware"
	"github.com/clausetrack/backend/pkg/logger"
	"github.com/clausetrack/backend/service"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Connect database
	db, err := service.Connect(&cfg.Database)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	store := service.NewContractStore(db)
	registry := service.NewRegistry(store)
	if err := registry.Seed(context.Background(), cfg.ClauseTypes); err != nil {
		slog.Error("failed to seed clause types", "error", err)
		os.Exit(1)
	}

	// Select document storage backend
	storage, err := newStorage(cfg)
	if err != nil {
		slog.Error("failed to initialize document storage", "error", err)
		os.Exit(1)
	}

	// Select detection engine
	var detector service.Detector
	switch cfg.Detection.Engine {
	case "remote":
		detector = service.NewRemoteDetector(&cfg.Detection)
		slog.Info("using remote detection engine", "url", cfg.Detection.APIURL)
	default:
		detector = service.NewScanner(registry)
		slog.Info("using builtin pattern scanner")
	}

	lifecycle := service.NewLifecycle(store, registry, storage, detector)
	matrix := service.NewMatrixEngine(store, registry)

	// Initialize handlers
	contractHandler := handler.NewContractHandler(lifecycle, matrix, store, cfg.Upload.MaxBytes)
	clauseTypeHandler := handler.NewClauseTypeHandler(registry)
	healthHandler := handler.NewHealthHandler(store)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute

	router.MaxMultipartMemory = cfg.Upload.MaxBytes

	router.GET("/health", healthHandler.Health)
	router.GET("/health/db", healthHandler.HealthDB)

	api := router.Group("/api")
	{
		api.POST("/contracts", contractHandler.Upload)
		api.GET("/contracts", contractHandler.List)
		api.GET("/contracts/:id", contractHandler.Get)
		api.GET("/contracts/:id/status", contractHandler.GetStatus)
		api.PATCH("/contracts/:id/clauses/:clauseTypeId", contractHandler.SetOverride)

		api.GET("/clause-types", clauseTypeHandler.List)
		api.POST("/clause-types", clauseTypeHandler.Create)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

func newStorage(cfg *config.Config) (service.DocumentStorage, error) {
	switch cfg.Storage.Backend {
	case "minio":
		storage, err := service.NewMinioStorage(&cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureBucket(context.Background()); err != nil {
			return nil, err
		}
		slog.Info("using minio document storage", "bucket", cfg.Storage.Minio.Bucket)
		return storage, nil
	default:
		storage, err := service.NewLocalStorage(&cfg.Storage.Local)
		if err != nil {
			return nil, err
		}
		slog.Info("using local document storage", "dir", cfg.Storage.Local.BaseDir)
		return storage, nil
	}
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
