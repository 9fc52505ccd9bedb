package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"examgrade/grading/internal/cache"
	"examgrade/grading/internal/config"
	"examgrade/grading/internal/grading"
	"examgrade/grading/internal/handlers"
	"examgrade/grading/internal/jobs"
	"examgrade/grading/internal/llm"
	_ "examgrade/grading/internal/llm/gemini"
	"examgrade/grading/internal/routers"
	"examgrade/grading/internal/store"
	"examgrade/grading/internal/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func registerRoutes(router *chi.Mux, gradingHandler *handlers.GradingHandler, cacheHandler *handlers.CacheHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.GradingRoutes(router, gradingHandler, cacheHandler)
}

// Helper for environment variables
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase() (*gorm.DB, error) {
	host := getEnv("POSTGRES_HOST", "localhost")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "postgres")
	dbname := getEnv("POSTGRES_DB", "postgres")
	port := getEnv("POSTGRES_PORT", "5432")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := store.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	utils.SetLogger(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Int("worker_pool_size", cfg.WorkerPoolSize),
		zap.Int("max_cache_entries", cfg.MaxCacheSize))

	// grading provider based on configuration
	provider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize grading provider", zap.Error(err))
	}

	// one shared cache for the whole process, lifecycle owned here
	sharedCache := cache.New(cfg.DefaultTTL, cfg.MaxCacheSize)
	sharedCache.StartSweeper(cfg.SweepInterval)
	defer sharedCache.StopSweeper()

	memoizer := cache.NewMemoizer(sharedCache, cfg.TTLByOperation(), cfg.DefaultTTL, cfg.KeyMaxContent)
	invalidator := cache.NewInvalidator(sharedCache, logger)
	registry := grading.NewProgressRegistry(sharedCache, time.Hour)

	orchestrator := grading.NewOrchestrator(provider, memoizer, registry, cfg, logger)

	// Initialize database for result storage
	var gradeStore *store.Store
	var exporterJob *jobs.ResultsExporterJob

	db, err := initDatabase()
	if err != nil {
		logger.Error("Failed to initialize database, results will not be persisted", zap.Error(err))
	} else {
		gradeStore = store.New(db)

		exporterJob = jobs.NewResultsExporterJob(gradeStore, &jobs.ExporterConfig{
			Schedule:      getEnv("RESULTS_EXPORT_SCHEDULE", "0 2 * * *"),
			ExportDir:     getEnv("RESULTS_EXPORT_DIR", "./exports"),
			ExportEnabled: getEnv("RESULTS_EXPORT_ENABLED", "false") == "true",
		}, logger)
		if err := exporterJob.Start(); err != nil {
			logger.Error("Failed to start results exporter job", zap.Error(err))
		}
	}

	gradingHandler := handlers.NewGradingHandler(orchestrator, registry, gradeStore, logger)
	cacheHandler := handlers.NewCacheHandler(sharedCache, memoizer, invalidator, logger)
	healthHandler := handlers.NewHealthHandler(provider, cfg)

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Logger, chimiddleware.Recoverer, chimiddleware.Timeout(5*time.Minute))

	registerRoutes(router, gradingHandler, cacheHandler, healthHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port

	// http server with timeouts; batches can run long, so generous writes
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Grading service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Grading service shutting down...")

	if exporterJob != nil {
		exporterJob.Stop()
	}

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Grading service exited")
}
