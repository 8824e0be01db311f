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

	"cloud.google.com/go/storage"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/cybraia/style-hub/internal/analytics"
	"github.com/cybraia/style-hub/internal/catalog"
	"github.com/cybraia/style-hub/internal/config"
	"github.com/cybraia/style-hub/internal/handlers"
	"github.com/cybraia/style-hub/internal/media"
	"github.com/cybraia/style-hub/internal/middleware"
	"github.com/cybraia/style-hub/internal/toolbox"
	"github.com/cybraia/style-hub/internal/tracking"
	"github.com/cybraia/style-hub/pkg/logger"
)

// Sizing for the view dedup filter: enough distinct user/product pairs for a
// demo deployment at a 1% false positive rate.
const (
	dedupeCapacity = 100_000
	dedupeFPRate   = 0.01
)

func main() {
	// Load .env if present; deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting style hub catalog server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	// Connect to the tool server. Every data access goes through it, so a
	// server that cannot reach it has nothing to serve.
	toolboxClient := toolbox.New(cfg.Toolbox.ServerURL)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	loaded, err := toolboxClient.LoadToolset(ctx, "default")
	cancel()
	if err != nil {
		log.Error("failed to connect to tool server", "url", cfg.Toolbox.ServerURL, "error", err)
		os.Exit(1)
	}
	log.Info("tool server connected", "url", cfg.Toolbox.ServerURL, "tools", len(loaded))

	// Build the image URL resolver for the product bucket
	resolver, err := newResolver(cfg.Storage, log)
	if err != nil {
		log.Error("failed to initialize storage client", "error", err)
		os.Exit(1)
	}

	// Initialize services
	catalogService := catalog.NewService(toolboxClient, resolver, cfg.Storage.FallbackImageURL, log)
	trackingService := tracking.NewService(toolboxClient, tracking.NewDeduper(dedupeCapacity, dedupeFPRate), log)
	analyticsService := analytics.NewService(toolboxClient, resolver, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log)
	pagesHandler := handlers.NewPagesHandler(log)
	productHandler := handlers.NewProductHandler(catalogService, log)
	trackingHandler := handlers.NewTrackingHandler(trackingService, log)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "api_key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Pages
	r.Get("/", pagesHandler.Index)
	r.Get("/virtual-tryon", pagesHandler.VirtualTryOn)

	// Health check
	r.Get("/health", healthHandler.ServeHTTP)

	// Catalog endpoints
	r.Get("/products", productHandler.ListProducts)
	r.Get("/products/{productId}", productHandler.GetProduct)
	r.Post("/product_by_id", productHandler.GetProductByID)
	r.Get("/inventory/{category}", productHandler.CategoryStats)

	// Interaction tracking and analytics
	r.Post("/track/view", trackingHandler.TrackView)
	r.Get("/analytics/top5", analyticsHandler.TopProducts)

	// The ETL trigger mutates the warehouse, so it sits behind API key auth
	r.Route("/etl", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.Auth))
		r.Post("/run", trackingHandler.RunETL)
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// newResolver picks between public and signed image URLs. Signed mode needs
// application default credentials for the bucket, so it fails fast when the
// storage client cannot be created.
func newResolver(cfg config.StorageConfig, log *slog.Logger) (media.Resolver, error) {
	if !cfg.SignedURLs {
		return media.NewPublicResolver(cfg.Bucket), nil
	}

	client, err := storage.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	ttl := time.Duration(cfg.SignedURLTTL) * time.Second
	log.Info("signing product image URLs", "bucket", cfg.Bucket, "ttl", ttl)
	return media.NewSignedResolver(client.Bucket(cfg.Bucket), cfg.Bucket, ttl, log), nil
}
