package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightpath/planview-bfa-go/internal/config"
	"github.com/brightpath/planview-bfa-go/internal/domain"
	"github.com/brightpath/planview-bfa-go/internal/handler"
	"github.com/brightpath/planview-bfa-go/internal/infra/cache"
	"github.com/brightpath/planview-bfa-go/internal/infra/observability"
	"github.com/brightpath/planview-bfa-go/internal/infra/resilience"
	"github.com/brightpath/planview-bfa-go/internal/infra/store"
	"github.com/brightpath/planview-bfa-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("plan_api_url", cfg.PlanAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("view_cache_ttl", cfg.ViewCacheTTL),
		zap.Duration("draft_session_ttl", cfg.DraftSessionTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	if cfg.PlanAPIURL == "" {
		logger.Fatal("PLAN_API_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "planview-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	viewCache := cache.New[*domain.PlanViewModel](cfg.ViewCacheTTL)
	statusCache := cache.New[[]domain.StatusOption](cfg.StatusCacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("plan-backend")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Store client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	storeClient := store.NewClient(httpClient, cfg.PlanAPIURL, cfg.PlanAPIKey, cb, resilienceCfg, logger)

	// --- Services ---
	viewSvc := service.NewPlanViewService(
		storeClient, // schedules
		storeClient, // fees
		storeClient, // status options
		viewCache,
		statusCache,
		bulkhead,
		metrics,
		logger,
	)
	draftSvc := service.NewDraftService(storeClient, cfg.DraftSessionTTL, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(viewSvc, draftSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
