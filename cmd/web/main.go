package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/imzeeshaan/grocery-analytics/internal/config"
	"github.com/imzeeshaan/grocery-analytics/internal/metrics"
	"github.com/imzeeshaan/grocery-analytics/internal/middleware"
	"github.com/imzeeshaan/grocery-analytics/internal/observability"
	"github.com/imzeeshaan/grocery-analytics/internal/server"
	"github.com/imzeeshaan/grocery-analytics/internal/services"
	"github.com/imzeeshaan/grocery-analytics/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	csvLoadTimeout = 30 * time.Second
	cacheMaxAge    = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"environment", cfg.Server.Environment,
	)

	registry := metrics.NewRegistry()

	analytics := services.NewAnalytics()
	analytics.SetOptions(cfg.Options())
	analytics.SetCache(cfg.Dataset.CacheDir, cfg.Dataset.CacheEnabled)

	ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	defer cancel()

	start := time.Now()
	if err := analytics.LoadFromCSV(ctx, cfg.Dataset.CSVPath); err != nil {
		logger.Error("failed to load transaction data", "error", err)
		os.Exit(1)
	}
	registry.ObserveDatasetLoad(analytics.Records(), analytics.Skipped(), time.Since(start))
	if analytics.FromCache() {
		registry.CacheHits.Inc()
	}

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(analytics, logger, registry, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(registry),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("analytics", func(ctx context.Context) error {
		logger.Info("shutting down analytics service")
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
