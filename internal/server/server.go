package server

import (
	"log/slog"
	"net/http"

	"github.com/imzeeshaan/grocery-analytics/internal/handlers"
	"github.com/imzeeshaan/grocery-analytics/internal/metrics"
	"github.com/imzeeshaan/grocery-analytics/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, registry *metrics.Registry, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(registry, templateHandlers)
	return s
}

func (s *Server) setupRoutes(registry *metrics.Registry, templateHandlers *TemplateHandlers) {
	// Dashboard and operational routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.Handle("GET /metrics", registry.Handler())
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/sales-trend", s.apiHandlers.HandleSalesTrend)
	s.mux.HandleFunc("GET /api/category-performance", s.apiHandlers.HandleCategoryPerformance)
	s.mux.HandleFunc("GET /api/payment-methods", s.apiHandlers.HandlePaymentMethods)
	s.mux.HandleFunc("GET /api/discount-impact", s.apiHandlers.HandleDiscountImpact)
	s.mux.HandleFunc("GET /api/customers", s.apiHandlers.HandleCustomers)
	s.mux.HandleFunc("GET /api/geography", s.apiHandlers.HandleGeography)
	s.mux.HandleFunc("GET /api/margins", s.apiHandlers.HandleMargins)
	s.mux.HandleFunc("GET /api/anomalies", s.apiHandlers.HandleAnomalies)
	s.mux.HandleFunc("GET /api/hourly-pattern", s.apiHandlers.HandleHourlyPattern)
	s.mux.HandleFunc("GET /api/weekday-pattern", s.apiHandlers.HandleWeekdayPattern)
	s.mux.HandleFunc("GET /api/seasonal", s.apiHandlers.HandleSeasonal)
	s.mux.HandleFunc("GET /api/moving-averages", s.apiHandlers.HandleMovingAverages)
	s.mux.HandleFunc("GET /api/loyalty", s.apiHandlers.HandleLoyalty)
	s.mux.HandleFunc("GET /api/baskets", s.apiHandlers.HandleBaskets)
	s.mux.HandleFunc("GET /api/top-products", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/inventory", s.apiHandlers.HandleInventory)
	s.mux.HandleFunc("GET /api/store-performance", s.apiHandlers.HandleStorePerformance)
	s.mux.HandleFunc("GET /api/retention", s.apiHandlers.HandleRetention)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/sales-trend", s.sseHandlers.HandleSalesTrend)
	s.mux.HandleFunc("GET /sse/category-performance", s.sseHandlers.HandleCategoryPerformance)
	s.mux.HandleFunc("GET /sse/payment-methods", s.sseHandlers.HandlePaymentMethods)
	s.mux.HandleFunc("GET /sse/geography", s.sseHandlers.HandleGeography)
	s.mux.HandleFunc("GET /sse/anomalies", s.sseHandlers.HandleAnomalies)
	s.mux.HandleFunc("GET /sse/all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
