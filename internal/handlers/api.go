package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/imzeeshaan/grocery-analytics/internal/analytics"
	"github.com/imzeeshaan/grocery-analytics/internal/errors"
	"github.com/imzeeshaan/grocery-analytics/internal/observability"
	"github.com/imzeeshaan/grocery-analytics/internal/services"
)

const (
	defaultCustomerLimit = 50
	defaultProductLimit  = 20
)

// Aggregations are deterministic over an immutable dataset, so responses
// can be cached briefly by clients and proxies.
var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// limitParam reads an optional ?limit= query. Absent falls back to def;
// an explicit 0 means unlimited.
func limitParam(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer, got %q", raw)
	}
	return limit, nil
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Summary(), cacheHeaders)
}

func (h *APIHandlers) HandleSalesTrend(w http.ResponseWriter, r *http.Request) {
	store := r.URL.Query().Get("store")
	errors.WriteSuccessWithHeaders(w, h.analytics.SalesTrend(store), cacheHeaders)
}

func (h *APIHandlers) HandleCategoryPerformance(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.CategoryPerformance(), cacheHeaders)
}

func (h *APIHandlers) HandlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.PaymentDistribution(), cacheHeaders)
}

func (h *APIHandlers) HandleDiscountImpact(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.DiscountImpact(), cacheHeaders)
}

func (h *APIHandlers) HandleCustomers(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, defaultCustomerLimit)
	if err != nil {
		errors.WriteError(w, h.logger, errors.Validation(err.Error()), observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.Customers(limit), cacheHeaders)
}

func (h *APIHandlers) HandleGeography(w http.ResponseWriter, r *http.Request) {
	dim := analytics.GeoDimension(r.URL.Query().Get("dim"))
	if dim == "" {
		dim = analytics.GeoByCategory
	}

	data, err := h.analytics.Geography(dim)
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "unknown geography dimension"), observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleMargins(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Margins(), cacheHeaders)
}

func (h *APIHandlers) HandleAnomalies(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Anomalies(), cacheHeaders)
}

func (h *APIHandlers) HandleHourlyPattern(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.HourlyPattern(), cacheHeaders)
}

func (h *APIHandlers) HandleWeekdayPattern(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.WeekdayPattern(), cacheHeaders)
}

func (h *APIHandlers) HandleSeasonal(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.SeasonalTrends(), cacheHeaders)
}

func (h *APIHandlers) HandleMovingAverages(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.MovingAverages(), cacheHeaders)
}

func (h *APIHandlers) HandleLoyalty(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.LoyaltySplit(), cacheHeaders)
}

func (h *APIHandlers) HandleBaskets(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Baskets(), cacheHeaders)
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, defaultProductLimit)
	if err != nil {
		errors.WriteError(w, h.logger, errors.Validation(err.Error()), observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.TopProducts(limit), cacheHeaders)
}

func (h *APIHandlers) HandleInventory(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Inventory(), cacheHeaders)
}

func (h *APIHandlers) HandleStorePerformance(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.StorePerformance(), cacheHeaders)
}

func (h *APIHandlers) HandleRetention(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Retention(), cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"records":   h.analytics.Records(),
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
