package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/imzeeshaan/grocery-analytics/internal/analytics"
	"github.com/imzeeshaan/grocery-analytics/internal/models"
	"github.com/imzeeshaan/grocery-analytics/internal/services"
)

const maxTableRows = 50

var categoryTableTemplate = template.Must(template.New("categoryTable").Parse(`
<div id="category-content">
<table class="modern-table">
<thead><tr><th>Category</th><th>Revenue</th><th>Units</th><th>Transactions</th><th>Avg Item Price</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td><span class="category-badge">{{.Category}}</span></td>
<td><strong>${{printf "%.2f" .Revenue}}</strong></td>
<td>{{.Quantity}}</td>
<td>{{.Transactions}}</td>
<td>${{printf "%.2f" .AvgItemPrice}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var anomalyTableTemplate = template.Must(template.New("anomalyTable").Parse(`
<div id="anomaly-content">
{{if .Rows}}<table class="modern-table">
<thead><tr><th>When</th><th>Store</th><th>Product</th><th>Qty</th><th>Total</th><th>Reasons</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.Datetime}}</td>
<td>{{.Store}}</td>
<td>{{.ProductName}}</td>
<td>{{.Quantity}}</td>
<td><strong>${{printf "%.2f" .TotalPrice}}</strong></td>
<td>{{range .Reasons}}<span class="reason-badge">{{.}}</span>{{end}}</td>
</tr>{{end}}
</tbody>
</table>{{else}}<p class="empty-note">No anomalies flagged.</p>{{end}}
</div>`))

var geographyTableTemplate = template.Must(template.New("geographyTable").Parse(`
<div id="geography-content">
<table class="modern-table">
<thead><tr><th>Store</th><th>Region</th>{{range .Columns}}<th>{{.}}</th>{{end}}<th>Total</th></tr></thead>
<tbody>
{{range .Rows}}{{$row := .}}<tr>
<td>{{.Store}}</td>
<td>{{.Region}}</td>
{{range $.Columns}}<td>${{printf "%.2f" (index $row.Cells .)}}</td>{{end}}
<td><strong>${{printf "%.2f" .Total}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderCategoryTable(rows []models.CategorySales) (string, error) {
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}
	var buf strings.Builder
	err := categoryTableTemplate.Execute(&buf, map[string]any{"Rows": rows})
	return buf.String(), err
}

func (h *SSEHandlers) renderAnomalyTable(rows []models.AnomalyFlag) (string, error) {
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}
	var buf strings.Builder
	err := anomalyTableTemplate.Execute(&buf, map[string]any{"Rows": rows})
	return buf.String(), err
}

func (h *SSEHandlers) renderGeographyTable(matrix models.GeoBreakdown) (string, error) {
	var buf strings.Builder
	err := geographyTableTemplate.Execute(&buf, matrix)
	return buf.String(), err
}

func (h *SSEHandlers) HandleSalesTrend(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"trendData": h.analytics.SalesTrend(""),
	})
	if err != nil {
		h.logger.Error("marshal trend data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="trend-content">Sales trend loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleCategoryPerformance(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := h.renderCategoryTable(h.analytics.CategoryPerformance())
	if err != nil {
		h.logger.Error("render category table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"paymentsData": h.analytics.PaymentDistribution(),
	})
	if err != nil {
		h.logger.Error("marshal payments data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="payments-content">Payment split loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleGeography(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	dim := analytics.GeoDimension(r.URL.Query().Get("dim"))
	if dim == "" {
		dim = analytics.GeoByCategory
	}

	matrix, err := h.analytics.Geography(dim)
	if err != nil {
		h.logger.Error("geography breakdown", "error", err, "dim", dim)
		return
	}

	html, err := h.renderGeographyTable(matrix)
	if err != nil {
		h.logger.Error("render geography table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleAnomalies(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	anomalies := h.analytics.Anomalies()

	html, err := h.renderAnomalyTable(anomalies)
	if err != nil {
		h.logger.Error("render anomaly table", "error", err)
		return
	}
	sse.PatchElements(html)

	jsonData, err := json.Marshal(map[string]any{
		"anomalyCount": len(anomalies),
	})
	if err != nil {
		h.logger.Error("marshal anomaly count", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleRefreshAll repaints every dashboard panel in a single stream.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	categoryHTML, err := h.renderCategoryTable(h.analytics.CategoryPerformance())
	if err != nil {
		h.logger.Error("render category table", "error", err)
		return
	}
	sse.PatchElements(categoryHTML)

	matrix, err := h.analytics.Geography(analytics.GeoByCategory)
	if err != nil {
		h.logger.Error("geography breakdown", "error", err)
		return
	}
	geographyHTML, err := h.renderGeographyTable(matrix)
	if err != nil {
		h.logger.Error("render geography table", "error", err)
		return
	}
	sse.PatchElements(geographyHTML)

	anomalies := h.analytics.Anomalies()
	anomalyHTML, err := h.renderAnomalyTable(anomalies)
	if err != nil {
		h.logger.Error("render anomaly table", "error", err)
		return
	}
	sse.PatchElements(anomalyHTML)

	allSignals, err := json.Marshal(map[string]any{
		"trendData":    h.analytics.SalesTrend(""),
		"paymentsData": h.analytics.PaymentDistribution(),
		"summary":      h.analytics.Summary(),
		"anomalyCount": len(anomalies),
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
