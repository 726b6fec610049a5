package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/imzeeshaan/grocery-analytics/internal/metrics"
	"github.com/imzeeshaan/grocery-analytics/internal/models"
	"github.com/imzeeshaan/grocery-analytics/internal/server"
	"github.com/imzeeshaan/grocery-analytics/internal/services"
)

// Test helper to create analytics with test data
func newTestAnalytics() *services.Analytics {
	a := services.NewAnalytics()
	testData := []models.Transaction{
		{
			TransactionID:   "TX001",
			CustomerID:      "CUST_01",
			Datetime:        time.Date(2023, 1, 15, 9, 0, 0, 0, time.UTC),
			StoreLocation:   "Downtown",
			ProductID:       "PROD_0001",
			ProductName:     "Whole Milk",
			ProductCategory: "Dairy",
			Quantity:        2,
			UnitPrice:       3.50,
			TotalPrice:      7.00,
			PaymentMethod:   "Credit Card",
			LoyaltyMember:   true,
			LoyaltyKnown:    true,
		},
		{
			TransactionID:   "TX002",
			CustomerID:      "CUST_02",
			Datetime:        time.Date(2023, 2, 10, 14, 30, 0, 0, time.UTC),
			StoreLocation:   "Suburb North",
			ProductID:       "PROD_0002",
			ProductName:     "Sourdough Loaf",
			ProductCategory: "Bakery",
			Quantity:        1,
			UnitPrice:       4.25,
			TotalPrice:      4.25,
			PaymentMethod:   "Cash",
			LoyaltyKnown:    true,
		},
		{
			TransactionID:   "TX003",
			CustomerID:      "CUST_03",
			Datetime:        time.Date(2023, 3, 5, 18, 15, 0, 0, time.UTC),
			StoreLocation:   "Coastal",
			ProductID:       "PROD_0003",
			ProductName:     "Orange Juice",
			ProductCategory: "Beverages",
			Quantity:        3,
			UnitPrice:       4.00,
			TotalPrice:      12.00,
			PaymentMethod:   "Mobile Wallet",
			LoyaltyKnown:    true,
			DiscountApplied: 0.10,
		},
	}
	a.SetData(testData)
	return a
}

func newTestServer() *server.Server {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	templateHandlers := &server.TemplateHandlers{Dashboard: handleDashboard}
	return server.NewServer(newTestAnalytics(), logger, metrics.NewRegistry(), templateHandlers)
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/health", http.StatusOK, "application/json"},
		{"/metrics", http.StatusOK, "text/plain"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/summary", http.StatusOK, "application/json"},
		{"/api/sales-trend", http.StatusOK, "application/json"},
		{"/api/category-performance", http.StatusOK, "application/json"},
		{"/api/payment-methods", http.StatusOK, "application/json"},
		{"/api/discount-impact", http.StatusOK, "application/json"},
		{"/api/customers", http.StatusOK, "application/json"},
		{"/api/geography", http.StatusOK, "application/json"},
		{"/api/margins", http.StatusOK, "application/json"},
		{"/api/anomalies", http.StatusOK, "application/json"},
		{"/api/hourly-pattern", http.StatusOK, "application/json"},
		{"/api/weekday-pattern", http.StatusOK, "application/json"},
		{"/api/seasonal", http.StatusOK, "application/json"},
		{"/api/moving-averages", http.StatusOK, "application/json"},
		{"/api/loyalty", http.StatusOK, "application/json"},
		{"/api/baskets", http.StatusOK, "application/json"},
		{"/api/top-products", http.StatusOK, "application/json"},
		{"/api/inventory", http.StatusOK, "application/json"},
		{"/api/store-performance", http.StatusOK, "application/json"},
		{"/api/retention", http.StatusOK, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			// Validate JSON responses
			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// Test JSON API responses
func TestServer_JSONResponse(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/top-products", nil)
	srv.ServeHTTP(w, r)

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	data, ok := response["data"].([]interface{})
	if !ok {
		t.Fatalf("expected data array in response")
	}

	if len(data) == 0 {
		t.Error("expected products data")
		return
	}

	// Verify structure of first item
	if item, ok := data[0].(map[string]interface{}); ok {
		if name, hasName := item["product_name"].(string); !hasName || name == "" {
			t.Error("product should have non-empty product_name field")
		}
		if category, hasCat := item["category"].(string); !hasCat || category == "" {
			t.Error("product should have non-empty category field")
		}
		if revenue, hasRev := item["revenue"].(float64); !hasRev || revenue < 0 {
			t.Error("product should have non-negative revenue field")
		}
	} else {
		t.Error("invalid product structure")
	}
}

// Test Server-Sent Events routes
func TestServer_SSERoutes(t *testing.T) {
	srv := newTestServer()

	sseRoutes := []string{
		"/sse/sales-trend",
		"/sse/category-performance",
		"/sse/payment-methods",
		"/sse/geography",
		"/sse/anomalies",
		"/sse/all",
	}

	for _, route := range sseRoutes {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", route, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}

			// Check for SSE headers
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}

			if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
				t.Errorf("cache-control = %q, want 'no-cache'", cc)
			}
		})
	}
}

// Test health endpoint
func TestServer_HandleHealth(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode health JSON: %v", err)
	}

	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	healthData, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected health data in response")
	}

	if status, ok := healthData["status"].(string); !ok || status != "healthy" {
		t.Errorf("health status = %v, want 'healthy'", healthData["status"])
	}

	if _, ok := healthData["timestamp"]; !ok {
		t.Error("health response should include timestamp")
	}

	if records, ok := healthData["records"].(float64); !ok || records != 3 {
		t.Errorf("health records = %v, want 3", healthData["records"])
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/summary", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"PATCH", "/api/top-products", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

// Test dashboard template rendering
func TestDashboardTemplate(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	// Test the template handler directly
	handleDashboard(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	if cc := w.Header().Get("Cache-Control"); cc != cacheMaxAge {
		t.Errorf("cache-control = %q, want %q", cc, cacheMaxAge)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Grocery Analytics") {
		t.Error("dashboard should contain title")
	}

	// Check for key dashboard components
	expectedComponents := []string{
		"Category Performance",
		"Store Revenue Matrix",
		"Anomalies",
		"Sales Trend",
		"Payment Methods",
	}

	for _, component := range expectedComponents {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain '%s'", component)
		}
	}
}
