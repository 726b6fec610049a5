package services

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/imzeeshaan/grocery-analytics/internal/models"
)

const csvHeader = "transaction_id,customer_id,transaction_datetime,store_location,product_id,product_name,product_category,quantity,unit_price,total_price,payment_method,loyalty_member,discount_applied"

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "test*.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func newTestAnalytics(t *testing.T) *Analytics {
	t.Helper()
	a := NewAnalytics()
	a.SetCache(t.TempDir(), true)
	return a
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics()
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.logger == nil {
		t.Error("logger should be initialized")
	}
	opts := a.Options()
	if opts.ChurnRecencyThresholdDays != 30 {
		t.Errorf("default churn threshold = %d, want 30", opts.ChurnRecencyThresholdDays)
	}
	if opts.AnomalyQuantityCap != 50 {
		t.Errorf("default quantity cap = %d, want 50", opts.AnomalyQuantityCap)
	}
}

func TestAnalytics_SetData(t *testing.T) {
	a := NewAnalytics()
	testData := []models.Transaction{
		{
			TransactionID:   "TX001",
			CustomerID:      "CUST_01",
			Datetime:        time.Date(2023, 1, 15, 9, 30, 0, 0, time.UTC),
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
			Datetime:        time.Date(2023, 1, 16, 12, 0, 0, 0, time.UTC),
			StoreLocation:   "Suburb North",
			ProductID:       "PROD_0002",
			ProductName:     "Sourdough Loaf",
			ProductCategory: "Bakery",
			Quantity:        1,
			UnitPrice:       4.25,
			TotalPrice:      4.25,
			PaymentMethod:   "Cash",
			LoyaltyKnown:    true,
			DiscountApplied: 0.05,
		},
	}

	a.SetData(testData)

	summary := a.Summary()
	if summary.Transactions != 2 {
		t.Errorf("Summary().Transactions = %d, want 2", summary.Transactions)
	}
	if summary.SkippedRecords != 0 {
		t.Errorf("Summary().SkippedRecords = %d, want 0", summary.SkippedRecords)
	}

	if got := a.CategoryPerformance(); len(got) != 2 {
		t.Errorf("CategoryPerformance() returned %d rows, want 2", len(got))
	}
	if got := a.SalesTrend(""); len(got) != 2 {
		t.Errorf("SalesTrend() returned %d rows, want 2", len(got))
	}
	if got := a.PaymentDistribution(); len(got) != 2 {
		t.Errorf("PaymentDistribution() returned %d rows, want 2", len(got))
	}
	if got := a.Customers(0); len(got) != 2 {
		t.Errorf("Customers(0) returned %d rows, want 2", len(got))
	}
}

func TestAnalytics_LoadFromCSV_ValidData(t *testing.T) {
	validCSV := csvHeader + `
TX001,CUST_01,2023-01-15 09:30:00,Downtown,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,True,0
TX002,CUST_02,2023-01-16 12:00:00,Suburb North,PROD_0002,Sourdough Loaf,Bakery,1,4.25,4.25,Cash,False,0.05
TX003,CUST_01,2023-01-20 17:45:00,Downtown,PROD_0003,Orange Juice,Beverages,3,4.00,12.00,Mobile Wallet,True,0.1`

	f := createTempCSV(t, validCSV)

	a := newTestAnalytics(t)
	if err := a.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() with valid data should not error, got: %v", err)
	}

	summary := a.Summary()
	if summary.Transactions != 3 {
		t.Errorf("loaded %d transactions, want 3", summary.Transactions)
	}
	if summary.UniqueCustomers != 2 {
		t.Errorf("UniqueCustomers = %d, want 2", summary.UniqueCustomers)
	}
	if a.Skipped() != 0 {
		t.Errorf("Skipped() = %d, want 0", a.Skipped())
	}
}

func TestAnalytics_LoadFromCSV_SkipsMalformed(t *testing.T) {
	mixedCSV := csvHeader + `
TX001,CUST_01,2023-01-15 09:30:00,Downtown,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,True,0
TX002,CUST_02,not-a-date,Downtown,PROD_0002,Rye Loaf,Bakery,1,4.25,4.25,Cash,False,0
TX003,CUST_03,2023-01-16 10:00:00,Downtown,PROD_0003,Eggs,Dairy,zero,2.00,2.00,Cash,True,0
short,row
TX004,CUST_04,2023-01-17 11:00:00,Coastal,PROD_0004,Apples,Produce,4,0.75,3.00,Debit Card,False,0.1`

	f := createTempCSV(t, mixedCSV)

	a := newTestAnalytics(t)
	if err := a.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() should tolerate malformed rows, got: %v", err)
	}

	if got := a.Summary().Transactions; got != 2 {
		t.Errorf("loaded %d transactions, want 2", got)
	}
	if got := a.Skipped(); got != 3 {
		t.Errorf("Skipped() = %d, want 3", got)
	}
	if got := a.Summary().SkippedRecords; got != 3 {
		t.Errorf("Summary().SkippedRecords = %d, want 3", got)
	}
}

func TestAnalytics_LoadFromCSV_InvalidData(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr bool
	}{
		{
			name:    "empty file",
			csv:     "",
			wantErr: true,
		},
		{
			name:    "header only",
			csv:     csvHeader,
			wantErr: true,
		},
		{
			name: "every row malformed",
			csv: csvHeader + `
TX001,CUST_01,bad-date,Downtown,PROD_0001,Milk,Dairy,2,3.50,7.00,Credit Card,True,0
TX002,CUST_02,2023-01-16 10:00:00,Downtown,PROD_0002,Bread,Bakery,0,4.25,0,Cash,False,0`,
			wantErr: true,
		},
		{
			name: "one survivor",
			csv: csvHeader + `
TX001,CUST_01,bad-date,Downtown,PROD_0001,Milk,Dairy,2,3.50,7.00,Credit Card,True,0
TX002,CUST_02,2023-01-16 10:00:00,Downtown,PROD_0002,Bread,Bakery,1,4.25,4.25,Cash,False,0`,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTempCSV(t, tt.csv)

			a := newTestAnalytics(t)
			err := a.LoadFromCSV(context.Background(), f)

			if (err != nil) != tt.wantErr {
				t.Errorf("LoadFromCSV() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnalytics_LoadFromCSV_MissingFile(t *testing.T) {
	a := newTestAnalytics(t)
	if err := a.LoadFromCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("LoadFromCSV() with a missing file should error")
	}
}

func TestParseTransaction(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
		check   func(t *testing.T, tx models.Transaction)
	}{
		{
			name: "valid record",
			line: "TX001,CUST_01,2023-01-15 09:30:00,Downtown,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,True,0.05",
			check: func(t *testing.T, tx models.Transaction) {
				if tx.TransactionID != "TX001" || tx.Quantity != 2 || tx.TotalPrice != 7.00 {
					t.Errorf("unexpected parse result: %+v", tx)
				}
				if !tx.LoyaltyKnown || !tx.LoyaltyMember {
					t.Error("loyalty flag should parse as known member")
				}
				if tx.DiscountApplied != 0.05 {
					t.Errorf("DiscountApplied = %v, want 0.05", tx.DiscountApplied)
				}
			},
		},
		{
			name: "blank loyalty is tolerated",
			line: "TX001,CUST_01,2023-01-15 09:30:00,Downtown,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,,0",
			check: func(t *testing.T, tx models.Transaction) {
				if tx.LoyaltyKnown {
					t.Error("blank loyalty flag should stay unknown")
				}
			},
		},
		{
			name: "blank discount defaults to zero",
			line: "TX001,CUST_01,2023-01-15 09:30:00,Downtown,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,True,",
			check: func(t *testing.T, tx models.Transaction) {
				if tx.DiscountApplied != 0 {
					t.Errorf("DiscountApplied = %v, want 0", tx.DiscountApplied)
				}
			},
		},
		{
			name: "date-only datetime is accepted",
			line: "TX001,CUST_01,2023-01-15,Downtown,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,True,0",
			check: func(t *testing.T, tx models.Transaction) {
				want := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
				if !tx.Datetime.Equal(want) {
					t.Errorf("Datetime = %v, want %v", tx.Datetime, want)
				}
			},
		},
		{
			name:    "too few columns",
			line:    "TX001,CUST_01,2023-01-15 09:30:00",
			wantErr: true,
		},
		{
			name:    "missing store location",
			line:    "TX001,CUST_01,2023-01-15 09:30:00,,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,True,0",
			wantErr: true,
		},
		{
			name:    "unparseable datetime",
			line:    "TX001,CUST_01,someday,Downtown,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,True,0",
			wantErr: true,
		},
		{
			name:    "zero quantity",
			line:    "TX001,CUST_01,2023-01-15 09:30:00,Downtown,PROD_0001,Whole Milk,Dairy,0,3.50,0,Credit Card,True,0",
			wantErr: true,
		},
		{
			name:    "negative unit price",
			line:    "TX001,CUST_01,2023-01-15 09:30:00,Downtown,PROD_0001,Whole Milk,Dairy,2,-3.50,7.00,Credit Card,True,0",
			wantErr: true,
		},
		{
			name:    "discount above one",
			line:    "TX001,CUST_01,2023-01-15 09:30:00,Downtown,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,True,1.5",
			wantErr: true,
		},
		{
			name:    "garbage loyalty flag",
			line:    "TX001,CUST_01,2023-01-15 09:30:00,Downtown,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,maybe,0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := parseTransaction(strings.Split(tt.line, ","))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTransaction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, tx)
			}
		})
	}
}

func TestAnalytics_CacheRoundTrip(t *testing.T) {
	cacheDir := t.TempDir()
	csvPath := filepath.Join(t.TempDir(), "transactions.csv")

	twoRows := csvHeader + `
TX001,CUST_01,2023-01-15 09:30:00,Downtown,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,True,0
bad,row
TX002,CUST_02,2023-01-16 12:00:00,Suburb North,PROD_0002,Sourdough Loaf,Bakery,1,4.25,4.25,Cash,False,0.05`
	if err := os.WriteFile(csvPath, []byte(twoRows), 0644); err != nil {
		t.Fatal(err)
	}

	first := NewAnalytics()
	first.SetCache(cacheDir, true)
	if err := first.LoadFromCSV(context.Background(), csvPath); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}
	if first.FromCache() {
		t.Error("initial load reported FromCache() = true")
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one cache file, found %d", len(entries))
	}

	// A fresh session against the unchanged file should hit the cache
	// and restore both the records and the skip count.
	second := NewAnalytics()
	second.SetCache(cacheDir, true)
	if err := second.LoadFromCSV(context.Background(), csvPath); err != nil {
		t.Fatalf("cached load failed: %v", err)
	}
	if !second.FromCache() {
		t.Error("unchanged file should load from cache")
	}
	if got := second.Summary().Transactions; got != 2 {
		t.Errorf("cached load restored %d transactions, want 2", got)
	}
	if got := second.Skipped(); got != 1 {
		t.Errorf("cached load restored Skipped() = %d, want 1", got)
	}
	if rows := second.Customers(0); len(rows) == 0 || rows[0].LifetimeSpend == 0 {
		t.Error("cached transactions should survive with values intact")
	}

	// Changing the file must invalidate the snapshot.
	grown := twoRows + "\nTX003,CUST_03,2023-01-17 10:00:00,Coastal,PROD_0003,Apples,Produce,4,0.75,3.00,Debit Card,False,0"
	if err := os.WriteFile(csvPath, []byte(grown), 0644); err != nil {
		t.Fatal(err)
	}

	third := NewAnalytics()
	third.SetCache(cacheDir, true)
	if err := third.LoadFromCSV(context.Background(), csvPath); err != nil {
		t.Fatalf("reload after change failed: %v", err)
	}
	if third.FromCache() {
		t.Error("changed file should bypass the stale snapshot")
	}
	if got := third.Summary().Transactions; got != 3 {
		t.Errorf("reload after change loaded %d transactions, want 3", got)
	}
}

func TestAnalytics_CacheDisabled(t *testing.T) {
	cacheDir := t.TempDir()
	csvPath := createTempCSV(t, csvHeader+"\nTX001,CUST_01,2023-01-15 09:30:00,Downtown,PROD_0001,Whole Milk,Dairy,2,3.50,7.00,Credit Card,True,0")

	a := NewAnalytics()
	a.SetCache(cacheDir, false)
	if err := a.LoadFromCSV(context.Background(), csvPath); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache disabled but %d files were written", len(entries))
	}
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := NewAnalytics()
	a.SetData([]models.Transaction{
		{
			TransactionID:   "TX001",
			CustomerID:      "CUST_01",
			Datetime:        time.Date(2023, 3, 1, 9, 0, 0, 0, time.UTC),
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
	})

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()

			_ = a.Summary()
			_ = a.CategoryPerformance()
			_ = a.Customers(10)
			_ = a.Anomalies()
			_, _ = a.Geography("category")
			_ = a.Stats()
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestAnalytics_EmptyData(t *testing.T) {
	a := NewAnalytics()

	if got := a.Summary().Transactions; got != 0 {
		t.Errorf("Summary().Transactions = %d, want 0", got)
	}
	if got := a.CategoryPerformance(); len(got) != 0 {
		t.Errorf("CategoryPerformance() should return empty slice, got length %d", len(got))
	}
	if got := a.Customers(10); len(got) != 0 {
		t.Errorf("Customers() should return empty slice, got length %d", len(got))
	}
	if got := a.Anomalies(); len(got) != 0 {
		t.Errorf("Anomalies() should return empty slice, got length %d", len(got))
	}
	if got := a.DiscountImpact(); len(got) != 0 {
		t.Errorf("DiscountImpact() should return empty slice, got length %d", len(got))
	}
}

func TestAnalytics_Stats(t *testing.T) {
	a := NewAnalytics()
	a.SetData([]models.Transaction{
		{
			TransactionID:   "TX001",
			CustomerID:      "CUST_01",
			Datetime:        time.Date(2023, 3, 1, 9, 0, 0, 0, time.UTC),
			ProductID:       "PROD_0001",
			ProductCategory: "Dairy",
			StoreLocation:   "Downtown",
			ProductName:     "Whole Milk",
			Quantity:        1,
			TotalPrice:      3.50,
			PaymentMethod:   "Cash",
		},
	})

	stats := a.Stats()
	if stats["record_count"] != 1 {
		t.Errorf("record_count = %v, want 1", stats["record_count"])
	}
	if stats["source"] != "memory" {
		t.Errorf("source = %v, want memory", stats["source"])
	}
	if stats["from_cache"] != false {
		t.Errorf("from_cache = %v, want false for in-memory data", stats["from_cache"])
	}
	for _, key := range []string{"skipped_records", "loaded_at", "customers", "products", "first_date", "last_date"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("Stats() missing key %q", key)
		}
	}
}

func BenchmarkAnalytics_CategoryPerformance(b *testing.B) {
	a := NewAnalytics()
	testData := make([]models.Transaction, 1000)
	for i := 0; i < 1000; i++ {
		testData[i] = models.Transaction{
			TransactionID:   "TX" + strconv.Itoa(i),
			CustomerID:      "CUST_" + strconv.Itoa(i%50),
			Datetime:        time.Date(2023, 1, 1+i%28, 9, 0, 0, 0, time.UTC),
			StoreLocation:   "Downtown",
			ProductID:       "PROD_" + strconv.Itoa(i%100),
			ProductName:     "Item " + strconv.Itoa(i%100),
			ProductCategory: []string{"Dairy", "Bakery", "Produce", "Snacks"}[i%4],
			Quantity:        1 + i%5,
			UnitPrice:       2.50,
			TotalPrice:      2.50 * float64(1+i%5),
			PaymentMethod:   "Cash",
		}
	}
	a.SetData(testData)

	b.ResetTimer()
	for b.Loop() {
		_ = a.CategoryPerformance()
	}
}

func BenchmarkAnalytics_Anomalies(b *testing.B) {
	a := NewAnalytics()
	testData := make([]models.Transaction, 1000)
	for i := 0; i < 1000; i++ {
		testData[i] = models.Transaction{
			TransactionID:   "TX" + strconv.Itoa(i),
			CustomerID:      "CUST_" + strconv.Itoa(i%50),
			Datetime:        time.Date(2023, 1, 1+i%28, 9, 0, 0, 0, time.UTC),
			StoreLocation:   "Downtown",
			ProductID:       "PROD_" + strconv.Itoa(i%100),
			ProductName:     "Item " + strconv.Itoa(i%100),
			ProductCategory: "Pantry",
			Quantity:        1 + i%5,
			UnitPrice:       2.50,
			TotalPrice:      2.50 * float64(1+i%5),
			PaymentMethod:   "Cash",
		}
	}
	a.SetData(testData)

	b.ResetTimer()
	for b.Loop() {
		_ = a.Anomalies()
	}
}
