package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/imzeeshaan/grocery-analytics/internal/services"
)

func testConfig(rows int, seed uint64) genConfig {
	start, _ := time.Parse(dateLayout, "2023-01-01")
	return genConfig{
		rows:      rows,
		seed:      seed,
		customers: 50,
		start:     start,
		days:      365,
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	var first, second bytes.Buffer

	if _, err := generate(&first, testConfig(200, 42)); err != nil {
		t.Fatalf("generate() error = %v", err)
	}
	if _, err := generate(&second, testConfig(200, 42)); err != nil {
		t.Fatalf("generate() error = %v", err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("same seed should reproduce identical output")
	}

	var other bytes.Buffer
	if _, err := generate(&other, testConfig(200, 43)); err != nil {
		t.Fatalf("generate() error = %v", err)
	}
	if bytes.Equal(first.Bytes(), other.Bytes()) {
		t.Error("different seeds should produce different output")
	}
}

func TestGenerate_RowCount(t *testing.T) {
	var buf bytes.Buffer

	n, err := generate(&buf, testConfig(137, 1))
	if err != nil {
		t.Fatalf("generate() error = %v", err)
	}
	if n != 137 {
		t.Errorf("generate() wrote %d rows, want 137", n)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	// Header plus exactly the requested record count.
	if len(records) != 138 {
		t.Errorf("got %d CSV lines, want 138", len(records))
	}
}

func TestGenerate_FieldShape(t *testing.T) {
	var buf bytes.Buffer

	if _, err := generate(&buf, testConfig(100, 7)); err != nil {
		t.Fatalf("generate() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	header := records[0]
	if len(header) != len(csvHeader) {
		t.Fatalf("header has %d columns, want %d", len(header), len(csvHeader))
	}
	for i, col := range csvHeader {
		if header[i] != col {
			t.Errorf("header[%d] = %q, want %q", i, header[i], col)
		}
	}

	stores := map[string]bool{}
	for _, s := range storeLocations {
		stores[s.name] = true
	}
	payments := map[string]bool{}
	for _, p := range paymentMethods {
		payments[p] = true
	}

	for i, rec := range records[1:] {
		if len(rec) != len(csvHeader) {
			t.Fatalf("row %d has %d columns, want %d", i, len(rec), len(csvHeader))
		}
		if _, err := time.Parse(datetimeLayout, rec[2]); err != nil {
			t.Errorf("row %d datetime %q: %v", i, rec[2], err)
		}
		if !stores[rec[3]] {
			t.Errorf("row %d has unknown store %q", i, rec[3])
		}
		qty, err := strconv.Atoi(rec[7])
		if err != nil || qty < 1 {
			t.Errorf("row %d quantity %q invalid", i, rec[7])
		}
		unit, err := strconv.ParseFloat(rec[8], 64)
		if err != nil || unit <= 0 {
			t.Errorf("row %d unit price %q invalid", i, rec[8])
		}
		if !payments[rec[10]] {
			t.Errorf("row %d has unknown payment method %q", i, rec[10])
		}
		discount, err := strconv.ParseFloat(rec[12], 64)
		if err != nil || discount < 0 || discount > 1 {
			t.Errorf("row %d discount %q invalid", i, rec[12])
		}
	}
}

// Generated files must load cleanly end to end.
func TestGenerate_LoaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := generate(f, testConfig(500, 99)); err != nil {
		t.Fatalf("generate() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}

	a := services.NewAnalytics()
	a.SetCache(t.TempDir(), false)
	if err := a.LoadFromCSV(context.Background(), path); err != nil {
		t.Fatalf("LoadFromCSV() error = %v", err)
	}

	if got := a.Records(); got != 500 {
		t.Errorf("loaded %d records, want 500", got)
	}
	if skipped := a.Skipped(); skipped != 0 {
		t.Errorf("loader skipped %d generated rows, want 0", skipped)
	}

	summary := a.Summary()
	if summary.TotalRevenue <= 0 {
		t.Error("expected positive total revenue from generated data")
	}
	if summary.UniqueCustomers < 1 || summary.UniqueCustomers > 50 {
		t.Errorf("unique customers = %d, want within pool size", summary.UniqueCustomers)
	}
}

func TestHolidayWeeks(t *testing.T) {
	start, _ := time.Parse(dateLayout, "2023-01-01")
	weeks := holidayWeeks(start, 365)

	if len(weeks) == 0 {
		t.Fatal("expected holiday weeks for a full year")
	}

	// Christmas 2023 fell on a Monday, so its week runs Dec 25-31.
	christmasWeek := false
	probe := time.Date(2023, 12, 27, 0, 0, 0, 0, time.UTC)
	for _, w := range weeks {
		if !probe.Before(w.start) && !probe.After(w.end) {
			christmasWeek = true
		}
	}
	if !christmasWeek {
		t.Error("expected December 27 to land in the Christmas holiday week")
	}
}

func TestPickStore_CoversAllLocations(t *testing.T) {
	g := newGenerator(testConfig(1, 5))

	seen := map[string]bool{}
	for i := 0; i < 2000; i++ {
		seen[g.pickStore()] = true
	}
	for _, s := range storeLocations {
		if !seen[s.name] {
			t.Errorf("store %q never picked in 2000 draws", s.name)
		}
	}
}
