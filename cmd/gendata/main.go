// Command gendata writes a synthetic grocery transaction CSV in the schema
// the dashboard loader ingests. The same seed always produces the same file.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	totalProducts   = 2000
	highDemandShare = 0.2
	datetimeLayout  = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

var csvHeader = []string{
	"transaction_id", "customer_id", "transaction_datetime", "store_location",
	"product_id", "product_name", "product_category", "quantity",
	"unit_price", "total_price", "payment_method", "loyalty_member",
	"discount_applied",
}

var storeLocations = []struct {
	name   string
	weight float64
}{
	{"Downtown", 0.4},
	{"Suburb North", 0.25},
	{"Suburb South", 0.25},
	{"Coastal", 0.1},
}

var productCategories = []struct {
	name     string
	minPrice float64
	maxPrice float64
	items    []string
}{
	{"Dairy", 2.99, 8.99, []string{"Whole Milk", "Greek Yogurt", "Cheddar Cheese", "Butter", "Cream"}},
	{"Bakery", 1.99, 12.99, []string{"Whole Wheat Bread", "Croissants", "Bagels", "Muffins", "Danish"}},
	{"Produce", 0.99, 7.99, []string{"Bananas", "Apples", "Carrots", "Spinach", "Tomatoes"}},
	{"Meat", 5.99, 25.99, []string{"Chicken Breast", "Ground Beef", "Salmon", "Pork Chops", "Turkey"}},
	{"Frozen Foods", 3.99, 15.99, []string{"Ice Cream", "Frozen Pizza", "Frozen Vegetables", "TV Dinner", "Fish Sticks"}},
	{"Snacks", 1.99, 6.99, []string{"Potato Chips", "Pretzels", "Popcorn", "Trail Mix", "Cookies"}},
	{"Beverages", 2.99, 9.99, []string{"Cola", "Coffee", "Orange Juice", "Energy Drink", "Water"}},
	{"Organic", 3.99, 15.99, []string{"Organic Eggs", "Organic Milk", "Organic Quinoa", "Organic Berries", "Organic Honey"}},
	{"Pantry", 1.99, 12.99, []string{"Pasta", "Rice", "Cereal", "Peanut Butter", "Soup"}},
	{"Personal Care", 2.99, 19.99, []string{"Shampoo", "Toothpaste", "Soap", "Deodorant", "Lotion"}},
}

var paymentMethods = []string{"Credit Card", "Debit Card", "Cash", "Mobile Wallet"}

var discountRates = []float64{0.05, 0.10, 0.15}

// Holiday month-days whose surrounding week sees extra traffic.
var holidayAnchors = []string{"01-01", "05-29", "07-04", "09-04", "11-23", "12-25"}

type genConfig struct {
	rows      int
	seed      uint64
	customers int
	start     time.Time
	days      int
}

type customer struct {
	id      string
	loyalty bool
}

type product struct {
	id        string
	name      string
	category  string
	basePrice float64
}

type dateRange struct {
	start time.Time
	end   time.Time
}

// rngReader adapts the seeded PRNG to io.Reader so UUIDs stay reproducible.
type rngReader struct {
	rng *rand.Rand
}

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.Uint64())
	}
	return len(p), nil
}

type generator struct {
	rng          *rand.Rand
	ids          rngReader
	customers    []customer
	products     []product
	highDemand   int
	holidayWeeks []dateRange
	start        time.Time
	days         int
}

func newGenerator(cfg genConfig) *generator {
	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed))
	g := &generator{
		rng:          rng,
		ids:          rngReader{rng: rng},
		highDemand:   int(totalProducts * highDemandShare),
		holidayWeeks: holidayWeeks(cfg.start, cfg.days),
		start:        cfg.start,
		days:         cfg.days,
	}

	g.customers = make([]customer, cfg.customers)
	for i := range g.customers {
		g.customers[i] = customer{
			id:      g.newID(),
			loyalty: rng.Float64() < 0.3,
		}
	}

	g.products = make([]product, totalProducts)
	for i := range g.products {
		cat := productCategories[rng.IntN(len(productCategories))]
		minPrice, maxPrice := cat.minPrice, cat.maxPrice
		if cat.name == "Organic" {
			minPrice *= 1.2
			maxPrice *= 1.2
		}
		base := cat.items[rng.IntN(len(cat.items))]
		g.products[i] = product{
			id:        fmt.Sprintf("PROD_%04d", i+1),
			name:      fmt.Sprintf("%s %d", base, i+1),
			category:  cat.name,
			basePrice: round2(minPrice + rng.Float64()*(maxPrice-minPrice)),
		}
	}

	return g
}

func (g *generator) newID() string {
	id, _ := uuid.NewRandomFromReader(g.ids)
	return id.String()
}

func (g *generator) pickStore() string {
	r := g.rng.Float64()
	for _, s := range storeLocations {
		if r < s.weight {
			return s.name
		}
		r -= s.weight
	}
	return storeLocations[len(storeLocations)-1].name
}

// pickDatetime samples uniformly over the range, accepting weekend days at
// 30%, holiday-week days at 20%, and any other day at 50% per draw.
func (g *generator) pickDatetime() time.Time {
	span := int64(g.days) * 24 * 60 * 60
	for {
		t := g.start.Add(time.Duration(g.rng.Int64N(span)) * time.Second)
		weekend := t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
		switch {
		case weekend && g.rng.Float64() < 0.3:
			return t
		case g.isHolidayWeek(t) && g.rng.Float64() < 0.2:
			return t
		case g.rng.Float64() < 0.5:
			return t
		}
	}
}

func (g *generator) isHolidayWeek(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for _, w := range g.holidayWeeks {
		if !day.Before(w.start) && !day.After(w.end) {
			return true
		}
	}
	return false
}

func (g *generator) pickProduct() product {
	if g.rng.Float64() < 0.3 && g.highDemand > 0 {
		return g.products[g.rng.IntN(g.highDemand)]
	}
	return g.products[g.rng.IntN(len(g.products))]
}

func (g *generator) pickQuantity() int {
	qty := 1 + g.rng.IntN(10)
	if g.rng.Float64() < 0.1 {
		qty = 6 + g.rng.IntN(5)
	}
	if g.rng.Float64() < 0.001 {
		qty = 50 + g.rng.IntN(51)
	}
	return qty
}

func (g *generator) pickDiscount(loyalty bool) float64 {
	chance := 0.2
	if loyalty {
		chance = 0.4
	}
	if g.rng.Float64() >= chance {
		return 0
	}
	return discountRates[g.rng.IntN(len(discountRates))]
}

// basket emits one shopping trip as 1-15 item rows sharing a transaction id,
// datetime, store, payment method, and discount.
func (g *generator) basket() [][]string {
	cust := g.customers[g.rng.IntN(len(g.customers))]
	txID := g.newID()
	when := g.pickDatetime().Format(datetimeLayout)
	store := g.pickStore()
	payment := paymentMethods[g.rng.IntN(len(paymentMethods))]
	discount := g.pickDiscount(cust.loyalty)

	numItems := 1 + g.rng.IntN(15)
	rows := make([][]string, 0, numItems)
	for i := 0; i < numItems; i++ {
		p := g.pickProduct()
		qty := g.pickQuantity()
		total := round2(float64(qty) * p.basePrice * (1 - discount))
		rows = append(rows, []string{
			txID,
			cust.id,
			when,
			store,
			p.id,
			p.name,
			p.category,
			strconv.Itoa(qty),
			strconv.FormatFloat(p.basePrice, 'f', 2, 64),
			strconv.FormatFloat(total, 'f', 2, 64),
			payment,
			strconv.FormatBool(cust.loyalty),
			strconv.FormatFloat(discount, 'f', -1, 64),
		})
	}
	return rows
}

func holidayWeeks(start time.Time, days int) []dateRange {
	end := start.AddDate(0, 0, days)
	ranges := make([]dateRange, 0, 6*(end.Year()-start.Year()+1))
	for year := start.Year(); year <= end.Year(); year++ {
		for _, anchor := range holidayAnchors {
			d, err := time.Parse(dateLayout, fmt.Sprintf("%d-%s", year, anchor))
			if err != nil {
				continue
			}
			// Week runs Monday through Sunday around the holiday.
			offset := (int(d.Weekday()) + 6) % 7
			weekStart := d.AddDate(0, 0, -offset)
			ranges = append(ranges, dateRange{start: weekStart, end: weekStart.AddDate(0, 0, 6)})
		}
	}
	return ranges
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func generate(w io.Writer, cfg genConfig) (int, error) {
	g := newGenerator(cfg)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	written := 0
	for written < cfg.rows {
		for _, rec := range g.basket() {
			if written == cfg.rows {
				break
			}
			if err := cw.Write(rec); err != nil {
				return written, fmt.Errorf("write record: %w", err)
			}
			written++
		}
	}

	cw.Flush()
	return written, cw.Error()
}

func main() {
	var (
		rows      = flag.Int("rows", 100000, "number of CSV records to generate")
		out       = flag.String("out", "data/grocery_transactions.csv", "output file path")
		seed      = flag.Uint64("seed", 1, "PRNG seed; reruns with the same seed reproduce the file")
		customers = flag.Int("customers", 10000, "size of the customer pool")
		start     = flag.String("start", "2023-01-01", "first day of the generated range (YYYY-MM-DD)")
		days      = flag.Int("days", 365, "length of the generated range in days")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *rows < 1 || *customers < 1 || *days < 1 {
		logger.Error("rows, customers, and days must all be at least 1")
		os.Exit(1)
	}
	startDate, err := time.Parse(dateLayout, *start)
	if err != nil {
		logger.Error("invalid start date", "start", *start, "error", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create output directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		logger.Error("failed to create output file", "path", *out, "error", err)
		os.Exit(1)
	}

	begin := time.Now()
	n, err := generate(f, genConfig{
		rows:      *rows,
		seed:      *seed,
		customers: *customers,
		start:     startDate,
		days:      *days,
	})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		logger.Error("generation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("dataset written",
		"rows", n,
		"path", *out,
		"seed", *seed,
		"duration", time.Since(begin),
	)
}
