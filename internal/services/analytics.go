package services

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/imzeeshaan/grocery-analytics/internal/analytics"
	"github.com/imzeeshaan/grocery-analytics/internal/models"
)

const (
	batchSize       = 10000
	maxParseWorkers = 10
	snapshotVersion = 1
)

// columns of the transaction CSV, in file order.
const (
	colTransactionID = iota
	colCustomerID
	colDatetime
	colStoreLocation
	colProductID
	colProductName
	colProductCategory
	colQuantity
	colUnitPrice
	colTotalPrice
	colPaymentMethod
	colLoyaltyMember
	colDiscountApplied
	columnCount
)

var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Analytics owns one analysis session: the immutable transaction collection,
// the loader's skip count, and the options every aggregation runs with.
// Tables are computed per request from the current collection; the only
// thing cached on disk is the parsed dataset itself, so a restart skips the
// CSV parse, never the math.
type Analytics struct {
	mu        sync.RWMutex
	data      []models.Transaction
	skipped   int
	loadedAt  time.Time
	source    string
	fromCache bool

	opts     analytics.Options
	costs    analytics.CostBasis
	cacheDir string
	useCache bool
	logger   *slog.Logger
}

func NewAnalytics() *Analytics {
	return &Analytics{
		opts:     analytics.DefaultOptions(),
		cacheDir: ".cache",
		useCache: true,
		logger:   slog.Default(),
	}
}

// SetOptions replaces the aggregation options. Intended for wiring at
// startup, before requests are served.
func (a *Analytics) SetOptions(opts analytics.Options) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.opts = opts
}

// Options returns the options aggregations currently run with.
func (a *Analytics) Options() analytics.Options {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.opts
}

// SetCostBasis supplies known per-unit product costs for margin analysis.
// Without one, margins fall back to category estimates and are flagged.
func (a *Analytics) SetCostBasis(costs analytics.CostBasis) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.costs = costs
}

// SetCache points the dataset cache at dir, or disables it entirely.
func (a *Analytics) SetCache(dir string, enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cacheDir = dir
	a.useCache = enabled
}

// SetData swaps in an in-memory collection, bypassing the loader.
func (a *Analytics) SetData(data []models.Transaction) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data = data
	a.skipped = 0
	a.loadedAt = time.Now()
	a.source = "memory"
	a.fromCache = false
}

// LoadFromCSV reads the whole transaction file into the session. Malformed
// records are skipped and counted, never fatal; a file yielding zero valid
// records is an error since the session would have nothing to analyze.
func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) error {
	start := time.Now()

	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("stat csv: %w", err)
	}

	if snap, ok := a.loadSnapshot(filename, info); ok {
		a.install(snap.Transactions, snap.Skipped, filename, true)
		a.logger.Info("loaded dataset from cache",
			"records", len(snap.Transactions),
			"skipped", snap.Skipped)
		return nil
	}

	a.logger.Info("parsing transaction csv", "filename", filename)
	data, skipped, err := a.streamParseCSV(ctx, filename)
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}
	a.install(data, skipped, filename, false)

	if err := a.saveSnapshot(filename, info, data, skipped); err != nil {
		a.logger.Warn("failed to save dataset cache", "error", err)
	}

	duration := time.Since(start)
	a.logger.Info("csv load complete",
		"records", len(data),
		"skipped", skipped,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(data))/duration.Seconds()))
	return nil
}

func (a *Analytics) install(data []models.Transaction, skipped int, source string, fromCache bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data = data
	a.skipped = skipped
	a.loadedAt = time.Now()
	a.source = source
	a.fromCache = fromCache
}

func (a *Analytics) streamParseCSV(ctx context.Context, filename string) ([]models.Transaction, int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024) // 10MB buffer

	// Skip the header row.
	if !scanner.Scan() {
		return nil, 0, fmt.Errorf("empty file")
	}

	var (
		data    []models.Transaction
		skipped int
		batch   = make([]string, 0, batchSize)
	)
	flush := func() error {
		parsed, bad, err := parseBatch(ctx, batch)
		if err != nil {
			return err
		}
		data = append(data, parsed...)
		skipped += bad
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}
		batch = append(batch, scanner.Text())
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, 0, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan error: %w", err)
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, 0, err
		}
	}

	if len(data) == 0 {
		return nil, 0, fmt.Errorf("no valid transaction records found (skipped %d)", skipped)
	}
	return data, skipped, nil
}

// parseBatch parses one batch of CSV lines concurrently, preserving line
// order in the output. Lines that fail validation are dropped and counted.
func parseBatch(ctx context.Context, lines []string) ([]models.Transaction, int, error) {
	parsed := make([]models.Transaction, len(lines))
	valid := make([]bool, len(lines))

	var wg errgroup.Group
	wg.SetLimit(maxParseWorkers)
	for i, line := range lines {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			tx, err := parseTransaction(strings.Split(line, ","))
			if err != nil {
				return nil // skip, counted below
			}
			parsed[i] = tx
			valid[i] = true
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, 0, err
	}

	out := make([]models.Transaction, 0, len(lines))
	skipped := 0
	for i := range parsed {
		if valid[i] {
			out = append(out, parsed[i])
		} else {
			skipped++
		}
	}
	return out, skipped, nil
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

// parseTransaction validates one CSV record against the transaction schema.
// Any missing required field, unparseable value, or out-of-range number
// rejects the whole record.
func parseTransaction(record []string) (models.Transaction, error) {
	if len(record) < columnCount {
		return models.Transaction{}, fmt.Errorf("expected %d columns, got %d", columnCount, len(record))
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	for _, col := range []int{
		colTransactionID, colCustomerID, colStoreLocation,
		colProductID, colProductName, colProductCategory, colPaymentMethod,
	} {
		if record[col] == "" {
			return models.Transaction{}, fmt.Errorf("missing required field at column %d", col)
		}
	}

	ts, err := parseDatetime(record[colDatetime])
	if err != nil {
		return models.Transaction{}, err
	}

	quantity, err := strconv.Atoi(record[colQuantity])
	if err != nil {
		return models.Transaction{}, fmt.Errorf("quantity: %w", err)
	}
	if quantity < 1 {
		return models.Transaction{}, fmt.Errorf("quantity %d below 1", quantity)
	}

	unitPrice, err := strconv.ParseFloat(record[colUnitPrice], 64)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("unit_price: %w", err)
	}
	if unitPrice < 0 {
		return models.Transaction{}, fmt.Errorf("negative unit_price %v", unitPrice)
	}

	totalPrice, err := strconv.ParseFloat(record[colTotalPrice], 64)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("total_price: %w", err)
	}
	if totalPrice < 0 {
		return models.Transaction{}, fmt.Errorf("negative total_price %v", totalPrice)
	}

	discount := 0.0
	if record[colDiscountApplied] != "" {
		discount, err = strconv.ParseFloat(record[colDiscountApplied], 64)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("discount_applied: %w", err)
		}
		if discount < 0 || discount > 1 {
			return models.Transaction{}, fmt.Errorf("discount_applied %v outside [0, 1]", discount)
		}
	}

	tx := models.Transaction{
		TransactionID:   record[colTransactionID],
		CustomerID:      record[colCustomerID],
		Datetime:        ts,
		StoreLocation:   record[colStoreLocation],
		ProductID:       record[colProductID],
		ProductName:     record[colProductName],
		ProductCategory: record[colProductCategory],
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		TotalPrice:      totalPrice,
		PaymentMethod:   record[colPaymentMethod],
		DiscountApplied: discount,
	}

	// A blank loyalty flag is tolerated; the row just stays out of
	// loyalty-specific slices. A malformed one rejects the record.
	if raw := record[colLoyaltyMember]; raw != "" {
		member, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return models.Transaction{}, fmt.Errorf("loyalty_member: %w", err)
		}
		tx.LoyaltyMember = member
		tx.LoyaltyKnown = true
	}
	return tx, nil
}

// snapshot returns the current collection and loader state. The slice is
// shared, never mutated: datasets are only ever swapped wholesale.
func (a *Analytics) snapshot() ([]models.Transaction, int, analytics.Options) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.data, a.skipped, a.opts
}

// Summary reports the headline numbers plus the loader's skip count.
func (a *Analytics) Summary() models.Summary {
	data, skipped, _ := a.snapshot()
	s := analytics.Summarize(data)
	s.SkippedRecords = skipped
	return s
}

// SalesTrend is the daily revenue series, optionally for a single store.
func (a *Analytics) SalesTrend(store string) []models.DailySales {
	data, _, _ := a.snapshot()
	return analytics.SalesTrend(data, store)
}

func (a *Analytics) CategoryPerformance() []models.CategorySales {
	data, _, _ := a.snapshot()
	return analytics.CategoryPerformance(data)
}

func (a *Analytics) PaymentDistribution() []models.PaymentShare {
	data, _, _ := a.snapshot()
	return analytics.PaymentDistribution(data)
}

func (a *Analytics) DiscountImpact() []models.DiscountBucket {
	data, _, opts := a.snapshot()
	return analytics.DiscountImpact(data, opts.DiscountBucketEdges)
}

// Customers returns per-customer activity rows, highest spender first.
// A limit <= 0 returns everyone.
func (a *Analytics) Customers(limit int) []models.CustomerActivity {
	data, _, opts := a.snapshot()
	rows := analytics.CustomerActivity(data, opts)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func (a *Analytics) Geography(dim analytics.GeoDimension) (models.GeoBreakdown, error) {
	data, _, _ := a.snapshot()
	return analytics.GeographicBreakdown(data, dim)
}

func (a *Analytics) Margins() models.MarginReport {
	a.mu.RLock()
	data, costs := a.data, a.costs
	a.mu.RUnlock()
	return analytics.MarginAnalysis(data, costs)
}

func (a *Analytics) Anomalies() []models.AnomalyFlag {
	data, _, opts := a.snapshot()
	return analytics.DetectAnomalies(data, opts)
}

func (a *Analytics) HourlyPattern() []models.HourlySales {
	data, _, _ := a.snapshot()
	return analytics.HourlyPattern(data)
}

func (a *Analytics) WeekdayPattern() []models.WeekdaySales {
	data, _, _ := a.snapshot()
	return analytics.WeekdayPattern(data)
}

func (a *Analytics) SeasonalTrends() []models.MonthlySales {
	data, _, _ := a.snapshot()
	return analytics.SeasonalTrends(data)
}

func (a *Analytics) MovingAverages() []models.TrendPoint {
	data, _, _ := a.snapshot()
	return analytics.MovingAverages(data)
}

func (a *Analytics) LoyaltySplit() []models.LoyaltySegment {
	data, _, _ := a.snapshot()
	return analytics.LoyaltySplit(data)
}

func (a *Analytics) Baskets() models.BasketReport {
	data, _, _ := a.snapshot()
	return analytics.BasketAnalysis(data)
}

// TopProducts ranks products by revenue. A limit <= 0 returns all of them.
func (a *Analytics) TopProducts(limit int) []models.ProductSales {
	data, _, _ := a.snapshot()
	return analytics.TopProducts(data, limit)
}

func (a *Analytics) Inventory() []models.InventoryRow {
	data, _, _ := a.snapshot()
	return analytics.InventoryInsights(data)
}

func (a *Analytics) StorePerformance() []models.StoreSales {
	data, _, _ := a.snapshot()
	return analytics.StorePerformance(data)
}

func (a *Analytics) Retention() models.RetentionReport {
	data, _, opts := a.snapshot()
	return analytics.RetentionMetrics(data, opts)
}

// Skipped reports how many records the loader rejected.
func (a *Analytics) Skipped() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.skipped
}

// Records reports how many transactions are loaded.
func (a *Analytics) Records() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.data)
}

// FromCache reports whether the current collection came from the dataset
// cache rather than a CSV parse.
func (a *Analytics) FromCache() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.fromCache
}

// Stats summarizes the session for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	data, skipped, loadedAt, source, fromCache := a.data, a.skipped, a.loadedAt, a.source, a.fromCache
	a.mu.RUnlock()

	s := analytics.Summarize(data)
	return map[string]any{
		"record_count":    len(data),
		"skipped_records": skipped,
		"loaded_at":       loadedAt,
		"source":          source,
		"from_cache":      fromCache,
		"customers":       s.UniqueCustomers,
		"products":        s.UniqueProducts,
		"first_date":      s.FirstDate,
		"last_date":       s.LastDate,
	}
}

// Cache management. The snapshot is keyed to the source file's size and
// modification time; any change to the file invalidates it.

func (a *Analytics) snapshotPath(csvPath string) string {
	return fmt.Sprintf("%s/%s_v%d.gob", a.cacheDir, strings.ReplaceAll(csvPath, "/", "_"), snapshotVersion)
}

func (a *Analytics) saveSnapshot(csvPath string, info os.FileInfo, data []models.Transaction, skipped int) error {
	if !a.useCache {
		return nil
	}
	if err := os.MkdirAll(a.cacheDir, 0755); err != nil {
		return err
	}
	file, err := os.Create(a.snapshotPath(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	snap := models.DatasetSnapshot{
		Version:      snapshotVersion,
		SourceSize:   info.Size(),
		SourceModNS:  info.ModTime().UnixNano(),
		Skipped:      skipped,
		Transactions: data,
	}
	return gob.NewEncoder(file).Encode(&snap)
}

func (a *Analytics) loadSnapshot(csvPath string, info os.FileInfo) (models.DatasetSnapshot, bool) {
	if !a.useCache {
		return models.DatasetSnapshot{}, false
	}
	file, err := os.Open(a.snapshotPath(csvPath))
	if err != nil {
		return models.DatasetSnapshot{}, false
	}
	defer file.Close()

	var snap models.DatasetSnapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return models.DatasetSnapshot{}, false
	}
	if snap.Version != snapshotVersion ||
		snap.SourceSize != info.Size() ||
		snap.SourceModNS != info.ModTime().UnixNano() {
		return models.DatasetSnapshot{}, false
	}
	return snap, true
}
