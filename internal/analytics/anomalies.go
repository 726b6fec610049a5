package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/imzeeshaan/grocery-analytics/internal/models"
)

// DetectAnomalies flags transactions tripping any of three rules: a sale
// total beyond mean + multiplier·stddev of all totals, a quantity above the
// configured cap, or a unit price further from the product's own mean unit
// price than multiplier·(product stddev). A product whose prices never vary
// gets a stddev of 1 so a genuine jump still registers. Each flagged
// transaction appears once with every reason it tripped, ordered by datetime
// then transaction_id. The scan has no hidden state: re-running it over the
// same collection flags the same set.
func DetectAnomalies(txs []models.Transaction, opts Options) []models.AnomalyFlag {
	flags := make([]models.AnomalyFlag, 0)
	if len(txs) == 0 {
		return flags
	}

	totals := make([]float64, len(txs))
	for i := range txs {
		totals[i] = txs[i].TotalPrice
	}
	mean, stddev := meanStddev(totals)
	totalLimit := mean + opts.AnomalyPriceStddevMult*stddev

	prices := make(map[string][]float64)
	for i := range txs {
		t := &txs[i]
		prices[t.ProductID] = append(prices[t.ProductID], t.UnitPrice)
	}
	type priceStats struct {
		mean   float64
		stddev float64
	}
	productPrices := make(map[string]priceStats, len(prices))
	for id, vals := range prices {
		m, s := meanStddev(vals)
		if s == 0 {
			s = 1
		}
		productPrices[id] = priceStats{mean: m, stddev: s}
	}

	for i := range txs {
		t := &txs[i]
		var reasons []string
		if stddev > 0 && t.TotalPrice > totalLimit {
			reasons = append(reasons, models.ReasonTotalPriceOutlier)
		}
		if t.Quantity > opts.AnomalyQuantityCap {
			reasons = append(reasons, models.ReasonQuantityCap)
		}
		ps := productPrices[t.ProductID]
		if math.Abs(t.UnitPrice-ps.mean) > opts.AnomalyPriceStddevMult*ps.stddev {
			reasons = append(reasons, models.ReasonUnitPriceDeviation)
		}
		if len(reasons) == 0 {
			continue
		}
		flags = append(flags, models.AnomalyFlag{
			TransactionID: t.TransactionID,
			Datetime:      t.Datetime.Format("2006-01-02 15:04:05"),
			Store:         t.StoreLocation,
			ProductName:   t.ProductName,
			Quantity:      t.Quantity,
			UnitPrice:     t.UnitPrice,
			TotalPrice:    t.TotalPrice,
			Reasons:       reasons,
		})
	}
	slices.SortFunc(flags, func(a, b models.AnomalyFlag) int {
		if c := cmp.Compare(a.Datetime, b.Datetime); c != 0 {
			return c
		}
		return cmp.Compare(a.TransactionID, b.TransactionID)
	})
	return flags
}
