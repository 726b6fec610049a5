package analytics

import (
	"cmp"
	"slices"

	"github.com/imzeeshaan/grocery-analytics/internal/models"
	"github.com/imzeeshaan/grocery-analytics/internal/money"
)

// CategoryPerformance sums revenue and quantity per product category, ranked
// by revenue descending with ties broken by category name so output order is
// stable across runs.
func CategoryPerformance(txs []models.Transaction) []models.CategorySales {
	type catAcc struct {
		revenue  money.Amount
		quantity int
		count    int
	}
	cats := make(map[string]*catAcc)
	for i := range txs {
		t := &txs[i]
		acc := cats[t.ProductCategory]
		if acc == nil {
			acc = &catAcc{}
			cats[t.ProductCategory] = acc
		}
		acc.revenue = acc.revenue.Add(money.FromFloat(t.TotalPrice))
		acc.quantity += t.Quantity
		acc.count++
	}

	rows := make([]models.CategorySales, 0, len(cats))
	for category, acc := range cats {
		revenue := acc.revenue.Float64()
		rows = append(rows, models.CategorySales{
			Category:     category,
			Revenue:      revenue,
			Quantity:     acc.quantity,
			Transactions: acc.count,
			AvgItemPrice: safeDiv(revenue, float64(acc.quantity)),
		})
	}
	slices.SortFunc(rows, func(a, b models.CategorySales) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return rows
}

const highDemandShare = 30.0

// TopProducts ranks products by revenue. TxShare is a product's share of all
// transactions as a percentage; products at or above 30% are flagged high
// demand. A limit <= 0 returns every product.
func TopProducts(txs []models.Transaction, limit int) []models.ProductSales {
	type prodAcc struct {
		name     string
		category string
		revenue  money.Amount
		quantity int
		count    int
	}
	prods := make(map[string]*prodAcc)
	for i := range txs {
		t := &txs[i]
		acc := prods[t.ProductID]
		if acc == nil {
			acc = &prodAcc{name: t.ProductName, category: t.ProductCategory}
			prods[t.ProductID] = acc
		}
		acc.revenue = acc.revenue.Add(money.FromFloat(t.TotalPrice))
		acc.quantity += t.Quantity
		acc.count++
	}

	total := float64(len(txs))
	rows := make([]models.ProductSales, 0, len(prods))
	for id, acc := range prods {
		share := safeDiv(float64(acc.count), total) * 100
		rows = append(rows, models.ProductSales{
			ProductID:    id,
			ProductName:  acc.name,
			Category:     acc.category,
			Revenue:      acc.revenue.Float64(),
			Quantity:     acc.quantity,
			Transactions: acc.count,
			TxShare:      share,
			HighDemand:   share >= highDemandShare,
		})
	}
	slices.SortFunc(rows, func(a, b models.ProductSales) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductName, b.ProductName)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// InventoryInsights projects sell-through per product from units sold over
// the collection's day span. Products moving less than one unit a day are
// flagged slow movers. Rows come back fastest-moving first.
func InventoryInsights(txs []models.Transaction) []models.InventoryRow {
	if len(txs) == 0 {
		return []models.InventoryRow{}
	}
	type prodAcc struct {
		name     string
		category string
		units    int
	}
	prods := make(map[string]*prodAcc)
	first, last := txs[0].Datetime, txs[0].Datetime
	for i := range txs {
		t := &txs[i]
		acc := prods[t.ProductID]
		if acc == nil {
			acc = &prodAcc{name: t.ProductName, category: t.ProductCategory}
			prods[t.ProductID] = acc
		}
		acc.units += t.Quantity
		if t.Datetime.Before(first) {
			first = t.Datetime
		}
		if t.Datetime.After(last) {
			last = t.Datetime
		}
	}
	spanDays := wholeDays(first, last)
	if spanDays < 1 {
		spanDays = 1
	}

	rows := make([]models.InventoryRow, 0, len(prods))
	for id, acc := range prods {
		rate := float64(acc.units) / float64(spanDays)
		rows = append(rows, models.InventoryRow{
			ProductID:       id,
			ProductName:     acc.name,
			Category:        acc.category,
			UnitsSold:       acc.units,
			DailySalesRate:  rate,
			MonthlyTurnover: rate * 30,
			SlowMover:       rate < 1,
		})
	}
	slices.SortFunc(rows, func(a, b models.InventoryRow) int {
		if c := cmp.Compare(b.DailySalesRate, a.DailySalesRate); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductName, b.ProductName)
	})
	return rows
}

// BasketAnalysis sums quantity per transaction_id and reports the average
// basket size plus a histogram of basket sizes in ascending size order.
func BasketAnalysis(txs []models.Transaction) models.BasketReport {
	baskets := make(map[string]int)
	totalItems := 0
	for i := range txs {
		baskets[txs[i].TransactionID] += txs[i].Quantity
		totalItems += txs[i].Quantity
	}
	sizes := make(map[int]int)
	for _, items := range baskets {
		sizes[items]++
	}

	bins := make([]models.BasketBin, 0, len(sizes))
	for items, count := range sizes {
		bins = append(bins, models.BasketBin{Items: items, Baskets: count})
	}
	slices.SortFunc(bins, func(a, b models.BasketBin) int {
		return cmp.Compare(a.Items, b.Items)
	})
	return models.BasketReport{
		AvgBasketSize: safeDiv(float64(totalItems), float64(len(baskets))),
		Baskets:       len(baskets),
		Histogram:     bins,
	}
}
