package analytics

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/imzeeshaan/grocery-analytics/internal/models"
	"github.com/imzeeshaan/grocery-analytics/internal/money"
)

// PaymentDistribution counts transactions per payment method with each
// method's percentage of the whole. With no transactions there is nothing to
// divide: the table is empty rather than a zero division. Most used method
// first; ties break on method name.
func PaymentDistribution(txs []models.Transaction) []models.PaymentShare {
	type payAcc struct {
		count   int
		revenue money.Amount
	}
	methods := make(map[string]*payAcc)
	for i := range txs {
		t := &txs[i]
		acc := methods[t.PaymentMethod]
		if acc == nil {
			acc = &payAcc{}
			methods[t.PaymentMethod] = acc
		}
		acc.count++
		acc.revenue = acc.revenue.Add(money.FromFloat(t.TotalPrice))
	}

	total := float64(len(txs))
	rows := make([]models.PaymentShare, 0, len(methods))
	for method, acc := range methods {
		rows = append(rows, models.PaymentShare{
			Method:       method,
			Transactions: acc.count,
			Revenue:      acc.revenue.Float64(),
			Percentage:   safeDiv(float64(acc.count), total) * 100,
		})
	}
	slices.SortFunc(rows, func(a, b models.PaymentShare) int {
		if c := cmp.Compare(b.Transactions, a.Transactions); c != 0 {
			return c
		}
		return cmp.Compare(a.Method, b.Method)
	})
	return rows
}

// DiscountImpact buckets transactions by discount_applied and averages the
// sale total and quantity per bucket. The first edge is its own exact-match
// bucket (the undiscounted case); the remaining buckets are half-open ranges
// (low, high]. Values outside the edge span clamp to the nearest bucket so
// assignment stays total. Fewer than two edges falls back to the defaults.
// Every bucket is reported, including empty ones, in edge order; an empty
// collection produces an empty table.
func DiscountImpact(txs []models.Transaction, edges []float64) []models.DiscountBucket {
	if len(txs) == 0 {
		return []models.DiscountBucket{}
	}
	if len(edges) < 2 {
		edges = DefaultOptions().DiscountBucketEdges
	}

	type bucketAcc struct {
		count    int
		total    money.Amount
		quantity int
	}
	// Bucket 0 is the exact edges[0] match; bucket i covers (edges[i-1], edges[i]].
	accs := make([]bucketAcc, len(edges))
	assign := func(d float64) int {
		if d <= edges[0] {
			return 0
		}
		for i := 1; i < len(edges); i++ {
			if d <= edges[i] {
				return i
			}
		}
		return len(edges) - 1
	}
	for i := range txs {
		t := &txs[i]
		b := assign(t.DiscountApplied)
		accs[b].count++
		accs[b].total = accs[b].total.Add(money.FromFloat(t.TotalPrice))
		accs[b].quantity += t.Quantity
	}

	totalTx := float64(len(txs))
	rows := make([]models.DiscountBucket, len(edges))
	for i := range edges {
		label := strconv.FormatFloat(edges[i], 'g', -1, 64)
		low := edges[i]
		if i > 0 {
			label = "(" + strconv.FormatFloat(edges[i-1], 'g', -1, 64) + ", " + strconv.FormatFloat(edges[i], 'g', -1, 64) + "]"
			low = edges[i-1]
		}
		acc := accs[i]
		rows[i] = models.DiscountBucket{
			Label:        label,
			Low:          low,
			High:         edges[i],
			Transactions: acc.count,
			AvgTotal:     safeDiv(acc.total.Float64(), float64(acc.count)),
			AvgQuantity:  safeDiv(float64(acc.quantity), float64(acc.count)),
			Share:        safeDiv(float64(acc.count), totalTx) * 100,
		}
	}
	return rows
}
