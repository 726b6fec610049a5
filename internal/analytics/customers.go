package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/imzeeshaan/grocery-analytics/internal/models"
	"github.com/imzeeshaan/grocery-analytics/internal/money"
)

// Frequency segment labels, split at the tertiles of transaction counts.
const (
	SegmentOccasional = "Occasional"
	SegmentRegular    = "Regular"
	SegmentFrequent   = "Frequent"
)

// CustomerActivity computes recency, frequency and value per customer. "Now"
// is the newest datetime in the collection, so the most recent customer has
// recency 0. A customer is at risk once recency exceeds the configured
// threshold and high value once lifetime spend exceeds the configured
// percentile of all lifetime spends. Rows come back highest spender first.
func CustomerActivity(txs []models.Transaction, opts Options) []models.CustomerActivity {
	type custAcc struct {
		first time.Time
		last  time.Time
		count int
		spend money.Amount
	}
	custs := make(map[string]*custAcc)
	var now time.Time
	for i := range txs {
		t := &txs[i]
		acc := custs[t.CustomerID]
		if acc == nil {
			acc = &custAcc{first: t.Datetime, last: t.Datetime}
			custs[t.CustomerID] = acc
		}
		if t.Datetime.Before(acc.first) {
			acc.first = t.Datetime
		}
		if t.Datetime.After(acc.last) {
			acc.last = t.Datetime
		}
		acc.count++
		acc.spend = acc.spend.Add(money.FromFloat(t.TotalPrice))
		if t.Datetime.After(now) {
			now = t.Datetime
		}
	}

	spends := make([]float64, 0, len(custs))
	freqs := make([]float64, 0, len(custs))
	for _, acc := range custs {
		spends = append(spends, acc.spend.Float64())
		freqs = append(freqs, float64(acc.count))
	}
	highValueAbove := percentile(spends, opts.HighValuePercentile)
	tertile1 := percentile(freqs, 100.0/3)
	tertile2 := percentile(freqs, 200.0/3)

	rows := make([]models.CustomerActivity, 0, len(custs))
	for id, acc := range custs {
		spend := acc.spend.Float64()
		recency := wholeDays(acc.last, now)
		monthsActive := float64(wholeDays(acc.first, acc.last)) / 30
		if monthsActive < 1 {
			monthsActive = 1
		}
		segment := SegmentOccasional
		switch {
		case float64(acc.count) > tertile2:
			segment = SegmentFrequent
		case float64(acc.count) > tertile1:
			segment = SegmentRegular
		}
		rows = append(rows, models.CustomerActivity{
			CustomerID:    id,
			RecencyDays:   recency,
			Frequency:     acc.count,
			LifetimeSpend: spend,
			AvgBasket:     safeDiv(spend, float64(acc.count)),
			CLV:           spend / monthsActive * 12,
			Segment:       segment,
			AtRisk:        recency > opts.ChurnRecencyThresholdDays,
			HighValue:     spend > highValueAbove,
		})
	}
	slices.SortFunc(rows, func(a, b models.CustomerActivity) int {
		if c := cmp.Compare(b.LifetimeSpend, a.LifetimeSpend); c != 0 {
			return c
		}
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})
	return rows
}

// churnTiers are the recency bands customers fall into, lowest risk first.
// A max of -1 means unbounded.
var churnTiers = []models.ChurnTier{
	{Tier: "Low", MinDays: 0, MaxDays: 30},
	{Tier: "Medium", MinDays: 31, MaxDays: 60},
	{Tier: "High", MinDays: 61, MaxDays: 90},
	{Tier: "Very High", MinDays: 91, MaxDays: -1},
}

// RetentionMetrics reports repeat behavior and churn risk: the share of
// customers who came back, the recency tier counts, and how many customers
// currently sit past the at-risk threshold.
func RetentionMetrics(txs []models.Transaction, opts Options) models.RetentionReport {
	customers := CustomerActivity(txs, opts)
	report := models.RetentionReport{
		Customers: len(customers),
		Tiers:     make([]models.ChurnTier, len(churnTiers)),
	}
	copy(report.Tiers, churnTiers)
	for _, c := range customers {
		if c.Frequency > 1 {
			report.RepeatCustomers++
		}
		if c.AtRisk {
			report.AtRisk++
		}
		for i := range report.Tiers {
			tier := &report.Tiers[i]
			if c.RecencyDays >= tier.MinDays && (tier.MaxDays < 0 || c.RecencyDays <= tier.MaxDays) {
				tier.Customers++
				break
			}
		}
	}
	report.RepeatRate = safeDiv(float64(report.RepeatCustomers), float64(report.Customers)) * 100
	return report
}

// LoyaltySplit compares loyalty members against non-members. Rows whose
// loyalty flag is unknown are left out of both segments; they still count in
// every other aggregation. Members come first when both segments exist.
func LoyaltySplit(txs []models.Transaction) []models.LoyaltySegment {
	type segAcc struct {
		count     int
		revenue   money.Amount
		customers map[string]struct{}
	}
	segs := make(map[bool]*segAcc)
	for i := range txs {
		t := &txs[i]
		if !t.HasLoyalty() {
			continue
		}
		acc := segs[t.LoyaltyMember]
		if acc == nil {
			acc = &segAcc{customers: make(map[string]struct{})}
			segs[t.LoyaltyMember] = acc
		}
		acc.count++
		acc.revenue = acc.revenue.Add(money.FromFloat(t.TotalPrice))
		acc.customers[t.CustomerID] = struct{}{}
	}

	rows := make([]models.LoyaltySegment, 0, len(segs))
	for _, member := range []bool{true, false} {
		acc := segs[member]
		if acc == nil {
			continue
		}
		revenue := acc.revenue.Float64()
		rows = append(rows, models.LoyaltySegment{
			Member:        member,
			Transactions:  acc.count,
			Revenue:       revenue,
			AvgSale:       safeDiv(revenue, float64(acc.count)),
			Customers:     len(acc.customers),
			TxPerCustomer: safeDiv(float64(acc.count), float64(len(acc.customers))),
		})
	}
	return rows
}
