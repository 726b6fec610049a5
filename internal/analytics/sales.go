package analytics

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/imzeeshaan/grocery-analytics/internal/models"
	"github.com/imzeeshaan/grocery-analytics/internal/money"
)

// SalesTrend groups transactions by calendar date, summing revenue and
// counting transactions. A non-empty store filters to that store_location;
// an empty store covers every store. Rows come back in date order.
func SalesTrend(txs []models.Transaction, store string) []models.DailySales {
	type dayAcc struct {
		revenue money.Amount
		count   int
	}
	days := make(map[string]*dayAcc)
	for i := range txs {
		t := &txs[i]
		if store != "" && t.StoreLocation != store {
			continue
		}
		key := dateKey(t.Datetime)
		acc := days[key]
		if acc == nil {
			acc = &dayAcc{}
			days[key] = acc
		}
		acc.revenue = acc.revenue.Add(money.FromFloat(t.TotalPrice))
		acc.count++
	}

	rows := make([]models.DailySales, 0, len(days))
	for date, acc := range days {
		revenue := acc.revenue.Float64()
		rows = append(rows, models.DailySales{
			Date:         date,
			Store:        store,
			Revenue:      revenue,
			Transactions: acc.count,
			AvgSale:      safeDiv(revenue, float64(acc.count)),
		})
	}
	slices.SortFunc(rows, func(a, b models.DailySales) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return rows
}

// Summarize computes the headline totals for the whole collection. The
// skipped-record count belongs to the loader and is filled in by the caller.
func Summarize(txs []models.Transaction) models.Summary {
	if len(txs) == 0 {
		return models.Summary{}
	}
	var revenue money.Amount
	customers := make(map[string]struct{})
	products := make(map[string]struct{})
	first, last := txs[0].Datetime, txs[0].Datetime
	for i := range txs {
		t := &txs[i]
		revenue = revenue.Add(money.FromFloat(t.TotalPrice))
		customers[t.CustomerID] = struct{}{}
		products[t.ProductID] = struct{}{}
		if t.Datetime.Before(first) {
			first = t.Datetime
		}
		if t.Datetime.After(last) {
			last = t.Datetime
		}
	}
	total := revenue.Float64()
	return models.Summary{
		TotalRevenue:    total,
		Transactions:    len(txs),
		UniqueCustomers: len(customers),
		UniqueProducts:  len(products),
		AvgSale:         safeDiv(total, float64(len(txs))),
		FirstDate:       dateKey(first),
		LastDate:        dateKey(last),
	}
}

// HourlyPattern reports activity per hour of day. Non-empty input always
// yields all 24 hours so quiet hours chart as zeros.
func HourlyPattern(txs []models.Transaction) []models.HourlySales {
	if len(txs) == 0 {
		return []models.HourlySales{}
	}
	var revenue [24]money.Amount
	var counts [24]int
	for i := range txs {
		h := txs[i].Datetime.Hour()
		revenue[h] = revenue[h].Add(money.FromFloat(txs[i].TotalPrice))
		counts[h]++
	}
	rows := make([]models.HourlySales, 24)
	for h := 0; h < 24; h++ {
		rev := revenue[h].Float64()
		rows[h] = models.HourlySales{
			Hour:         h,
			Transactions: counts[h],
			Revenue:      rev,
			AvgSale:      safeDiv(rev, float64(counts[h])),
		}
	}
	return rows
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayPattern reports activity per day of week, Monday first. Non-empty
// input always yields all seven days.
func WeekdayPattern(txs []models.Transaction) []models.WeekdaySales {
	if len(txs) == 0 {
		return []models.WeekdaySales{}
	}
	var revenue [7]money.Amount
	var counts [7]int
	for i := range txs {
		// time.Weekday counts from Sunday; shift so Monday is 0.
		d := (int(txs[i].Datetime.Weekday()) + 6) % 7
		revenue[d] = revenue[d].Add(money.FromFloat(txs[i].TotalPrice))
		counts[d]++
	}
	rows := make([]models.WeekdaySales, 7)
	for d := 0; d < 7; d++ {
		rev := revenue[d].Float64()
		rows[d] = models.WeekdaySales{
			Weekday:      weekdayNames[d],
			Transactions: counts[d],
			Revenue:      rev,
			AvgSale:      safeDiv(rev, float64(counts[d])),
		}
	}
	return rows
}

func seasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Spring"
	case time.June, time.July, time.August:
		return "Summer"
	default:
		return "Fall"
	}
}

// SeasonalTrends groups revenue by calendar month, labeling each month with
// its season. Rows come back in month order.
func SeasonalTrends(txs []models.Transaction) []models.MonthlySales {
	type monthAcc struct {
		revenue money.Amount
		count   int
		season  string
	}
	months := make(map[string]*monthAcc)
	for i := range txs {
		t := &txs[i]
		key := t.Datetime.Format("2006-01")
		acc := months[key]
		if acc == nil {
			acc = &monthAcc{season: seasonOf(t.Datetime.Month())}
			months[key] = acc
		}
		acc.revenue = acc.revenue.Add(money.FromFloat(t.TotalPrice))
		acc.count++
	}

	rows := make([]models.MonthlySales, 0, len(months))
	for month, acc := range months {
		rows = append(rows, models.MonthlySales{
			Month:        month,
			Season:       acc.season,
			Revenue:      acc.revenue.Float64(),
			Transactions: acc.count,
		})
	}
	slices.SortFunc(rows, func(a, b models.MonthlySales) int {
		return cmp.Compare(a.Month, b.Month)
	})
	return rows
}

// MovingAverages builds the daily demand series with trailing 7-day and
// 30-day moving averages of quantity and revenue. Days with no sales do not
// appear; the window shortens to the available history at the start.
func MovingAverages(txs []models.Transaction) []models.TrendPoint {
	type dayAcc struct {
		quantity int
		revenue  money.Amount
	}
	days := make(map[string]*dayAcc)
	for i := range txs {
		t := &txs[i]
		key := dateKey(t.Datetime)
		acc := days[key]
		if acc == nil {
			acc = &dayAcc{}
			days[key] = acc
		}
		acc.quantity += t.Quantity
		acc.revenue = acc.revenue.Add(money.FromFloat(t.TotalPrice))
	}

	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	slices.Sort(dates)

	rows := make([]models.TrendPoint, len(dates))
	for i, date := range dates {
		acc := days[date]
		rows[i] = models.TrendPoint{
			Date:     date,
			Quantity: acc.quantity,
			Revenue:  acc.revenue.Float64(),
		}
	}
	trailing := func(i, window int, value func(models.TrendPoint) float64) float64 {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		for j := start; j <= i; j++ {
			sum += value(rows[j])
		}
		return sum / float64(i-start+1)
	}
	for i := range rows {
		rows[i].QuantityMA7 = trailing(i, 7, func(p models.TrendPoint) float64 { return float64(p.Quantity) })
		rows[i].QuantityMA30 = trailing(i, 30, func(p models.TrendPoint) float64 { return float64(p.Quantity) })
		rows[i].RevenueMA7 = trailing(i, 7, func(p models.TrendPoint) float64 { return p.Revenue })
		rows[i].RevenueMA30 = trailing(i, 30, func(p models.TrendPoint) float64 { return p.Revenue })
	}
	return rows
}

// RegionOf classifies a store location the way the dashboard groups stores:
// the downtown store is urban, the suburb stores suburban.
func RegionOf(store string) string {
	switch {
	case store == "Downtown":
		return "Urban"
	case strings.Contains(store, "Suburb"):
		return "Suburban"
	default:
		return "Other"
	}
}

// StorePerformance ranks stores by revenue with customer reach and average
// sale, highest revenue first.
func StorePerformance(txs []models.Transaction) []models.StoreSales {
	type storeAcc struct {
		revenue   money.Amount
		count     int
		customers map[string]struct{}
	}
	stores := make(map[string]*storeAcc)
	for i := range txs {
		t := &txs[i]
		acc := stores[t.StoreLocation]
		if acc == nil {
			acc = &storeAcc{customers: make(map[string]struct{})}
			stores[t.StoreLocation] = acc
		}
		acc.revenue = acc.revenue.Add(money.FromFloat(t.TotalPrice))
		acc.count++
		acc.customers[t.CustomerID] = struct{}{}
	}

	rows := make([]models.StoreSales, 0, len(stores))
	for store, acc := range stores {
		revenue := acc.revenue.Float64()
		rows = append(rows, models.StoreSales{
			Store:        store,
			Region:       RegionOf(store),
			Revenue:      revenue,
			Transactions: acc.count,
			Customers:    len(acc.customers),
			AvgSale:      safeDiv(revenue, float64(acc.count)),
		})
	}
	slices.SortFunc(rows, func(a, b models.StoreSales) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Store, b.Store)
	})
	return rows
}
