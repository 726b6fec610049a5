package analytics

import (
	"cmp"
	"slices"

	"github.com/imzeeshaan/grocery-analytics/internal/models"
	"github.com/imzeeshaan/grocery-analytics/internal/money"
)

// CostBasis maps product_id to a known per-unit cost. It is external input;
// the transaction schema carries no cost field.
type CostBasis map[string]float64

// assumedCostFractions estimate unit cost as a fraction of unit price when a
// product has no cost entry. The grocery trade's usual category margins,
// inverted.
var assumedCostFractions = map[string]float64{
	"Produce":       0.75,
	"Dairy":         0.70,
	"Meat":          0.65,
	"Frozen Foods":  0.65,
	"Pantry":        0.60,
	"Bakery":        0.60,
	"Organic":       0.55,
	"Beverages":     0.55,
	"Snacks":        0.50,
	"Personal Care": 0.45,
}

// defaultCostFraction covers categories outside the known set.
const defaultCostFraction = 0.65

// MarginAnalysis computes margin amount and percentage per category and per
// day. Cost comes from the supplied basis; any product missing from it falls
// back to the category's assumed cost fraction and marks the affected rows
// (and the report) as approximate rather than guessing silently.
func MarginAnalysis(txs []models.Transaction, costs CostBasis) models.MarginReport {
	type marginAcc struct {
		revenue     money.Amount
		margin      money.Amount
		approximate bool
	}
	cats := make(map[string]*marginAcc)
	days := make(map[string]*marginAcc)
	var totalRevenue, totalMargin money.Amount
	approximate := false

	for i := range txs {
		t := &txs[i]
		unitCost, known := costs[t.ProductID]
		if !known {
			fraction, ok := assumedCostFractions[t.ProductCategory]
			if !ok {
				fraction = defaultCostFraction
			}
			unitCost = t.UnitPrice * fraction
		}

		revenue := money.FromFloat(t.TotalPrice)
		cost := money.FromFloat(unitCost).Mul(money.FromInt(int64(t.Quantity)))
		margin := revenue.Sub(cost)

		catAcc := cats[t.ProductCategory]
		if catAcc == nil {
			catAcc = &marginAcc{}
			cats[t.ProductCategory] = catAcc
		}
		dayAcc := days[dateKey(t.Datetime)]
		if dayAcc == nil {
			dayAcc = &marginAcc{}
			days[dateKey(t.Datetime)] = dayAcc
		}
		catAcc.revenue = catAcc.revenue.Add(revenue)
		catAcc.margin = catAcc.margin.Add(margin)
		dayAcc.revenue = dayAcc.revenue.Add(revenue)
		dayAcc.margin = dayAcc.margin.Add(margin)
		totalRevenue = totalRevenue.Add(revenue)
		totalMargin = totalMargin.Add(margin)
		if !known {
			catAcc.approximate = true
			approximate = true
		}
	}

	report := models.MarginReport{
		Categories:  make([]models.CategoryMargin, 0, len(cats)),
		Daily:       make([]models.DailyMargin, 0, len(days)),
		Approximate: approximate,
	}
	for category, acc := range cats {
		revenue := acc.revenue.Float64()
		margin := acc.margin.Float64()
		report.Categories = append(report.Categories, models.CategoryMargin{
			Category:      category,
			Revenue:       revenue,
			Margin:        margin,
			MarginPercent: safeDiv(margin, revenue) * 100,
			Approximate:   acc.approximate,
		})
	}
	slices.SortFunc(report.Categories, func(a, b models.CategoryMargin) int {
		if c := cmp.Compare(b.MarginPercent, a.MarginPercent); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	for date, acc := range days {
		revenue := acc.revenue.Float64()
		margin := acc.margin.Float64()
		report.Daily = append(report.Daily, models.DailyMargin{
			Date:          date,
			Revenue:       revenue,
			Margin:        margin,
			MarginPercent: safeDiv(margin, revenue) * 100,
		})
	}
	slices.SortFunc(report.Daily, func(a, b models.DailyMargin) int {
		return cmp.Compare(a.Date, b.Date)
	})
	report.OverallMarginPercent = safeDiv(totalMargin.Float64(), totalRevenue.Float64()) * 100
	return report
}
