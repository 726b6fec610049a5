package analytics

import (
	"fmt"
	"slices"

	"github.com/imzeeshaan/grocery-analytics/internal/models"
	"github.com/imzeeshaan/grocery-analytics/internal/money"
)

// GeoDimension selects the column axis of the geographic matrix.
type GeoDimension string

const (
	GeoByCategory GeoDimension = "category"
	GeoByPayment  GeoDimension = "payment"
)

// GeographicBreakdown cross-tabulates stores against product categories or
// payment methods, each cell holding summed revenue. Stores and columns are
// sorted ascending; every row carries all columns (zero when the store never
// saw that value) plus a row total.
func GeographicBreakdown(txs []models.Transaction, dim GeoDimension) (models.GeoBreakdown, error) {
	var column func(*models.Transaction) string
	switch dim {
	case GeoByCategory:
		column = func(t *models.Transaction) string { return t.ProductCategory }
	case GeoByPayment:
		column = func(t *models.Transaction) string { return t.PaymentMethod }
	default:
		return models.GeoBreakdown{}, fmt.Errorf("unknown geographic dimension %q", dim)
	}

	type storeAcc struct {
		cells map[string]money.Amount
		total money.Amount
	}
	stores := make(map[string]*storeAcc)
	columns := make(map[string]struct{})
	for i := range txs {
		t := &txs[i]
		acc := stores[t.StoreLocation]
		if acc == nil {
			acc = &storeAcc{cells: make(map[string]money.Amount)}
			stores[t.StoreLocation] = acc
		}
		col := column(t)
		columns[col] = struct{}{}
		amount := money.FromFloat(t.TotalPrice)
		acc.cells[col] = acc.cells[col].Add(amount)
		acc.total = acc.total.Add(amount)
	}

	colNames := make([]string, 0, len(columns))
	for col := range columns {
		colNames = append(colNames, col)
	}
	slices.Sort(colNames)

	storeNames := make([]string, 0, len(stores))
	for store := range stores {
		storeNames = append(storeNames, store)
	}
	slices.Sort(storeNames)

	rows := make([]models.GeoRow, 0, len(storeNames))
	for _, store := range storeNames {
		acc := stores[store]
		cells := make(map[string]float64, len(colNames))
		for _, col := range colNames {
			cells[col] = acc.cells[col].Float64()
		}
		rows = append(rows, models.GeoRow{
			Store:  store,
			Cells:  cells,
			Total:  acc.total.Float64(),
			Region: RegionOf(store),
		})
	}
	return models.GeoBreakdown{
		Dimension: string(dim),
		Columns:   colNames,
		Rows:      rows,
	}, nil
}
