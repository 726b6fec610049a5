package models

import "time"

// Transaction is one purchase line item. The collection loaded at session
// start is read-only input; every derived table is recomputed from it.
type Transaction struct {
	TransactionID   string
	Datetime        time.Time
	StoreLocation   string
	CustomerID      string
	ProductID       string
	ProductName     string
	ProductCategory string
	Quantity        int
	UnitPrice       float64
	TotalPrice      float64
	PaymentMethod   string
	LoyaltyMember   bool
	// LoyaltyKnown is false when the source record had no loyalty value.
	// Such rows stay in the collection but are excluded from
	// loyalty-specific slices. Two bools instead of *bool keeps the
	// record gob-safe for the load cache.
	LoyaltyKnown    bool
	DiscountApplied float64
}

// HasLoyalty reports whether the loyalty flag was present on the source
// record.
func (t Transaction) HasLoyalty() bool {
	return t.LoyaltyKnown
}

// DailySales is one row of the sales trend series.
type DailySales struct {
	Date         string  `json:"date"`
	Store        string  `json:"store,omitempty"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
	AvgSale      float64 `json:"avg_sale"`
}

// CategorySales ranks a product category by summed revenue.
type CategorySales struct {
	Category     string  `json:"category"`
	Revenue      float64 `json:"revenue"`
	Quantity     int     `json:"quantity"`
	Transactions int     `json:"transactions"`
	AvgItemPrice float64 `json:"avg_item_price"`
}

// PaymentShare is one payment method's slice of all transactions.
type PaymentShare struct {
	Method       string  `json:"method"`
	Transactions int     `json:"transactions"`
	Revenue      float64 `json:"revenue"`
	Percentage   float64 `json:"percentage"`
}

// DiscountBucket aggregates transactions whose discount falls in one range.
// Label "0" is the exact no-discount bucket; the rest are half-open ranges
// like "(0.1, 0.2]".
type DiscountBucket struct {
	Label        string  `json:"label"`
	Low          float64 `json:"low"`
	High         float64 `json:"high"`
	Transactions int     `json:"transactions"`
	AvgTotal     float64 `json:"avg_total"`
	AvgQuantity  float64 `json:"avg_quantity"`
	Share        float64 `json:"share"`
}

// CustomerActivity is the per-customer recency/frequency/value row.
type CustomerActivity struct {
	CustomerID    string  `json:"customer_id"`
	RecencyDays   int     `json:"recency_days"`
	Frequency     int     `json:"frequency"`
	LifetimeSpend float64 `json:"lifetime_spend"`
	AvgBasket     float64 `json:"avg_basket"`
	CLV           float64 `json:"clv"`
	Segment       string  `json:"segment"`
	AtRisk        bool    `json:"at_risk"`
	HighValue     bool    `json:"high_value"`
}

// GeoRow is one store's revenue split across the requested dimension.
type GeoRow struct {
	Store  string             `json:"store"`
	Cells  map[string]float64 `json:"cells"`
	Total  float64            `json:"total"`
	Region string             `json:"region"`
}

// GeoBreakdown is the store-by-dimension revenue matrix.
type GeoBreakdown struct {
	Dimension string   `json:"dimension"`
	Columns   []string `json:"columns"`
	Rows      []GeoRow `json:"rows"`
}

// CategoryMargin is the margin picture for one product category.
type CategoryMargin struct {
	Category      string  `json:"category"`
	Revenue       float64 `json:"revenue"`
	Margin        float64 `json:"margin"`
	MarginPercent float64 `json:"margin_percent"`
	Approximate   bool    `json:"approximate"`
}

// DailyMargin is the margin picture for one calendar date.
type DailyMargin struct {
	Date          string  `json:"date"`
	Revenue       float64 `json:"revenue"`
	Margin        float64 `json:"margin"`
	MarginPercent float64 `json:"margin_percent"`
}

// MarginReport combines the category and daily margin tables.
type MarginReport struct {
	Categories           []CategoryMargin `json:"categories"`
	Daily                []DailyMargin    `json:"daily"`
	OverallMarginPercent float64          `json:"overall_margin_percent"`
	Approximate          bool             `json:"approximate"`
}

// Anomaly reason codes.
const (
	ReasonTotalPriceOutlier  = "total_price_outlier"
	ReasonQuantityCap        = "quantity_cap_exceeded"
	ReasonUnitPriceDeviation = "unit_price_deviation"
)

// AnomalyFlag is one flagged transaction with every rule it tripped.
type AnomalyFlag struct {
	TransactionID string   `json:"transaction_id"`
	Datetime      string   `json:"datetime"`
	Store         string   `json:"store"`
	ProductName   string   `json:"product_name"`
	Quantity      int      `json:"quantity"`
	UnitPrice     float64  `json:"unit_price"`
	TotalPrice    float64  `json:"total_price"`
	Reasons       []string `json:"reasons"`
}

// Summary is the headline card of the dashboard.
type Summary struct {
	TotalRevenue    float64 `json:"total_revenue"`
	Transactions    int     `json:"transactions"`
	UniqueCustomers int     `json:"unique_customers"`
	UniqueProducts  int     `json:"unique_products"`
	AvgSale         float64 `json:"avg_sale"`
	FirstDate       string  `json:"first_date,omitempty"`
	LastDate        string  `json:"last_date,omitempty"`
	SkippedRecords  int     `json:"skipped_records"`
}

// HourlySales is one hour-of-day row; all 24 hours are always reported.
type HourlySales struct {
	Hour         int     `json:"hour"`
	Transactions int     `json:"transactions"`
	Revenue      float64 `json:"revenue"`
	AvgSale      float64 `json:"avg_sale"`
}

// WeekdaySales is one day-of-week row, Monday first.
type WeekdaySales struct {
	Weekday      string  `json:"weekday"`
	Transactions int     `json:"transactions"`
	Revenue      float64 `json:"revenue"`
	AvgSale      float64 `json:"avg_sale"`
}

// MonthlySales is one calendar-month row with its season label.
type MonthlySales struct {
	Month        string  `json:"month"`
	Season       string  `json:"season"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
}

// TrendPoint is one day of the demand series with trailing moving averages.
type TrendPoint struct {
	Date         string  `json:"date"`
	Quantity     int     `json:"quantity"`
	Revenue      float64 `json:"revenue"`
	QuantityMA7  float64 `json:"quantity_ma7"`
	QuantityMA30 float64 `json:"quantity_ma30"`
	RevenueMA7   float64 `json:"revenue_ma7"`
	RevenueMA30  float64 `json:"revenue_ma30"`
}

// LoyaltySegment compares members against non-members. Rows with an unknown
// loyalty flag are excluded from both segments.
type LoyaltySegment struct {
	Member        bool    `json:"member"`
	Transactions  int     `json:"transactions"`
	Revenue       float64 `json:"revenue"`
	AvgSale       float64 `json:"avg_sale"`
	Customers     int     `json:"customers"`
	TxPerCustomer float64 `json:"tx_per_customer"`
}

// BasketReport summarizes items-per-transaction.
type BasketReport struct {
	AvgBasketSize float64     `json:"avg_basket_size"`
	Baskets       int         `json:"baskets"`
	Histogram     []BasketBin `json:"histogram"`
}

// BasketBin counts baskets holding exactly Items units.
type BasketBin struct {
	Items   int `json:"items"`
	Baskets int `json:"baskets"`
}

// ProductSales ranks one product by revenue with its demand share.
type ProductSales struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Category     string  `json:"category"`
	Revenue      float64 `json:"revenue"`
	Quantity     int     `json:"quantity"`
	Transactions int     `json:"transactions"`
	TxShare      float64 `json:"tx_share"`
	HighDemand   bool    `json:"high_demand"`
}

// InventoryRow projects sell-through for one product.
type InventoryRow struct {
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name"`
	Category        string  `json:"category"`
	UnitsSold       int     `json:"units_sold"`
	DailySalesRate  float64 `json:"daily_sales_rate"`
	MonthlyTurnover float64 `json:"monthly_turnover"`
	SlowMover       bool    `json:"slow_mover"`
}

// StoreSales is one store's headline performance row.
type StoreSales struct {
	Store        string  `json:"store"`
	Region       string  `json:"region"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
	Customers    int     `json:"customers"`
	AvgSale      float64 `json:"avg_sale"`
}

// ChurnTier is one recency band with its customer count.
type ChurnTier struct {
	Tier      string `json:"tier"`
	MinDays   int    `json:"min_days"`
	MaxDays   int    `json:"max_days"`
	Customers int    `json:"customers"`
}

// RetentionReport summarizes repeat behavior and churn risk.
type RetentionReport struct {
	Customers       int         `json:"customers"`
	RepeatCustomers int         `json:"repeat_customers"`
	RepeatRate      float64     `json:"repeat_rate"`
	AtRisk          int         `json:"at_risk"`
	Tiers           []ChurnTier `json:"tiers"`
}

// DatasetSnapshot is the gob-encoded load cache: the parsed collection plus
// the skip count, keyed to the source file.
type DatasetSnapshot struct {
	Version      int
	SourceSize   int64
	SourceModNS  int64
	Skipped      int
	Transactions []Transaction
}
