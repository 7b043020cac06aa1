package reports

import (
	"github.com/shopspring/decimal"

	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
)

// ShopSummary is the per-shop dashboard headline.
type ShopSummary struct {
	ShopType      enums.ShopType  `json:"shop_type"`
	SaleCount     int64           `json:"sale_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	StockValue    decimal.Decimal `json:"stock_value"`
	LowStockCount int64           `json:"low_stock_count"`
}

// DailyRevenue is one day of the revenue trend chart.
type DailyRevenue struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

// CategorySales is revenue attributed to one product category.
type CategorySales struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CombinedOverview rolls both shop profiles into one business view.
type CombinedOverview struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	Shops        []ShopSummary   `json:"shops"`
}
