package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopmasterhq/shopmaster-backend/pkg/db/models"
	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
)

// Repository runs the aggregate queries behind the dashboards.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type salesTotalsRow struct {
	SaleCount    int64           `gorm:"column:sale_count"`
	TotalRevenue decimal.Decimal `gorm:"column:total_revenue"`
	TotalProfit  decimal.Decimal `gorm:"column:total_profit"`
}

// SalesTotals sums one shop's committed sales.
func (r *Repository) SalesTotals(ctx context.Context, shop enums.ShopType) (int64, decimal.Decimal, decimal.Decimal, error) {
	var row salesTotalsRow
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select(
			"COUNT(*) AS sale_count",
			"COALESCE(SUM(total_amount), 0) AS total_revenue",
			"COALESCE(SUM(total_profit), 0) AS total_profit",
		).
		Where("shop_type = ?", shop).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, decimal.Zero, err
	}
	return row.SaleCount, row.TotalRevenue, row.TotalProfit, nil
}

// StockValue prices one shop's on-hand stock at cost.
func (r *Repository) StockValue(ctx context.Context, shop enums.ShopType) (decimal.Decimal, error) {
	var value decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("COALESCE(SUM(stock * purchase_price), 0)").
		Where("shop_type = ?", shop).
		Scan(&value).Error
	if err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

// LowStockCount reports how many products sit at or below their threshold.
func (r *Repository) LowStockCount(ctx context.Context, shop enums.ShopType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("shop_type = ? AND stock <= low_stock_threshold", shop).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

type dailyRevenueRow struct {
	Day     string          `gorm:"column:day"`
	Revenue decimal.Decimal `gorm:"column:revenue"`
}

// DailyRevenue groups one shop's revenue by calendar day since the cutoff.
// DATE() evaluates identically on postgres and sqlite.
func (r *Repository) DailyRevenue(ctx context.Context, shop enums.ShopType, since time.Time) (map[string]decimal.Decimal, error) {
	var rows []dailyRevenueRow
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("DATE(created_at) AS day", "COALESCE(SUM(total_amount), 0) AS revenue").
		Where("shop_type = ? AND created_at >= ?", shop, since).
		Group("DATE(created_at)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		day := row.Day
		// postgres scans DATE columns with a midnight time suffix
		if len(day) > 10 {
			day = day[:10]
		}
		byDay[day] = row.Revenue
	}
	return byDay, nil
}

type categorySalesRow struct {
	Category string          `gorm:"column:category"`
	Revenue  decimal.Decimal `gorm:"column:revenue"`
	Quantity decimal.Decimal `gorm:"column:quantity"`
}

// CategorySales attributes line-item revenue to current catalog categories.
func (r *Repository) CategorySales(ctx context.Context, shop enums.ShopType) ([]CategorySales, error) {
	var rows []categorySalesRow
	err := r.db.WithContext(ctx).
		Model(&models.SaleLineItem{}).
		Select(
			"products.category AS category",
			"COALESCE(SUM(sale_line_items.subtotal), 0) AS revenue",
			"COALESCE(SUM(sale_line_items.quantity), 0) AS quantity",
		).
		Joins("JOIN sales ON sales.id = sale_line_items.sale_id").
		Joins("JOIN products ON products.id = sale_line_items.product_id").
		Where("sales.shop_type = ?", shop).
		Group("products.category").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]CategorySales, len(rows))
	for i, row := range rows {
		result[i] = CategorySales(row)
	}
	return result, nil
}
