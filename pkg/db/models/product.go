package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
)

// Product is the canonical catalog entry for one sellable item.
// Stock is held as numeric(12,3) so weighed goods keep gram precision;
// UNIT products keep their stock integral at all times.
type Product struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ShopType          enums.ShopType    `gorm:"column:shop_type;not null;index"`
	Name              string            `gorm:"column:name;not null"`
	Category          string            `gorm:"column:category;not null"`
	SKU               string            `gorm:"column:sku;not null;uniqueIndex"`
	PurchasePrice     decimal.Decimal   `gorm:"column:purchase_price;type:numeric(12,2);not null"`
	SellingPrice      decimal.Decimal   `gorm:"column:selling_price;type:numeric(12,2);not null"`
	UnitType          enums.UnitType    `gorm:"column:unit_type;not null"`
	Stock             decimal.Decimal   `gorm:"column:stock;type:numeric(12,3);not null"`
	LowStockThreshold decimal.Decimal   `gorm:"column:low_stock_threshold;type:numeric(12,3);not null"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLowStock reports whether the product sits at or below its alert threshold.
func (p Product) IsLowStock() bool {
	return p.Stock.LessThanOrEqual(p.LowStockThreshold)
}
