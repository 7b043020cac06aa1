package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLineItem references a product by id and snapshots its name and unit
// price at sale time, so later catalog edits never rewrite history.
// Position preserves cart insertion order.
type SaleLineItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SaleID      uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Position    int             `gorm:"column:position;not null"`
}
