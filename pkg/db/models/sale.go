package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
)

// Sale is one committed transaction. Rows are append-only: once a sale is
// recorded it is never mutated or deleted, and the history is served
// most-recent-first.
type Sale struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ShopType      enums.ShopType    `gorm:"column:shop_type;not null;index"`
	CustomerName  *string           `gorm:"column:customer_name"`
	CustomerPhone *string           `gorm:"column:customer_phone"`
	TotalAmount   decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaymentMode   enums.PaymentMode `gorm:"column:payment_mode;not null"`
	TotalProfit   decimal.Decimal   `gorm:"column:total_profit;type:numeric(12,2);not null"`
	Items         []SaleLineItem    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime;index"`
}
