package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
)

// StockMovement is the append-only audit trail for every stock mutation.
// SALE rows carry the decremented quantity; ADD and ADJUST rows carry the
// signed delta applied by catalog management.
type StockMovement struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	SaleID    *uuid.UUID              `gorm:"column:sale_id;type:uuid"`
	Type      enums.StockMovementType `gorm:"column:type;not null"`
	Quantity  decimal.Decimal         `gorm:"column:quantity;type:numeric(12,3);not null"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
}
