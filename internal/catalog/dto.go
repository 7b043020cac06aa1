package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
)

// CreateProductInput is the payload for adding a product to the catalog.
type CreateProductInput struct {
	ShopType          enums.ShopType  `json:"shop_type" validate:"required"`
	Name              string          `json:"name" validate:"required,min=1,max=160"`
	Category          string          `json:"category" validate:"required,min=1,max=80"`
	SKU               string          `json:"sku" validate:"required,min=1,max=64"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	UnitType          enums.UnitType  `json:"unit_type" validate:"required"`
	Stock             decimal.Decimal `json:"stock"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
}

// UpdateProductInput carries the mutable product fields. Nil means leave the
// column untouched. Stock is deliberately absent; it only moves through
// AdjustStock so every change leaves an audit row.
type UpdateProductInput struct {
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=1,max=160"`
	Category          *string          `json:"category,omitempty" validate:"omitempty,min=1,max=80"`
	PurchasePrice     *decimal.Decimal `json:"purchase_price,omitempty"`
	SellingPrice      *decimal.Decimal `json:"selling_price,omitempty"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold,omitempty"`
}

// AdjustStockInput describes a manual stock change.
type AdjustStockInput struct {
	Delta decimal.Decimal         `json:"delta"`
	Type  enums.StockMovementType `json:"type" validate:"required"`
}
