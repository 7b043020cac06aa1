package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
)

// CommitLineInput is one cart line handed to the committer. Quantity is a
// whole-unit count for UNIT products and a kilogram weight for KG products.
type CommitLineInput struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CommitSaleInput is the full checkout payload. DeclaredTotal is the amount
// shown to the customer at the till; when present it is cross-checked against
// the total the committer derives from current catalog prices.
type CommitSaleInput struct {
	ShopType      enums.ShopType    `json:"shop_type" validate:"required"`
	CustomerName  *string           `json:"customer_name,omitempty" validate:"omitempty,max=120"`
	CustomerPhone *string           `json:"customer_phone,omitempty" validate:"omitempty,max=32"`
	PaymentMode   enums.PaymentMode `json:"payment_mode" validate:"required"`
	Lines         []CommitLineInput `json:"lines" validate:"required,min=1,dive"`
	DeclaredTotal *decimal.Decimal  `json:"declared_total,omitempty"`
}

// HistoryPage is one page of the sale history, most recent first.
type HistoryPage struct {
	Sales []SaleView `json:"sales"`
	Total int64      `json:"total"`
}

// SaleView is the serialized shape of one committed sale.
type SaleView struct {
	ID            uuid.UUID         `json:"id"`
	ShopType      enums.ShopType    `json:"shop_type"`
	CustomerName  *string           `json:"customer_name,omitempty"`
	CustomerPhone *string           `json:"customer_phone,omitempty"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	PaymentMode   enums.PaymentMode `json:"payment_mode"`
	TotalProfit   decimal.Decimal   `json:"total_profit"`
	Items         []SaleItemView    `json:"items"`
	CreatedAt     string            `json:"created_at"`
}

// SaleItemView is one line of a committed sale.
type SaleItemView struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}
