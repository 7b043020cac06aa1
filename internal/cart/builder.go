package cart

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopmasterhq/shopmaster-backend/pkg/db/models"
	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
	pkgerrors "github.com/shopmasterhq/shopmaster-backend/pkg/errors"
)

// Line is one cart entry. Lines are only built through newLine, which
// normalizes on construction: quantity positivity is enforced and the
// subtotal is rounded to 2 decimal places immediately, never deferred, so
// repeated merges cannot accumulate float drift.
type Line struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

func newLine(productID uuid.UUID, name string, quantity, unitPrice decimal.Decimal) (Line, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return Line{}, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be positive")
	}
	return Line{
		ProductID:   productID,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    quantity.Mul(unitPrice).Round(2),
	}, nil
}

// Builder accumulates candidate sale lines against live stock levels for one
// in-progress transaction. It is not safe for concurrent use; the session
// registry serializes access.
type Builder struct {
	lines []Line
}

// AddItem adds the requested quantity of a unit-counted product, merging into
// an existing line for the same product. KG products must go through
// AddWeighedItem so the operator enters an explicit weight.
func (b *Builder) AddItem(product *models.Product, quantity decimal.Decimal) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeProductNotFound, "product is required")
	}
	if product.Stock.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.OutOfStock(product.Name)
	}
	if product.UnitType == enums.UnitTypeKG {
		return pkgerrors.New(pkgerrors.CodeValidation, "weighed entry required for KG products")
	}

	// UNIT quantities are whole pieces; fractional requests are floored.
	quantity = quantity.Floor()
	if quantity.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be at least 1")
	}

	idx := b.findLine(product.ID)
	prospective := quantity
	if idx >= 0 {
		prospective = b.lines[idx].Quantity.Add(quantity)
	}
	if prospective.GreaterThan(product.Stock) {
		return pkgerrors.InsufficientStock(product.Name, prospective.String(), product.Stock.String())
	}

	if idx >= 0 {
		merged, err := newLine(product.ID, b.lines[idx].ProductName, prospective, b.lines[idx].UnitPrice)
		if err != nil {
			return err
		}
		b.lines[idx] = merged
		return nil
	}

	line, err := newLine(product.ID, product.Name, quantity, product.SellingPrice)
	if err != nil {
		return err
	}
	b.lines = append(b.lines, line)
	return nil
}

// AddWeighedItem appends a weighed line for a KG product. Each weighing is
// its own line; weighed lines are never merged.
func (b *Builder) AddWeighedItem(product *models.Product, weight decimal.Decimal) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeProductNotFound, "product is required")
	}
	if product.UnitType != enums.UnitTypeKG {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is not sold by weight")
	}
	if weight.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "weight must be positive")
	}
	if !weight.Equal(weight.Round(3)) {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "weight supports at most 3 decimal places")
	}
	if weight.GreaterThan(product.Stock) {
		return pkgerrors.InsufficientStock(product.Name, weight.String(), product.Stock.String())
	}

	line, err := newLine(product.ID, product.Name, weight, product.SellingPrice)
	if err != nil {
		return err
	}
	b.lines = append(b.lines, line)
	return nil
}

// RemoveLine drops the line at the given position.
func (b *Builder) RemoveLine(index int) error {
	if index < 0 || index >= len(b.lines) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	b.lines = append(b.lines[:index], b.lines[index+1:]...)
	return nil
}

// Clear empties all lines unconditionally.
func (b *Builder) Clear() {
	b.lines = nil
}

// Total sums all line subtotals. Pure; subtotals are already rounded.
func (b *Builder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range b.lines {
		total = total.Add(line.Subtotal)
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (b *Builder) Lines() []Line {
	out := make([]Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len reports the number of lines in the cart.
func (b *Builder) Len() int {
	return len(b.lines)
}

func (b *Builder) findLine(productID uuid.UUID) int {
	for i, line := range b.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// ParseQuantity converts operator input into a decimal quantity. Garbage in
// is an INVALID_QUANTITY, not an internal fault.
func ParseQuantity(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity is required")
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeInvalidQuantity, err, "quantity is not a number")
	}
	return value, nil
}
