package order

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// LineItem is a priced quantity of a single product.
type LineItem struct {
	Product   string
	Quantity  int
	UnitPrice decimal.Decimal
}

// NewLineItem builds a validated line item. Quantity must be positive and
// the unit price must not be negative.
func NewLineItem(product string, quantity int, unitPrice decimal.Decimal) (LineItem, error) {
	item := LineItem{Product: product, Quantity: quantity, UnitPrice: unitPrice}
	if err := item.Validate(); err != nil {
		return LineItem{}, err
	}
	return item, nil
}

// Validate checks the quantity and unit price constraints.
func (l LineItem) Validate() error {
	if l.Quantity <= 0 {
		return &InvalidInputError{
			Field:  "quantity",
			Value:  strconv.Itoa(l.Quantity),
			Reason: "must be greater than 0 for product " + l.Product,
		}
	}
	if l.UnitPrice.IsNegative() {
		return &InvalidInputError{
			Field:  "unit price",
			Value:  l.UnitPrice.String(),
			Reason: "must not be negative for product " + l.Product,
		}
	}
	return nil
}

// Total returns unit price times quantity.
func (l LineItem) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
