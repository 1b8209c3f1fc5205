package order

import "github.com/shopspring/decimal"

// Promotion computes the discount an order is entitled to. Implementations
// return a non-negative amount and must not retain the order.
type Promotion interface {
	Discount(o *Order) (decimal.Decimal, error)
}

// PromotionFunc adapts a plain function to the Promotion interface.
type PromotionFunc func(o *Order) (decimal.Decimal, error)

// Discount calls f(o).
func (f PromotionFunc) Discount(o *Order) (decimal.Decimal, error) {
	return f(o)
}
