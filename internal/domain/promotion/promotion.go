// Package promotion implements the discount rules an order can be priced
// under, and the registry that names them.
package promotion

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/order"
)

// Default thresholds and rates of the built-in promotions.
var (
	DefaultFidelityThreshold = 1000
	DefaultFidelityRate      = decimal.RequireFromString("0.05")

	DefaultBulkItemMinQuantity = 20
	DefaultBulkItemRate        = decimal.RequireFromString("0.10")

	DefaultLargeOrderMinDistinct = 10
	DefaultLargeOrderRate        = decimal.RequireFromString("0.07")
)

var hundred = decimal.NewFromInt(100)

// Describer is implemented by promotions that can explain themselves.
type Describer interface {
	Description() string
}

// Fidelity grants Rate of the order total to customers holding at least
// Threshold fidelity points.
type Fidelity struct {
	Threshold int
	Rate      decimal.Decimal
}

var _ order.Promotion = Fidelity{}

// NewFidelity returns the 5% for 1000+ points promotion.
func NewFidelity() Fidelity {
	return Fidelity{Threshold: DefaultFidelityThreshold, Rate: DefaultFidelityRate}
}

// Discount implements order.Promotion.
func (p Fidelity) Discount(o *order.Order) (decimal.Decimal, error) {
	if o.Customer().Fidelity < p.Threshold {
		return decimal.Zero, nil
	}
	return o.Total().Mul(p.Rate), nil
}

// Description implements Describer.
func (p Fidelity) Description() string {
	return fmt.Sprintf("%s%% discount for customers with %d or more fidelity points",
		percent(p.Rate), p.Threshold)
}

// BulkItem grants Rate of each line total whose quantity is at least
// MinQuantity.
type BulkItem struct {
	MinQuantity int
	Rate        decimal.Decimal
}

var _ order.Promotion = BulkItem{}

// NewBulkItem returns the 10% for 20+ units promotion.
func NewBulkItem() BulkItem {
	return BulkItem{MinQuantity: DefaultBulkItemMinQuantity, Rate: DefaultBulkItemRate}
}

// Discount implements order.Promotion.
func (p BulkItem) Discount(o *order.Order) (decimal.Decimal, error) {
	discount := decimal.Zero
	for _, item := range o.Cart() {
		if item.Quantity >= p.MinQuantity {
			discount = discount.Add(item.Total().Mul(p.Rate))
		}
	}
	return discount, nil
}

// Description implements Describer.
func (p BulkItem) Description() string {
	return fmt.Sprintf("%s%% discount for each line item with %d or more units",
		percent(p.Rate), p.MinQuantity)
}

// LargeOrder grants Rate of the order total when the cart holds at least
// MinDistinct distinct products.
type LargeOrder struct {
	MinDistinct int
	Rate        decimal.Decimal
}

var _ order.Promotion = LargeOrder{}

// NewLargeOrder returns the 7% for 10+ distinct items promotion.
func NewLargeOrder() LargeOrder {
	return LargeOrder{MinDistinct: DefaultLargeOrderMinDistinct, Rate: DefaultLargeOrderRate}
}

// Discount implements order.Promotion.
func (p LargeOrder) Discount(o *order.Order) (decimal.Decimal, error) {
	if distinctProducts(o.Cart()) < p.MinDistinct {
		return decimal.Zero, nil
	}
	return o.Total().Mul(p.Rate), nil
}

// Description implements Describer.
func (p LargeOrder) Description() string {
	return fmt.Sprintf("%s%% discount for orders with %d or more distinct items",
		percent(p.Rate), p.MinDistinct)
}

func distinctProducts(items []order.LineItem) int {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		seen[item.Product] = struct{}{}
	}
	return len(seen)
}

// percent formats a fractional rate as a percentage without trailing zeros.
func percent(rate decimal.Decimal) string {
	return rate.Mul(hundred).String()
}
