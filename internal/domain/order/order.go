package order

import (
	"fmt"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Order is a customer's cart priced under an optional promotion.
//
// The cart is copied on construction and the total is computed once, so an
// Order is immutable and safe for concurrent readers. Discount and Due are
// evaluated on every call and are only as stable as the attached promotion.
type Order struct {
	customer  Customer
	cart      []LineItem
	promotion Promotion
	total     decimal.Decimal
}

// New validates the customer and every line item, captures a copy of the
// cart and memoizes its total. A nil promotion means no discount.
func New(customer Customer, cart []LineItem, promotion Promotion) (*Order, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range cart {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		total = total.Add(item.Total())
	}

	return &Order{
		customer:  customer,
		cart:      slices.Clone(cart),
		promotion: promotion,
		total:     total,
	}, nil
}

// Customer returns the buyer.
func (o *Order) Customer() Customer { return o.customer }

// Cart returns a copy of the line items in their original order.
func (o *Order) Cart() []LineItem { return slices.Clone(o.cart) }

// Promotion returns the attached promotion, or nil.
func (o *Order) Promotion() Promotion { return o.promotion }

// Total returns the sum of line totals captured at construction.
func (o *Order) Total() decimal.Decimal { return o.total }

// Discount evaluates the attached promotion. Errors from the promotion are
// returned unchanged.
func (o *Order) Discount() (decimal.Decimal, error) {
	if o.promotion == nil {
		return decimal.Zero, nil
	}
	amount, err := o.promotion.Discount(o)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, errors.Wrapf(ErrNegativeDiscount, "discount %s", amount)
	}
	return amount, nil
}

// Due returns the total minus the promotion's discount.
func (o *Order) Due() (decimal.Decimal, error) {
	discount, err := o.Discount()
	if err != nil {
		return decimal.Zero, err
	}
	return o.total.Sub(discount), nil
}

// String renders the order as "<Order total: 42.00 due: 39.90>". A failing
// promotion is shown in place of the due amount.
func (o *Order) String() string {
	due, err := o.Due()
	if err != nil {
		return fmt.Sprintf("<Order total: %s due: error(%v)>", o.total.StringFixed(2), err)
	}
	return fmt.Sprintf("<Order total: %s due: %s>", o.total.StringFixed(2), due.StringFixed(2))
}
