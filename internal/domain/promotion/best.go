package promotion

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/order"
)

// Entry is a promotion registered under a name.
type Entry struct {
	Name      string
	Promotion order.Promotion
}

// Best evaluates every member and yields the largest discount. It is itself
// a promotion and holds no pricing rule of its own.
type Best struct {
	entries []Entry
}

var _ order.Promotion = (*Best)(nil)

// NewBest returns a Best over the given entries, evaluated in order.
func NewBest(entries ...Entry) *Best {
	return &Best{entries: append([]Entry(nil), entries...)}
}

// BestOf wraps anonymous promotions; their names are left empty.
func BestOf(promotions ...order.Promotion) *Best {
	entries := make([]Entry, len(promotions))
	for i, p := range promotions {
		entries[i] = Entry{Promotion: p}
	}
	return &Best{entries: entries}
}

// Discount implements order.Promotion. An empty Best yields zero.
func (b *Best) Discount(o *order.Order) (decimal.Decimal, error) {
	_, amount, err := b.Select(o)
	return amount, err
}

// Select returns the name and amount of the winning member. Ties go to the
// member registered first. The name is empty when no member applies.
func (b *Best) Select(o *order.Order) (string, decimal.Decimal, error) {
	var (
		winner string
		best   = decimal.Zero
	)
	for _, e := range b.entries {
		amount, err := e.Promotion.Discount(o)
		if err != nil {
			if e.Name == "" {
				return "", decimal.Zero, err
			}
			return "", decimal.Zero, errors.Wrapf(err, "promotion %s", e.Name)
		}
		if amount.GreaterThan(best) {
			winner, best = e.Name, amount
		}
	}
	return winner, best, nil
}

// Description implements Describer.
func (b *Best) Description() string {
	return "best discount available"
}
