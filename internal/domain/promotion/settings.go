package promotion

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Names of the built-in promotions.
const (
	FidelityName   = "fidelity"
	BulkItemName   = "bulk_item"
	LargeOrderName = "large_order"
)

// Settings parametrize the built-in promotions. Disabled promotions are not
// registered.
type Settings struct {
	Fidelity   FidelitySettings
	BulkItem   BulkItemSettings
	LargeOrder LargeOrderSettings
}

// FidelitySettings configure Fidelity.
type FidelitySettings struct {
	Disabled  bool
	Threshold int
	Rate      decimal.Decimal
}

// BulkItemSettings configure BulkItem.
type BulkItemSettings struct {
	Disabled    bool
	MinQuantity int
	Rate        decimal.Decimal
}

// LargeOrderSettings configure LargeOrder.
type LargeOrderSettings struct {
	Disabled    bool
	MinDistinct int
	Rate        decimal.Decimal
}

// DefaultSettings enables every built-in with its default parameters.
func DefaultSettings() Settings {
	return Settings{
		Fidelity: FidelitySettings{
			Threshold: DefaultFidelityThreshold,
			Rate:      DefaultFidelityRate,
		},
		BulkItem: BulkItemSettings{
			MinQuantity: DefaultBulkItemMinQuantity,
			Rate:        DefaultBulkItemRate,
		},
		LargeOrder: LargeOrderSettings{
			MinDistinct: DefaultLargeOrderMinDistinct,
			Rate:        DefaultLargeOrderRate,
		},
	}
}

// Build validates s and registers the enabled built-ins in a fixed order:
// fidelity, bulk_item, large_order.
func Build(s Settings) (*Registry, error) {
	r := NewRegistry()

	if !s.Fidelity.Disabled {
		if err := checkRate(FidelityName, s.Fidelity.Rate); err != nil {
			return nil, err
		}
		r.MustRegister(FidelityName, Fidelity{Threshold: s.Fidelity.Threshold, Rate: s.Fidelity.Rate})
	}
	if !s.BulkItem.Disabled {
		if err := checkRate(BulkItemName, s.BulkItem.Rate); err != nil {
			return nil, err
		}
		r.MustRegister(BulkItemName, BulkItem{MinQuantity: s.BulkItem.MinQuantity, Rate: s.BulkItem.Rate})
	}
	if !s.LargeOrder.Disabled {
		if err := checkRate(LargeOrderName, s.LargeOrder.Rate); err != nil {
			return nil, err
		}
		r.MustRegister(LargeOrderName, LargeOrder{MinDistinct: s.LargeOrder.MinDistinct, Rate: s.LargeOrder.Rate})
	}

	return r, nil
}

// checkRate keeps discounts within [0, total].
func checkRate(name string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return errors.Errorf("%s: rate %s out of range [0, 1]", name, rate)
	}
	return nil
}
