package quote

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/order"
)

// ErrMalformed is returned when a request body is not valid quote JSON.
var ErrMalformed = errors.New("malformed request")

// Bounds on decoded unit prices. Larger exponents make fixed-point
// formatting expand the coefficient into arbitrarily many digits.
const (
	maxPriceExponent = 20
	maxPriceDigits   = 30
)

// DecodeRequest reads a quote request object:
//
//	{
//	  "customer": {"name": "Ann Smith", "fidelity": 1100},
//	  "items": [{"product": "banana", "quantity": 4, "unit_price": "0.5"}],
//	  "promotion": "fidelity"
//	}
//
// Unit prices may be JSON numbers or strings, with at most 30 significant
// digits and an exponent within ±20. Unknown fields are skipped. The object
// must be the only value in the input. Field validation is left to
// order.New.
func DecodeRequest(d *jx.Decoder) (Request, error) {
	var req Request
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "customer":
			return decodeCustomer(d, &req.Customer)
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeItem(d)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		case "promotion":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "promotion")
			}
			req.Promotion = v
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return Request{}, errors.Wrap(ErrMalformed, err.Error())
	}
	if err := d.Skip(); !errors.Is(err, io.EOF) {
		return Request{}, errors.Wrap(ErrMalformed, "unexpected trailing data")
	}
	return req, nil
}

func decodeCustomer(d *jx.Decoder, c *order.Customer) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "name":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "customer name")
			}
			c.Name = v
		case "fidelity":
			v, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "customer fidelity")
			}
			c.Fidelity = v
		default:
			return d.Skip()
		}
		return nil
	})
}

func decodeItem(d *jx.Decoder) (order.LineItem, error) {
	var (
		item     order.LineItem
		hasPrice bool
	)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "product":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "product")
			}
			item.Product = v
		case "quantity":
			v, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "quantity")
			}
			item.Quantity = v
		case "unit_price":
			v, err := decodeDecimal(d)
			if err != nil {
				return errors.Wrap(err, "unit_price")
			}
			item.UnitPrice = v
			hasPrice = true
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return order.LineItem{}, err
	}
	if !hasPrice {
		return order.LineItem{}, errors.Errorf("item %q: unit_price required", item.Product)
	}
	return item, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = n.String()
	default:
		return decimal.Zero, errors.Errorf("unexpected %s", d.Next())
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if exp := v.Exponent(); exp < -maxPriceExponent || exp > maxPriceExponent {
		return decimal.Zero, errors.Errorf("exponent %d out of range", exp)
	}
	if n := v.NumDigits(); n > maxPriceDigits {
		return decimal.Zero, errors.Errorf("%d significant digits, at most %d allowed", n, maxPriceDigits)
	}
	return v, nil
}

// EncodeResult writes r as a JSON object with money as fixed two-decimal
// strings.
func EncodeResult(e *jx.Encoder, r *Result) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("total", func(e *jx.Encoder) { e.Str(r.Total.StringFixed(2)) })
		e.Field("discount", func(e *jx.Encoder) { e.Str(r.Discount.StringFixed(2)) })
		e.Field("due", func(e *jx.Encoder) { e.Str(r.Due.StringFixed(2)) })
		e.Field("promotion", func(e *jx.Encoder) { e.Str(r.Promotion) })
		e.Field("applied", func(e *jx.Encoder) { e.Str(r.Applied) })
		e.Field("summary", func(e *jx.Encoder) { e.Str(r.Summary) })
	})
}

// EncodeError writes {"code": code, "message": msg}.
func EncodeError(e *jx.Encoder, code int, msg string) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(code) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
}
