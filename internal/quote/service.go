// Package quote prices carts against named promotions.
package quote

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/kart-pricing/internal/domain/order"
	"github.com/xenking/kart-pricing/internal/domain/promotion"
)

// ErrUnknownPromotion is returned when a request names a promotion that is
// not registered.
var ErrUnknownPromotion = errors.New("unknown promotion")

// Request asks for the price of a cart. Promotion is empty for no
// discount, promotion.BestName for the best available, or a registered name.
type Request struct {
	Customer  order.Customer
	Items     []order.LineItem
	Promotion string
}

// Result is a priced cart. Applied names the promotion that produced the
// discount; it differs from Promotion only for best-of requests.
type Result struct {
	Total     decimal.Decimal
	Discount  decimal.Decimal
	Due       decimal.Decimal
	Promotion string
	Applied   string
	Summary   string
}

// Service prices quote requests.
type Service struct {
	promotions *promotion.Registry
	tracer     trace.Tracer
	quotes     metric.Int64Counter
}

// NewService creates a Service over the given registry, reporting to the
// given telemetry providers.
func NewService(
	promotions *promotion.Registry,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (*Service, error) {
	quotes, err := mp.Meter("pricing").Int64Counter("pricing.quotes",
		metric.WithDescription("Number of priced quotes by promotion"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create quotes counter")
	}
	return &Service{
		promotions: promotions,
		tracer:     tp.Tracer("pricing"),
		quotes:     quotes,
	}, nil
}

// Promotions returns the underlying registry.
func (s *Service) Promotions() *promotion.Registry {
	return s.promotions
}

// Quote builds the order and evaluates its promotion.
func (s *Service) Quote(ctx context.Context, req Request) (_ *Result, rerr error) {
	ctx, span := s.tracer.Start(ctx, "Quote",
		trace.WithAttributes(attribute.String("pricing.promotion", req.Promotion)),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	var promo order.Promotion
	if req.Promotion != "" {
		p, ok := s.promotions.Lookup(req.Promotion)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownPromotion, "%q", req.Promotion)
		}
		promo = p
	}

	o, err := order.New(req.Customer, req.Items, promo)
	if err != nil {
		return nil, errors.Wrap(err, "build order")
	}

	res := &Result{
		Total:     o.Total(),
		Promotion: req.Promotion,
		Applied:   req.Promotion,
	}
	if best, ok := promo.(*promotion.Best); ok {
		name, amount, err := best.Select(o)
		if err != nil {
			return nil, errors.Wrap(err, "apply promotion")
		}
		res.Applied = name
		res.Discount = amount
	} else {
		amount, err := o.Discount()
		if err != nil {
			return nil, errors.Wrap(err, "apply promotion")
		}
		res.Discount = amount
	}
	if res.Discount.IsZero() {
		res.Applied = ""
	}
	res.Due = res.Total.Sub(res.Discount)
	res.Summary = o.String()

	s.quotes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("promotion", req.Promotion),
		attribute.String("applied", res.Applied),
	))
	zctx.From(ctx).Debug("Quoted",
		zap.String("customer", req.Customer.Name),
		zap.Int("items", len(req.Items)),
		zap.String("promotion", req.Promotion),
		zap.String("applied", res.Applied),
		zap.Stringer("total", res.Total),
		zap.Stringer("due", res.Due),
	)

	return res, nil
}
