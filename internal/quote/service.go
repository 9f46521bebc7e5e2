package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/wholesale-toko/internal/catalog"
	"github.com/noah-isme/wholesale-toko/internal/common"
	"github.com/noah-isme/wholesale-toko/internal/delivery"
	"github.com/noah-isme/wholesale-toko/internal/obs"
	"github.com/noah-isme/wholesale-toko/internal/pricing"
	"github.com/noah-isme/wholesale-toko/internal/promo"
)

// ProductSource looks up catalog products.
type ProductSource interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

// PromoResolver turns a promo code into an order adjustment.
type PromoResolver interface {
	Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (*promo.Applied, error)
}

// LineRequest is a single cart line.
type LineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// Request is a cart submitted for pricing.
type Request struct {
	Items        []LineRequest `json:"items" validate:"dive"`
	DeliverySlot string        `json:"deliverySlot,omitempty"`
	PromoCode    string        `json:"promoCode,omitempty"`
}

// ProductRef summarises the catalog product behind a quoted line.
type ProductRef struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Unit              string `json:"unit"`
	BulkIncrement     int    `json:"bulkIncrement"`
	StockStatus       string `json:"stockStatus"`
	AvailableQuantity int    `json:"availableQuantity"`
}

// Quote is a priced cart. Products is index-aligned with Totals.Lines.
type Quote struct {
	ID        string              `json:"id"`
	Currency  string              `json:"currency"`
	CreatedAt time.Time           `json:"createdAt"`
	Products  []ProductRef        `json:"products"`
	Totals    pricing.OrderTotals `json:"totals"`
	Promo     *promo.Applied      `json:"promo,omitempty"`
	Slot      *delivery.Slot      `json:"deliverySlot,omitempty"`
}

// Service prices carts against the catalog.
type Service struct {
	products  ProductSource
	promos    PromoResolver
	slots     *delivery.Catalog
	validate  *validator.Validate
	threshold decimal.Decimal
	currency  string
	now       func() time.Time
	newID     func() string
}

// Config groups Service dependencies.
type Config struct {
	Products              ProductSource
	Promos                PromoResolver
	Slots                 *delivery.Catalog
	Validator             *validator.Validate
	MinimumOrderThreshold decimal.Decimal
	Currency              string
	Now                   func() time.Time
}

// NewService constructs a quote Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Products == nil {
		return nil, errors.New("quote: product source is required")
	}
	if !cfg.MinimumOrderThreshold.IsPositive() {
		return nil, errors.New("quote: minimum order threshold must be positive")
	}
	s := &Service{
		products:  cfg.Products,
		promos:    cfg.Promos,
		slots:     cfg.Slots,
		validate:  cfg.Validator,
		threshold: cfg.MinimumOrderThreshold,
		currency:  strings.ToUpper(strings.TrimSpace(cfg.Currency)),
		now:       cfg.Now,
		newID:     func() string { return uuid.NewString() },
	}
	if s.validate == nil {
		s.validate = common.NewValidator()
	}
	if s.currency == "" {
		s.currency = "INR"
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.slots == nil {
		s.slots = delivery.NewCatalog(delivery.DefaultSlots())
	}
	return s, nil
}

// Threshold returns the configured minimum order value.
func (s *Service) Threshold() decimal.Decimal { return s.threshold }

// Quote prices the cart, resolving the delivery slot and promo code.
func (s *Service) Quote(ctx context.Context, req Request) (q Quote, err error) {
	ctx, span := otel.Tracer("quote.Service").Start(ctx, "QuoteService.Quote")
	defer span.End()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if obs.QuoteTotal != nil {
			obs.QuoteTotal.WithLabelValues(result).Inc()
		}
	}()

	if err := common.ValidateStruct(s.validate, req); err != nil {
		return Quote{}, err
	}

	items, refs, err := s.lineItems(ctx, req.Items)
	if err != nil {
		return Quote{}, err
	}

	surcharge, slot, err := s.slots.Surcharge(req.DeliverySlot)
	if err != nil {
		return Quote{}, common.Unprocessable("DELIVERY_SLOT_INVALID", "", err).
			WithDetails(map[string]any{"deliverySlot": req.DeliverySlot})
	}

	octx := pricing.OrderContext{
		Items:                 items,
		DeliverySurcharge:     surcharge,
		PromoAdjustment:       decimal.Zero,
		MinimumOrderThreshold: s.threshold,
	}
	totals, err := pricing.Aggregate(octx)
	if err != nil {
		return Quote{}, invalidInput(err)
	}

	var applied *promo.Applied
	if strings.TrimSpace(req.PromoCode) != "" && s.promos != nil {
		applied, err = s.promos.Resolve(ctx, req.PromoCode, totals.Subtotal)
		if err != nil {
			return Quote{}, promo.InvalidCodeError(req.PromoCode, err)
		}
	}
	if applied != nil {
		octx.PromoAdjustment = applied.Adjustment
		totals, err = pricing.Aggregate(octx)
		if err != nil {
			return Quote{}, invalidInput(err)
		}
	}

	q = Quote{
		ID:        s.newID(),
		Currency:  s.currency,
		CreatedAt: s.now().UTC(),
		Products:  refs,
		Totals:    totals,
		Promo:     applied,
		Slot:      slot,
	}
	span.SetAttributes(
		attribute.String("quote.id", q.ID),
		attribute.Int("quote.lines", len(items)),
		attribute.String("quote.grand_total", totals.GrandTotal.String()),
		attribute.Bool("quote.qualifies", totals.QualifiesForCheckout),
	)
	if obs.QuoteGrandTotal != nil {
		obs.QuoteGrandTotal.Observe(totals.GrandTotal.InexactFloat64())
	}
	return q, nil
}

// Evaluate aggregates caller-supplied line items without a catalog lookup.
// A zero threshold falls back to the configured minimum order value.
func (s *Service) Evaluate(ctx context.Context, octx pricing.OrderContext) (pricing.OrderTotals, error) {
	_, span := otel.Tracer("quote.Service").Start(ctx, "QuoteService.Evaluate")
	defer span.End()
	span.SetAttributes(attribute.Int("quote.lines", len(octx.Items)))

	if octx.MinimumOrderThreshold.IsZero() {
		octx.MinimumOrderThreshold = s.threshold
	}
	totals, err := pricing.Aggregate(octx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return pricing.OrderTotals{}, invalidInput(err)
	}
	return totals, nil
}

// lineItems merges duplicate products and maps each line through the catalog.
func (s *Service) lineItems(ctx context.Context, lines []LineRequest) ([]pricing.LineItem, []ProductRef, error) {
	order := make([]string, 0, len(lines))
	qty := make(map[string]int, len(lines))
	for i, line := range lines {
		id := strings.TrimSpace(line.ProductID)
		if _, seen := qty[id]; !seen {
			order = append(order, id)
		}
		if qty[id] > math.MaxInt-line.Quantity {
			return nil, nil, common.ValidationFailed([]common.FieldError{{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Rule:    "max",
				Message: "combined quantity for this product is too large",
			}})
		}
		qty[id] += line.Quantity
	}

	items := make([]pricing.LineItem, 0, len(order))
	refs := make([]ProductRef, 0, len(order))
	for _, id := range order {
		product, err := s.products.Get(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, product.LineItem(qty[id]))
		refs = append(refs, ProductRef{
			ID:                product.ID,
			Name:              product.Name,
			Unit:              product.Unit,
			BulkIncrement:     product.BulkIncrement,
			StockStatus:       product.StockStatus,
			AvailableQuantity: product.AvailableQuantity,
		})
	}
	return items, refs, nil
}

func invalidInput(err error) error {
	if errors.Is(err, pricing.ErrInvalidInput) {
		return common.InvalidInput(err)
	}
	return fmt.Errorf("aggregate: %w", err)
}
