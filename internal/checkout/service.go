package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/wholesale-toko/internal/catalog"
	"github.com/noah-isme/wholesale-toko/internal/common"
	"github.com/noah-isme/wholesale-toko/internal/obs"
	"github.com/noah-isme/wholesale-toko/internal/quote"
)

// Blocker codes reported by Review.
const (
	BlockEmptyCart           = "EMPTY_CART"
	BlockBelowMinimumOrder   = "BELOW_MINIMUM_ORDER"
	BlockLineBelowMinimum    = "LINE_BELOW_MINIMUM_QUANTITY"
	BlockOutOfStock          = "OUT_OF_STOCK"
	BlockPaymentUnavailable  = "PAYMENT_METHOD_UNAVAILABLE"
	BlockCreditLimitExceeded = "CREDIT_LIMIT_EXCEEDED"
	BlockStepIncomplete      = "STEP_INCOMPLETE"
)

// Quoter prices a cart.
type Quoter interface {
	Quote(ctx context.Context, req quote.Request) (quote.Quote, error)
}

// Blocker explains why an order cannot be placed yet.
type Blocker struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
	Step      Step   `json:"step,omitempty"`
}

// ReviewRequest carries the cart and wizard state to review.
type ReviewRequest struct {
	Cart  quote.Request `json:"cart"`
	State State         `json:"state"`
}

// Review is the pre-submission summary of an order.
type Review struct {
	Quote    quote.Quote `json:"quote"`
	Terms    CreditTerms `json:"creditTerms"`
	Eligible bool        `json:"eligible"`
	Blockers []Blocker   `json:"blockers"`
}

// Service reviews carts for checkout. It never places orders.
type Service struct {
	Quotes Quoter
	Flow   Flow
}

// Review prices the cart and lists every reason the order is not yet placeable.
func (s *Service) Review(ctx context.Context, req ReviewRequest) (Review, error) {
	if s == nil || s.Quotes == nil {
		return Review{}, errors.New("checkout service not configured")
	}
	ctx, span := otel.Tracer("checkout.Service").Start(ctx, "CheckoutService.Review")
	defer span.End()

	q, err := s.Quotes.Quote(ctx, req.Cart)
	if err != nil {
		span.RecordError(err)
		return Review{}, err
	}
	review := Review{Quote: q, Terms: s.Flow.Terms, Blockers: []Blocker{}}
	add := func(b Blocker) { review.Blockers = append(review.Blockers, b) }

	totals := q.Totals
	if len(totals.Lines) == 0 {
		add(Blocker{Code: BlockEmptyCart, Message: "cart is empty"})
	} else if !totals.QualifiesForCheckout {
		add(Blocker{Code: BlockBelowMinimumOrder, Message: fmt.Sprintf("add %s %s more to reach the minimum order of %s",
			totals.RemainingForMinimum.StringFixed(2), q.Currency, totals.MinimumOrderThreshold.StringFixed(2))})
	}
	for i, line := range totals.Lines {
		ref := q.Products[i]
		if line.BelowMinimum {
			add(Blocker{Code: BlockLineBelowMinimum, ProductID: ref.ID,
				Message: fmt.Sprintf("%s requires at least %d %s", ref.Name, line.MinimumQuantity, ref.Unit)})
		}
		switch {
		case ref.StockStatus == catalog.StockOutOfStock || ref.AvailableQuantity <= 0:
			add(Blocker{Code: BlockOutOfStock, ProductID: ref.ID, Message: ref.Name + " is out of stock"})
		case line.Quantity > ref.AvailableQuantity:
			add(Blocker{Code: BlockOutOfStock, ProductID: ref.ID,
				Message: fmt.Sprintf("only %d %s of %s available", ref.AvailableQuantity, ref.Unit, ref.Name)})
		}
	}

	for _, step := range s.Flow.Incomplete(req.State) {
		if step == StepPayment && strings.TrimSpace(req.State.PaymentMethod) != "" {
			add(Blocker{Code: BlockPaymentUnavailable, Step: step,
				Message: fmt.Sprintf("payment method %q is not available", req.State.PaymentMethod)})
			continue
		}
		add(Blocker{Code: BlockStepIncomplete, Step: step, Message: string(step) + " step is incomplete"})
	}
	if strings.EqualFold(strings.TrimSpace(req.State.PaymentMethod), MethodCredit) && s.Flow.Terms.Approved &&
		totals.GrandTotal.GreaterThan(s.Flow.Terms.Available) {
		add(Blocker{Code: BlockCreditLimitExceeded, Step: StepPayment,
			Message: fmt.Sprintf("order total exceeds available credit of %s", s.Flow.Terms.Available.StringFixed(2))})
	}

	review.Eligible = len(review.Blockers) == 0
	result := "blocked"
	if review.Eligible {
		result = "eligible"
	}
	span.SetAttributes(
		attribute.String("quote.id", q.ID),
		attribute.Bool("checkout.eligible", review.Eligible),
		attribute.Int("checkout.blockers", len(review.Blockers)),
	)
	if obs.CheckoutReviewTotal != nil {
		obs.CheckoutReviewTotal.WithLabelValues(result).Inc()
	}
	return review, nil
}

// Move advances or rewinds the wizard. Flow errors become 422 responses.
func (s *Service) Move(state State, direction string) (State, error) {
	var (
		next State
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "next":
		next, err = s.Flow.Advance(state)
	case "back":
		next, err = s.Flow.Back(state)
	default:
		return state, common.BadRequest("direction", "direction must be next or back", nil)
	}
	if err != nil {
		code := "STEP_INVALID"
		switch {
		case errors.Is(err, ErrStepIncomplete):
			code = BlockStepIncomplete
		case errors.Is(err, ErrPaymentMethodUnavailable):
			code = BlockPaymentUnavailable
		}
		return state, common.Unprocessable(code, "", err).WithDetails(map[string]any{"step": state.Step})
	}
	return next, nil
}
