package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderContext aggregates line items with the order-level adjustments chosen by the caller.
type OrderContext struct {
	Items                 []LineItem      `json:"items"`
	DeliverySurcharge     decimal.Decimal `json:"deliverySurcharge"`
	PromoAdjustment       decimal.Decimal `json:"promoAdjustment"`
	MinimumOrderThreshold decimal.Decimal `json:"minimumOrderThreshold"`
}

// OrderTotals is the priced summary of an order context.
//
// QualifiesForCheckout compares the bulk-discounted subtotal against the minimum order
// threshold. QualifiesByGrandTotal applies the same threshold to the grand total for callers
// that gate on the amount payable instead.
type OrderTotals struct {
	Lines                      []LineResult    `json:"lines"`
	Subtotal                   decimal.Decimal `json:"subtotal"`
	TotalSavings               decimal.Decimal `json:"totalSavings"`
	TaxAmount                  decimal.Decimal `json:"taxAmount"`
	DeliverySurcharge          decimal.Decimal `json:"deliverySurcharge"`
	PromoAdjustment            decimal.Decimal `json:"promoAdjustment"`
	GrandTotal                 decimal.Decimal `json:"grandTotal"`
	MinimumOrderThreshold      decimal.Decimal `json:"minimumOrderThreshold"`
	QualifiesForCheckout       bool            `json:"qualifiesForCheckout"`
	QualifiesByGrandTotal      bool            `json:"qualifiesByGrandTotal"`
	RemainingForMinimum        decimal.Decimal `json:"remainingForMinimum"`
	MinimumOrderProgress       decimal.Decimal `json:"minimumOrderProgress"`
	PotentialAdditionalSavings decimal.Decimal `json:"potentialAdditionalSavings"`
	AnyBelowMinimum            bool            `json:"anyBelowMinimum"`
}

// Aggregate prices every line and computes order-level totals.
func Aggregate(ctx OrderContext) (OrderTotals, error) {
	if ctx.DeliverySurcharge.IsNegative() {
		return OrderTotals{}, fmt.Errorf("%w: delivery surcharge must not be negative", ErrInvalidInput)
	}
	if ctx.PromoAdjustment.IsNegative() {
		return OrderTotals{}, fmt.Errorf("%w: promo adjustment must not be negative", ErrInvalidInput)
	}
	if !ctx.MinimumOrderThreshold.IsPositive() {
		return OrderTotals{}, fmt.Errorf("%w: minimum order threshold must be positive", ErrInvalidInput)
	}
	for i, item := range ctx.Items {
		if err := Validate(item); err != nil {
			return OrderTotals{}, fmt.Errorf("line %d: %w", i, err)
		}
	}

	totals := OrderTotals{
		Lines:                      make([]LineResult, 0, len(ctx.Items)),
		Subtotal:                   zero,
		TotalSavings:               zero,
		TaxAmount:                  zero,
		PotentialAdditionalSavings: zero,
		DeliverySurcharge:          ctx.DeliverySurcharge,
		PromoAdjustment:            ctx.PromoAdjustment,
		MinimumOrderThreshold:      ctx.MinimumOrderThreshold,
	}
	for _, item := range ctx.Items {
		line := lineTotal(item)
		totals.Lines = append(totals.Lines, line)
		totals.Subtotal = totals.Subtotal.Add(line.LineTotal)
		totals.TotalSavings = totals.TotalSavings.Add(line.Savings)
		totals.TaxAmount = totals.TaxAmount.Add(line.TaxAmount)
		if line.NextTier != nil {
			totals.PotentialAdditionalSavings = totals.PotentialAdditionalSavings.Add(line.NextTier.PotentialAdditionalSavings)
		}
		if line.BelowMinimum {
			totals.AnyBelowMinimum = true
		}
	}

	grand := totals.Subtotal.Add(totals.TaxAmount).Add(ctx.DeliverySurcharge).Sub(ctx.PromoAdjustment)
	if grand.IsNegative() {
		grand = zero
	}
	totals.GrandTotal = grand
	totals.QualifiesForCheckout = totals.Subtotal.GreaterThanOrEqual(ctx.MinimumOrderThreshold)
	totals.QualifiesByGrandTotal = grand.GreaterThanOrEqual(ctx.MinimumOrderThreshold)
	totals.RemainingForMinimum = decimal.Max(ctx.MinimumOrderThreshold.Sub(totals.Subtotal), zero)
	totals.MinimumOrderProgress = decimal.Min(totals.Subtotal.Mul(hundred).Div(ctx.MinimumOrderThreshold), hundred)
	return totals, nil
}
