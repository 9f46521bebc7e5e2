package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when a line item or order context is structurally malformed.
var ErrInvalidInput = errors.New("invalid pricing input")

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// BulkTier is a quantity threshold that unlocks a discount percentage.
type BulkTier struct {
	MinQuantity     int             `json:"minQuantity"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// LineItem describes a product entry under consideration for pricing.
type LineItem struct {
	SKU             string          `json:"sku,omitempty"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Quantity        int             `json:"quantity"`
	MinimumQuantity int             `json:"minimumQuantity"`
	BulkTiers       []BulkTier      `json:"bulkTiers,omitempty"`
	TaxRatePercent  decimal.Decimal `json:"taxRatePercent"`
}

// TierMatch is the outcome of tier resolution. Tier is nil and Index is -1 when no tier applies.
type TierMatch struct {
	Tier            *BulkTier
	Index           int
	DiscountPercent decimal.Decimal
}

// TierGap describes what it takes to reach the next bulk tier.
type TierGap struct {
	UnitsNeeded                int             `json:"unitsNeeded"`
	NextMinQuantity            int             `json:"nextMinQuantity"`
	NextDiscountPercent        decimal.Decimal `json:"nextDiscountPercent"`
	PotentialAdditionalSavings decimal.Decimal `json:"potentialAdditionalSavings"`
}

// LineResult carries the priced view of a single line item.
type LineResult struct {
	SKU                    string          `json:"sku,omitempty"`
	Quantity               int             `json:"quantity"`
	MinimumQuantity        int             `json:"minimumQuantity"`
	UnitPrice              decimal.Decimal `json:"unitPrice"`
	DiscountPercent        decimal.Decimal `json:"discountPercent"`
	Tier                   *BulkTier       `json:"tier"`
	TierIndex              int             `json:"tierIndex"`
	UnitPriceAfterDiscount decimal.Decimal `json:"unitPriceAfterDiscount"`
	GrossTotal             decimal.Decimal `json:"grossTotal"`
	LineTotal              decimal.Decimal `json:"lineTotal"`
	Savings                decimal.Decimal `json:"savings"`
	TaxRatePercent         decimal.Decimal `json:"taxRatePercent"`
	TaxAmount              decimal.Decimal `json:"taxAmount"`
	BelowMinimum           bool            `json:"belowMinimum"`
	NextTier               *TierGap        `json:"nextTier,omitempty"`
}

// ResolveTier returns the highest tier whose threshold the quantity has reached.
// Tiers are not cumulative: only the closest-below threshold applies.
func ResolveTier(item LineItem) (TierMatch, error) {
	if err := Validate(item); err != nil {
		return TierMatch{}, err
	}
	return resolveTier(item), nil
}

func resolveTier(item LineItem) TierMatch {
	match := TierMatch{Index: -1, DiscountPercent: zero}
	// tiers are validated as strictly increasing, so the last reached tier wins
	for i := range item.BulkTiers {
		if item.BulkTiers[i].MinQuantity > item.Quantity {
			break
		}
		tier := item.BulkTiers[i]
		match = TierMatch{Tier: &tier, Index: i, DiscountPercent: tier.DiscountPercent}
	}
	return match
}

// UnitPriceAfterDiscount applies the resolved tier discount to the unit price.
func UnitPriceAfterDiscount(item LineItem) (decimal.Decimal, error) {
	if err := Validate(item); err != nil {
		return zero, err
	}
	return DiscountedPrice(item.UnitPrice, resolveTier(item).DiscountPercent), nil
}

// DiscountedPrice applies a percentage discount to a unit price.
func DiscountedPrice(price, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return price
	}
	return price.Mul(hundred.Sub(percent)).Div(hundred)
}

// LineTotal prices a line item. Quantities below the item minimum are flagged, not rejected.
func LineTotal(item LineItem) (LineResult, error) {
	if err := Validate(item); err != nil {
		return LineResult{}, err
	}
	return lineTotal(item), nil
}

func lineTotal(item LineItem) LineResult {
	match := resolveTier(item)
	qty := decimal.NewFromInt(int64(item.Quantity))
	unit := DiscountedPrice(item.UnitPrice, match.DiscountPercent)
	gross := item.UnitPrice.Mul(qty)
	total := unit.Mul(qty)
	return LineResult{
		SKU:                    item.SKU,
		Quantity:               item.Quantity,
		MinimumQuantity:        minimumQuantity(item),
		UnitPrice:              item.UnitPrice,
		DiscountPercent:        match.DiscountPercent,
		Tier:                   match.Tier,
		TierIndex:              match.Index,
		UnitPriceAfterDiscount: unit,
		GrossTotal:             gross,
		LineTotal:              total,
		Savings:                gross.Sub(total),
		TaxRatePercent:         item.TaxRatePercent,
		TaxAmount:              total.Mul(item.TaxRatePercent).Div(hundred),
		BelowMinimum:           item.Quantity < minimumQuantity(item),
		NextTier:               nextTierGap(item, match),
	}
}

// NextTierGap reports how many units unlock the next tier and the extra savings that tier
// would give at the current quantity. It returns nil once the highest tier is reached.
func NextTierGap(item LineItem) (*TierGap, error) {
	if err := Validate(item); err != nil {
		return nil, err
	}
	return nextTierGap(item, resolveTier(item)), nil
}

func nextTierGap(item LineItem, match TierMatch) *TierGap {
	next := match.Index + 1
	if next >= len(item.BulkTiers) {
		return nil
	}
	tier := item.BulkTiers[next]
	extra := tier.DiscountPercent.Sub(match.DiscountPercent)
	if extra.IsNegative() {
		extra = zero
	}
	savings := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Mul(extra).Div(hundred)
	return &TierGap{
		UnitsNeeded:                tier.MinQuantity - item.Quantity,
		NextMinQuantity:            tier.MinQuantity,
		NextDiscountPercent:        tier.DiscountPercent,
		PotentialAdditionalSavings: savings,
	}
}

func minimumQuantity(item LineItem) int {
	if item.MinimumQuantity < 1 {
		return 1
	}
	return item.MinimumQuantity
}

// Validate rejects structurally invalid line items.
func Validate(item LineItem) error {
	if item.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative", ErrInvalidInput)
	}
	if item.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	if item.MinimumQuantity < 0 {
		return fmt.Errorf("%w: minimum quantity must not be negative", ErrInvalidInput)
	}
	if !percentInRange(item.TaxRatePercent) {
		return fmt.Errorf("%w: tax rate must be between 0 and 100", ErrInvalidInput)
	}
	prev := 0
	for i, tier := range item.BulkTiers {
		if tier.MinQuantity < 1 {
			return fmt.Errorf("%w: tier %d minimum quantity must be at least 1", ErrInvalidInput, i)
		}
		if i > 0 && tier.MinQuantity <= prev {
			return fmt.Errorf("%w: tier %d minimum quantity must be greater than %d", ErrInvalidInput, i, prev)
		}
		if !percentInRange(tier.DiscountPercent) {
			return fmt.Errorf("%w: tier %d discount must be between 0 and 100", ErrInvalidInput, i)
		}
		prev = tier.MinQuantity
	}
	return nil
}

func percentInRange(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}
