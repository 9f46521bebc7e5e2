package promo

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownCode is returned when no promo rule exists for the code.
	ErrUnknownCode = errors.New("promo code not recognised")
	// ErrInactive is returned when attempting to use a promo before its active window.
	ErrInactive = errors.New("promo code not active")
	// ErrExpired is returned when the promo window has already closed.
	ErrExpired = errors.New("promo code expired")
	// ErrMinimumSpendUnmet indicates the order subtotal did not meet the promo requirement.
	ErrMinimumSpendUnmet = errors.New("promo minimum spend not met")
)

// Rule kinds.
const (
	KindFlat    = "flat"
	KindPercent = "percent"
)

var hundred = decimal.NewFromInt(100)

// Rule captures the runtime constraints of a promo code.
type Rule struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Percent     decimal.Decimal `json:"percent"`
	MinSpend    decimal.Decimal `json:"minSpend"`
	ValidFrom   *time.Time      `json:"validFrom,omitempty"`
	ValidTo     *time.Time      `json:"validTo,omitempty"`
}

// NormalizeCode trims and upper-cases a code as typed by the buyer.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate ensures the rule can be applied at the provided instant and subtotal.
func (r Rule) Validate(now time.Time, subtotal decimal.Decimal) error {
	if subtotal.LessThan(r.MinSpend) {
		return ErrMinimumSpendUnmet
	}
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return ErrInactive
	}
	if r.ValidTo != nil && now.After(*r.ValidTo) {
		return ErrExpired
	}
	return nil
}

// Adjustment returns the flat amount the rule takes off an order with the given subtotal.
// Flat rules are not capped here; the order grand total is floored by the pricing engine.
func Adjustment(r Rule, subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	amount := r.Amount
	if strings.EqualFold(r.Kind, KindPercent) {
		if !r.Percent.IsPositive() {
			return decimal.Zero
		}
		amount = subtotal.Mul(r.Percent).Div(hundred)
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
