package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Step is a stage of the checkout wizard.
type Step string

// Checkout steps in order.
const (
	StepAddress Step = "address"
	StepBilling Step = "billing"
	StepPayment Step = "payment"
	StepReview  Step = "review"
)

var steps = []Step{StepAddress, StepBilling, StepPayment, StepReview}

// Payment method identifiers.
const (
	MethodCredit = "credit"
	MethodUPI    = "upi"
	MethodNEFT   = "neft"
	MethodCard   = "card"
)

var (
	// ErrUnknownStep is returned for a step outside the wizard.
	ErrUnknownStep = errors.New("unknown checkout step")
	// ErrStepIncomplete is returned when the current step lacks required data.
	ErrStepIncomplete = errors.New("checkout step incomplete")
	// ErrNoNextStep is returned when advancing past review.
	ErrNoNextStep = errors.New("checkout already at final step")
	// ErrNoPreviousStep is returned when going back from the first step.
	ErrNoPreviousStep = errors.New("checkout already at first step")
	// ErrPaymentMethodUnavailable is returned for unknown or disabled payment methods.
	ErrPaymentMethodUnavailable = errors.New("payment method unavailable")
)

// State is the client-held checkout progress.
type State struct {
	Step                  Step   `json:"step"`
	AddressID             string `json:"addressId,omitempty"`
	BillingSameAsDelivery bool   `json:"billingSameAsDelivery"`
	BillingAddressID      string `json:"billingAddressId,omitempty"`
	PaymentMethod         string `json:"paymentMethod,omitempty"`
}

// CreditTerms are the buyer's trade credit facility.
type CreditTerms struct {
	Approved  bool            `json:"approved"`
	Limit     decimal.Decimal `json:"limit"`
	Available decimal.Decimal `json:"available"`
	Days      int             `json:"days"`
}

// PaymentMethod is a selectable way to pay.
type PaymentMethod struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// Flow drives the address, billing, payment, review wizard.
type Flow struct {
	Terms CreditTerms
}

// PaymentMethods lists the methods offered to the buyer. Credit requires approved terms.
func (f Flow) PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: MethodCredit, Label: "Trade Credit", Description: fmt.Sprintf("Pay within %d days", f.Terms.Days), Available: f.Terms.Approved},
		{ID: MethodUPI, Label: "UPI", Description: "Instant bank transfer", Available: true},
		{ID: MethodNEFT, Label: "NEFT / RTGS", Description: "Bank transfer, clears in one business day", Available: true},
		{ID: MethodCard, Label: "Credit / Debit Card", Description: "Visa, Mastercard, RuPay", Available: true},
	}
}

// PaymentMethodAvailable reports whether id names an offered, enabled method.
func (f Flow) PaymentMethodAvailable(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, m := range f.PaymentMethods() {
		if m.ID == id {
			return m.Available
		}
	}
	return false
}

// Advance moves to the next step once the current one is complete.
func (f Flow) Advance(state State) (State, error) {
	idx, err := stepIndex(state.Step)
	if err != nil {
		return state, err
	}
	if idx == len(steps)-1 {
		return state, ErrNoNextStep
	}
	if err := f.complete(state, state.Step); err != nil {
		return state, err
	}
	state.Step = steps[idx+1]
	return state, nil
}

// Back returns to the previous step. Entered data is kept.
func (f Flow) Back(state State) (State, error) {
	idx, err := stepIndex(state.Step)
	if err != nil {
		return state, err
	}
	if idx == 0 {
		return state, ErrNoPreviousStep
	}
	state.Step = steps[idx-1]
	return state, nil
}

// Incomplete returns the steps before review whose data is missing or invalid.
func (f Flow) Incomplete(state State) []Step {
	var out []Step
	for _, step := range steps[:len(steps)-1] {
		if f.complete(state, step) != nil {
			out = append(out, step)
		}
	}
	return out
}

func (f Flow) complete(state State, step Step) error {
	switch step {
	case StepAddress:
		if strings.TrimSpace(state.AddressID) == "" {
			return fmt.Errorf("%w: delivery address is required", ErrStepIncomplete)
		}
	case StepBilling:
		if !state.BillingSameAsDelivery && strings.TrimSpace(state.BillingAddressID) == "" {
			return fmt.Errorf("%w: billing address is required", ErrStepIncomplete)
		}
	case StepPayment:
		if strings.TrimSpace(state.PaymentMethod) == "" {
			return fmt.Errorf("%w: payment method is required", ErrStepIncomplete)
		}
		if !f.PaymentMethodAvailable(state.PaymentMethod) {
			return fmt.Errorf("%s: %w", state.PaymentMethod, ErrPaymentMethodUnavailable)
		}
	}
	return nil
}

func stepIndex(step Step) (int, error) {
	for i, s := range steps {
		if s == step {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%q: %w", step, ErrUnknownStep)
}
