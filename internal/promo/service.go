package promo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/wholesale-toko/internal/obs"
)

// Store looks up promo rules by normalised code.
type Store interface {
	GetRule(ctx context.Context, code string) (Rule, error)
	ListRules(ctx context.Context) ([]Rule, error)
}

// Applied is the outcome of resolving a promo code against an order subtotal.
type Applied struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Adjustment  decimal.Decimal `json:"adjustment"`
}

// Service resolves promo codes into order adjustments.
type Service struct {
	Store Store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Resolve validates the code and computes its adjustment. An empty code resolves to no promo.
func (s *Service) Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (*Applied, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, nil
	}
	if s == nil || s.Store == nil {
		return nil, errors.New("promo service not configured")
	}
	rule, err := s.Store.GetRule(ctx, normalized)
	if err != nil {
		observe(err)
		return nil, err
	}
	if err := rule.Validate(s.now(), subtotal); err != nil {
		observe(err)
		return nil, fmt.Errorf("%s: %w", normalized, err)
	}
	observe(nil)
	return &Applied{
		Code:        rule.Code,
		Description: rule.Description,
		Adjustment:  Adjustment(rule, subtotal),
	}, nil
}

func observe(err error) {
	if obs.PromoLookupTotal == nil {
		return
	}
	result := "applied"
	switch {
	case err == nil:
	case errors.Is(err, ErrUnknownCode):
		result = "unknown"
	case errors.Is(err, ErrExpired), errors.Is(err, ErrInactive):
		result = "out_of_window"
	case errors.Is(err, ErrMinimumSpendUnmet):
		result = "min_spend"
	default:
		result = "error"
	}
	obs.PromoLookupTotal.WithLabelValues(result).Inc()
}

// MemoryStore keeps promo rules in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewMemoryStore builds a store from the provided rules, keyed by normalised code.
func NewMemoryStore(rules []Rule) *MemoryStore {
	m := &MemoryStore{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		r.Code = NormalizeCode(r.Code)
		if r.Kind == "" {
			r.Kind = KindFlat
		}
		m.rules[r.Code] = r
	}
	return m
}

// GetRule implements Store.
func (m *MemoryStore) GetRule(_ context.Context, code string) (Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rules[NormalizeCode(code)]
	if !ok {
		return Rule{}, ErrUnknownCode
	}
	return r, nil
}

// ListRules implements Store.
func (m *MemoryStore) ListRules(_ context.Context) ([]Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Rule, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// DefaultRules returns the storefront promo codes.
func DefaultRules() []Rule {
	return []Rule{
		{Code: "BULK10", Description: "₹1000 off on bulk orders", Kind: KindFlat, Amount: decimal.NewFromInt(1000)},
		{Code: "FIRST20", Description: "₹2000 off for first-time buyers", Kind: KindFlat, Amount: decimal.NewFromInt(2000)},
		{Code: "SAVE500", Description: "₹500 instant discount", Kind: KindFlat, Amount: decimal.NewFromInt(500)},
	}
}
