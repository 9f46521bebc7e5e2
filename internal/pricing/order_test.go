package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateTwoLineCart(t *testing.T) {
	ctx := OrderContext{
		Items:                 []LineItem{riceItem(50), riceItem(50)},
		DeliverySurcharge:     dec("150"),
		PromoAdjustment:       dec("500"),
		MinimumOrderThreshold: dec("10000"),
	}
	totals, err := Aggregate(ctx)
	require.NoError(t, err)
	require.Len(t, totals.Lines, 2)
	requireDecimal(t, "11040", totals.Subtotal)
	requireDecimal(t, "960", totals.TotalSavings)
	requireDecimal(t, "552", totals.TaxAmount)
	requireDecimal(t, "11242", totals.GrandTotal)
	require.True(t, totals.QualifiesForCheckout)
	require.True(t, totals.QualifiesByGrandTotal)
	requireDecimal(t, "0", totals.RemainingForMinimum)
	requireDecimal(t, "100", totals.MinimumOrderProgress)
	// both lines are 50 units away from the 12% tier: 2 * 120 * 50 * 4%
	requireDecimal(t, "480", totals.PotentialAdditionalSavings)
}

func TestAggregateQualificationUsesSubtotal(t *testing.T) {
	// subtotal 9936 (90 units at 110.4) misses the threshold, the grand total does not
	ctx := OrderContext{
		Items:                 []LineItem{riceItem(90)},
		DeliverySurcharge:     dec("200"),
		MinimumOrderThreshold: dec("10000"),
	}
	totals, err := Aggregate(ctx)
	require.NoError(t, err)
	requireDecimal(t, "9936", totals.Subtotal)
	require.False(t, totals.QualifiesForCheckout)
	require.True(t, totals.QualifiesByGrandTotal)
	requireDecimal(t, "64", totals.RemainingForMinimum)
	requireDecimal(t, "99.36", totals.MinimumOrderProgress)
}

func TestAggregateGrandTotalFlooredAtZero(t *testing.T) {
	ctx := OrderContext{
		Items:                 []LineItem{riceItem(25)},
		DeliverySurcharge:     dec("150"),
		PromoAdjustment:       dec("1000000"),
		MinimumOrderThreshold: dec("10000"),
	}
	totals, err := Aggregate(ctx)
	require.NoError(t, err)
	requireDecimal(t, "0", totals.GrandTotal)
	require.False(t, totals.GrandTotal.IsNegative())
}

func TestAggregateEmptyCart(t *testing.T) {
	totals, err := Aggregate(OrderContext{MinimumOrderThreshold: dec("10000")})
	require.NoError(t, err)
	require.Empty(t, totals.Lines)
	requireDecimal(t, "0", totals.Subtotal)
	requireDecimal(t, "0", totals.GrandTotal)
	require.False(t, totals.QualifiesForCheckout)
	requireDecimal(t, "10000", totals.RemainingForMinimum)
	requireDecimal(t, "0", totals.MinimumOrderProgress)
}

func TestAggregatePerItemTaxRates(t *testing.T) {
	oil := LineItem{UnitPrice: dec("80"), Quantity: 30, MinimumQuantity: 15, TaxRatePercent: dec("12"),
		BulkTiers: []BulkTier{{MinQuantity: 15, DiscountPercent: dec("3")}, {MinQuantity: 30, DiscountPercent: dec("6")}}}
	totals, err := Aggregate(OrderContext{
		Items:                 []LineItem{riceItem(50), oil},
		MinimumOrderThreshold: dec("1"),
	})
	require.NoError(t, err)
	// oil: 80 * 0.94 * 30 = 2256, tax 12% = 270.72
	requireDecimal(t, "7776", totals.Subtotal)
	requireDecimal(t, "546.72", totals.TaxAmount)
}

func TestAggregateIsAdditive(t *testing.T) {
	left := []LineItem{riceItem(10), riceItem(60)}
	right := []LineItem{riceItem(110), riceItem(25)}
	threshold := dec("10000")

	a, err := Aggregate(OrderContext{Items: left, MinimumOrderThreshold: threshold})
	require.NoError(t, err)
	b, err := Aggregate(OrderContext{Items: right, MinimumOrderThreshold: threshold})
	require.NoError(t, err)
	union, err := Aggregate(OrderContext{Items: append(append([]LineItem{}, left...), right...), MinimumOrderThreshold: threshold})
	require.NoError(t, err)

	require.True(t, a.Subtotal.Add(b.Subtotal).Equal(union.Subtotal))
	require.True(t, a.TaxAmount.Add(b.TaxAmount).Equal(union.TaxAmount))
	require.True(t, a.TotalSavings.Add(b.TotalSavings).Equal(union.TotalSavings))
}

func TestAggregateIsIdempotent(t *testing.T) {
	ctx := OrderContext{
		Items:                 []LineItem{riceItem(50), riceItem(10)},
		DeliverySurcharge:     dec("150"),
		PromoAdjustment:       dec("500"),
		MinimumOrderThreshold: dec("10000"),
	}
	first, err := Aggregate(ctx)
	require.NoError(t, err)
	second, err := Aggregate(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 50, ctx.Items[0].Quantity)
	require.True(t, second.AnyBelowMinimum)
}

func TestAggregateRejectsInvalidContext(t *testing.T) {
	_, err := Aggregate(OrderContext{MinimumOrderThreshold: dec("0")})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Aggregate(OrderContext{DeliverySurcharge: dec("-1"), MinimumOrderThreshold: dec("1")})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Aggregate(OrderContext{Items: []LineItem{riceItem(50)}, PromoAdjustment: dec("-100000"), MinimumOrderThreshold: dec("1")})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Contains(t, err.Error(), "promo adjustment")

	bad := riceItem(50)
	bad.BulkTiers[1].MinQuantity = 10
	_, err = Aggregate(OrderContext{Items: []LineItem{riceItem(50), bad}, MinimumOrderThreshold: dec("1")})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Contains(t, err.Error(), "line 1")
}
