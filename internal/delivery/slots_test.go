package delivery

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSurchargeDefaultSlots(t *testing.T) {
	c := NewCatalog(DefaultSlots())

	charge, slot, err := c.Surcharge("evening")
	require.NoError(t, err)
	require.NotNil(t, slot)
	require.True(t, charge.Equal(decimal.NewFromInt(150)))
	require.False(t, slot.Free())

	charge, slot, err = c.Surcharge(" Morning ")
	require.NoError(t, err)
	require.True(t, charge.IsZero())
	require.True(t, slot.Free())

	charge, slot, err = c.Surcharge("")
	require.NoError(t, err)
	require.Nil(t, slot)
	require.True(t, charge.IsZero())
}

func TestSurchargeErrors(t *testing.T) {
	slots := DefaultSlots()
	slots[3].Available = false
	c := NewCatalog(slots)

	_, _, err := c.Surcharge("midnight")
	require.ErrorIs(t, err, ErrUnknownSlot)

	_, _, err = c.Surcharge("next_day")
	require.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestSlotsReturnsCopy(t *testing.T) {
	c := NewCatalog(DefaultSlots())
	out := c.Slots()
	out[0].Charge = decimal.NewFromInt(999)
	charge, _, err := c.Surcharge("morning")
	require.NoError(t, err)
	require.True(t, charge.IsZero())
}
