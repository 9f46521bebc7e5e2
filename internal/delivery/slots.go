package delivery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownSlot is returned when the requested slot id is not offered.
	ErrUnknownSlot = errors.New("delivery slot not found")
	// ErrSlotUnavailable is returned when the slot exists but cannot be booked.
	ErrSlotUnavailable = errors.New("delivery slot unavailable")
)

// Slot describes a delivery time window and its flat surcharge.
type Slot struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Window      string          `json:"window"`
	Description string          `json:"description"`
	Available   bool            `json:"available"`
	Charge      decimal.Decimal `json:"charge"`
}

// Free reports whether the slot carries no surcharge.
func (s Slot) Free() bool { return s.Charge.IsZero() }

// Catalog is an ordered, read-only list of delivery slots.
type Catalog struct {
	slots []Slot
}

// NewCatalog copies the provided slots into a catalog.
func NewCatalog(slots []Slot) *Catalog {
	c := &Catalog{slots: make([]Slot, len(slots))}
	copy(c.slots, slots)
	return c
}

// Slots returns the offered slots in display order.
func (c *Catalog) Slots() []Slot {
	if c == nil {
		return nil
	}
	out := make([]Slot, len(c.slots))
	copy(out, c.slots)
	return out
}

// Surcharge resolves the flat delivery addition for the slot. No selection means no surcharge.
func (c *Catalog) Surcharge(slotID string) (decimal.Decimal, *Slot, error) {
	id := strings.ToLower(strings.TrimSpace(slotID))
	if id == "" {
		return decimal.Zero, nil, nil
	}
	if c != nil {
		for i := range c.slots {
			if c.slots[i].ID != id {
				continue
			}
			slot := c.slots[i]
			if !slot.Available {
				return decimal.Zero, nil, fmt.Errorf("%s: %w", id, ErrSlotUnavailable)
			}
			return slot.Charge, &slot, nil
		}
	}
	return decimal.Zero, nil, fmt.Errorf("%s: %w", id, ErrUnknownSlot)
}

// DefaultSlots returns the storefront delivery windows.
func DefaultSlots() []Slot {
	return []Slot{
		{ID: "morning", Label: "Morning Delivery", Window: "8:00 AM - 12:00 PM", Description: "Best for restaurants and cafes", Available: true, Charge: decimal.Zero},
		{ID: "afternoon", Label: "Afternoon Delivery", Window: "12:00 PM - 4:00 PM", Description: "Standard business hours", Available: true, Charge: decimal.Zero},
		{ID: "evening", Label: "Evening Delivery", Window: "4:00 PM - 8:00 PM", Description: "After business hours", Available: true, Charge: decimal.NewFromInt(150)},
		{ID: "next_day", Label: "Next Day Delivery", Window: "Next Business Day", Description: "Guaranteed next day delivery", Available: true, Charge: decimal.NewFromInt(200)},
	}
}
