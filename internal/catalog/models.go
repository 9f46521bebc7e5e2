package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/wholesale-toko/internal/pricing"
)

// Stock statuses.
const (
	StockInStock    = "in_stock"
	StockLow        = "low_stock"
	StockOutOfStock = "out_of_stock"
)

// Product is a wholesale catalog entry with its bulk pricing table.
type Product struct {
	ID                   string             `json:"id"`
	SKU                  string             `json:"sku"`
	Name                 string             `json:"name"`
	Brand                string             `json:"brand"`
	Category             string             `json:"category"`
	Subcategory          string             `json:"subcategory"`
	Unit                 string             `json:"unit"`
	Description          string             `json:"description"`
	Price                decimal.Decimal    `json:"price"`
	MinimumOrderQuantity int                `json:"minimumOrderQuantity"`
	BulkIncrement        int                `json:"bulkIncrement"`
	TaxRatePercent       decimal.Decimal    `json:"taxRatePercent"`
	StockStatus          string             `json:"stockStatus"`
	AvailableQuantity    int                `json:"availableQuantity"`
	BestSeller           bool               `json:"bestSeller"`
	BulkTiers            []pricing.BulkTier `json:"bulkTiers"`
}

// InStock reports whether the product can currently be ordered.
func (p Product) InStock() bool {
	return p.StockStatus != StockOutOfStock && p.AvailableQuantity > 0
}

// LineItem converts the product into a pricing line at the given quantity.
func (p Product) LineItem(qty int) pricing.LineItem {
	return pricing.LineItem{
		SKU:             p.SKU,
		UnitPrice:       p.Price,
		Quantity:        qty,
		MinimumQuantity: p.MinimumOrderQuantity,
		BulkTiers:       p.BulkTiers,
		TaxRatePercent:  p.TaxRatePercent,
	}
}

// MaxDiscountPercent returns the deepest tier discount offered.
func (p Product) MaxDiscountPercent() decimal.Decimal {
	if len(p.BulkTiers) == 0 {
		return decimal.Zero
	}
	return p.BulkTiers[len(p.BulkTiers)-1].DiscountPercent
}

// Category groups products with optional subcategories.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Subcategory is a leaf category.
type Subcategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Brand represents the public brand payload.
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TierView is a tier row as shown on product cards, with the unit price it yields.
type TierView struct {
	MinQuantity     int             `json:"minQuantity"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Reached         bool            `json:"reached"`
}

// PriceBreak is the quick-view pricing preview for a product at a chosen quantity.
type PriceBreak struct {
	ProductID    string             `json:"productId"`
	Quantity     int                `json:"quantity"`
	Line         pricing.LineResult `json:"line"`
	Tiers        []TierView         `json:"tiers"`
	CanAddToCart bool               `json:"canAddToCart"`
	Reasons      []string           `json:"reasons,omitempty"`
}
