package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/wholesale-toko/internal/pricing"
)

// ErrProductNotFound is returned when a product id is not in the catalog.
var ErrProductNotFound = errors.New("product not found")

//go:embed seed.json
var seedJSON []byte

// Store provides read access to catalog data. Products are returned in catalog order.
type Store interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListBrands(ctx context.Context) ([]Brand, error)
}

type seedFile struct {
	Categories []Category `json:"categories"`
	Brands     []Brand    `json:"brands"`
	Products   []Product  `json:"products"`
}

// MemoryStore serves an immutable catalog held in memory.
type MemoryStore struct {
	products   []Product
	byID       map[string]int
	categories []Category
	brands     []Brand
}

// NewMemoryStore validates products and indexes them by id.
func NewMemoryStore(products []Product, categories []Category, brands []Brand) (*MemoryStore, error) {
	s := &MemoryStore{
		products:   make([]Product, 0, len(products)),
		byID:       make(map[string]int, len(products)),
		categories: categories,
		brands:     brands,
	}
	for _, p := range products {
		if p.ID == "" {
			return nil, errors.New("catalog: product id is required")
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", p.ID)
		}
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("catalog: product %q price must be positive", p.ID)
		}
		if err := pricing.Validate(p.LineItem(0)); err != nil {
			return nil, fmt.Errorf("catalog: product %q: %w", p.ID, err)
		}
		if p.MinimumOrderQuantity < 1 {
			p.MinimumOrderQuantity = 1
		}
		if p.BulkIncrement < 1 {
			p.BulkIncrement = 1
		}
		s.byID[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}
	return s, nil
}

// LoadSeed builds a MemoryStore from the embedded wholesale catalog.
func LoadSeed() (*MemoryStore, error) {
	var seed seedFile
	if err := json.Unmarshal(seedJSON, &seed); err != nil {
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}
	return NewMemoryStore(seed.Products, seed.Categories, seed.Brands)
}

// ListProducts implements Store.
func (s *MemoryStore) ListProducts(_ context.Context) ([]Product, error) {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// GetProduct implements Store.
func (s *MemoryStore) GetProduct(_ context.Context, id string) (Product, error) {
	idx, ok := s.byID[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return s.products[idx], nil
}

// ListCategories implements Store.
func (s *MemoryStore) ListCategories(_ context.Context) ([]Category, error) {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

// ListBrands implements Store.
func (s *MemoryStore) ListBrands(_ context.Context) ([]Brand, error) {
	out := make([]Brand, len(s.brands))
	copy(out, s.brands)
	return out, nil
}
