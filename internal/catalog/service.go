package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/wholesale-toko/internal/common"
	"github.com/noah-isme/wholesale-toko/internal/pricing"
)

// Sort orders accepted by the product listing.
const (
	SortRelevance     = "relevance"
	SortPriceLowHigh  = "price_low_high"
	SortPriceHighLow  = "price_high_low"
	SortBulkSavings   = "bulk_savings"
	SortPopularity    = "popularity"
	SortNewest        = "newest"
	listCacheKeyspace = "catalog:products:list:"
)

// Service orchestrates catalog queries, filtering, and caching.
type Service struct {
	store        Store
	cache        *Cache
	logger       zerolog.Logger
	defaultPage  int
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store        Store
	Cache        *Cache
	Logger       *zerolog.Logger
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// Filter captures product listing filters.
type Filter struct {
	Query        string
	Categories   []string
	Brands       []string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Availability []string
	BulkDiscount bool
	MinimumOrder bool
	Sort         string
	Page         int
	Limit        int
}

// ListResult contains list data and pagination metadata.
type ListResult struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	defaultPage := cfg.DefaultPage
	if defaultPage < 1 {
		defaultPage = 1
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Service{
		store:        cfg.Store,
		cache:        cfg.Cache,
		logger:       logger,
		defaultPage:  defaultPage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseFilter normalises raw query values into strongly typed filters.
func (s *Service) ParseFilter(values url.Values) (Filter, error) {
	filter := Filter{
		Page:  s.defaultPage,
		Limit: s.defaultLimit,
	}
	filter.Query = strings.TrimSpace(values.Get("q"))
	filter.Categories = listValues(values, "category")
	filter.Brands = listValues(values, "brand")

	for _, status := range listValues(values, "availability") {
		switch status {
		case StockInStock, StockLow, StockOutOfStock:
			filter.Availability = append(filter.Availability, status)
		default:
			return filter, common.BadRequest("availability", "availability must be in_stock, low_stock or out_of_stock", fmt.Errorf("invalid availability %q", status))
		}
	}

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, common.BadRequest("page", "page must be a positive integer", err)
		}
		filter.Page = page
	}

	limit := s.defaultLimit
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			return filter, common.BadRequest("limit", "limit must be a positive integer", err)
		}
		limit = l
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	filter.Limit = limit

	if v := strings.TrimSpace(values.Get("minPrice")); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil || parsed.IsNegative() {
			return filter, common.BadRequest("minPrice", "minPrice must be a non-negative number", err)
		}
		filter.MinPrice = &parsed
	}
	if v := strings.TrimSpace(values.Get("maxPrice")); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil || parsed.IsNegative() {
			return filter, common.BadRequest("maxPrice", "maxPrice must be a non-negative number", err)
		}
		filter.MaxPrice = &parsed
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return filter, common.BadRequest("price", "minPrice cannot be greater than maxPrice", fmt.Errorf("invalid price range"))
	}

	for _, flag := range []struct {
		name string
		dst  *bool
	}{{"bulkDiscount", &filter.BulkDiscount}, {"minimumOrder", &filter.MinimumOrder}} {
		v := strings.TrimSpace(values.Get(flag.name))
		if v == "" {
			continue
		}
		b, err := parseBool(v)
		if err != nil {
			return filter, common.BadRequest(flag.name, flag.name+" must be true or false", err)
		}
		*flag.dst = b
	}

	sortKey, err := normalizeSort(values.Get("sort"))
	if err != nil {
		return filter, common.BadRequest("sort", "unsupported sort order", err)
	}
	filter.Sort = sortKey
	return filter, nil
}

// ListBrands returns all brands.
func (s *Service) ListBrands(ctx context.Context) ([]Brand, error) {
	brands, err := s.store.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}

// ListCategories returns all categories with their subcategories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// List returns the filtered, sorted page of products.
func (s *Service) List(ctx context.Context, filter Filter) (ListResult, error) {
	if filter.Page < 1 {
		filter.Page = s.defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = s.defaultLimit
	}
	if filter.Limit > s.maxLimit {
		filter.Limit = s.maxLimit
	}
	if filter.Sort == "" {
		filter.Sort = SortRelevance
	}

	key := listCacheKey(filter)
	if s.cache.Enabled() {
		var cached ListResult
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return ListResult{}, fmt.Errorf("list products: %w", err)
	}
	brandNames, err := s.brandNames(ctx)
	if err != nil {
		return ListResult{}, err
	}

	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if filter.matches(p, brandNames[p.Brand]) {
			matched = append(matched, p)
		}
	}
	sortProducts(matched, filter.Sort)

	result := ListResult{Items: []Product{}, Total: len(matched), Page: filter.Page, Limit: filter.Limit}
	pages := (len(matched) + filter.Limit - 1) / filter.Limit
	if filter.Page <= pages {
		offset := (filter.Page - 1) * filter.Limit
		end := offset + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		result.Items = matched[offset:end]
	}

	if s.cache.Enabled() {
		if err := s.cache.SetJSON(ctx, key, result); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
		}
	}
	return result, nil
}

// Get returns a single product by id.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, common.BadRequest("id", "product id is required", nil)
	}
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return Product{}, common.NotFound("product not found", err)
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// LineItem converts a product into a pricing line at qty.
func (s *Service) LineItem(product Product, qty int) pricing.LineItem {
	return product.LineItem(qty)
}

// PriceBreak previews the pricing of a product at qty, including the full tier table.
func (s *Service) PriceBreak(ctx context.Context, id string, qty int) (PriceBreak, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return PriceBreak{}, err
	}
	line, err := pricing.LineTotal(s.LineItem(product, qty))
	if err != nil {
		return PriceBreak{}, common.InvalidInput(err)
	}

	out := PriceBreak{
		ProductID: product.ID,
		Quantity:  qty,
		Line:      line,
		Tiers:     make([]TierView, 0, len(product.BulkTiers)),
	}
	for i, tier := range product.BulkTiers {
		out.Tiers = append(out.Tiers, TierView{
			MinQuantity:     tier.MinQuantity,
			DiscountPercent: tier.DiscountPercent,
			UnitPrice:       pricing.DiscountedPrice(product.Price, tier.DiscountPercent),
			Reached:         i <= line.TierIndex,
		})
	}

	if line.BelowMinimum {
		out.Reasons = append(out.Reasons, "below_minimum_quantity")
	}
	if !product.InStock() {
		out.Reasons = append(out.Reasons, "out_of_stock")
	} else if qty > product.AvailableQuantity {
		out.Reasons = append(out.Reasons, "exceeds_available_quantity")
	}
	out.CanAddToCart = len(out.Reasons) == 0
	return out, nil
}

func (s *Service) brandNames(ctx context.Context) (map[string]string, error) {
	brands, err := s.store.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	names := make(map[string]string, len(brands))
	for _, b := range brands {
		names[b.ID] = b.Name
	}
	return names, nil
}

func (f Filter) matches(p Product, brandName string) bool {
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) && !slices.Contains(f.Categories, p.Subcategory) {
		return false
	}
	if len(f.Brands) > 0 && !slices.Contains(f.Brands, p.Brand) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if len(f.Availability) > 0 && !slices.Contains(f.Availability, p.StockStatus) {
		return false
	}
	if f.BulkDiscount && len(p.BulkTiers) == 0 {
		return false
	}
	if f.MinimumOrder && p.MinimumOrderQuantity <= 1 {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		haystack := strings.ToLower(p.Name + " " + brandName + " " + p.SKU)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// sortProducts orders in place. Catalog order is the relevance order and newest entries are last.
func sortProducts(items []Product, key string) {
	switch key {
	case SortPriceLowHigh:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price.LessThan(items[j].Price) })
	case SortPriceHighLow:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price.GreaterThan(items[j].Price) })
	case SortBulkSavings:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].MaxDiscountPercent(), items[j].MaxDiscountPercent()
			if !a.Equal(b) {
				return a.GreaterThan(b)
			}
			return len(items[i].BulkTiers) > len(items[j].BulkTiers)
		})
	case SortPopularity:
		sort.SliceStable(items, func(i, j int) bool { return items[i].BestSeller && !items[j].BestSeller })
	case SortNewest:
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
}

func listCacheKey(f Filter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "q=%s|cat=%s|brand=%s|avail=%s|bulk=%t|moq=%t|sort=%s|page=%d|limit=%d",
		strings.ToLower(f.Query),
		strings.Join(sortedCopy(f.Categories), ","),
		strings.Join(sortedCopy(f.Brands), ","),
		strings.Join(sortedCopy(f.Availability), ","),
		f.BulkDiscount, f.MinimumOrder, f.Sort, f.Page, f.Limit)
	if f.MinPrice != nil {
		b.WriteString("|min=" + f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		b.WriteString("|max=" + f.MaxPrice.String())
	}
	sum := sha256.Sum256([]byte(b.String()))
	return listCacheKeyspace + hex.EncodeToString(sum[:])
}

func listValues(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" && !slices.Contains(out, part) {
				out = append(out, part)
			}
		}
	}
	return out
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %s", value)
	}
}

func normalizeSort(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortPriceLowHigh, SortPriceHighLow, SortBulkSavings, SortPopularity, SortNewest:
		return s, nil
	default:
		return "", fmt.Errorf("invalid sort: %s", s)
	}
}

