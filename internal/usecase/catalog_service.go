package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/pawradise/backend/internal/domain"
)

// Storefront price slider bounds
const (
	DefaultMinPrice = 0.0
	DefaultMaxPrice = 200.0
)

const (
	featuredCount       = 4
	bestSellerMinRating = 4.7
)

// CatalogService answers product queries over a read-only catalog
type CatalogService struct {
	repo domain.CatalogRepository
}

// NewCatalogService creates a catalog service backed by repo
func NewCatalogService(repo domain.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// List returns every product in catalog order
func (s *CatalogService) List() []domain.Product {
	return s.repo.All()
}

// Get returns a single product
func (s *CatalogService) Get(id string) (domain.Product, error) {
	p, ok := s.repo.FindByID(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return p, nil
}

// Categories returns the product categories in display order
func (s *CatalogService) Categories() []domain.Category {
	out := make([]domain.Category, len(domain.Categories))
	copy(out, domain.Categories)
	return out
}

// Filter returns the catalog products matching the category and inclusive
// price range, in catalog order. Missing bounds default to the storefront range.
func (s *CatalogService) Filter(filter domain.ProductFilter) ([]domain.Product, error) {
	category, err := parseCategory(filter.Category)
	if err != nil {
		return nil, err
	}

	minPrice, maxPrice := DefaultMinPrice, DefaultMaxPrice
	if filter.MinPrice != nil {
		minPrice = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		maxPrice = *filter.MaxPrice
	}
	if !isFinite(minPrice) || !isFinite(maxPrice) {
		return nil, fmt.Errorf("%w: price bounds must be finite numbers", domain.ErrInvalidRequest)
	}
	if minPrice < 0 || maxPrice < 0 {
		return nil, fmt.Errorf("%w: price bounds must not be negative", domain.ErrInvalidRequest)
	}
	if minPrice > maxPrice {
		return nil, fmt.Errorf("%w: minPrice %.2f is above maxPrice %.2f", domain.ErrInvalidRequest, minPrice, maxPrice)
	}

	products := s.repo.All()
	matched := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if matchesFilter(p, category, minPrice, maxPrice) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Featured returns the home page selection: the first products in the
// catalog and the highest rated ones
func (s *CatalogService) Featured() domain.FeaturedProducts {
	products := s.repo.All()

	featured := products
	if len(featured) > featuredCount {
		featured = featured[:featuredCount]
	}

	bestSellers := make([]domain.Product, 0, featuredCount)
	for _, p := range products {
		if p.Rating >= bestSellerMinRating {
			bestSellers = append(bestSellers, p)
			if len(bestSellers) == featuredCount {
				break
			}
		}
	}

	return domain.FeaturedProducts{
		Featured:    featured,
		BestSellers: bestSellers,
	}
}

// ResolveIDs returns the catalog products whose ids appear in ids, in catalog
// order. Unknown ids are dropped.
func (s *CatalogService) ResolveIDs(ids []string) []domain.Product {
	if len(ids) == 0 {
		return []domain.Product{}
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	out := []domain.Product{}
	for _, p := range s.repo.All() {
		if wanted[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// matchesFilter is the shop predicate: category (or All) and inclusive price range
func matchesFilter(p domain.Product, category domain.Category, minPrice, maxPrice float64) bool {
	categoryMatch := category == domain.CategoryAll || p.Category == category
	priceMatch := p.Price >= minPrice && p.Price <= maxPrice
	return categoryMatch && priceMatch
}

// parseCategory resolves a filter category case-insensitively; empty means All
func parseCategory(raw domain.Category) (domain.Category, error) {
	value := strings.TrimSpace(string(raw))
	if value == "" || strings.EqualFold(value, string(domain.CategoryAll)) {
		return domain.CategoryAll, nil
	}
	for _, c := range domain.Categories {
		if strings.EqualFold(value, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", domain.ErrInvalidRequest, value)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
