package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/pawradise/backend/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const cartLockStripes = 64

// MaxItemQuantity is the largest quantity a cart line can hold
const MaxItemQuantity = 999

// CartService manages per-session shopping carts
type CartService struct {
	catalog domain.CatalogRepository
	store   domain.CartRepository
	locks   [cartLockStripes]sync.Mutex
	now     func() time.Time
}

// NewCartService creates a cart service persisting through store
func NewCartService(catalog domain.CatalogRepository, store domain.CartRepository) *CartService {
	return &CartService{
		catalog: catalog,
		store:   store,
		now:     time.Now,
	}
}

// Get returns the session cart; a new session gets an empty cart
func (s *CartService) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}

	unlock := s.lock(sessionID)
	defer unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildCart(sessionID, items), nil
}

// Add puts one unit of a product in the cart
func (s *CartService) Add(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}
	product, ok := s.catalog.FindByID(productID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}

	return s.mutate(ctx, sessionID, func(items []domain.CartItem) ([]domain.CartItem, error) {
		for i := range items {
			if items[i].ID == productID {
				items[i].Quantity = clampQuantity(items[i].Quantity + 1)
				return items, nil
			}
		}
		return append(items, domain.CartItem{Product: product, Quantity: 1}), nil
	})
}

// UpdateQuantity changes a line quantity by delta, keeping it within
// [1, MaxItemQuantity]
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, delta int) (*domain.Cart, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}
	if delta > MaxItemQuantity || delta < -MaxItemQuantity {
		return nil, fmt.Errorf("%w: delta must be within ±%d", domain.ErrInvalidRequest, MaxItemQuantity)
	}

	return s.mutate(ctx, sessionID, func(items []domain.CartItem) ([]domain.CartItem, error) {
		for i := range items {
			if items[i].ID == productID {
				items[i].Quantity = clampQuantity(items[i].Quantity + delta)
				return items, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrCartItemNotFound, productID)
	})
}

// Remove drops a line from the cart. Removing an absent line is a no-op.
func (s *CartService) Remove(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, func(items []domain.CartItem) ([]domain.CartItem, error) {
		kept := items[:0]
		for _, item := range items {
			if item.ID != productID {
				kept = append(kept, item)
			}
		}
		return kept, nil
	})
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}

	unlock := s.lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		zap.S().Warnf("[Cart] failed to clear cart %s: %v", sessionID, err)
	}
	return s.buildCart(sessionID, nil), nil
}

// Checkout is not available in the demo storefront
func (s *CartService) Checkout(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return cart, fmt.Errorf("%w: cart is empty", domain.ErrInvalidRequest)
	}
	return cart, domain.ErrCheckoutNotImplemented
}

// mutate runs fn over the loaded items under the session lock and persists
// the result. A failed save is logged; the returned cart reflects fn's result.
func (s *CartService) mutate(ctx context.Context, sessionID string, fn func([]domain.CartItem) ([]domain.CartItem, error)) (*domain.Cart, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	items, err = fn(items)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, sessionID, items); err != nil {
		zap.S().Warnf("[Cart] failed to persist cart %s: %v", sessionID, err)
	}
	return s.buildCart(sessionID, items), nil
}

// load reads the stored items and repairs out-of-range quantities.
// An undecodable cart is replaced by an empty one.
func (s *CartService) load(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	items, err := s.store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrCorruptData) {
		zap.S().Warnf("[Cart] discarding unreadable cart %s: %v", sessionID, err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	for i := range items {
		items[i].Quantity = clampQuantity(items[i].Quantity)
	}
	return items, nil
}

func (s *CartService) buildCart(sessionID string, items []domain.CartItem) *domain.Cart {
	if items == nil {
		items = []domain.CartItem{}
	}
	total, subtotal := cartTotals(items)
	return &domain.Cart{
		SessionID:  sessionID,
		Items:      items,
		TotalItems: total,
		Subtotal:   subtotal.InexactFloat64(),
		UpdatedAt:  s.now(),
	}
}

// lock serializes access to one session's cart
func (s *CartService) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	mu := &s.locks[h.Sum32()%cartLockStripes]
	mu.Lock()
	return mu.Unlock
}

// cartTotals returns the unit count and the subtotal rounded to cents
func cartTotals(items []domain.CartItem) (int, decimal.Decimal) {
	count := 0
	subtotal := decimal.Zero
	for _, item := range items {
		count += item.Quantity
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	return count, subtotal.Round(2)
}

func clampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxItemQuantity:
		return MaxItemQuantity
	}
	return q
}

func validateSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: missing session id", domain.ErrInvalidRequest)
	}
	return nil
}
