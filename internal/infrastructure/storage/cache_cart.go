package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pawradise/backend/internal/domain"
)

// CacheCartStore persists carts in a CacheRepository. Idle carts expire with
// the cache TTL, which is refreshed on every save.
type CacheCartStore struct {
	cache domain.CacheRepository
	ttl   time.Duration
}

// NewCacheCartStore creates a cart store backed by cache
func NewCacheCartStore(cache domain.CacheRepository, ttl time.Duration) *CacheCartStore {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &CacheCartStore{cache: cache, ttl: ttl}
}

// Load returns the stored cart lines; a missing cart is empty, not an error
func (s *CacheCartStore) Load(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := s.cache.Get(ctx, CartKey(sessionID), &items)
	if errors.Is(err, domain.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Save replaces the stored cart lines
func (s *CacheCartStore) Save(ctx context.Context, sessionID string, items []domain.CartItem) error {
	return s.cache.Set(ctx, CartKey(sessionID), items, s.ttl)
}

// Delete removes the stored cart
func (s *CacheCartStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, CartKey(sessionID))
}
